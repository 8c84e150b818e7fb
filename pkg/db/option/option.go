package option

import (
	"fmt"

	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before it is executed.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type Operator string

const (
	EQ  Operator = "="
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
)

// Condition expresses a single field comparison.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type conditionOption struct {
	cond Condition
}

func (o conditionOption) Apply(db *gorm.DB) *gorm.DB {
	if o.cond.Field == "" || o.cond.Operator == "" {
		return db
	}
	return db.Where(fmt.Sprintf("%s %s ?", o.cond.Field, o.cond.Operator), o.cond.Value)
}

func ApplyOperator(cond Condition) QueryOption {
	return conditionOption{cond: cond}
}

// QuerySortBy orders results by an allow-listed column.
type QuerySortBy struct {
	Field string
	Desc  bool
	Allow map[string]bool
}

type sortOption struct {
	sort QuerySortBy
}

func (o sortOption) Apply(db *gorm.DB) *gorm.DB {
	field := o.sort.Field
	if field == "" {
		field = "created_at"
	}
	if o.sort.Allow != nil && !o.sort.Allow[field] {
		return db
	}
	direction := "ASC"
	if o.sort.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", field, direction))
}

func WithSortBy(sort QuerySortBy) QueryOption {
	return sortOption{sort: sort}
}

type limitOption struct {
	limit int
}

func (o limitOption) Apply(db *gorm.DB) *gorm.DB {
	if o.limit <= 0 {
		return db
	}
	return db.Limit(o.limit)
}

func WithLimit(limit int) QueryOption {
	return limitOption{limit: limit}
}
