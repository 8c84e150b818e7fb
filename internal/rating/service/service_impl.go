package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/tripshield/tripshield/internal/metrics"
	ratingdomain "github.com/tripshield/tripshield/internal/rating/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewService(p ServiceParam) ratingdomain.Source {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("rating.service"),
		metrics: p.Metrics,
	}
}

func (s *Service) CountryPrice(ctx context.Context, country string) (float64, error) {
	country = strings.TrimSpace(country)

	var row struct {
		DailyPrice float64
		Found      bool
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT daily_price, TRUE AS found
		 FROM country_rates
		 WHERE country = ?
		 LIMIT 1`,
		country,
	).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if !row.Found {
		s.recordMiss("country_rates", country)
		return 0, nil
	}
	return row.DailyPrice, nil
}

func (s *Service) AgeRate(ctx context.Context, age int) (float64, error) {
	var row struct {
		DailyRate float64
		Found     bool
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT daily_rate, TRUE AS found
		 FROM age_band_rates
		 WHERE min_age <= ? AND max_age >= ?
		 LIMIT 1`,
		age,
		age,
	).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if !row.Found {
		s.recordMiss("age_band_rates", strconv.Itoa(age))
		return 0, nil
	}
	return row.DailyRate, nil
}

func (s *Service) CoverageRate(ctx context.Context, coverageType string) (float64, error) {
	coverageType = strings.TrimSpace(coverageType)

	var row struct {
		DailyRate float64
		Found     bool
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT daily_rate, TRUE AS found
		 FROM coverage_rates
		 WHERE coverage_type = ?
		 LIMIT 1`,
		coverageType,
	).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if !row.Found {
		s.recordMiss("coverage_rates", coverageType)
		return 0, nil
	}
	return row.DailyRate, nil
}

func (s *Service) MedicalRate(ctx context.Context, riskLevel int) (float64, error) {
	// Level 0 is the standard tier; a zero loading there is expected and
	// not an observable gap.
	var row struct {
		DailyRate float64
		Found     bool
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT daily_rate, TRUE AS found
		 FROM medical_rates
		 WHERE risk_level = ?
		 LIMIT 1`,
		riskLevel,
	).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if !row.Found {
		if riskLevel != 0 {
			s.recordMiss("medical_rates", strconv.Itoa(riskLevel))
		}
		return 0, nil
	}
	return row.DailyRate, nil
}

func (s *Service) recordMiss(table string, key string) {
	s.log.Warn("rating factor missing, pricing at zero",
		zap.String("table", table),
		zap.String("key", key),
	)
	if s.metrics != nil {
		s.metrics.RatingFactorMiss.WithLabelValues(table).Inc()
	}
}
