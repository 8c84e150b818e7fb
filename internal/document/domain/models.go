// Package domain holds the document issuance outbox. A payment confirmation
// enqueues one job per membership inside the payment transaction; a worker
// renders and dispatches the documents afterwards, so a render or mail
// failure never rolls back a recorded payment.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type JobStatus string

const (
	JobPending JobStatus = "PENDING"
	JobSent    JobStatus = "SENT"
	JobFailed  JobStatus = "FAILED"
)

// DocumentJob is the outbox row for one membership's document pack.
// Uniqueness on membership_id makes enqueueing idempotent across duplicate
// payment confirmations.
type DocumentJob struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	MembershipID snowflake.ID `gorm:"not null;uniqueIndex"`
	Status       JobStatus    `gorm:"type:text;not null;default:'PENDING'"`
	Attempts     int          `gorm:"not null;default:0"`
	LastError    string       `gorm:"type:text"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DocumentJob) TableName() string { return "document_jobs" }
