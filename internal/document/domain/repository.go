package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// EnqueueIfAbsent inserts a pending job unless one already exists for
	// the membership.
	EnqueueIfAbsent(ctx context.Context, db *gorm.DB, job *DocumentJob) error

	FindByMembershipID(ctx context.Context, db *gorm.DB, membershipID snowflake.ID) (*DocumentJob, error)

	// ListDispatchable returns pending and retryable failed jobs, oldest
	// first, bounded by maxAttempts and limit.
	ListDispatchable(ctx context.Context, db *gorm.DB, maxAttempts, limit int) ([]DocumentJob, error)

	MarkAttempt(ctx context.Context, db *gorm.DB, id snowflake.ID, status JobStatus, lastError string, at time.Time) error
}
