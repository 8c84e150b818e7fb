package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tripshield/tripshield/internal/document/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) EnqueueIfAbsent(ctx context.Context, db *gorm.DB, job *domain.DocumentJob) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "membership_id"}},
		DoNothing: true,
	}).Create(job).Error
}

func (r *repo) FindByMembershipID(ctx context.Context, db *gorm.DB, membershipID snowflake.ID) (*domain.DocumentJob, error) {
	var job domain.DocumentJob
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM document_jobs WHERE membership_id = ? LIMIT 1`,
		membershipID,
	).Scan(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, nil
	}
	return &job, nil
}

func (r *repo) ListDispatchable(ctx context.Context, db *gorm.DB, maxAttempts, limit int) ([]domain.DocumentJob, error) {
	var jobs []domain.DocumentJob
	stmt := db.WithContext(ctx).
		Where("status IN ?", []domain.JobStatus{domain.JobPending, domain.JobFailed}).
		Where("attempts < ?", maxAttempts).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	err := stmt.Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repo) MarkAttempt(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.JobStatus, lastError string, at time.Time) error {
	return db.WithContext(ctx).Model(&domain.DocumentJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastError,
			"updated_at": at,
		}).Error
}
