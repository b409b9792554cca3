package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/makkenzo/feedbackhub-api/internal/domain/feedback"
	"github.com/makkenzo/feedbackhub-api/internal/domain/project"
	"go.uber.org/zap"
)

type FeedbackRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewFeedbackRepository(db DBTX, logger *zap.Logger) *FeedbackRepository {
	return &FeedbackRepository{
		db:     db,
		logger: logger.Named("FeedbackRepository"),
	}
}

var _ feedback.Repository = (*FeedbackRepository)(nil)

func (r *FeedbackRepository) Create(ctx context.Context, fb *feedback.Feedback) (int64, error) {
	query := `
        INSERT INTO feedbacks (project_id, user_name, user_email, message, rating)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		fb.ProjectID,
		fb.UserName,
		fb.UserEmail,
		fb.Message,
		fb.Rating,
	).Scan(&fb.ID, &fb.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			r.logger.Warn("Feedback references a missing project", zap.Int64("project_id", fb.ProjectID))
			return 0, project.ErrNotFound
		}
		r.logger.Error("Failed to create feedback in database", zap.Int64("project_id", fb.ProjectID), zap.Error(err))
		return 0, fmt.Errorf("database error on create feedback: %w", err)
	}

	r.logger.Debug("Feedback stored", zap.Int64("id", fb.ID), zap.Int64("project_id", fb.ProjectID))
	return fb.ID, nil
}

func (r *FeedbackRepository) ListByProject(ctx context.Context, projectID int64) ([]feedback.Feedback, error) {
	return listFeedbacks(ctx, r.db, projectID)
}

func listFeedbacks(ctx context.Context, db DBTX, projectID int64) ([]feedback.Feedback, error) {
	query := `
        SELECT id, project_id, user_name, user_email, message, rating, created_at
        FROM feedbacks
        WHERE project_id = $1
        ORDER BY created_at DESC, id DESC
    `
	rows, err := db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("database error on list feedbacks: %w", err)
	}
	defer rows.Close()

	feedbacks := make([]feedback.Feedback, 0)
	for rows.Next() {
		var fb feedback.Feedback
		if err := rows.Scan(
			&fb.ID,
			&fb.ProjectID,
			&fb.UserName,
			&fb.UserEmail,
			&fb.Message,
			&fb.Rating,
			&fb.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("database scan error during feedback list: %w", err)
		}
		feedbacks = append(feedbacks, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error on list feedbacks: %w", err)
	}
	return feedbacks, nil
}
