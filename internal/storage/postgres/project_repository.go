package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/makkenzo/feedbackhub-api/internal/domain/project"
	"go.uber.org/zap"
)

const projectColumns = `id, name, description, url, user_id, is_active, created_at`

type ProjectRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewProjectRepository(db DBTX, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger.Named("ProjectRepository"),
	}
}

var _ project.Repository = (*ProjectRepository)(nil)

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) (int64, error) {
	query := `
        INSERT INTO projects (name, description, url, user_id, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	var insertedID int64
	err := r.db.QueryRow(ctx, query,
		p.Name,
		p.Description,
		p.URL,
		p.OwnerID,
		p.IsActive,
	).Scan(&insertedID)
	if err != nil {
		r.logger.Error("Failed to create project in database", zap.String("owner", p.OwnerID), zap.Error(err))
		return 0, fmt.Errorf("database error on create project: %w", err)
	}

	r.logger.Info("Project created successfully", zap.Int64("id", insertedID), zap.String("owner", p.OwnerID))
	return insertedID, nil
}

func (r *ProjectRepository) CreateWithinLimit(ctx context.Context, p *project.Project, limit int) (int64, error) {
	// The per-owner advisory lock serializes concurrent creates; each
	// statement after it sees rows committed by the previous holder.
	lockQuery := `SELECT pg_advisory_xact_lock(hashtext($1))`
	insertQuery := `
        INSERT INTO projects (name, description, url, user_id, is_active)
        SELECT $1::text, $2::text, $3::text, $4::varchar, $5::boolean
        WHERE (SELECT COUNT(*) FROM projects WHERE user_id = $4::varchar AND is_active) < $6::bigint
        RETURNING id
    `

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.String("owner", p.OwnerID), zap.Error(err))
		return 0, fmt.Errorf("database error on begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, lockQuery, p.OwnerID); err != nil {
		r.logger.Error("Failed to lock project owner", zap.String("owner", p.OwnerID), zap.Error(err))
		return 0, fmt.Errorf("database error on project owner lock: %w", err)
	}

	var insertedID int64
	err = tx.QueryRow(ctx, insertQuery,
		p.Name,
		p.Description,
		p.URL,
		p.OwnerID,
		p.IsActive,
		int64(limit),
	).Scan(&insertedID)
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Info("Active project limit reached", zap.String("owner", p.OwnerID), zap.Int("limit", limit))
		return 0, project.ErrLimitReached
	}
	if err != nil {
		r.logger.Error("Failed to create project in database", zap.String("owner", p.OwnerID), zap.Error(err))
		return 0, fmt.Errorf("database error on create project: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit project creation", zap.String("owner", p.OwnerID), zap.Error(err))
		return 0, fmt.Errorf("database error on commit: %w", err)
	}

	r.logger.Info("Project created successfully", zap.Int64("id", insertedID), zap.String("owner", p.OwnerID))
	return insertedID, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrNotFound
		}
		r.logger.Error("Failed to scan project row", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) FindByIDWithFeedbacks(ctx context.Context, id int64) (*project.Project, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	feedbacks, err := listFeedbacks(ctx, r.db, id)
	if err != nil {
		r.logger.Error("Failed to load project feedbacks", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	p.Feedbacks = feedbacks
	return p, nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("Failed to query projects by owner", zap.String("owner", ownerID), zap.Error(err))
		return nil, fmt.Errorf("database error on list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*project.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			r.logger.Error("Failed to scan project row during list", zap.Error(err))
			return nil, fmt.Errorf("database scan error during list: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating project rows", zap.Error(err))
		return nil, fmt.Errorf("database iteration error on list projects: %w", err)
	}

	return projects, nil
}

func (r *ProjectRepository) ListOwnersWithActiveOver(ctx context.Context, limit int) ([]string, error) {
	query := `
        SELECT user_id
        FROM projects
        WHERE is_active
        GROUP BY user_id
        HAVING COUNT(*) > $1
        ORDER BY user_id
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to query owners over active limit", zap.Int("limit", limit), zap.Error(err))
		return nil, fmt.Errorf("database error on list owners: %w", err)
	}
	defer rows.Close()

	owners := make([]string, 0)
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("database scan error during owner list: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error on list owners: %w", err)
	}
	return owners, nil
}

func (r *ProjectRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE projects SET is_active = $1 WHERE id = $2`

	cmdTag, err := r.db.Exec(ctx, query, active, id)
	if err != nil {
		r.logger.Error("Failed to update project active flag", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("database error on update project: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update project, but no rows were affected", zap.Int64("id", id))
		return project.ErrNotFound
	}

	r.logger.Info("Project active flag updated", zap.Int64("id", id), zap.Bool("active", active))
	return nil
}

func scanProject(row pgx.Row) (*project.Project, error) {
	var p project.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.URL,
		&p.OwnerID,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
