package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/makkenzo/feedbackhub-api/internal/domain/feedback"
	"github.com/makkenzo/feedbackhub-api/internal/domain/project"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	projectCols  = []string{"id", "name", "description", "url", "user_id", "is_active", "created_at"}
	feedbackCols = []string{"id", "project_id", "user_name", "user_email", "message", "rating", "created_at"}
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestProjectRepository_FindByIDWithFeedbacks(t *testing.T) {
	mock := newMock(t)
	repo := NewProjectRepository(mock, zap.NewNop())
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, name, description, url, user_id, is_active, created_at FROM projects WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(projectCols).
			AddRow(int64(7), "Landing", "Marketing site", "https://example.com", "user_1", true, created))
	mock.ExpectQuery(`FROM feedbacks\s+WHERE project_id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(feedbackCols).
			AddRow(int64(2), int64(7), "Bob", "bob@example.com", "Nice", 4, created).
			AddRow(int64(1), int64(7), "Ann", "ann@example.com", "Slow", 2, created))

	p, err := repo.FindByIDWithFeedbacks(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "Landing", p.Name)
	assert.Equal(t, "user_1", p.OwnerID)
	assert.True(t, p.IsActive)
	require.Len(t, p.Feedbacks, 2)
	assert.Equal(t, feedback.Feedback{
		ID: 2, ProjectID: 7, UserName: "Bob", UserEmail: "bob@example.com", Message: "Nice", Rating: 4, CreatedAt: created,
	}, p.Feedbacks[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_FindByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProjectRepository(mock, zap.NewNop())

	mock.ExpectQuery(`FROM projects WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByIDWithFeedbacks(context.Background(), 404)
	assert.ErrorIs(t, err, project.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_FindByID_DBError(t *testing.T) {
	mock := newMock(t)
	repo := NewProjectRepository(mock, zap.NewNop())

	mock.ExpectQuery(`FROM projects WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnError(errors.New("db down"))

	_, err := repo.FindByID(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, project.ErrNotFound)
	assert.Contains(t, err.Error(), "db down")
}

func TestProjectRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewProjectRepository(mock, zap.NewNop())

	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs("Docs", "Docs site", "https://docs.example.com", "user_1", true).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	id, err := repo.Create(context.Background(), &project.Project{
		Name: "Docs", Description: "Docs site", URL: "https://docs.example.com", OwnerID: "user_1", IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CreateWithinLimit(t *testing.T) {
	mock := newMock(t)
	repo := NewProjectRepository(mock, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs("user_1").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`INSERT INTO projects .* SELECT .* WHERE \(SELECT COUNT\(\*\) FROM projects`).
		WithArgs("Docs", "", "https://docs.example.com", "user_1", true, int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(12)))
	mock.ExpectCommit()

	id, err := repo.CreateWithinLimit(context.Background(), &project.Project{
		Name: "Docs", URL: "https://docs.example.com", OwnerID: "user_1", IsActive: true,
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CreateWithinLimit_LimitReached(t *testing.T) {
	mock := newMock(t)
	repo := NewProjectRepository(mock, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs("user_1").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs("Docs", "", "https://docs.example.com", "user_1", true, int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.CreateWithinLimit(context.Background(), &project.Project{
		Name: "Docs", URL: "https://docs.example.com", OwnerID: "user_1", IsActive: true,
	}, 3)
	assert.ErrorIs(t, err, project.ErrLimitReached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CreateWithinLimit_LockFailure(t *testing.T) {
	mock := newMock(t)
	repo := NewProjectRepository(mock, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs("user_1").
		WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	_, err := repo.CreateWithinLimit(context.Background(), &project.Project{OwnerID: "user_1", IsActive: true}, 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, project.ErrLimitReached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_SetActive(t *testing.T) {
	mock := newMock(t)
	repo := NewProjectRepository(mock, zap.NewNop())

	mock.ExpectExec(`UPDATE projects SET is_active = \$1 WHERE id = \$2`).
		WithArgs(false, int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE projects SET is_active = \$1 WHERE id = \$2`).
		WithArgs(false, int64(6)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.SetActive(context.Background(), 5, false))
	assert.ErrorIs(t, repo.SetActive(context.Background(), 6, false), project.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_Create_MissingProject(t *testing.T) {
	mock := newMock(t)
	repo := NewFeedbackRepository(mock, zap.NewNop())

	mock.ExpectQuery(`INSERT INTO feedbacks`).
		WithArgs(int64(9), "Ann", "ann@example.com", "Hi", 5).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})

	_, err := repo.Create(context.Background(), &feedback.Feedback{
		ProjectID: 9, UserName: "Ann", UserEmail: "ann@example.com", Message: "Hi", Rating: 5,
	})
	assert.ErrorIs(t, err, project.ErrNotFound)
}
