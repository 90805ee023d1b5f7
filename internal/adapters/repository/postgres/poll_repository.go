package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pollwise/api/internal/core/domain"
	"github.com/pollwise/api/internal/core/ports"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

const pollColumns = `
	id, title, questions, design_settings, time_settings,
	is_anonymous, require_login, created_by, created_at, responses_count
`

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	questions, err := json.Marshal(poll.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}
	design, err := json.Marshal(poll.Design)
	if err != nil {
		return fmt.Errorf("failed to marshal design settings: %w", err)
	}
	timeSettings, err := json.Marshal(poll.Time)
	if err != nil {
		return fmt.Errorf("failed to marshal time settings: %w", err)
	}

	query := `
		INSERT INTO polls (id, title, questions, design_settings, time_settings,
			is_anonymous, require_login, created_by, created_at, responses_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.ExecContext(ctx, query,
		poll.ID, poll.Title, questions, design, timeSettings,
		poll.Settings.IsAnonymous, poll.Settings.RequireLogin,
		poll.CreatedBy, poll.CreatedAt, poll.ResponsesCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls WHERE id = $1`

	poll, err := scanPoll(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	return poll, nil
}

func (r *pollRepository) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all polls: %w", err)
	}
	defer rows.Close()

	return scanPolls(rows)
}

func (r *pollRepository) List(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	query := `
		SELECT ` + pollColumns + `
		FROM polls
		ORDER BY responses_count DESC, created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	return scanPolls(rows)
}

func (r *pollRepository) Search(ctx context.Context, limit, offset int, q string) ([]*domain.Poll, error) {
	query := `
		SELECT ` + pollColumns + `
		FROM polls
		WHERE title ILIKE $1
		ORDER BY responses_count DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, "%"+q+"%", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search polls: %w", err)
	}
	defer rows.Close()

	return scanPolls(rows)
}

func (r *pollRepository) ListByCreator(ctx context.Context, creator uuid.UUID) ([]*domain.Poll, error) {
	query := `
		SELECT ` + pollColumns + `
		FROM polls
		WHERE created_by = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, creator)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls by creator: %w", err)
	}
	defer rows.Close()

	return scanPolls(rows)
}

// Delete removes the poll row; the responses sub-collection goes with it via
// ON DELETE CASCADE. A later fetch of either reports not-found.
func (r *pollRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if affected == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (*domain.Poll, error) {
	var poll domain.Poll
	var questions, design, timeSettings []byte

	err := row.Scan(
		&poll.ID, &poll.Title, &questions, &design, &timeSettings,
		&poll.Settings.IsAnonymous, &poll.Settings.RequireLogin,
		&poll.CreatedBy, &poll.CreatedAt, &poll.ResponsesCount,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(questions, &poll.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(design, &poll.Design); err != nil {
		return nil, fmt.Errorf("failed to unmarshal design settings: %w", err)
	}
	if err := json.Unmarshal(timeSettings, &poll.Time); err != nil {
		return nil, fmt.Errorf("failed to unmarshal time settings: %w", err)
	}

	return &poll, nil
}

func scanPolls(rows *sql.Rows) ([]*domain.Poll, error) {
	var polls []*domain.Poll
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return polls, nil
}
