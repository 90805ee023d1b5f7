package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pollwise/api/internal/core/domain"
	"github.com/pollwise/api/internal/core/ports"
)

const uniqueViolation = "23505"

type responseRepository struct {
	db *sql.DB
}

func NewResponseRepository(db *sql.DB) ports.ResponseRepository {
	return &responseRepository{
		db: db,
	}
}

// Save inserts the response and bumps the poll's responses_count in one
// transaction, so the stored counter always matches the number of response
// rows. The partial unique index turns a duplicate identity into
// domain.ErrAlreadyResponded.
func (r *responseRepository) Save(ctx context.Context, response *domain.Response) error {
	answers, err := json.Marshal(response.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO responses (id, poll_id, answers, user_id, user_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, query,
		response.ID, response.PollID, answers,
		response.UserID, response.UserEmail, response.Timestamp,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrAlreadyResponded
		}
		return fmt.Errorf("failed to insert response: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE polls SET responses_count = responses_count + 1 WHERE id = $1`,
		response.PollID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment responses count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *responseRepository) GetByUser(ctx context.Context, pollID, userID uuid.UUID) (*domain.Response, error) {
	query := `
		SELECT id, poll_id, answers, user_id, user_email, created_at
		FROM responses
		WHERE poll_id = $1 AND user_id = $2
	`
	response, err := scanResponse(r.db.QueryRowContext(ctx, query, pollID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return response, nil
}

func (r *responseRepository) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Response, error) {
	query := `
		SELECT id, poll_id, answers, user_id, user_email, created_at
		FROM responses
		WHERE poll_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var responses []*domain.Response
	for rows.Next() {
		response, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, response)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating responses: %w", err)
	}
	return responses, nil
}

func scanResponse(row rowScanner) (*domain.Response, error) {
	var response domain.Response
	var answers []byte

	err := row.Scan(
		&response.ID, &response.PollID, &answers,
		&response.UserID, &response.UserEmail, &response.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(answers, &response.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	return &response, nil
}
