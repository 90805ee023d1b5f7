package ports

import (
	"context"

	"github.com/pollwise/api/internal/core/domain"
)

type ResultsService interface {
	// Tabulate fetches the poll and its full response set and aggregates
	// every question.
	Tabulate(ctx context.Context, pollID string) (*domain.PollResults, error)
	// Export renders the tabulations as delimited text. Two exports over
	// unchanged data produce identical bytes.
	Export(ctx context.Context, pollID string) ([]byte, error)
	// ListResponses returns the detail rows, narrowed by the filter. The
	// filter never affects tabulations.
	ListResponses(ctx context.Context, pollID string, filter domain.ResponseFilter) ([]*domain.Response, error)
}
