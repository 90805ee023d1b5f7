package firestore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/pollwise/api/internal/core/domain"
	"github.com/pollwise/api/internal/core/ports"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// pollDoc mirrors the document layout of the original store: camelCase field
// names, settings nested under their own keys.
type pollDoc struct {
	Title          string                `firestore:"title"`
	Questions      []questionDoc         `firestore:"questions"`
	DesignSettings domain.DesignSettings `firestore:"designSettings"`
	TimeSettings   domain.TimeSettings   `firestore:"timeSettings"`
	PollSettings   pollSettingsDoc       `firestore:"pollSettings"`
	CreatedBy      string                `firestore:"createdBy"`
	CreatedAt      time.Time             `firestore:"createdAt"`
	ResponsesCount int64                 `firestore:"responsesCount"`
}

type questionDoc struct {
	ID      int                `firestore:"id"`
	Text    string             `firestore:"text"`
	Type    string             `firestore:"type"`
	Options []string           `firestore:"options"`
	Scale   *domain.ScaleRange `firestore:"scaleRange,omitempty"`
}

type pollSettingsDoc struct {
	IsAnonymous  bool `firestore:"isAnonymous"`
	RequireLogin bool `firestore:"requireLogin"`
}

type pollRepository struct {
	client *firestore.Client
}

func NewPollRepository(client *firestore.Client) ports.PollRepository {
	return &pollRepository{
		client: client,
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	ref := r.client.Collection(pollsCollection).Doc(poll.ID.String())
	if _, err := ref.Create(ctx, toPollDoc(poll)); err != nil {
		return fmt.Errorf("failed to create poll document: %w", err)
	}
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	snap, err := r.client.Collection(pollsCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll document: %w", err)
	}
	return fromPollSnap(snap)
}

func (r *pollRepository) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	iter := r.client.Collection(pollsCollection).Documents(ctx)
	return collectPolls(iter)
}

func (r *pollRepository) List(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	iter := r.client.Collection(pollsCollection).
		OrderBy("responsesCount", firestore.Desc).
		OrderBy("createdAt", firestore.Desc).
		Offset(offset).
		Limit(limit).
		Documents(ctx)
	return collectPolls(iter)
}

// Search filters titles client-side: the store has no substring queries, and
// the browse page never outgrew the document count where a scan hurts.
func (r *pollRepository) Search(ctx context.Context, limit, offset int, query string) ([]*domain.Poll, error) {
	polls, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matched := polls[:0]
	for _, poll := range polls {
		if strings.Contains(strings.ToLower(poll.Title), needle) {
			matched = append(matched, poll)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].ResponsesCount != matched[j].ResponsesCount {
			return matched[i].ResponsesCount > matched[j].ResponsesCount
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *pollRepository) ListByCreator(ctx context.Context, creator uuid.UUID) ([]*domain.Poll, error) {
	iter := r.client.Collection(pollsCollection).
		Where("createdBy", "==", creator.String()).
		Documents(ctx)
	return collectPolls(iter)
}

// Delete removes the poll document and every document in its responses
// sub-collection in one batch.
func (r *pollRepository) Delete(ctx context.Context, id uuid.UUID) error {
	pollRef := r.client.Collection(pollsCollection).Doc(id.String())

	if _, err := pollRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrPollNotFound
		}
		return fmt.Errorf("failed to get poll document: %w", err)
	}

	batch := r.client.Batch()
	iter := pollRef.Collection(responsesCollection).Documents(ctx)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to iterate responses: %w", err)
		}
		batch.Delete(snap.Ref)
	}
	batch.Delete(pollRef)

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	return nil
}

func collectPolls(iter *firestore.DocumentIterator) ([]*domain.Poll, error) {
	defer iter.Stop()

	var polls []*domain.Poll
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate polls: %w", err)
		}
		poll, err := fromPollSnap(snap)
		if err != nil {
			return nil, err
		}
		polls = append(polls, poll)
	}
	return polls, nil
}

func toPollDoc(poll *domain.Poll) pollDoc {
	questions := make([]questionDoc, 0, len(poll.Questions))
	for _, q := range poll.Questions {
		questions = append(questions, questionDoc{
			ID:      q.ID,
			Text:    q.Text,
			Type:    string(q.Type),
			Options: q.Options,
			Scale:   q.Scale,
		})
	}
	return pollDoc{
		Title:          poll.Title,
		Questions:      questions,
		DesignSettings: poll.Design,
		TimeSettings:   poll.Time,
		PollSettings: pollSettingsDoc{
			IsAnonymous:  poll.Settings.IsAnonymous,
			RequireLogin: poll.Settings.RequireLogin,
		},
		CreatedBy:      poll.CreatedBy.String(),
		CreatedAt:      poll.CreatedAt,
		ResponsesCount: poll.ResponsesCount,
	}
}

func fromPollSnap(snap *firestore.DocumentSnapshot) (*domain.Poll, error) {
	var doc pollDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode poll document: %w", err)
	}

	id, err := uuid.Parse(snap.Ref.ID)
	if err != nil {
		return nil, fmt.Errorf("malformed poll document id %q: %w", snap.Ref.ID, err)
	}
	createdBy, err := uuid.Parse(doc.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("malformed poll creator id %q: %w", doc.CreatedBy, err)
	}

	questions := make([]domain.Question, 0, len(doc.Questions))
	for _, q := range doc.Questions {
		questions = append(questions, domain.Question{
			ID:      q.ID,
			Text:    q.Text,
			Type:    domain.QuestionType(q.Type),
			Options: q.Options,
			Scale:   q.Scale,
		})
	}

	return &domain.Poll{
		ID:        id,
		Title:     doc.Title,
		Questions: questions,
		Design:    doc.DesignSettings,
		Time:      doc.TimeSettings,
		Settings: domain.PollSettings{
			IsAnonymous:  doc.PollSettings.IsAnonymous,
			RequireLogin: doc.PollSettings.RequireLogin,
		},
		CreatedBy:      createdBy,
		CreatedAt:      doc.CreatedAt,
		ResponsesCount: doc.ResponsesCount,
	}, nil
}
