package firestore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/pollwise/api/internal/core/domain"
	"github.com/pollwise/api/internal/core/ports"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// answerDoc flattens a typed answer for storage. Map keys in the store must
// be strings, so option indexes are stored as decimal strings.
type answerDoc struct {
	Text     *string         `firestore:"text,omitempty"`
	Scale    *int            `firestore:"scale,omitempty"`
	Selected map[string]bool `firestore:"selected,omitempty"`
}

type responseDoc struct {
	Answers   map[string]answerDoc `firestore:"answers"`
	UserID    *string              `firestore:"userId"`
	UserEmail *string              `firestore:"userEmail"`
	Timestamp time.Time            `firestore:"timestamp"`
}

type responseRepository struct {
	client *firestore.Client
}

func NewResponseRepository(client *firestore.Client) ports.ResponseRepository {
	return &responseRepository{
		client: client,
	}
}

// Save creates the response document and increments the poll's counter in a
// single transaction. Named responses use a deterministic document ID, so a
// second write for the same identity fails instead of duplicating.
func (r *responseRepository) Save(ctx context.Context, response *domain.Response) error {
	pollRef := r.client.Collection(pollsCollection).Doc(response.PollID.String())
	respRef := pollRef.Collection(responsesCollection).Doc(response.ID.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(pollRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return domain.ErrPollNotFound
			}
			return err
		}

		if _, err := tx.Get(respRef); err == nil {
			return domain.ErrAlreadyResponded
		} else if status.Code(err) != codes.NotFound {
			return err
		}

		if err := tx.Create(respRef, toResponseDoc(response)); err != nil {
			return err
		}
		return tx.Update(pollRef, []firestore.Update{
			{Path: "responsesCount", Value: firestore.Increment(1)},
		})
	})
	if err == domain.ErrAlreadyResponded || err == domain.ErrPollNotFound {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}
	return nil
}

func (r *responseRepository) GetByUser(ctx context.Context, pollID, userID uuid.UUID) (*domain.Response, error) {
	iter := r.client.Collection(pollsCollection).Doc(pollID.String()).
		Collection(responsesCollection).
		Where("userId", "==", userID.String()).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	return fromResponseSnap(pollID, snap)
}

func (r *responseRepository) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Response, error) {
	iter := r.client.Collection(pollsCollection).Doc(pollID.String()).
		Collection(responsesCollection).
		OrderBy("timestamp", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var responses []*domain.Response
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate responses: %w", err)
		}
		response, err := fromResponseSnap(pollID, snap)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, nil
}

func toResponseDoc(response *domain.Response) responseDoc {
	answers := make(map[string]answerDoc, len(response.Answers))
	for qid, a := range response.Answers {
		doc := answerDoc{Text: a.Text, Scale: a.Scale}
		if a.Selected != nil {
			doc.Selected = make(map[string]bool, len(a.Selected))
			for idx, v := range a.Selected {
				doc.Selected[strconv.Itoa(idx)] = v
			}
		}
		answers[strconv.Itoa(qid)] = doc
	}

	doc := responseDoc{
		Answers:   answers,
		Timestamp: response.Timestamp,
	}
	if response.UserID != nil {
		id := response.UserID.String()
		doc.UserID = &id
	}
	doc.UserEmail = response.UserEmail
	return doc
}

func fromResponseSnap(pollID uuid.UUID, snap *firestore.DocumentSnapshot) (*domain.Response, error) {
	var doc responseDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode response document: %w", err)
	}

	id, err := uuid.Parse(snap.Ref.ID)
	if err != nil {
		return nil, fmt.Errorf("malformed response document id %q: %w", snap.Ref.ID, err)
	}

	answers := make(map[int]domain.Answer, len(doc.Answers))
	for key, a := range doc.Answers {
		qid, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("malformed answer key %q: %w", key, err)
		}
		answer := domain.Answer{Text: a.Text, Scale: a.Scale}
		if a.Selected != nil {
			answer.Selected = make(map[int]bool, len(a.Selected))
			for idxKey, v := range a.Selected {
				idx, err := strconv.Atoi(idxKey)
				if err != nil {
					return nil, fmt.Errorf("malformed option index %q: %w", idxKey, err)
				}
				answer.Selected[idx] = v
			}
		}
		answers[qid] = answer
	}

	response := &domain.Response{
		ID:        id,
		PollID:    pollID,
		Answers:   answers,
		UserEmail: doc.UserEmail,
		Timestamp: doc.Timestamp,
	}
	if doc.UserID != nil {
		userID, err := uuid.Parse(*doc.UserID)
		if err != nil {
			return nil, fmt.Errorf("malformed response user id %q: %w", *doc.UserID, err)
		}
		response.UserID = &userID
	}
	return response, nil
}
