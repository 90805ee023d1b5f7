package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pollwise/api/internal/core/domain"
)

// fakePollRepo is an in-memory PollRepository for service tests.
type fakePollRepo struct {
	polls map[uuid.UUID]*domain.Poll

	lastLimit  int
	lastOffset int
	lastQuery  string
}

func newFakePollRepo() *fakePollRepo {
	return &fakePollRepo{polls: make(map[uuid.UUID]*domain.Poll)}
}

func (r *fakePollRepo) Save(ctx context.Context, poll *domain.Poll) error {
	copied := *poll
	r.polls[poll.ID] = &copied
	return nil
}

func (r *fakePollRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	poll, ok := r.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	copied := *poll
	return &copied, nil
}

func (r *fakePollRepo) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	return r.sorted(), nil
}

func (r *fakePollRepo) List(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	r.lastLimit, r.lastOffset = limit, offset
	return page(r.sorted(), limit, offset), nil
}

func (r *fakePollRepo) Search(ctx context.Context, limit, offset int, query string) ([]*domain.Poll, error) {
	r.lastLimit, r.lastOffset, r.lastQuery = limit, offset, query
	var matched []*domain.Poll
	for _, p := range r.sorted() {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
			matched = append(matched, p)
		}
	}
	return page(matched, limit, offset), nil
}

func (r *fakePollRepo) ListByCreator(ctx context.Context, creator uuid.UUID) ([]*domain.Poll, error) {
	var owned []*domain.Poll
	for _, p := range r.sorted() {
		if p.CreatedBy == creator {
			owned = append(owned, p)
		}
	}
	return owned, nil
}

func (r *fakePollRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.polls[id]; !ok {
		return domain.ErrPollNotFound
	}
	delete(r.polls, id)
	return nil
}

func (r *fakePollRepo) sorted() []*domain.Poll {
	out := make([]*domain.Poll, 0, len(r.polls))
	for _, p := range r.polls {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ResponsesCount != out[j].ResponsesCount {
			return out[i].ResponsesCount > out[j].ResponsesCount
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func page(polls []*domain.Poll, limit, offset int) []*domain.Poll {
	if offset >= len(polls) {
		return nil
	}
	polls = polls[offset:]
	if limit < len(polls) {
		polls = polls[:limit]
	}
	return polls
}

// fakeResponseRepo mirrors the atomic save contract: the duplicate check and
// the counter increment happen in the same call.
type fakeResponseRepo struct {
	responses []*domain.Response
	polls     *fakePollRepo
}

func newFakeResponseRepo(polls *fakePollRepo) *fakeResponseRepo {
	return &fakeResponseRepo{polls: polls}
}

func (r *fakeResponseRepo) Save(ctx context.Context, response *domain.Response) error {
	for _, existing := range r.responses {
		if existing.ID == response.ID {
			return domain.ErrAlreadyResponded
		}
	}
	copied := *response
	r.responses = append(r.responses, &copied)
	if poll, ok := r.polls.polls[response.PollID]; ok {
		poll.ResponsesCount++
	}
	return nil
}

func (r *fakeResponseRepo) GetByUser(ctx context.Context, pollID, userID uuid.UUID) (*domain.Response, error) {
	for _, resp := range r.responses {
		if resp.PollID == pollID && resp.UserID != nil && *resp.UserID == userID {
			copied := *resp
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeResponseRepo) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Response, error) {
	var out []*domain.Response
	for _, resp := range r.responses {
		if resp.PollID == pollID {
			out = append(out, resp)
		}
	}
	return out, nil
}
