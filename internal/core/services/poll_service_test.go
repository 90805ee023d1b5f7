package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollwise/api/internal/core/domain"
	"github.com/pollwise/api/internal/core/ports"
)

func validPublishInput() ports.PublishPollInput {
	return ports.PublishPollInput{
		Title: "Team lunch",
		Questions: []ports.QuestionInput{
			{Text: "Where to?", Type: domain.QuestionSingle, Options: []string{"Pizza", "Sushi"}},
			{Text: "Anything else?", Type: domain.QuestionText},
			{Text: "How hungry?", Type: domain.QuestionScale, Scale: &domain.ScaleRange{Min: 1, Max: 5}},
		},
		CreatedBy: uuid.New(),
	}
}

func TestPublishPoll(t *testing.T) {
	repo := newFakePollRepo()
	svc := NewPollService(repo)

	input := validPublishInput()
	poll, err := svc.Publish(context.Background(), input)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, poll.ID)
	assert.Equal(t, "Team lunch", poll.Title)
	assert.Equal(t, int64(0), poll.ResponsesCount)
	assert.Equal(t, input.CreatedBy, poll.CreatedBy)
	assert.WithinDuration(t, time.Now().UTC(), poll.CreatedAt, time.Minute)

	// Question IDs are assigned sequentially at publish time.
	require.Len(t, poll.Questions, 3)
	for i, q := range poll.Questions {
		assert.Equal(t, i+1, q.ID)
	}
	require.NotNil(t, poll.Questions[2].Scale)
	assert.Equal(t, 1, poll.Questions[2].Scale.Min)
	assert.Equal(t, 5, poll.Questions[2].Scale.Max)

	stored, err := repo.GetByID(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Equal(t, poll.Title, stored.Title)
}

func TestPublishPollValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ports.PublishPollInput)
		reason string
	}{
		{
			name:   "blank title",
			mutate: func(in *ports.PublishPollInput) { in.Title = "   " },
			reason: "title is required",
		},
		{
			name:   "placeholder title",
			mutate: func(in *ports.PublishPollInput) { in.Title = domain.DefaultTitle },
			reason: "title is still the default placeholder",
		},
		{
			name:   "no questions",
			mutate: func(in *ports.PublishPollInput) { in.Questions = nil },
			reason: "at least one question is required",
		},
		{
			name:   "blank question text",
			mutate: func(in *ports.PublishPollInput) { in.Questions[1].Text = "  " },
			reason: "question 2: text is required",
		},
		{
			name:   "unknown question type",
			mutate: func(in *ports.PublishPollInput) { in.Questions[0].Type = "ranked" },
			reason: `question 1: unknown question type "ranked"`,
		},
		{
			name:   "single option",
			mutate: func(in *ports.PublishPollInput) { in.Questions[0].Options = []string{"Pizza"} },
			reason: "question 1: at least two options are required",
		},
		{
			name:   "blank option",
			mutate: func(in *ports.PublishPollInput) { in.Questions[0].Options = []string{"Pizza", "  ", "Sushi"} },
			reason: "question 1: options must not be blank",
		},
		{
			name:   "duplicate option after trim and case fold",
			mutate: func(in *ports.PublishPollInput) { in.Questions[0].Options = []string{"Pizza", " pizza ", "Sushi"} },
			reason: `question 1: duplicate option "pizza"`,
		},
		{
			name:   "missing scale range",
			mutate: func(in *ports.PublishPollInput) { in.Questions[2].Scale = nil },
			reason: "question 3: scale range is required",
		},
		{
			name:   "inverted scale range",
			mutate: func(in *ports.PublishPollInput) { in.Questions[2].Scale = &domain.ScaleRange{Min: 5, Max: 3} },
			reason: "question 3: scale minimum must be below maximum",
		},
		{
			name:   "degenerate scale range",
			mutate: func(in *ports.PublishPollInput) { in.Questions[2].Scale = &domain.ScaleRange{Min: 4, Max: 4} },
			reason: "question 3: scale minimum must be below maximum",
		},
		{
			name: "login required on an anonymous poll",
			mutate: func(in *ports.PublishPollInput) {
				in.Settings = domain.PollSettings{RequireLogin: true, IsAnonymous: true}
			},
			reason: "a poll cannot both require login and be anonymous",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakePollRepo()
			svc := NewPollService(repo)

			input := validPublishInput()
			tt.mutate(&input)

			_, err := svc.Publish(context.Background(), input)
			vErr, ok := domain.AsValidation(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			assert.Contains(t, vErr.Reasons, tt.reason)

			// A rejected publish must not write anything.
			assert.Empty(t, repo.polls)
		})
	}
}

func TestPublishPollCollectsAllReasons(t *testing.T) {
	svc := NewPollService(newFakePollRepo())

	input := validPublishInput()
	input.Title = ""
	input.Questions[0].Options = []string{"Pizza"}
	input.Questions[2].Scale = &domain.ScaleRange{Min: 9, Max: 1}

	_, err := svc.Publish(context.Background(), input)
	vErr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Len(t, vErr.Reasons, 3)
}

func TestGetPollInvalidID(t *testing.T) {
	svc := NewPollService(newFakePollRepo())

	_, err := svc.GetPoll(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidPollID)
}

func TestGetPollNotFound(t *testing.T) {
	svc := NewPollService(newFakePollRepo())

	_, err := svc.GetPoll(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestListPollsPagination(t *testing.T) {
	repo := newFakePollRepo()
	svc := NewPollService(repo)

	_, err := svc.ListPolls(context.Background(), ports.ListPollsInput{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, 20, repo.lastLimit)
	assert.Equal(t, 40, repo.lastOffset)

	// Page values below 1 fall back to the first page.
	_, err = svc.ListPolls(context.Background(), ports.ListPollsInput{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.lastOffset)
}

func TestListPollsSearch(t *testing.T) {
	repo := newFakePollRepo()
	svc := NewPollService(repo)

	for _, title := range []string{"Team lunch", "Team offsite", "Budget review"} {
		input := validPublishInput()
		input.Title = title
		_, err := svc.Publish(context.Background(), input)
		require.NoError(t, err)
	}

	polls, err := svc.ListPolls(context.Background(), ports.ListPollsInput{Page: 1, Query: "  team  "})
	require.NoError(t, err)
	assert.Equal(t, "team", repo.lastQuery)
	assert.Len(t, polls, 2)
}

func TestDeletePollAuthorization(t *testing.T) {
	repo := newFakePollRepo()
	svc := NewPollService(repo)

	input := validPublishInput()
	poll, err := svc.Publish(context.Background(), input)
	require.NoError(t, err)

	stranger := domain.Identity{UserID: uuid.New(), Role: domain.RoleUser}
	err = svc.DeletePoll(context.Background(), poll.ID.String(), stranger)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := domain.Identity{UserID: uuid.New(), Role: domain.RoleAdmin}
	require.NoError(t, svc.DeletePoll(context.Background(), poll.ID.String(), admin))

	// Owner deletes their own poll.
	poll, err = svc.Publish(context.Background(), input)
	require.NoError(t, err)
	owner := domain.Identity{UserID: input.CreatedBy, Role: domain.RoleUser}
	require.NoError(t, svc.DeletePoll(context.Background(), poll.ID.String(), owner))

	err = svc.DeletePoll(context.Background(), "nope", owner)
	assert.ErrorIs(t, err, domain.ErrInvalidPollID)
}
