package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollwise/api/internal/core/domain"
	"github.com/pollwise/api/internal/core/ports"
)

func seedResultsPoll(t *testing.T, pollRepo *fakePollRepo) *domain.Poll {
	t.Helper()

	poll, err := NewPollService(pollRepo).Publish(context.Background(), ports.PublishPollInput{
		Title: "Release survey",
		Questions: []ports.QuestionInput{
			{Text: "Favorite feature", Type: domain.QuestionSingle, Options: []string{"Search", "Export", "Themes"}},
			{Text: "Satisfaction", Type: domain.QuestionScale, Scale: &domain.ScaleRange{Min: 1, Max: 3}},
			{Text: "Comments", Type: domain.QuestionText},
		},
	})
	require.NoError(t, err)
	return poll
}

// storeResponse writes directly through the repository so tests can shape
// response sets, blank text included, without going through submit validation.
func storeResponse(t *testing.T, repo *fakeResponseRepo, poll *domain.Poll, answers map[int]domain.Answer, email string) {
	t.Helper()

	response := &domain.Response{
		ID:        uuid.New(),
		PollID:    poll.ID,
		Answers:   answers,
		Timestamp: time.Now().UTC(),
	}
	if email != "" {
		userID := uuid.New()
		response.UserID = &userID
		response.UserEmail = &email
	}
	require.NoError(t, repo.Save(context.Background(), response))
}

func TestTabulateChoiceCounts(t *testing.T) {
	pollRepo := newFakePollRepo()
	responseRepo := newFakeResponseRepo(pollRepo)
	svc := NewResultsService(pollRepo, responseRepo)
	poll := seedResultsPoll(t, pollRepo)

	// 10 responses: Search 5, Export 3, Themes 2.
	choices := []int{0, 0, 0, 0, 0, 1, 1, 1, 2, 2}
	for i, c := range choices {
		storeResponse(t, responseRepo, poll, map[int]domain.Answer{
			1: domain.SelectedAnswer(map[int]bool{c: true}),
			2: domain.ScaleAnswer(1 + i%3),
			3: domain.TextAnswer("fine"),
		}, "")
	}

	results, err := svc.Tabulate(context.Background(), poll.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 10, results.Total)
	require.Len(t, results.Tabulations, 3)

	choice := results.Tabulations[0]
	assert.Equal(t, []string{"Search", "Export", "Themes"}, choice.Options)
	assert.Equal(t, []int{5, 3, 2}, choice.Counts)
	assert.Equal(t, 50, choice.Percentage(choice.Counts[0]))
	assert.Equal(t, 30, choice.Percentage(choice.Counts[1]))
	assert.Equal(t, 20, choice.Percentage(choice.Counts[2]))
}

func TestTabulatePercentageAgainstFullResponseSet(t *testing.T) {
	pollRepo := newFakePollRepo()
	responseRepo := newFakeResponseRepo(pollRepo)
	svc := NewResultsService(pollRepo, responseRepo)
	poll := seedResultsPoll(t, pollRepo)

	// Two of three respondents skipped the choice question entirely. Its
	// percentage is still computed over all three responses.
	storeResponse(t, responseRepo, poll, map[int]domain.Answer{1: domain.SelectedAnswer(map[int]bool{0: true})}, "")
	storeResponse(t, responseRepo, poll, map[int]domain.Answer{2: domain.ScaleAnswer(2)}, "")
	storeResponse(t, responseRepo, poll, map[int]domain.Answer{3: domain.TextAnswer("ok")}, "")

	results, err := svc.Tabulate(context.Background(), poll.ID.String())
	require.NoError(t, err)

	choice := results.Tabulations[0]
	assert.Equal(t, []int{1, 0, 0}, choice.Counts)
	assert.Equal(t, 33, choice.Percentage(1))
	assert.Equal(t, 67, choice.Percentage(2))
	assert.Equal(t, 0, choice.Percentage(0))
}

func TestTabulateScaleHistogram(t *testing.T) {
	pollRepo := newFakePollRepo()
	responseRepo := newFakeResponseRepo(pollRepo)
	svc := NewResultsService(pollRepo, responseRepo)
	poll := seedResultsPoll(t, pollRepo)

	for _, v := range []int{1, 1, 3, 3, 3} {
		storeResponse(t, responseRepo, poll, map[int]domain.Answer{2: domain.ScaleAnswer(v)}, "")
	}
	// An out-of-range value lands in no bucket.
	storeResponse(t, responseRepo, poll, map[int]domain.Answer{2: domain.ScaleAnswer(9)}, "")

	results, err := svc.Tabulate(context.Background(), poll.ID.String())
	require.NoError(t, err)

	scale := results.Tabulations[1]
	// Every integer in the range gets a bucket, zero counts included.
	assert.Equal(t, []domain.ScaleBucket{
		{Value: 1, Count: 2},
		{Value: 2, Count: 0},
		{Value: 3, Count: 3},
	}, scale.Histogram)
}

func TestTabulateTextSkipsBlankAnswers(t *testing.T) {
	pollRepo := newFakePollRepo()
	responseRepo := newFakeResponseRepo(pollRepo)
	svc := NewResultsService(pollRepo, responseRepo)
	poll := seedResultsPoll(t, pollRepo)

	storeResponse(t, responseRepo, poll, map[int]domain.Answer{3: domain.TextAnswer("great release")}, "kim@example.com")
	storeResponse(t, responseRepo, poll, map[int]domain.Answer{3: domain.TextAnswer("   ")}, "")
	storeResponse(t, responseRepo, poll, map[int]domain.Answer{3: domain.TextAnswer("")}, "")
	storeResponse(t, responseRepo, poll, map[int]domain.Answer{2: domain.ScaleAnswer(2)}, "")

	results, err := svc.Tabulate(context.Background(), poll.ID.String())
	require.NoError(t, err)

	text := results.Tabulations[2]
	require.Len(t, text.Entries, 1)
	assert.Equal(t, "kim@example.com", text.Entries[0].Respondent)
	assert.Equal(t, "great release", text.Entries[0].Answer)
	// Blank answers are dropped from the listing but still count toward the
	// response total.
	assert.Equal(t, 4, results.Total)
}

func TestTabulateEmptyPoll(t *testing.T) {
	pollRepo := newFakePollRepo()
	svc := NewResultsService(pollRepo, newFakeResponseRepo(pollRepo))
	poll := seedResultsPoll(t, pollRepo)

	results, err := svc.Tabulate(context.Background(), poll.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, results.Total)

	choice := results.Tabulations[0]
	assert.Equal(t, []int{0, 0, 0}, choice.Counts)
	assert.Equal(t, 0, choice.Percentage(0))
	assert.NotNil(t, results.Tabulations[2].Entries)
	assert.Empty(t, results.Tabulations[2].Entries)
}

func TestExportLayout(t *testing.T) {
	pollRepo := newFakePollRepo()
	responseRepo := newFakeResponseRepo(pollRepo)
	svc := NewResultsService(pollRepo, responseRepo)
	poll := seedResultsPoll(t, pollRepo)

	storeResponse(t, responseRepo, poll, map[int]domain.Answer{
		1: domain.SelectedAnswer(map[int]bool{1: true}),
		2: domain.ScaleAnswer(3),
		3: domain.TextAnswer("ship it"),
	}, "kim@example.com")

	data, err := svc.Export(context.Background(), poll.ID.String())
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Poll", "Release survey"}, records[0])
	assert.Equal(t, "Created", records[1][0])
	assert.Equal(t, []string{"Total responses", "1"}, records[2])

	var sections [][]string
	for _, rec := range records {
		if len(rec) > 0 && strings.HasPrefix(rec[0], "Question ") {
			sections = append(sections, rec)
		}
	}
	require.Len(t, sections, 3)
	assert.Equal(t, []string{"Question 1", "Favorite feature", "single"}, sections[0])
	assert.Equal(t, []string{"Question 2", "Satisfaction", "scale"}, sections[1])
	assert.Equal(t, []string{"Question 3", "Comments", "text"}, sections[2])

	// Option rows carry count and percent.
	flat := string(data)
	assert.Contains(t, flat, "Export,1,100")
	assert.Contains(t, flat, "Search,0,0")
	assert.Contains(t, flat, "kim@example.com,ship it")
}

func TestExportIsDeterministic(t *testing.T) {
	pollRepo := newFakePollRepo()
	responseRepo := newFakeResponseRepo(pollRepo)
	svc := NewResultsService(pollRepo, responseRepo)
	poll := seedResultsPoll(t, pollRepo)

	for i := 0; i < 5; i++ {
		storeResponse(t, responseRepo, poll, map[int]domain.Answer{
			1: domain.SelectedAnswer(map[int]bool{i % 3: true}),
			2: domain.ScaleAnswer(1 + i%3),
			3: domain.TextAnswer("note"),
		}, "")
	}

	first, err := svc.Export(context.Background(), poll.ID.String())
	require.NoError(t, err)
	second, err := svc.Export(context.Background(), poll.ID.String())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListResponsesFilter(t *testing.T) {
	pollRepo := newFakePollRepo()
	responseRepo := newFakeResponseRepo(pollRepo)
	svc := NewResultsService(pollRepo, responseRepo)
	poll := seedResultsPoll(t, pollRepo)

	storeResponse(t, responseRepo, poll, map[int]domain.Answer{3: domain.TextAnswer("a")}, "kim@example.com")
	storeResponse(t, responseRepo, poll, map[int]domain.Answer{3: domain.TextAnswer("b")}, "lee@example.com")
	storeResponse(t, responseRepo, poll, map[int]domain.Answer{3: domain.TextAnswer("c")}, "")

	all, err := svc.ListResponses(context.Background(), poll.ID.String(), domain.FilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	named, err := svc.ListResponses(context.Background(), poll.ID.String(), domain.FilterNamed)
	require.NoError(t, err)
	assert.Len(t, named, 2)

	anonymous, err := svc.ListResponses(context.Background(), poll.ID.String(), domain.FilterAnonymous)
	require.NoError(t, err)
	assert.Len(t, anonymous, 1)

	// An empty filter defaults to all.
	defaulted, err := svc.ListResponses(context.Background(), poll.ID.String(), "")
	require.NoError(t, err)
	assert.Len(t, defaulted, 3)

	_, err = svc.ListResponses(context.Background(), poll.ID.String(), "strangers")
	_, ok := domain.AsValidation(err)
	assert.True(t, ok)
}
