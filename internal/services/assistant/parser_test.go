package assistant_test

import (
	"context"
	"strings"
	"testing"

	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/models"
	"github.com/geniepay/geniepay/internal/services/assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Generate(ctx context.Context, messages []models.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func TestParse_AmbiguousWordShortCircuits(t *testing.T) {
	provider := new(MockProvider)
	parser := assistant.NewParser(provider, sl.DiscardLogger())

	for _, word := range []string{"pause", "Resume", "DELETE", "cancel", "stop", "activate", "unpause", " restart "} {
		intent, err := parser.Parse(context.Background(), word, nil, "None")
		require.NoError(t, err, word)
		assert.Equal(t, models.ActionClarification, intent.Action, word)
		assert.Contains(t, intent.Response, "Which subscription", word)
	}
	provider.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestParse_StripsCodeFence(t *testing.T) {
	provider := new(MockProvider)
	parser := assistant.NewParser(provider, sl.DiscardLogger())

	provider.On("Generate", mock.Anything, mock.Anything).
		Return("```json\n{\"action\":\"add\",\"serviceName\":\"Netflix\",\"price\":649}\n```", nil)

	intent, err := parser.Parse(context.Background(), "add netflix for 649", nil, "None")
	require.NoError(t, err)
	assert.Equal(t, models.ActionAdd, intent.Action)
	assert.Equal(t, "Netflix", intent.ServiceName)
	assert.Equal(t, float64(649), intent.Price)
}

func TestParse_NonJSONFallsBackToInfo(t *testing.T) {
	provider := new(MockProvider)
	parser := assistant.NewParser(provider, sl.DiscardLogger())

	raw := "Sorry, I can only help with subscriptions."
	provider.On("Generate", mock.Anything, mock.Anything).Return(raw, nil)

	intent, err := parser.Parse(context.Background(), "what is the weather", nil, "None")
	require.NoError(t, err)
	assert.Equal(t, models.ActionInfo, intent.Action)
	assert.Equal(t, raw, intent.Response)
}

func TestParse_HistoryTruncatedToLastFour(t *testing.T) {
	provider := new(MockProvider)
	parser := assistant.NewParser(provider, sl.DiscardLogger())

	history := []models.ChatMessage{
		{Role: "user", Content: "turn 1"},
		{Role: "assistant", Content: "turn 2"},
		{Role: "user", Content: "turn 3"},
		{Role: "assistant", Content: "turn 4"},
		{Role: "user", Content: "turn 5"},
		{Role: "assistant", Content: "turn 6"},
	}

	provider.On("Generate", mock.Anything, mock.MatchedBy(func(messages []models.ChatMessage) bool {
		// system + 4 реплики истории + команда
		return len(messages) == 6 &&
			messages[0].Role == "system" &&
			messages[1].Content == "turn 3" &&
			messages[5].Content == "show my subscriptions"
	})).Return(`{"action":"list"}`, nil)

	_, err := parser.Parse(context.Background(), "show my subscriptions", history, "None")
	require.NoError(t, err)
	provider.AssertExpectations(t)
}

func TestParse_SummaryInjectedIntoPrompt(t *testing.T) {
	provider := new(MockProvider)
	parser := assistant.NewParser(provider, sl.DiscardLogger())

	provider.On("Generate", mock.Anything, mock.MatchedBy(func(messages []models.ChatMessage) bool {
		return len(messages) >= 1 &&
			strings.Contains(messages[0].Content, "Netflix - ₹649 - active")
	})).Return(`{"action":"list"}`, nil)

	summary := assistant.Summary([]*models.Subscription{
		{ServiceName: "Netflix", Price: 649, Status: models.StatusActive},
	})
	_, err := parser.Parse(context.Background(), "list", nil, summary)
	require.NoError(t, err)
}

func TestParse_ProviderErrorPropagates(t *testing.T) {
	provider := new(MockProvider)
	parser := assistant.NewParser(provider, sl.DiscardLogger())

	provider.On("Generate", mock.Anything, mock.Anything).
		Return("", assert.AnError)

	_, err := parser.Parse(context.Background(), "add netflix", nil, "None")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSummary_Empty(t *testing.T) {
	assert.Equal(t, "None", assistant.Summary(nil))
}
