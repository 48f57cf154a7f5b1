package assistant_test

import (
	"context"
	"testing"
	"time"

	"github.com/geniepay/geniepay/internal/models"
	"github.com/geniepay/geniepay/internal/services/assistant"
	"github.com/geniepay/geniepay/internal/storage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) List(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) ListByStatus(ctx context.Context, userUID, status string) ([]*models.Subscription, error) {
	args := m.Called(ctx, userUID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) Create(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *MockSubscriptionService) FindByName(ctx context.Context, userUID, name string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) UpdateStatus(ctx context.Context, id int, userUID, status string) error {
	args := m.Called(ctx, id, userUID, status)
	return args.Error(0)
}

func (m *MockSubscriptionService) Remove(ctx context.Context, id int, userUID string) error {
	args := m.Called(ctx, id, userUID)
	return args.Error(0)
}

const testUser = "user-1"

func TestDispatch_AddCreatesActiveSubscription(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	subs.On("Create", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
		daysOut := time.Until(sub.RenewalDate)
		return sub.UserUID == testUser &&
			sub.ServiceName == "Netflix" &&
			sub.Price == 649 &&
			sub.Status == models.StatusActive &&
			daysOut > 29*24*time.Hour && daysOut <= 30*24*time.Hour
	})).Return(1, nil)

	result, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action:      models.ActionAdd,
		ServiceName: "Netflix",
		Price:       649,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionAdd, result.Action)
	assert.Equal(t, 1, result.Count)
	subs.AssertExpectations(t)
}

func TestDispatch_AddWithoutPriceIsNoOp(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	result, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action:      models.ActionAdd,
		ServiceName: "Netflix",
	})
	require.NoError(t, err)
	assert.Contains(t, result.Response, "service name and a price")
	subs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDispatch_BulkAddTwoItems(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	subs.On("Create", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
		return sub.Status == models.StatusActive && sub.UserUID == testUser
	})).Return(1, nil).Twice()

	result, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action: models.ActionBulkAdd,
		Subscriptions: []models.IntentSubscription{
			{Name: "Netflix", Price: 649},
			{Name: "Spotify", Price: 119},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Contains(t, result.Response, "Netflix")
	assert.Contains(t, result.Response, "Spotify")
	subs.AssertExpectations(t)
}

func TestDispatch_DeleteNotFoundDoesNotMutate(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	subs.On("FindByName", mock.Anything, testUser, "Hulu").Return(nil, repository.ErrNotFound)

	result, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action:      models.ActionDelete,
		ServiceName: "Hulu",
	})
	require.NoError(t, err)
	assert.Contains(t, result.Response, "couldn't find")
	subs.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_PauseByName(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	subs.On("FindByName", mock.Anything, testUser, "netflix").
		Return(&models.Subscription{ID: 7, ServiceName: "Netflix", Status: models.StatusActive}, nil)
	subs.On("UpdateStatus", mock.Anything, 7, testUser, models.StatusPaused).Return(nil)

	result, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action:      models.ActionPause,
		ServiceName: "netflix",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionPause, result.Action)
	subs.AssertExpectations(t)
}

func TestDispatch_ListActiveFilterAndTotal(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	active := []*models.Subscription{
		{ID: 1, ServiceName: "Netflix", Price: 649, Status: models.StatusActive},
		{ID: 2, ServiceName: "Spotify", Price: 119, Status: models.StatusActive},
	}
	subs.On("ListByStatus", mock.Anything, testUser, models.StatusActive).Return(active, nil)

	result, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action: models.ActionList,
		Filter: "active",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, float64(768), result.TotalSpending)
	assert.Equal(t, active, result.Subscriptions)
}

func TestDispatch_AnalyticsCheapestLimitOne(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	subs.On("List", mock.Anything, testUser).Return([]*models.Subscription{
		{ID: 1, ServiceName: "Netflix", Price: 199, Status: models.StatusActive},
		{ID: 2, ServiceName: "Prime", Price: 649, Status: models.StatusActive},
		{ID: 3, ServiceName: "Spotify", Price: 119, Status: models.StatusActive},
	}, nil)

	result, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action:        models.ActionAnalytics,
		AnalyticsType: "cheapest",
		Limit:         1,
	})
	require.NoError(t, err)
	require.Len(t, result.Subscriptions, 1)
	assert.Equal(t, float64(119), result.Subscriptions[0].Price)
}

func TestDispatch_AnalyticsDefaultLimitFive(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	var all []*models.Subscription
	for i := 1; i <= 7; i++ {
		all = append(all, &models.Subscription{ID: i, ServiceName: "Svc", Price: float64(i * 100), Status: models.StatusActive})
	}
	subs.On("List", mock.Anything, testUser).Return(all, nil)

	result, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action:        models.ActionAnalytics,
		AnalyticsType: "top",
	})
	require.NoError(t, err)
	require.Len(t, result.Subscriptions, 5)
	assert.Equal(t, float64(700), result.Subscriptions[0].Price)
}

func TestDispatch_AnalyticsTotalShortCircuits(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	subs.On("List", mock.Anything, testUser).Return([]*models.Subscription{
		{ID: 1, Price: 100, Status: models.StatusActive},
		{ID: 2, Price: 200, Status: models.StatusPaused},
	}, nil)

	result, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action:        models.ActionAnalytics,
		AnalyticsType: "total",
		BulkAction:    models.ActionDelete,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(100), result.TotalSpending)
	assert.Equal(t, 2, result.Count)
	subs.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_AnalyticsWithBulkActionResumesCheapest(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	subs.On("ListByStatus", mock.Anything, testUser, models.StatusPaused).Return([]*models.Subscription{
		{ID: 1, ServiceName: "Prime", Price: 649, Status: models.StatusPaused},
		{ID: 2, ServiceName: "Spotify", Price: 119, Status: models.StatusPaused},
	}, nil)
	subs.On("UpdateStatus", mock.Anything, 2, testUser, models.StatusActive).Return(nil)

	result, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action:        models.ActionAnalytics,
		AnalyticsType: "cheapest",
		Filter:        "paused",
		Limit:         1,
		BulkAction:    models.ActionResume,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Contains(t, result.Response, "Spotify")
	subs.AssertExpectations(t)
}

func TestDispatch_BulkExplicitNamesPauseSkipsPaused(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	subs.On("FindByName", mock.Anything, testUser, "Netflix").
		Return(&models.Subscription{ID: 1, ServiceName: "Netflix", Status: models.StatusActive}, nil)
	subs.On("FindByName", mock.Anything, testUser, "Spotify").
		Return(&models.Subscription{ID: 2, ServiceName: "Spotify", Status: models.StatusPaused}, nil)
	subs.On("UpdateStatus", mock.Anything, 1, testUser, models.StatusPaused).Return(nil)

	result, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action:       models.ActionBulk,
		ServiceNames: "Netflix, Spotify",
		BulkAction:   models.ActionPause,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Contains(t, result.Response, "Netflix")
	subs.AssertNotCalled(t, "UpdateStatus", mock.Anything, 2, testUser, mock.Anything)
}

func TestDispatch_BulkDeleteByFilterAbortsOnError(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	subs.On("List", mock.Anything, testUser).Return([]*models.Subscription{
		{ID: 1, ServiceName: "A", Status: models.StatusActive},
		{ID: 2, ServiceName: "B", Status: models.StatusActive},
		{ID: 3, ServiceName: "C", Status: models.StatusActive},
	}, nil)
	subs.On("Remove", mock.Anything, 1, testUser).Return(nil)
	subs.On("Remove", mock.Anything, 2, testUser).Return(assert.AnError)

	_, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action:     models.ActionBulk,
		BulkAction: models.ActionDelete,
	})
	require.Error(t, err)
	subs.AssertNotCalled(t, "Remove", mock.Anything, 3, testUser)
}

func TestDispatch_UnknownActionFallsBackToInfo(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	result, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action:   "refund",
		Response: "I can't do refunds yet.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionInfo, result.Action)
	assert.Equal(t, "I can't do refunds yet.", result.Response)
}

func TestDispatch_ClarificationPassesThrough(t *testing.T) {
	subs := new(MockSubscriptionService)
	d := assistant.NewDispatcher(subs)

	result, err := d.Dispatch(context.Background(), testUser, &models.Intent{
		Action:   models.ActionClarification,
		Response: "Which subscription would you like to pause?",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionClarification, result.Action)
	assert.Equal(t, "Which subscription would you like to pause?", result.Response)
}
