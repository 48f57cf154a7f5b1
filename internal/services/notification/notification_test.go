package notification_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/models"
	"github.com/geniepay/geniepay/internal/rabbitmq"
	"github.com/geniepay/geniepay/internal/services/notification"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func TestSendOTP_PhoneChannel(t *testing.T) {
	pub := new(MockPublisher)
	svc := notification.New(pub, sl.DiscardLogger())

	phone := "+919876543210"
	channel := models.OTPChannelPhone
	user := models.User{
		Email:       "user@example.com",
		PhoneNumber: &phone,
		OTPChannel:  &channel,
	}

	pub.On("Publish", rabbitmq.RoutingKeySMS, mock.MatchedBy(func(m any) bool {
		msg, ok := m.(notification.SMSMessage)
		return ok && msg.To == phone
	})).Return(nil)

	svc.SendOTP(user, "123456")
	pub.AssertExpectations(t)
	pub.AssertNotCalled(t, "Publish", rabbitmq.RoutingKeyEmail, mock.Anything)
}

func TestSendOTP_EmailChannel(t *testing.T) {
	pub := new(MockPublisher)
	svc := notification.New(pub, sl.DiscardLogger())

	channel := models.OTPChannelEmail
	user := models.User{Email: "user@example.com", OTPChannel: &channel}

	pub.On("Publish", rabbitmq.RoutingKeyEmail, mock.MatchedBy(func(m any) bool {
		msg, ok := m.(notification.EmailMessage)
		return ok && msg.To == "user@example.com" && strings.Contains(msg.Body, "123456")
	})).Return(nil)

	svc.SendOTP(user, "123456")
	pub.AssertExpectations(t)
}

func TestSendWelcome_PublishFailureIsSwallowed(t *testing.T) {
	pub := new(MockPublisher)
	svc := notification.New(pub, sl.DiscardLogger())

	pub.On("Publish", rabbitmq.RoutingKeyEmail, mock.Anything).Return(errors.New("broker down"))

	require.NotPanics(t, func() {
		svc.SendWelcome(models.User{Name: "Asha", Email: "asha@example.com"})
	})
}

func TestSendRenewalReminder(t *testing.T) {
	pub := new(MockPublisher)
	svc := notification.New(pub, sl.DiscardLogger())

	pub.On("Publish", rabbitmq.RoutingKeyEmail, mock.MatchedBy(func(m any) bool {
		msg, ok := m.(notification.EmailMessage)
		return ok && strings.Contains(msg.Body, "Netflix") && strings.Contains(msg.Body, "2026-09-30")
	})).Return(nil)

	svc.SendRenewalReminder(models.User{Email: "user@example.com"}, "Netflix", 649, "2026-09-30")
	pub.AssertExpectations(t)
}

func TestNilPublisherSkips(t *testing.T) {
	svc := notification.New(nil, sl.DiscardLogger())

	require.NotPanics(t, func() {
		svc.SendSubscriptionAdded(models.User{Email: "user@example.com"}, "Netflix", 649)
	})
}
