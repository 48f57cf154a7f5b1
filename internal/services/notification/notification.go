// Package notification отвечает за уведомления пользователей:
// сборку текстов, публикацию в брокер и доставку по email и SMS.
// Доставка выполняется по принципу best-effort: сбой уведомления
// не прерывает операцию, которая его породила.
package notification

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/models"
	"github.com/geniepay/geniepay/internal/rabbitmq"
)

// ErrDisabled возвращается, когда брокер уведомлений не подключен.
var ErrDisabled = errors.New("notifications are disabled")

// EmailMessage сообщение очереди email-уведомлений.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SMSMessage сообщение очереди SMS-уведомлений.
type SMSMessage struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// Publisher публикует сообщение с заданным ключом маршрутизации.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// AMQPPublisher реализует Publisher поверх канала RabbitMQ.
type AMQPPublisher struct {
	Ch *amqp.Channel
}

// Publish публикует сообщение в exchange уведомлений.
func (p *AMQPPublisher) Publish(routingKey string, message any) error {
	return rabbitmq.PublishMessage(p.Ch, rabbitmq.ExchangeNotifications, routingKey, message)
}

// Service сервис уведомлений.
type Service struct {
	pub Publisher
	log *slog.Logger
}

// New создает новый сервис уведомлений. Publisher может быть nil,
// тогда уведомления только логируются.
func New(pub Publisher, log *slog.Logger) *Service {
	return &Service{pub: pub, log: log}
}

// SendWelcome отправляет приветственное письмо после подтверждения аккаунта.
func (s *Service) SendWelcome(user models.User) {
	s.publishEmail(EmailMessage{
		To:      user.Email,
		Subject: "Welcome to GeniePay",
		Body: fmt.Sprintf("Hi %s,\n\nYour GeniePay account is verified. "+
			"Add your subscriptions and let the genie keep track of renewals for you.\n\nGeniePay", user.Name),
	})
}

// SendOTP отправляет код подтверждения по каналу, выбранному при регистрации.
func (s *Service) SendOTP(user models.User, code string) {
	body := fmt.Sprintf("Your GeniePay verification code is %s. It expires in 10 minutes.", code)

	if user.OTPChannel != nil && *user.OTPChannel == models.OTPChannelPhone && user.PhoneNumber != nil {
		s.publishSMS(SMSMessage{To: *user.PhoneNumber, Body: body})
		return
	}
	s.publishEmail(EmailMessage{
		To:      user.Email,
		Subject: "Your GeniePay verification code",
		Body:    body,
	})
}

// SendSubscriptionAdded уведомляет о новой подписке.
func (s *Service) SendSubscriptionAdded(user models.User, serviceName string, price float64) {
	s.publishEmail(EmailMessage{
		To:      user.Email,
		Subject: "Subscription added",
		Body:    fmt.Sprintf("%s (₹%.2f/month) was added to your GeniePay account.", serviceName, price),
	})
}

// SendSubscriptionCancelled уведомляет об отмене подписки.
func (s *Service) SendSubscriptionCancelled(user models.User, serviceName string) {
	s.publishEmail(EmailMessage{
		To:      user.Email,
		Subject: "Subscription cancelled",
		Body:    fmt.Sprintf("Your %s subscription was cancelled.", serviceName),
	})
}

// SendRenewalReminder уведомляет о предстоящем продлении подписки.
func (s *Service) SendRenewalReminder(user models.User, serviceName string, price float64, renewalDate string) {
	s.publishEmail(EmailMessage{
		To:      user.Email,
		Subject: "Upcoming renewal",
		Body:    fmt.Sprintf("Reminder: %s (₹%.2f) renews on %s.", serviceName, price, renewalDate),
	})
}

// SendEmail ставит произвольное письмо в очередь доставки. В отличие от
// остальных методов ошибка отдается вызывающему: маршрут /notify должен
// сообщать клиенту о недоступности уведомлений.
func (s *Service) SendEmail(to, subject, body string) error {
	const op = "notification.SendEmail"
	if s.pub == nil {
		return fmt.Errorf("%s: %w", op, ErrDisabled)
	}
	if err := s.pub.Publish(rabbitmq.RoutingKeyEmail, EmailMessage{To: to, Subject: subject, Body: body}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) publishEmail(msg EmailMessage) {
	if s.pub == nil {
		s.log.Info("notifications are disabled, email skipped", slog.String("to", msg.To))
		return
	}
	if err := s.pub.Publish(rabbitmq.RoutingKeyEmail, msg); err != nil {
		s.log.Warn("failed to publish email notification", sl.Err(err))
	}
}

func (s *Service) publishSMS(msg SMSMessage) {
	if s.pub == nil {
		s.log.Info("notifications are disabled, sms skipped", slog.String("to", msg.To))
		return
	}
	if err := s.pub.Publish(rabbitmq.RoutingKeySMS, msg); err != nil {
		s.log.Warn("failed to publish sms notification", sl.Err(err))
	}
}
