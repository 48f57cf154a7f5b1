package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/lib/smtp"
)

// SMSSender описывает клиент отправки SMS.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
	Enabled() bool
}

// Sender доставляет сообщения из очередей уведомлений
// по email через SMTP и по SMS через внешний шлюз.
type Sender struct {
	transport smtp.TransportInterface
	sms       SMSSender
	log       *slog.Logger
}

// NewSender создает новый обработчик очередей уведомлений.
func NewSender(transport smtp.TransportInterface, sms SMSSender, log *slog.Logger) *Sender {
	return &Sender{transport: transport, sms: sms, log: log}
}

// HandleEmail обрабатывает сообщение из очереди email-уведомлений.
// Без настроенного SMTP письмо пишется в лог и считается доставленным.
func (s *Sender) HandleEmail(body []byte) error {
	const op = "notification.HandleEmail"

	var msg EmailMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !s.transport.Enabled() {
		s.log.Info("smtp is not configured, email logged only",
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
		)
		return nil
	}

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Warn("failed to close smtp client", sl.Err(closeErr))
		}
	}()

	from := s.transport.GetSMTPUser()
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	letter := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		from, msg.To, msg.Subject, msg.Body)
	if _, err := w.Write([]byte(letter)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := client.Quit(); err != nil {
		s.log.Warn("smtp quit failed", sl.Err(err))
	}
	s.log.Info("email notification sent", slog.String("to", msg.To))
	return nil
}

// HandleSMS обрабатывает сообщение из очереди SMS-уведомлений.
func (s *Sender) HandleSMS(body []byte) error {
	const op = "notification.HandleSMS"

	var msg SMSMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sms.Send(context.Background(), msg.To, msg.Body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("sms notification sent", slog.String("to", msg.To))
	return nil
}
