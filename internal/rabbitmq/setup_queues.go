package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации для exchange уведомлений.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// ExchangeNotifications exchange для исходящих уведомлений.
const ExchangeNotifications = "notifications"

// Ключи маршрутизации для исходящих уведомлений.
const (
	RoutingKeyEmail = "email"
	RoutingKeySMS   = "sms"
)

// GetNotificationQueues возвращает очереди доставки уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.email", RoutingKey: RoutingKeyEmail},
		{QueueName: "notifications.sms", RoutingKey: RoutingKeySMS},
	}
}
