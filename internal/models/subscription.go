package models

import "time"

// Статусы жизненного цикла подписки.
const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCancelled = "cancelled"
)

// Статусы оплаты подписки.
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
	PaymentStatusFailed  = "failed"
	PaymentStatusManual  = "manual"
)

// Subscription представляет собой основную модель подписки,
// используемую в бизнес-логике и хранилище. Каждая подписка
// принадлежит ровно одному пользователю.
type Subscription struct {
	ID                int        `json:"id"`                          // Идентификатор записи
	UserUID           string     `json:"-"`                           // Владелец подписки
	ServiceName       string     `json:"serviceName"`                 // Название сервиса
	Price             float64    `json:"price"`                       // Цена за месяц
	RenewalDate       time.Time  `json:"renewalDate"`                 // Дата следующего продления
	Status            string     `json:"status"`                      // active, paused или cancelled
	BlockchainTxnHash *string    `json:"blockchainTxnHash,omitempty"` // Хэш транзакции в блокчейне
	IsConnected       bool       `json:"isConnected"`                 // Привязан ли реальный сервис
	PaymentStatus     *string    `json:"paymentStatus,omitempty"`     // paid, pending, failed или manual
	PaymentMethod     *string    `json:"paymentMethod,omitempty"`     // Способ оплаты
	PaidAt            *time.Time `json:"paidAt,omitempty"`            // Время последней оплаты
	ExternalPaymentID *string    `json:"externalPaymentId,omitempty"` // Идентификатор платежа у шлюза
	PlatformFee       *float64   `json:"platformFee,omitempty"`       // Комиссия платформы
	TotalPaid         *float64   `json:"totalPaid,omitempty"`         // Итоговая списанная сумма
	CreatedAt         time.Time  `json:"createdAt"`                   // Дата создания записи
}

// DummySubscription используется для приёма данных подписки из JSON-запроса,
// прежде чем конвертировать их в Subscription. Дата приходит строкой,
// чтобы её можно было валидировать и парсить вручную.
type DummySubscription struct {
	ServiceName string  `json:"serviceName" validate:"required"`         // Название сервиса
	Price       float64 `json:"price" validate:"required,gte=0"`         // Цена (не отрицательная)
	RenewalDate string  `json:"renewalDate" validate:"required"`         // Дата продления в формате 2006-01-02
}

// PaymentInfo содержит данные об оплате, проставляемые после подтверждения платежа.
type PaymentInfo struct {
	Status            string
	Method            string
	PaidAt            time.Time
	ExternalPaymentID string
	PlatformFee       float64
	TotalPaid         float64
}

// ActiveTotal возвращает сумму цен подписок со статусом active.
func ActiveTotal(subs []*Subscription) float64 {
	var total float64
	for _, sub := range subs {
		if sub.Status == StatusActive {
			total += sub.Price
		}
	}
	return total
}
