package models

// Действия, которые распознает интерпретатор команд.
const (
	ActionAdd           = "add"
	ActionBulkAdd       = "bulkAdd"
	ActionDelete        = "delete"
	ActionPause         = "pause"
	ActionResume        = "resume"
	ActionList          = "list"
	ActionAnalytics     = "analytics"
	ActionBulk          = "bulk"
	ActionClarification = "clarification"
	ActionInfo          = "info"
)

// ChatMessage одна реплика диалога с ассистентом.
type ChatMessage struct {
	Role    string `json:"role"`    // user или assistant
	Content string `json:"content"` // Текст реплики
}

// IntentSubscription элемент массива подписок для массового добавления.
type IntentSubscription struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Intent структурированное намерение, извлеченное из свободного текста команды.
// Обязательно только поле Action, остальные зависят от конкретного действия.
type Intent struct {
	Action        string               `json:"action"`
	ServiceName   string               `json:"serviceName,omitempty"`   // Название сервиса для add/delete/pause/resume
	Price         float64              `json:"price,omitempty"`         // Цена для add
	Subscriptions []IntentSubscription `json:"subscriptions,omitempty"` // Элементы для bulkAdd
	ServiceNames  string               `json:"serviceNames,omitempty"`  // Список имен через запятую для bulk
	Filter        string               `json:"filter,omitempty"`        // active, paused или all
	AnalyticsType string               `json:"analyticsType,omitempty"` // top, highest, lowest, cheapest, most-expensive, total
	Limit         int                  `json:"limit,omitempty"`         // Количество записей для analytics
	BulkAction    string               `json:"bulkAction,omitempty"`    // pause, resume или delete
	Response      string               `json:"response,omitempty"`      // Ответ пользователю в свободной форме
}

// CommandRequest используется для приёма команды ассистента из JSON-запроса.
type CommandRequest struct {
	Command string        `json:"command" validate:"required"` // Текст команды
	History []ChatMessage `json:"history" validate:"omitempty"`
}

// CommandResult результат исполнения распознанной команды.
type CommandResult struct {
	Action        string          `json:"action"`
	Response      string          `json:"response"`
	Subscriptions []*Subscription `json:"subscriptions,omitempty"`
	TotalSpending float64         `json:"totalSpending,omitempty"`
	Count         int             `json:"count,omitempty"`
}
