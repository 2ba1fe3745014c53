package model

// WSMessageType represents the type of WebSocket message
type WSMessageType string

const (
	MessageTypeTradeUpdate       WSMessageType = "trade_update"
	MessageTypeBalanceUpdate     WSMessageType = "balance_update"
	MessageTypeAchievementUnlock WSMessageType = "achievement_unlock"
	MessageTypeError             WSMessageType = "error"
	MessageTypePong              WSMessageType = "pong"
)

// WSMessage is the envelope for all WebSocket messages
type WSMessage struct {
	Type    WSMessageType `json:"type"`
	Payload interface{}   `json:"payload"`
}

// WSTradePayload announces a committed trading operation
type WSTradePayload struct {
	EventID   string            `json:"event_id"`
	Address   string            `json:"address"`
	Operation string            `json:"operation"` // buy, sell, swap, ...
	Token     Token             `json:"token,omitempty"`
	Amount    float64           `json:"amount,omitempty"`
	Cost      float64           `json:"cost,omitempty"`
	Proceeds  float64           `json:"proceeds,omitempty"`
	Balances  map[Token]float64 `json:"balances,omitempty"`
}

// WSAchievementPayload announces a freshly unlocked achievement
type WSAchievementPayload struct {
	Address       string  `json:"address"`
	AchievementID string  `json:"achievement_id"`
	TokenAmount   float64 `json:"token_amount"`
}
