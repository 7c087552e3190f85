package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// chatID accepts a JSON string or number. Telegram chat ids are commonly
// sent as bare integers.
type chatID string

func (c *chatID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = chatID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = chatID(n.String())
	return nil
}

func (c chatID) String() string { return strings.TrimSpace(string(c)) }

type sendRequest struct {
	ChatID  chatID `json:"chatId"`
	Message string `json:"message"`
}

type scheduleRequest struct {
	ChatID   chatID `json:"chatId"`
	Message  string `json:"message"`
	DateTime string `json:"dateTime"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ScheduledMessage is one entry of GET /scheduled-messages.
type ScheduledMessage struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	Message   string    `json:"message"`
	DateTime  string    `json:"dateTime"`
	CreatedAt time.Time `json:"createdAt"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Sender  string `json:"sender"`
	Ready   bool   `json:"ready"`
	Pending int    `json:"pending"`
	Uptime  string `json:"uptime"`
}
