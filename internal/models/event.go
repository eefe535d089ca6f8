package models

import (
	"encoding/json"
	"time"
)

type SessionEvent struct {
	ID           int64           `json:"id" example:"123"`
	EmployeeCode string          `json:"employee_code" example:"E001"`
	ClientID     string          `json:"client_id"`
	SessionID    string          `json:"session_id"`
	EventType    string          `json:"event_type" example:"session_extended"`
	EventTime    time.Time       `json:"event_time"`
	Payload      json.RawMessage `json:"payload" swaggertype:"object"`
}
