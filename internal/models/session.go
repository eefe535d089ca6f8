package models

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusWarning  Status = "WARNING"
	StatusExpired  Status = "EXPIRED"
	StatusExtended Status = "EXTENDED"
)

// Session is the single persisted login window of one client.
// Status is informational only; validity is always ExpiresAt vs. now.
type Session struct {
	ID             uuid.UUID `json:"sessionId" example:"a1b2c3d4-e5f6-7890-1234-567890abcdef"`
	SubjectID      string    `json:"subjectId" example:"E001"`
	LoginTime      time.Time `json:"loginTime"`
	LastActivity   time.Time `json:"lastActivity"`
	ExpiresAt      time.Time `json:"expiresAt"`
	RememberMe     bool      `json:"rememberMe"`
	ExtensionCount int       `json:"extensionCount"`
	Status         Status    `json:"status" example:"ACTIVE"`
}

// SessionInfo is the read model handed to the UI. Durations are in milliseconds.
type SessionInfo struct {
	Session             *Session `json:"session,omitempty"`
	Valid               bool     `json:"valid"`
	RemainingMs         int64    `json:"remaining_ms" example:"1800000"`
	ShowWarning         bool     `json:"show_warning"`
	ExtensionsLeft      int      `json:"extensions_left" example:"3"`
	WarningThresholdMs  int64    `json:"warning_threshold_ms" example:"300000"`
	UIRefreshIntervalMs int64    `json:"ui_refresh_interval_ms" example:"1000"`
}
