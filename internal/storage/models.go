package storage

import (
	"time"
)

// Prefs are the form inputs of the last session. Backend data is never
// stored.
type Prefs struct {
	ChartDate    string    `json:"chart_date"`
	Category     string    `json:"category"`
	FilterDate   string    `json:"filter_date"`
	ReportDate   string    `json:"report_date"`
	Email        string    `json:"email"`
	SearchDate   string    `json:"search_date"`
	ChatDate     string    `json:"chat_date"`
	ChatCategory string    `json:"chat_category"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChatEntry is one persisted transcript line.
type ChatEntry struct {
	Exchange int       `json:"exchange"`
	Role     string    `json:"role"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
}
