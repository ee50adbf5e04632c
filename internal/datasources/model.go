// Package datasources manages the registry of connected data feeds.
package datasources

import "time"

// Source types.
const (
	TypeGoogleSheets = "google_sheets"
	TypeCSVURL       = "csv_url"
	TypeJSONAPI      = "json_api"
	TypeManualUpload = "manual_upload"
)

// Sync frequencies.
const (
	FrequencyManual  = "manual"
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusError    = "error"
)

// DataSource is a registered external data feed.
type DataSource struct {
	ID            string     `json:"id"`
	UserID        string     `json:"-"`
	Name          string     `json:"name"`
	SourceType    string     `json:"sourceType"`
	ConnectionURL string     `json:"connectionUrl"`
	SyncFrequency string     `json:"syncFrequency"`
	AutoAnalyze   bool       `json:"autoAnalyze"`
	Status        string     `json:"status"`
	LastSyncedAt  *time.Time `json:"lastSyncedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

var sourceTypes = map[string]bool{
	TypeGoogleSheets: true,
	TypeCSVURL:       true,
	TypeJSONAPI:      true,
	TypeManualUpload: true,
}

var syncFrequencies = map[string]bool{
	FrequencyManual:  true,
	FrequencyDaily:   true,
	FrequencyWeekly:  true,
	FrequencyMonthly: true,
}

// ValidSourceType reports whether t is a known source type.
func ValidSourceType(t string) bool {
	return sourceTypes[t]
}

// ValidSyncFrequency reports whether f is a known sync frequency.
func ValidSyncFrequency(f string) bool {
	return syncFrequencies[f]
}
