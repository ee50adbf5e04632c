// Package preferences stores per-user notification settings.
package preferences

// NotificationPreferences groups the notification toggles.
type NotificationPreferences struct {
	AnomalyAlerts         bool `json:"anomalyAlerts"`
	ForecastUpdates       bool `json:"forecastUpdates"`
	DataSyncNotifications bool `json:"dataSyncNotifications"`
}

// Preferences is a user's full settings document. Saves overwrite the whole
// document, there is no field merge.
type Preferences struct {
	UserID        string                  `json:"-"`
	WeeklyDigest  bool                    `json:"weeklyDigest"`
	DigestDay     string                  `json:"digestDay"`
	Notifications NotificationPreferences `json:"notifications"`
}

var digestDays = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}

// ValidDigestDay reports whether day is a lowercase weekday name.
func ValidDigestDay(day string) bool {
	return digestDays[day]
}

// Default returns the settings used before a user ever saves.
func Default(userID string) Preferences {
	return Preferences{
		UserID:       userID,
		WeeklyDigest: true,
		DigestDay:    "monday",
		Notifications: NotificationPreferences{
			AnomalyAlerts:         true,
			ForecastUpdates:       true,
			DataSyncNotifications: false,
		},
	}
}
