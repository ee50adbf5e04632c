package preferences

import (
	"context"
	"errors"
	"testing"
)

func TestGetReturnsDefaultsForNewUser(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	prefs, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !prefs.WeeklyDigest {
		t.Fatal("default weekly digest should be on")
	}
	if prefs.DigestDay != "monday" {
		t.Fatalf("default digest day = %q, want monday", prefs.DigestDay)
	}
	if !prefs.Notifications.AnomalyAlerts || !prefs.Notifications.ForecastUpdates {
		t.Fatalf("default notifications wrong: %+v", prefs.Notifications)
	}
	if prefs.Notifications.DataSyncNotifications {
		t.Fatal("data sync notifications default off")
	}
}

func TestSaveOverwritesWholesale(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	saved, err := svc.Save(context.Background(), "user-1", Preferences{
		WeeklyDigest: false,
		DigestDay:    "friday",
		Notifications: NotificationPreferences{
			DataSyncNotifications: true,
		},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	// A save replaces the whole document: untouched toggles become false,
	// they do not keep their default.
	if saved.WeeklyDigest {
		t.Fatal("weekly digest should be off after save")
	}
	if saved.Notifications.AnomalyAlerts || saved.Notifications.ForecastUpdates {
		t.Fatalf("save must not merge defaults back in: %+v", saved.Notifications)
	}
	if !saved.Notifications.DataSyncNotifications {
		t.Fatal("data sync notifications should be on after save")
	}

	got, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DigestDay != "friday" {
		t.Fatalf("digest day = %q, want friday", got.DigestDay)
	}
}

func TestSaveRejectsUnknownDigestDay(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	_, err := svc.Save(context.Background(), "user-1", Preferences{DigestDay: "Monday"})
	if !errors.Is(err, ErrInvalidDigestDay) {
		t.Fatalf("expected ErrInvalidDigestDay, got %v", err)
	}

	// The rejected save must not leave anything behind.
	prefs, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if prefs.DigestDay != "monday" {
		t.Fatalf("digest day = %q, want default monday", prefs.DigestDay)
	}
}
