package datasources

import (
	"context"
	"errors"
	"sync"
	"testing"

	"insightgen-backend/internal/queue"
)

type fakeQueue struct {
	mu       sync.Mutex
	messages []queue.Message
	err      error
}

func (f *fakeQueue) Enqueue(ctx context.Context, msg queue.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func TestCreateValidation(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	cases := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{"empty name", CreateInput{Name: "  ", SourceType: TypeCSVURL, ConnectionURL: "https://example.com/a.csv"}, "name"},
		{"unknown type", CreateInput{Name: "Feed", SourceType: "ftp"}, "sourceType"},
		{"missing url", CreateInput{Name: "Feed", SourceType: TypeGoogleSheets}, "connectionUrl"},
		{"bad frequency", CreateInput{Name: "Feed", SourceType: TypeCSVURL, ConnectionURL: "https://example.com/a.csv", SyncFrequency: "hourly"}, "syncFrequency"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "user-1", tc.in)
			var validationErr ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Field != tc.field {
				t.Fatalf("field = %q, want %q", validationErr.Field, tc.field)
			}
		})
	}
}

func TestCreateManualUploadNeedsNoURL(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	source, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:       "Quarterly exports",
		SourceType: TypeManualUpload,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if source.Status != StatusInactive {
		t.Fatalf("new source status = %q, want %q", source.Status, StatusInactive)
	}
	if source.SyncFrequency != FrequencyManual {
		t.Fatalf("default frequency = %q, want %q", source.SyncFrequency, FrequencyManual)
	}
	if source.LastSyncedAt != nil {
		t.Fatal("new source must not carry a sync time")
	}
}

func TestSyncActivatesAndStamps(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	source, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:          "Orders feed",
		SourceType:    TypeCSVURL,
		ConnectionURL: "https://example.com/orders.csv",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	synced, err := svc.Sync(context.Background(), "user-1", source.ID)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if synced.Status != StatusActive {
		t.Fatalf("status after sync = %q, want %q", synced.Status, StatusActive)
	}
	if synced.LastSyncedAt == nil {
		t.Fatal("sync must stamp last_synced")
	}
}

func TestSyncNotifiesQueueWhenAutoAnalyze(t *testing.T) {
	q := &fakeQueue{}
	svc := &Service{Repo: NewMemoryRepo(), Queue: q}
	source, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:          "Sheet",
		SourceType:    TypeGoogleSheets,
		ConnectionURL: "https://docs.google.com/spreadsheets/d/abc",
		AutoAnalyze:   true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Sync(context.Background(), "user-1", source.ID); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(q.messages) != 1 {
		t.Fatalf("expected 1 queue notification, got %d", len(q.messages))
	}
	msg := q.messages[0]
	if msg.Kind != queue.KindDataSourceSync || msg.DataSourceID != source.ID {
		t.Fatalf("unexpected notification: %+v", msg)
	}
}

func TestSyncQueueFailureDoesNotFailSync(t *testing.T) {
	q := &fakeQueue{err: errors.New("sqs unavailable")}
	svc := &Service{Repo: NewMemoryRepo(), Queue: q}
	source, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:          "Sheet",
		SourceType:    TypeGoogleSheets,
		ConnectionURL: "https://docs.google.com/spreadsheets/d/abc",
		AutoAnalyze:   true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	synced, err := svc.Sync(context.Background(), "user-1", source.ID)
	if err != nil {
		t.Fatalf("sync should survive a queue failure, got %v", err)
	}
	if synced.Status != StatusActive {
		t.Fatalf("status = %q, want %q", synced.Status, StatusActive)
	}
}

func TestOwnershipEnforced(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	source, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:       "Private feed",
		SourceType: TypeManualUpload,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Sync(context.Background(), "user-2", source.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign sync: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "user-2", source.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign delete: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "user-1", source.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	sources, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sources) != 0 {
		t.Fatalf("expected empty registry after delete, got %d", len(sources))
	}
}
