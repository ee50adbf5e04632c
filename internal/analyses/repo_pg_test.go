package analyses

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	now := time.Now().UTC()
	analysis := Analysis{
		ID: "a-1", UserID: "u-1", Title: "Q4 Sales", DataType: "sales",
		Status: StatusProcessing, FileNames: []string{"q4.csv"}, ObjectKeys: []string{"k/q4.csv"},
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analyses")).
		WithArgs("a-1", "u-1", "Q4 Sales", "sales", StatusProcessing,
			[]byte(`["q4.csv"]`), []byte(`["k/q4.csv"]`), nil, "", "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), analysis); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, title, data_type, status")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDDecodesResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "title", "data_type", "status", "file_names", "object_keys",
		"result", "failure_code", "failure_message", "created_at", "updated_at",
	}).AddRow(
		"a-1", "u-1", "Q4 Sales", "sales", StatusCompleted,
		[]byte(`["q4.csv"]`), []byte(`["k/q4.csv"]`),
		`{"summary":"ok","key_insights":[],"recommendations":[],"anomalies":[],"metrics":{},"sentiment_score":0.7}`,
		"", "", now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, title, data_type, status")).
		WithArgs("a-1").
		WillReturnRows(rows)

	analysis, err := repo.GetByID(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if analysis.Result == nil || analysis.Result.Summary != "ok" {
		t.Fatalf("result not decoded: %+v", analysis.Result)
	}
	if analysis.CompletedAt == nil {
		t.Fatal("completedAt should be derived for terminal status")
	}
}

func TestPGRepoFailRequiresRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE analyses")).
		WithArgs("missing", StatusFailed, ErrorCodeInternal, "boom", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Fail(context.Background(), "missing", ErrorCodeInternal, "boom"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
