package audit

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

// currentTime matches a bind argument that is a non-zero timestamp close to
// now. Entries recorded without an explicit OccurredAt must not reach the
// database with the zero time.
type currentTime struct{}

func (currentTime) Match(v driver.Value) bool {
	ts, ok := v.(time.Time)
	if !ok || ts.IsZero() {
		return false
	}
	return time.Since(ts) < time.Minute
}

func TestPGStoreAppend(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(`insert into audit_log`).
		WithArgs(sqlmock.AnyArg(), currentTime{}, "u1", "u1@example.com", "CREATE", "Task", "t1", "Created task: demo").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPGStore(db)
	err = store.Append(context.Background(), Entry{
		ActorID:    "u1",
		ActorEmail: "u1@example.com",
		Action:     "CREATE",
		Resource:   "Task",
		ResourceID: "t1",
		Details:    "Created task: demo",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPGStoreAppendKeepsCallerTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	occurred := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectExec(`insert into audit_log`).
		WithArgs("e1", occurred, "u1", "", "VIEW", "Task", "t1", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPGStore(db)
	err = store.Append(context.Background(), Entry{
		ID:         "e1",
		OccurredAt: occurred,
		ActorID:    "u1",
		Action:     "VIEW",
		Resource:   "Task",
		ResourceID: "t1",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPGStoreByResource(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "occurred_at", "actor_id", "actor_email", "action", "resource", "resource_id", "details",
	}).
		AddRow("e1", now, "u1", "u1@example.com", "VIEW", "Task", "t1", "").
		AddRow("e2", now, "u2", "u2@example.com", "DELETE", "Task", "t1", "Deleted task: demo")

	mock.ExpectQuery(`from audit_log where resource_id=\$1 order by seq asc`).
		WithArgs("t1").
		WillReturnRows(rows)

	store := NewPGStore(db)
	entries, err := store.ByResource(context.Background(), "t1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Action != "VIEW" || entries[1].Action != "DELETE" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
