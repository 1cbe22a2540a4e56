// README: History store integration tests; skip without TAXIPARK_TEST_DSN.
package history

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taxipark/internal/types"
)

func TestNilStoreIsNoOp(t *testing.T) {
	var s *Store
	if err := s.AppendEvent(context.Background(), &Event{}); err != nil {
		t.Fatalf("nil store append: %v", err)
	}
	events, err := s.RecentEvents(context.Background(), 10)
	if err != nil || events != nil {
		t.Fatalf("nil store query should return nothing, got %v, %v", events, err)
	}
}

func TestAppendAndRecentEvents(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	vid := 7
	e := &Event{
		OrderToken: "tok-history-1",
		ClientID:   1,
		VehicleID:  &vid,
		Outcome:    OutcomeCompleted,
		Pickup:     types.Point{X: 0, Y: 0},
		Dropoff:    types.Point{X: 10, Y: 0},
		OccurredAt: time.Now().UTC(),
	}
	if err := store.AppendEvent(ctx, e); err != nil {
		t.Fatalf("append event: %v", err)
	}
	if err := store.AppendEvent(ctx, &Event{
		OrderToken: "tok-history-2",
		ClientID:   2,
		Outcome:    OutcomeRefused,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("append event: %v", err)
	}

	events, err := store.RecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	// Newest first.
	if events[0].OrderToken != "tok-history-2" || events[0].VehicleID != nil {
		t.Fatalf("unexpected head event: %+v", events[0])
	}
	if events[1].Outcome != OutcomeCompleted || events[1].Dropoff.X != 10 {
		t.Fatalf("unexpected tail event: %+v", events[1])
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TAXIPARK_TEST_DSN")
	if dsn == "" {
		t.Skip("TAXIPARK_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE ride_events"); err != nil {
		t.Fatalf("truncate table: %v", err)
	}

	return NewStore(db)
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_init.sql"))
	if err != nil {
		return err
	}
	for _, stmt := range splitSQL(stripSQLComments(string(content))) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
