package score

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lixenwraith/void-striker/game"
)

var _ game.ScoreRecorder = (*Store)(nil)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scores.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Expected store to open, got %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func run(id string, score int, ended time.Time) game.Run {
	return game.Run{ID: id, Score: score, Level: 2, Kills: 30, Difficulty: "normal", EndedAt: ended}
}

func TestRecordAndTop(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, r := range []game.Run{
		run("a", 1500, base),
		run("b", 4000, base.Add(time.Minute)),
		run("c", 1500, base.Add(-time.Minute)),
	} {
		if err := s.Record(ctx, r); err != nil {
			t.Fatalf("Expected record %s, got %v", r.ID, err)
		}
	}

	best, err := s.Best(ctx)
	if err != nil || best != 4000 {
		t.Errorf("Expected best 4000, got %d (%v)", best, err)
	}

	top, err := s.Top(ctx, 2)
	if err != nil {
		t.Fatalf("Expected top query, got %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(top))
	}
	if top[0].ID != "b" || top[1].ID != "c" {
		t.Errorf("Expected b then earlier tie c, got %s then %s", top[0].ID, top[1].ID)
	}
	if !top[1].EndedAt.Equal(base.Add(-time.Minute)) {
		t.Errorf("Expected end time preserved, got %v", top[1].EndedAt)
	}
	if top[0].Difficulty != "normal" || top[0].Kills != 30 {
		t.Errorf("Expected row fields preserved, got %+v", top[0])
	}
}

func TestRecordDuplicateKeepsFirst(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	if err := s.Record(ctx, run("same", 100, time.Now())); err != nil {
		t.Fatalf("Expected record, got %v", err)
	}
	if err := s.Record(ctx, run("same", 9999, time.Now())); err != nil {
		t.Fatalf("Expected duplicate ignored without error, got %v", err)
	}
	n, _ := s.Count(ctx)
	best, _ := s.Best(ctx)
	if n != 1 || best != 100 {
		t.Errorf("Expected one run with score 100, got %d runs best %d", n, best)
	}
}

func TestRecordValidation(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	if err := s.Record(ctx, game.Run{Score: 10}); err == nil {
		t.Error("Expected error for missing run id")
	}
	if err := s.Record(ctx, game.Run{ID: "neg", Score: -1}); err == nil {
		t.Error("Expected error for negative score")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := s.Record(cancelled, run("late", 10, time.Now())); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	if err := s.Record(ctx, run("keep", 700, time.Now())); err != nil {
		t.Fatalf("Expected record, got %v", err)
	}
	_ = s.Close()

	again, err := Open(path)
	if err != nil {
		t.Fatalf("Expected reopen with migrations already applied, got %v", err)
	}
	defer again.Close()
	if best, _ := again.Best(ctx); best != 700 {
		t.Errorf("Expected persisted best 700, got %d", best)
	}
}

func TestEmptyAndClosedStore(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Expected in-memory store, got %v", err)
	}
	ctx := context.Background()
	if best, err := s.Best(ctx); err != nil || best != 0 {
		t.Errorf("Expected best 0 on empty table, got %d (%v)", best, err)
	}
	if top, err := s.Top(ctx, 5); err != nil || len(top) != 0 {
		t.Errorf("Expected no entries, got %d (%v)", len(top), err)
	}

	_ = s.Close()
	if _, err := s.Best(ctx); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured after close, got %v", err)
	}
	if _, err := Open("  "); err == nil {
		t.Error("Expected error for empty path")
	}
}

func TestExtractUp(t *testing.T) {
	got := extractUp("-- +migrate Up\nCREATE TABLE x (a);\n-- +migrate Down\nDROP TABLE x;")
	if got != "\nCREATE TABLE x (a);\n" {
		t.Errorf("Expected up section only, got %q", got)
	}
	if got := extractUp("SELECT 1;"); got != "SELECT 1;" {
		t.Errorf("Expected whole content without markers, got %q", got)
	}
}
