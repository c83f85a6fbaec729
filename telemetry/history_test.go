package telemetry

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestHistory(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := OpenHistory(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenHistoryRequiresPath(t *testing.T) {
	if _, err := OpenHistory(context.Background(), ""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestHistoryRuns(t *testing.T) {
	ctx := context.Background()
	store := openTestHistory(t)
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id1, err := store.StartRun(ctx, 42, "population:\n  size: 10\n", started)
	if err != nil {
		t.Fatal(err)
	}
	id2, err := store.StartRun(ctx, 43, "", started.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if id1 == id2 {
		t.Fatalf("run ids not unique: %d", id1)
	}

	info, ok, err := store.Run(ctx, id1)
	if err != nil || !ok {
		t.Fatalf("Run(%d) = %v, %v", id1, ok, err)
	}
	if info.Seed != 42 || info.Config != "population:\n  size: 10\n" || !info.StartedAt.Equal(started) {
		t.Errorf("run info = %+v", info)
	}

	if _, ok, err := store.Run(ctx, 9999); err != nil || ok {
		t.Errorf("missing run: ok=%v err=%v", ok, err)
	}
}

func TestHistoryGenerations(t *testing.T) {
	ctx := context.Background()
	store := openTestHistory(t)
	runID, err := store.StartRun(ctx, 1, "", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	other, err := store.StartRun(ctx, 2, "", time.Now())
	if err != nil {
		t.Fatal(err)
	}

	for _, gen := range []int{2, 1, 3} {
		s := GenerationStats{Generation: gen, Ticks: 10 * gen, BestFitness: float64(gen)}
		if err := store.SaveGeneration(ctx, runID, s); err != nil {
			t.Fatalf("SaveGeneration(%d): %v", gen, err)
		}
	}
	if err := store.SaveGeneration(ctx, other, GenerationStats{Generation: 1}); err != nil {
		t.Fatal(err)
	}

	// Saving again replaces the row.
	replaced := GenerationStats{Generation: 2, Ticks: 7, BestFitness: 0.5, BestReached: true, Reached: 4}
	if err := store.SaveGeneration(ctx, runID, replaced); err != nil {
		t.Fatal(err)
	}

	gens, err := store.Generations(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(gens) != 3 {
		t.Fatalf("got %d generations, want 3", len(gens))
	}
	for i, g := range gens {
		if g.Generation != i+1 {
			t.Errorf("gens[%d].Generation = %d", i, g.Generation)
		}
	}
	if gens[1] != replaced {
		t.Errorf("gens[1] = %+v, want %+v", gens[1], replaced)
	}

	otherGens, err := store.Generations(ctx, other)
	if err != nil {
		t.Fatal(err)
	}
	if len(otherGens) != 1 {
		t.Errorf("other run has %d generations, want 1", len(otherGens))
	}
}

func TestHistoryClose(t *testing.T) {
	ctx := context.Background()
	store := openTestHistory(t)
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := store.StartRun(ctx, 1, "", time.Now()); err == nil {
		t.Error("StartRun on closed store succeeded")
	}

	var nilStore *HistoryStore
	if err := nilStore.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}
