package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"scholarbrief/internal/article"
	"scholarbrief/internal/cache"
)

func testCache(t *testing.T) (*cache.Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.json")
	c, err := cache.Open(path)
	if err != nil {
		t.Fatalf("opening test cache: %v", err)
	}
	return c, path
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	in := []article.Article{
		{Title: "Enamel Repair", Source: article.SourceScholar},
		{Title: "enamel repair!", Source: article.SourceEndNote},
		{Title: "Something Else"},
	}
	got := Dedupe(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	if got[0].Source != article.SourceScholar {
		t.Errorf("expected first occurrence to win, got source %s", got[0].Source)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	in := []article.Article{
		{Title: "A"}, {Title: "a"}, {Title: "B"},
	}
	once := Dedupe(in)
	twice := Dedupe(once)
	if len(once) != len(twice) {
		t.Errorf("expected idempotent dedupe, got %d then %d", len(once), len(twice))
	}
}

func TestDedupeEmptyTitlesCollapse(t *testing.T) {
	in := []article.Article{
		{Title: "", Abstract: "first"},
		{Title: "???", Abstract: "second"},
		{Title: "Real Title"},
	}
	got := Dedupe(in)
	if len(got) != 2 {
		t.Fatalf("expected empty-key articles to collapse, got %d", len(got))
	}
	if got[0].Abstract != "first" {
		t.Errorf("expected first empty-key article kept, got %q", got[0].Abstract)
	}
}

func TestDedupeDoesNotMutateInput(t *testing.T) {
	in := []article.Article{{Title: "A"}, {Title: "a"}}
	Dedupe(in)
	if in[1].Title != "a" {
		t.Error("expected input untouched")
	}
}

func TestDedupeEmptyInput(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("expected empty output, got %d", len(got))
	}
}

func TestReconcileRanksAndFilters(t *testing.T) {
	seen, path := testCache(t)

	batches := [][]article.Article{
		{{Title: "Foo"}, {Title: "foo!"}},
		{{Title: "Bar"}},
	}
	got, err := Reconcile(batches, []string{"foo"}, seen)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	if got[0].Title != "Foo" || got[0].RelevanceScore != 4.0 {
		t.Errorf("expected Foo with score 4.0 first, got %q with %v", got[0].Title, got[0].RelevanceScore)
	}
	if got[1].Title != "Bar" || got[1].RelevanceScore != 0 {
		t.Errorf("expected Bar with score 0 last, got %q with %v", got[1].Title, got[1].RelevanceScore)
	}

	// Cache was persisted with both keys.
	reloaded, err := cache.Open(path)
	if err != nil {
		t.Fatalf("reloading cache: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Errorf("expected 2 cached keys, got %d", reloaded.Len())
	}
}

func TestReconcileSecondRunIsEmpty(t *testing.T) {
	seen, path := testCache(t)
	batches := [][]article.Article{{{Title: "Foo"}, {Title: "Bar"}}}

	if _, err := Reconcile(batches, []string{"foo"}, seen); err != nil {
		t.Fatalf("first run: %v", err)
	}

	reloaded, err := cache.Open(path)
	if err != nil {
		t.Fatalf("reloading cache: %v", err)
	}
	got, err := Reconcile(batches, []string{"foo"}, reloaded)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no new articles on second run, got %d", len(got))
	}
	if reloaded.LastRun == "" {
		t.Error("expected last run stamped on empty run")
	}
}

func TestReconcileEmptyRunStillSaves(t *testing.T) {
	seen, path := testCache(t)
	got, err := Reconcile(nil, []string{"foo"}, seen)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected cache file written on empty run: %v", err)
	}
}

func TestReconcileStableOrderForTies(t *testing.T) {
	seen, _ := testCache(t)
	batches := [][]article.Article{{
		{Title: "study of alpha"},
		{Title: "alpha review"},
		{Title: "alpha alpha methods"},
	}}
	got, err := Reconcile(batches, []string{"alpha"}, seen)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(got))
	}
	if got[0].Title != "alpha alpha methods" {
		t.Errorf("expected highest score first, got %q", got[0].Title)
	}
	// The two 4.0 articles keep their input order.
	if got[1].Title != "study of alpha" || got[2].Title != "alpha review" {
		t.Errorf("expected ties in input order, got %q then %q", got[1].Title, got[2].Title)
	}
}

func TestReconcileCrossBatchDedupe(t *testing.T) {
	seen, _ := testCache(t)
	batches := [][]article.Article{
		{{Title: "Shared Finding", Source: article.SourceScholar}},
		{{Title: "SHARED FINDING", Source: article.SourceFeed}},
	}
	got, err := Reconcile(batches, nil, seen)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected cross-batch duplicate collapsed, got %d", len(got))
	}
	if got[0].Source != article.SourceScholar {
		t.Errorf("expected earlier batch to win, got %s", got[0].Source)
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	seen, _ := testCache(t)
	in := []article.Article{{Title: "Foo"}}
	if _, err := Reconcile([][]article.Article{in}, []string{"foo"}, seen); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if in[0].RelevanceScore != 0 {
		t.Errorf("expected input article unscored, got %v", in[0].RelevanceScore)
	}
}

func TestReconcileSaveFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	seen, err := cache.Open(filepath.Join(dir, "sub", "cache.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// Occupy the cache's parent with a regular file, so saving must fail.
	if err := os.WriteFile(filepath.Join(dir, "sub"), []byte("x"), 0o644); err != nil {
		t.Fatalf("writing blocker: %v", err)
	}
	if _, err := Reconcile([][]article.Article{{{Title: "Foo"}}}, nil, seen); err == nil {
		t.Error("expected save failure to propagate")
	}
}
