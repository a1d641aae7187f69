package history

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func createTestStore(t *testing.T) *BboltStore {
	t.Helper()

	store, err := NewBboltStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewBboltStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(id string, startedAt time.Time) *Record {
	return &Record{
		ID:        id,
		StartedAt: startedAt,
		Pattern:   "needle",
		InputPath: "/var/data/corpus.txt",
		Workers:   4,
		Chunks:    12,
		Bytes:     98304,
		Matches:   7,
		Duration:  1530 * time.Millisecond,
	}
}

func TestSaveAndGetRun(t *testing.T) {
	store := createTestStore(t)

	rec := testRecord("run-1", time.Now())
	rec.Output = []byte("first match\n\nsecond match\n\n")

	if err := store.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := store.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}

	if got.ID != rec.ID || got.Pattern != rec.Pattern || got.InputPath != rec.InputPath {
		t.Errorf("loaded record = %+v, want %+v", got, rec)
	}
	if got.Workers != rec.Workers || got.Chunks != rec.Chunks || got.Bytes != rec.Bytes {
		t.Errorf("loaded counters = (%d, %d, %d), want (%d, %d, %d)",
			got.Workers, got.Chunks, got.Bytes, rec.Workers, rec.Chunks, rec.Bytes)
	}
	if got.Matches != rec.Matches || got.Duration != rec.Duration {
		t.Errorf("loaded matches/duration = (%d, %v), want (%d, %v)",
			got.Matches, got.Duration, rec.Matches, rec.Duration)
	}
	if !got.StartedAt.Equal(rec.StartedAt) {
		t.Errorf("loaded StartedAt = %v, want %v", got.StartedAt, rec.StartedAt)
	}
	if !bytes.Equal(got.Output, rec.Output) {
		t.Errorf("loaded output = %q, want %q", got.Output, rec.Output)
	}
}

func TestGetRunMissing(t *testing.T) {
	store := createTestStore(t)

	_, err := store.GetRun("no-such-run")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestSaveRunWithoutOutput(t *testing.T) {
	store := createTestStore(t)

	if err := store.SaveRun(testRecord("run-silent", time.Now())); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := store.GetRun("run-silent")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if len(got.Output) != 0 {
		t.Errorf("output = %q, want empty", got.Output)
	}
}

func TestListRunsMostRecentFirst(t *testing.T) {
	store := createTestStore(t)

	now := time.Now()
	// Saved out of chronological order on purpose
	for _, rec := range []*Record{
		testRecord("run-middle", now.Add(-time.Hour)),
		testRecord("run-newest", now),
		testRecord("run-oldest", now.Add(-2*time.Hour)),
	} {
		if err := store.SaveRun(rec); err != nil {
			t.Fatalf("SaveRun(%s) failed: %v", rec.ID, err)
		}
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}

	wantOrder := []string{"run-newest", "run-middle", "run-oldest"}
	if len(runs) != len(wantOrder) {
		t.Fatalf("listed %d runs, want %d", len(runs), len(wantOrder))
	}
	for i, want := range wantOrder {
		if runs[i].ID != want {
			t.Errorf("runs[%d].ID = %s, want %s", i, runs[i].ID, want)
		}
	}
}

func TestListRunsHonorsLimit(t *testing.T) {
	store := createTestStore(t)

	now := time.Now()
	for i := 0; i < 5; i++ {
		rec := testRecord("run-"+string(rune('a'+i)), now.Add(time.Duration(i)*time.Minute))
		if err := store.SaveRun(rec); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	runs, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("listed %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-e" || runs[1].ID != "run-d" {
		t.Errorf("listed %s, %s; want run-e, run-d", runs[0].ID, runs[1].ID)
	}
}

func TestListRunsSkipsOutputBlobs(t *testing.T) {
	store := createTestStore(t)

	rec := testRecord("run-1", time.Now())
	rec.Output = []byte("matched paragraph\n\n")
	if err := store.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("listed %d runs, want 1", len(runs))
	}
	if len(runs[0].Output) != 0 {
		t.Errorf("listing loaded %d output bytes, want 0", len(runs[0].Output))
	}
}

func TestArchiveSmallPayloadStaysRaw(t *testing.T) {
	store := createTestStore(t)

	data := []byte("short matched output\n")
	blob := store.archive(data)

	if blob[0] != archiveRaw {
		t.Errorf("flag byte = 0x%02x, want raw (0x%02x)", blob[0], archiveRaw)
	}

	got, err := store.unarchive(blob)
	if err != nil {
		t.Fatalf("unarchive failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip = %q, want %q", got, data)
	}
}

func TestArchiveLargePayloadCompresses(t *testing.T) {
	store := createTestStore(t)

	data := bytes.Repeat([]byte("the same paragraph over and over\n\n"), 400)
	if len(data) < minCompressSize {
		t.Fatalf("test payload too small: %d bytes", len(data))
	}

	blob := store.archive(data)

	if blob[0] != archiveZstd {
		t.Errorf("flag byte = 0x%02x, want zstd (0x%02x)", blob[0], archiveZstd)
	}
	if len(blob) >= len(data) {
		t.Errorf("compressed blob is %d bytes for %d input, want smaller", len(blob), len(data))
	}

	got, err := store.unarchive(blob)
	if err != nil {
		t.Fatalf("unarchive failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip lost data: got %d bytes, want %d", len(got), len(data))
	}
}

func TestUnarchiveRejectsUnknownFlag(t *testing.T) {
	store := createTestStore(t)

	if _, err := store.unarchive([]byte{0x7f, 1, 2, 3}); err == nil {
		t.Fatal("unarchive should reject an unknown flag byte")
	}
}

func TestLargeOutputSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := NewBboltStore(dbPath)
	if err != nil {
		t.Fatalf("NewBboltStore failed: %v", err)
	}

	rec := testRecord("run-big", time.Now())
	rec.Output = bytes.Repeat([]byte("a long matched record body\n\n"), 500)
	if err := store.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewBboltStore(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetRun("run-big")
	if err != nil {
		t.Fatalf("GetRun after reopen failed: %v", err)
	}
	if !bytes.Equal(got.Output, rec.Output) {
		t.Errorf("output after reopen: got %d bytes, want %d", len(got.Output), len(rec.Output))
	}
}

func TestNewBboltStoreCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dirs", "history.db")

	store, err := NewBboltStore(dbPath)
	if err != nil {
		t.Fatalf("NewBboltStore failed: %v", err)
	}
	store.Close()
}

func TestNoOpStore(t *testing.T) {
	store := NewNoOpStore()

	if err := store.SaveRun(testRecord("run-1", time.Now())); err != nil {
		t.Errorf("SaveRun = %v, want nil", err)
	}

	if _, err := store.GetRun("run-1"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun err = %v, want ErrRunNotFound", err)
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Errorf("ListRuns err = %v, want nil", err)
	}
	if len(runs) != 0 {
		t.Errorf("ListRuns returned %d runs, want 0", len(runs))
	}

	if err := store.Close(); err != nil {
		t.Errorf("Close = %v, want nil", err)
	}
}
