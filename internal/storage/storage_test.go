package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.etcd.io/bbolt"
)

func testPair(fitID string, created time.Time) ArtifactPair {
	return ArtifactPair{
		Info: ArtifactInfo{
			FitID:        fitID,
			CreatedAt:    created,
			SourcePath:   "investments.csv",
			TrainingRows: 7,
			HoldoutRows:  2,
			Estimators:   100,
			Seed:         42,
			Classes:      []string{"closed", "operating"},
		},
		Model:   []byte(`{"fit_id":"` + fitID + `"}`),
		Encoder: []byte(`{"classes":["closed","operating"]}`),
	}
}

func TestNew(t *testing.T) {
	tempDir := t.TempDir()

	store, err := New(tempDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if store.db == nil {
		t.Error("Store database is nil")
	}

	dbPath := filepath.Join(tempDir, DBFile)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if store.Location() != dbPath {
		t.Errorf("Expected location %s, got %s", dbPath, store.Location())
	}
}

func TestNew_CreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create store in nested dir: %v", err)
	}
	defer store.Close()
}

func TestStore_Close(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Errorf("Error closing store: %v", err)
	}

	// Test closing already closed store
	if err := store.Close(); err != nil {
		t.Errorf("Error closing already closed store: %v", err)
	}
}

func TestStore_CloseNilDB(t *testing.T) {
	store := &Store{db: nil}
	if err := store.Close(); err != nil {
		t.Errorf("Expected no error for nil db, got: %v", err)
	}
}

func TestSaveAndLoadArtifactPair(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	want := testPair("fit-1", created)

	if err := store.SaveArtifactPair(want); err != nil {
		t.Fatalf("Failed to save pair: %v", err)
	}

	got, err := store.LoadArtifactPair()
	if err != nil {
		t.Fatalf("Failed to load pair: %v", err)
	}

	if got.Info.FitID != "fit-1" {
		t.Errorf("Expected fit id fit-1, got %s", got.Info.FitID)
	}
	if !got.Info.CreatedAt.Equal(created) {
		t.Errorf("Expected created at %v, got %v", created, got.Info.CreatedAt)
	}
	if string(got.Model) != string(want.Model) {
		t.Errorf("Model bytes differ: %s", got.Model)
	}
	if string(got.Encoder) != string(want.Encoder) {
		t.Errorf("Encoder bytes differ: %s", got.Encoder)
	}
	if len(got.Info.Classes) != 2 {
		t.Errorf("Expected 2 classes, got %v", got.Info.Classes)
	}
}

func TestSaveArtifactPair_Overwrites(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	now := time.Now()
	if err := store.SaveArtifactPair(testPair("first", now)); err != nil {
		t.Fatalf("Failed to save first pair: %v", err)
	}
	if err := store.SaveArtifactPair(testPair("second", now.Add(time.Second))); err != nil {
		t.Fatalf("Failed to save second pair: %v", err)
	}

	got, err := store.LoadArtifactPair()
	if err != nil {
		t.Fatalf("Failed to load pair: %v", err)
	}
	if got.Info.FitID != "second" {
		t.Errorf("Expected latest pair to win, got %s", got.Info.FitID)
	}

	history, err := store.ListArtifacts()
	if err != nil {
		t.Fatalf("Failed to list artifacts: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history))
	}
	if history[0].FitID != "second" || history[1].FitID != "first" {
		t.Errorf("Expected newest first, got %s, %s", history[0].FitID, history[1].FitID)
	}
}

func TestSaveArtifactPair_RejectsIncomplete(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	pair := testPair("fit", time.Now())
	pair.Encoder = nil
	if err := store.SaveArtifactPair(pair); err == nil {
		t.Error("Expected error for pair without encoder")
	}

	pair = testPair("", time.Now())
	if err := store.SaveArtifactPair(pair); err == nil {
		t.Error("Expected error for pair without fit id")
	}

	if _, err := store.LoadArtifactPair(); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("Expected ErrArtifactNotFound after rejected saves, got %v", err)
	}
}

func TestLoadArtifactPair_Empty(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	_, err = store.LoadArtifactPair()
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("Expected ErrArtifactNotFound, got %v", err)
	}
}

func TestLoadArtifactPair_Mismatch(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if err := store.SaveArtifactPair(testPair("fit-a", time.Now())); err != nil {
		t.Fatalf("Failed to save pair: %v", err)
	}

	// Simulate an encoder left over from another run
	err = store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(artifactsBucket)).Put([]byte(keyEncoderFitID), []byte("fit-b"))
	})
	if err != nil {
		t.Fatalf("Failed to tamper encoder fit id: %v", err)
	}

	_, err = store.LoadArtifactPair()
	if !errors.Is(err, ErrArtifactMismatch) {
		t.Errorf("Expected ErrArtifactMismatch, got %v", err)
	}
}

func TestOpen_MissingDatabase(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("Expected ErrArtifactNotFound, got %v", err)
	}
}

func TestDirReader(t *testing.T) {
	dir := t.TempDir()
	reader := DirReader{Dir: dir}

	if _, err := reader.LoadArtifactPair(); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("Expected ErrArtifactNotFound before training, got %v", err)
	}

	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.SaveArtifactPair(testPair("fit-r", time.Now())); err != nil {
		t.Fatalf("Failed to save pair: %v", err)
	}
	// release the writer lock before reading
	store.Close()

	pair, err := reader.LoadArtifactPair()
	if err != nil {
		t.Fatalf("Failed to read pair: %v", err)
	}
	if pair.Info.FitID != "fit-r" {
		t.Errorf("Expected fit-r, got %s", pair.Info.FitID)
	}
	if reader.Location() != filepath.Join(dir, DBFile) {
		t.Errorf("Unexpected location %s", reader.Location())
	}
}

func TestConcurrentReads(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if err := store.SaveArtifactPair(testPair("fit-c", time.Now())); err != nil {
		t.Fatalf("Failed to save pair: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.LoadArtifactPair(); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent read failed: %v", err)
	}
}
