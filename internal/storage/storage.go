// Package storage persists fitted artifact pairs for the outcome classifier.
// It uses BoltDB as the underlying storage engine so a model and its label
// encoder are always written and read inside a single transaction.
//
// The current pair lives in the artifacts bucket and is overwritten by every
// training run; a metadata entry per run is appended to the history bucket.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	artifactsBucket = "artifacts" // Current model/encoder pair
	historyBucket   = "history"   // ArtifactInfo per training run

	// DBFile is the database file name inside the artifact directory.
	DBFile = "vcstatus-artifacts.db"
)

const (
	keyModel        = "model"
	keyModelFitID   = "model_fit_id"
	keyEncoder      = "encoder"
	keyEncoderFitID = "encoder_fit_id"
	keyInfo         = "info"
)

var (
	// ErrArtifactNotFound is returned when no artifact pair has been stored.
	ErrArtifactNotFound = errors.New("artifact pair not found")
	// ErrArtifactMismatch is returned when the stored model and encoder
	// belong to different training runs.
	ErrArtifactMismatch = errors.New("model and encoder fit ids differ")
)

// ArtifactInfo describes one training run.
type ArtifactInfo struct {
	FitID        string    `json:"fit_id"`
	CreatedAt    time.Time `json:"created_at"`
	SourcePath   string    `json:"source_path"`
	CleanedRows  int       `json:"cleaned_rows"`
	FilteredRows int       `json:"filtered_rows"`
	TrainingRows int       `json:"training_rows"`
	HoldoutRows  int       `json:"holdout_rows"`
	Estimators   int       `json:"estimators"`
	Seed         int64     `json:"seed"`
	Classes      []string  `json:"classes"`
}

// ArtifactPair is a serialized model together with its label encoder.
type ArtifactPair struct {
	Info    ArtifactInfo
	Model   []byte
	Encoder []byte
}

// Store provides persistent storage for artifact pairs using BoltDB.
type Store struct {
	db   *bbolt.DB
	path string
}

// New opens or creates the artifact database inside dir for reading and writing.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	dbPath := filepath.Join(dir, DBFile)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(artifactsBucket)); err != nil {
			return fmt.Errorf("create artifacts bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(historyBucket)); err != nil {
			return fmt.Errorf("create history bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: dbPath}, nil
}

// Open opens an existing artifact database read-only. A missing database
// yields ErrArtifactNotFound.
func Open(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, DBFile)
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", dbPath, ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("stat database: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Location returns the database file path.
func (s *Store) Location() string {
	return s.path
}

// SaveArtifactPair replaces the current pair and records its info in the
// history bucket, all in one transaction.
func (s *Store) SaveArtifactPair(pair ArtifactPair) error {
	if pair.Info.FitID == "" {
		return fmt.Errorf("artifact pair has no fit id")
	}
	if len(pair.Model) == 0 || len(pair.Encoder) == 0 {
		return fmt.Errorf("artifact pair %s is incomplete", pair.Info.FitID)
	}

	info, err := json.Marshal(pair.Info)
	if err != nil {
		return fmt.Errorf("marshal artifact info: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(artifactsBucket))
		fitID := []byte(pair.Info.FitID)

		puts := []struct {
			key string
			val []byte
		}{
			{keyModel, pair.Model},
			{keyModelFitID, fitID},
			{keyEncoder, pair.Encoder},
			{keyEncoderFitID, fitID},
			{keyInfo, info},
		}
		for _, p := range puts {
			if err := b.Put([]byte(p.key), p.val); err != nil {
				return fmt.Errorf("put %s: %w", p.key, err)
			}
		}

		h := tx.Bucket([]byte(historyBucket))
		key := fmt.Sprintf("%020d_%s", pair.Info.CreatedAt.UnixNano(), pair.Info.FitID)
		return h.Put([]byte(key), info)
	})
}

// LoadArtifactPair reads the current pair. It returns ErrArtifactNotFound if
// either half is absent and ErrArtifactMismatch if their fit ids differ.
func (s *Store) LoadArtifactPair() (ArtifactPair, error) {
	var pair ArtifactPair

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(artifactsBucket))
		if b == nil {
			return ErrArtifactNotFound
		}

		model := b.Get([]byte(keyModel))
		encoder := b.Get([]byte(keyEncoder))
		info := b.Get([]byte(keyInfo))
		if model == nil || encoder == nil || info == nil {
			return ErrArtifactNotFound
		}

		modelFit := string(b.Get([]byte(keyModelFitID)))
		encoderFit := string(b.Get([]byte(keyEncoderFitID)))
		if modelFit == "" || modelFit != encoderFit {
			return fmt.Errorf("%w: model %q, encoder %q", ErrArtifactMismatch, modelFit, encoderFit)
		}

		if err := json.Unmarshal(info, &pair.Info); err != nil {
			return fmt.Errorf("unmarshal artifact info: %w", err)
		}
		if pair.Info.FitID != modelFit {
			return fmt.Errorf("%w: info %q, model %q", ErrArtifactMismatch, pair.Info.FitID, modelFit)
		}

		// bbolt values are only valid inside the transaction
		pair.Model = append([]byte(nil), model...)
		pair.Encoder = append([]byte(nil), encoder...)
		return nil
	})

	return pair, err
}

// ListArtifacts returns the info of every training run, newest first.
func (s *Store) ListArtifacts() ([]ArtifactInfo, error) {
	var infos []ArtifactInfo

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(historyBucket))
		if b == nil {
			return nil
		}

		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var info ArtifactInfo
			if err := json.Unmarshal(v, &info); err != nil {
				continue // Skip malformed records
			}
			infos = append(infos, info)
		}
		return nil
	})

	return infos, err
}

// DirReader loads the current pair by opening the database read-only for
// each call, so a trainer can replace the pair between reads.
type DirReader struct {
	Dir string
}

func (r DirReader) LoadArtifactPair() (ArtifactPair, error) {
	s, err := Open(r.Dir)
	if err != nil {
		return ArtifactPair{}, err
	}
	defer s.Close()
	return s.LoadArtifactPair()
}

func (r DirReader) Location() string {
	return filepath.Join(r.Dir, DBFile)
}
