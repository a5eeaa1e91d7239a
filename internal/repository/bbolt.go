package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	runsBucket     = "runs"
	metadataBucket = "metadata"
	lastRunKey     = "last_run"
	schemaVersion  = 1
)

var (
	// ErrRunNotFound is returned when a run record cannot be found
	ErrRunNotFound = errors.New("run not found")
	ErrNilRecord   = errors.New("cannot save nil run record")
	ErrEmptyID     = errors.New("run ID cannot be empty")
)

// BboltRepository stores run history in a bbolt file.
type BboltRepository struct {
	db *bbolt.DB
}

// NewBboltRepository creates a new bbolt repository
func NewBboltRepository(dbPath string) (*BboltRepository, error) {
	options := &bbolt.Options{
		Timeout: 1 * time.Second,
	}

	db, err := bbolt.Open(dbPath, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &BboltRepository{
		db: db,
	}

	if err := repo.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// initialize sets up buckets and schema
func (r *BboltRepository) initialize() error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		if err != nil {
			return fmt.Errorf("failed to create runs bucket: %w", err)
		}

		meta, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return fmt.Errorf("failed to create metadata bucket: %w", err)
		}

		versionBytes := []byte(fmt.Sprintf("%d", schemaVersion))
		if err := meta.Put([]byte("schema_version"), versionBytes); err != nil {
			return fmt.Errorf("failed to store schema version: %w", err)
		}

		return nil
	})
}

// Save persists a run record and marks it as the most recent run. A record
// without an ID gets a fresh one.
func (r *BboltRepository) Save(record *RunRecord) error {
	if record == nil {
		return ErrNilRecord
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(runsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", runsBucket)
		}

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal run: %w", err)
		}

		key := []byte(record.ID.String())
		if err := bucket.Put(key, data); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}

		return tx.Bucket([]byte(metadataBucket)).Put([]byte(lastRunKey), key)
	})
}

// Find retrieves a run by ID
func (r *BboltRepository) Find(id uuid.UUID) (*RunRecord, error) {
	if id == uuid.Nil {
		return nil, ErrEmptyID
	}

	var record *RunRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		record, err = findIn(tx, []byte(id.String()))
		return err
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Last retrieves the most recently saved run.
func (r *BboltRepository) Last() (*RunRecord, error) {
	var record *RunRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		key := tx.Bucket([]byte(metadataBucket)).Get([]byte(lastRunKey))
		if key == nil {
			return ErrRunNotFound
		}

		var err error
		record, err = findIn(tx, key)
		return err
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

func findIn(tx *bbolt.Tx, key []byte) (*RunRecord, error) {
	bucket := tx.Bucket([]byte(runsBucket))
	if bucket == nil {
		return nil, fmt.Errorf("bucket not found: %s", runsBucket)
	}

	data := bucket.Get(key)
	if data == nil {
		return nil, ErrRunNotFound
	}

	record := &RunRecord{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}

	return record, nil
}

// FindAll retrieves all runs, most recent first.
func (r *BboltRepository) FindAll() ([]*RunRecord, error) {
	var records []*RunRecord

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(runsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", runsBucket)
		}

		return bucket.ForEach(func(k, v []byte) error {
			record := &RunRecord{}
			if err := json.Unmarshal(v, record); err != nil {
				return fmt.Errorf("failed to unmarshal run: %w", err)
			}

			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	return records, nil
}

// Delete removes a run
func (r *BboltRepository) Delete(id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrEmptyID
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(runsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", runsBucket)
		}

		key := []byte(id.String())
		if bucket.Get(key) == nil {
			return ErrRunNotFound
		}

		meta := tx.Bucket([]byte(metadataBucket))
		if string(meta.Get([]byte(lastRunKey))) == string(key) {
			if err := meta.Delete([]byte(lastRunKey)); err != nil {
				return err
			}
		}

		return bucket.Delete(key)
	})
}

// Close closes the database
func (r *BboltRepository) Close() error {
	return r.db.Close()
}
