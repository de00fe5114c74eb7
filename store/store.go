// Package store persists parsed battery documents in a local Bolt
// database, keyed by battery id. Each battery is stored as an opaque
// JSON blob under a denormalized index record used for listing without
// deserializing whole documents.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"github.com/pylontech-tools/pylonhist/history"
)

var (
	bucketBatteries = []byte("batteries")
	bucketIndex     = []byte("index")
)

// Store is a handle on the local battery database.
type Store struct {
	db *bolt.DB
}

// IndexRecord is the denormalized listing entry kept beside each
// document blob.
type IndexRecord struct {
	BatteryID   string    `json:"batteryId"`
	DisplayName string    `json:"displayName"`
	Filename    string    `json:"filename,omitempty"`
	LoadedAt    time.Time `json:"loadedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Stats summarizes the database contents.
type Stats struct {
	BatteriesCount      int `json:"batteriesCount"`
	TotalHistoryEntries int `json:"totalHistoryEntries"`
	SizeBytes           int `json:"databaseSize"`
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open battery database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketBatteries); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketIndex)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize battery database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes one battery document, replacing any previous record with
// the same id.
func (s *Store) Save(doc *history.Document) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return saveInTx(tx, doc)
	})
}

// SaveAll writes a batch of documents in a single transaction.
func (s *Store) SaveAll(docs []*history.Document) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, doc := range docs {
			if err := saveInTx(tx, doc); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveInTx(tx *bolt.Tx, doc *history.Document) error {
	if doc.BatteryID == "" {
		return fmt.Errorf("refusing to save battery with empty id")
	}
	blob, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize battery %s: %w", doc.BatteryID, err)
	}
	index := IndexRecord{
		BatteryID:   doc.BatteryID,
		DisplayName: doc.DisplayName,
		Filename:    doc.Filename,
		LoadedAt:    doc.LoadedAt,
		CreatedAt:   time.Now(),
	}
	indexBlob, err := json.Marshal(index)
	if err != nil {
		return err
	}
	key := []byte(doc.BatteryID)
	if err := tx.Bucket(bucketBatteries).Put(key, blob); err != nil {
		return err
	}
	return tx.Bucket(bucketIndex).Put(key, indexBlob)
}

// Get loads one battery document by id. Returns nil when absent.
func (s *Store) Get(id string) (*history.Document, error) {
	var doc *history.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		blob := tx.Bucket(bucketBatteries).Get([]byte(id))
		if blob == nil {
			return nil
		}
		doc = &history.Document{}
		return json.Unmarshal(blob, doc)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load battery %s: %w", id, err)
	}
	return doc, nil
}

// GetAll loads every stored document. Records that no longer
// deserialize are skipped rather than failing the whole listing.
func (s *Store) GetAll() ([]*history.Document, error) {
	var docs []*history.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBatteries).ForEach(func(_, blob []byte) error {
			doc := &history.Document{}
			if err := json.Unmarshal(blob, doc); err != nil {
				return nil
			}
			docs = append(docs, doc)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// List returns the index records without deserializing documents.
func (s *Store) List() ([]IndexRecord, error) {
	var records []IndexRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketIndex).ForEach(func(_, blob []byte) error {
			var record IndexRecord
			if err := json.Unmarshal(blob, &record); err != nil {
				return nil
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes one battery.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketBatteries).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketIndex).Delete([]byte(id))
	})
}

// Rename updates a battery's display name in both the document blob and
// the index record.
func (s *Store) Rename(id, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		key := []byte(id)
		blob := tx.Bucket(bucketBatteries).Get(key)
		if blob == nil {
			return fmt.Errorf("no stored battery with id %s", id)
		}
		doc := &history.Document{}
		if err := json.Unmarshal(blob, doc); err != nil {
			return fmt.Errorf("failed to deserialize battery %s: %w", id, err)
		}
		doc.DisplayName = name
		return saveInTx(tx, doc)
	})
}

// Clear drops every stored battery.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketBatteries, bucketIndex} {
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

// Stats summarizes the stored collection.
func (s *Store) Stats() (Stats, error) {
	var stats Stats
	docs, err := s.GetAll()
	if err != nil {
		return stats, err
	}
	stats.BatteriesCount = len(docs)
	for _, doc := range docs {
		stats.TotalHistoryEntries += len(doc.History)
	}
	err = s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBatteries).ForEach(func(_, blob []byte) error {
			stats.SizeBytes += len(blob)
			return nil
		})
	})
	return stats, err
}
