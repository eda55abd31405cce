// Package store provides a thin bbolt wrapper for riverdata's local data
// store.
//
// The store is an intentional data accumulator, not a transparent HTTP cache:
// series are written explicitly via `fetch sites --store` and read by the
// store, analyze, and snapshot commands. No TTL, no auto-invalidation.
//
// Buckets:
//
//	series    — extracted time series keyed by site+window
//	gage_meta — site/variable metadata for fetched gages
//	snapshots — saved command lines for reproducible workflows
//	_meta     — internal: schema version, created_at
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/gaugeworks/riverdata/internal/model"
)

// Current schema version. Bump when bucket layout or key format changes.
const schemaVersion = 1

// Bucket name constants.
var (
	bucketSeries    = []byte("series")
	bucketGageMeta  = []byte("gage_meta")
	bucketSnapshots = []byte("snapshots")
	bucketInternal  = []byte("_meta")
)

// AllBuckets lists every user-facing bucket for stats and clear operations.
var AllBuckets = []string{"series", "gage_meta", "snapshots"}

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
// Runs schema migrations on every open.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string {
	return s.db.Path()
}

// ─── Migrations ───────────────────────────────────────────────────────────────

// migrate ensures all buckets exist and schema is current.
func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketSeries, bucketGageMeta, bucketSnapshots, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(fmt.Sprintf("%d", schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// ─── Gage Metadata ────────────────────────────────────────────────────────────

// PutGageMeta stores metadata for a gage, stamping FetchedAt.
func (s *Store) PutGageMeta(meta model.GageMeta) error {
	meta.FetchedAt = time.Now().UTC()
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding gage meta: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketGageMeta).Put([]byte(meta.SiteCode), data)
	})
}

// GetGageMeta retrieves metadata for a gage by site code.
// Returns (meta, true, nil) if found, (zero, false, nil) if not found.
func (s *Store) GetGageMeta(siteCode string) (model.GageMeta, bool, error) {
	var meta model.GageMeta
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketGageMeta).Get([]byte(siteCode))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &meta)
	})
	if err != nil {
		return meta, false, err
	}
	return meta, meta.SiteCode != "", nil
}

// ListGageMeta returns all stored gage metadata in key order.
func (s *Store) ListGageMeta() ([]model.GageMeta, error) {
	var metas []model.GageMeta
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketGageMeta).ForEach(func(k, v []byte) error {
			var m model.GageMeta
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			metas = append(metas, m)
			return nil
		})
	})
	return metas, err
}

// ─── Time Series ──────────────────────────────────────────────────────────────

// SeriesKey builds the canonical key for a stored series entry.
// Format: site:<code>|period:<p>|start:<s>|end:<e>
// Empty optional fields are omitted.
func SeriesKey(siteCode, period, start, end string) string {
	key := "site:" + siteCode
	if period != "" {
		key += "|period:" + period
	}
	if start != "" {
		key += "|start:" + start
	}
	if end != "" {
		key += "|end:" + end
	}
	return key
}

// storedSeries is the on-disk envelope for a series entry. Records are plain
// JSON objects as delivered by the service, so they marshal unchanged.
type storedSeries struct {
	SiteCode  string           `json:"site_code"`
	FetchedAt time.Time        `json:"fetched_at"`
	Series    model.TimeSeries `json:"series"`
}

// PutSeries stores an extracted time series under the given key.
func (s *Store) PutSeries(key string, data *model.SeriesData) error {
	envelope := storedSeries{
		SiteCode:  data.SiteCode,
		FetchedAt: time.Now().UTC(),
		Series:    data.Series,
	}
	b, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encoding series: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSeries).Put([]byte(key), b)
	})
}

// GetSeries retrieves a stored series by key.
// Returns (data, true, nil) if found, (zero, false, nil) if not found.
func (s *Store) GetSeries(key string) (*model.SeriesData, bool, error) {
	var envelope storedSeries
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSeries).Get([]byte(key))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &envelope)
	})
	if err != nil {
		return nil, false, err
	}
	if envelope.SiteCode == "" {
		return nil, false, nil
	}
	return &model.SeriesData{SiteCode: envelope.SiteCode, Series: envelope.Series}, true, nil
}

// ListSeriesKeys returns all keys in the series bucket for a given site
// prefix. Pass siteCode="" to list all keys.
func (s *Store) ListSeriesKeys(siteCode string) ([]string, error) {
	prefix := []byte("site:")
	if siteCode != "" {
		prefix = []byte("site:" + siteCode)
	}
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSeries).Cursor()
		for k, _ := c.Seek(prefix); k != nil; k, _ = c.Next() {
			if len(k) < len(prefix) || string(k[:len(prefix)]) != string(prefix) {
				break
			}
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}

// ─── Snapshots ────────────────────────────────────────────────────────────────

// Snapshot represents a saved command for reproducible workflows.
type Snapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CommandLine string    `json:"command_line"`
	CreatedAt   time.Time `json:"created_at"`
}

// PutSnapshot saves a snapshot. The key is snap:<ID>.
func (s *Store) PutSnapshot(snap Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Put([]byte("snap:"+snap.ID), b)
	})
}

// GetSnapshot retrieves a snapshot by ID.
func (s *Store) GetSnapshot(id string) (Snapshot, bool, error) {
	var snap Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSnapshots).Get([]byte("snap:" + id))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &snap)
	})
	if err != nil {
		return snap, false, err
	}
	return snap, snap.ID != "", nil
}

// ListSnapshots returns all snapshots in key order.
func (s *Store) ListSnapshots() ([]Snapshot, error) {
	var snaps []Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).ForEach(func(k, v []byte) error {
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return err
			}
			snaps = append(snaps, snap)
			return nil
		})
	})
	return snaps, err
}

// DeleteSnapshot removes a snapshot by ID.
func (s *Store) DeleteSnapshot(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Delete([]byte("snap:" + id))
	})
}

// ─── Stats & Maintenance ──────────────────────────────────────────────────────

// BucketStats holds row count and byte size for a single bucket.
type BucketStats struct {
	Name  string
	Count int
	Bytes int64
}

// Stats returns row counts and approximate sizes for all buckets.
func (s *Store) Stats() ([]BucketStats, error) {
	buckets := map[string][]byte{
		"series":    bucketSeries,
		"gage_meta": bucketGageMeta,
		"snapshots": bucketSnapshots,
	}

	var stats []BucketStats
	err := s.db.View(func(tx *bolt.Tx) error {
		for name, bname := range buckets {
			b := tx.Bucket(bname)
			if b == nil {
				continue
			}
			var count int
			var bytes int64
			b.ForEach(func(k, v []byte) error {
				count++
				bytes += int64(len(k) + len(v))
				return nil
			})
			stats = append(stats, BucketStats{Name: name, Count: count, Bytes: bytes})
		}
		return nil
	})
	return stats, err
}

// ClearBucket deletes all entries in the named bucket.
func (s *Store) ClearBucket(name string) error {
	bname := []byte(name)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bname); err != nil {
			return fmt.Errorf("clearing bucket %s: %w", name, err)
		}
		_, err := tx.CreateBucket(bname)
		return err
	})
}

// ClearAll deletes all entries from every user-facing bucket.
func (s *Store) ClearAll() error {
	for _, name := range AllBuckets {
		if err := s.ClearBucket(name); err != nil {
			return err
		}
	}
	return nil
}
