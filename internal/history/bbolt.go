package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"
	"go.etcd.io/bbolt"
)

var (
	// Bucket names
	runsBucket    = []byte("runs")
	outputsBucket = []byte("outputs")
)

// Output blobs below this size are stored raw; compression overhead
// dominates on small payloads.
const minCompressSize = 4096

// Archive flags, the first byte of every stored output blob.
const (
	archiveRaw  = 0x00
	archiveZstd = 0x01
)

// BboltStore keeps run records in a bbolt database. Metadata and output
// blobs live in separate buckets so listings never touch the large
// values.
type BboltStore struct {
	db *bbolt.DB

	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
}

// NewBboltStore opens the history database, creating it if needed.
func NewBboltStore(dbPath string) (*BboltStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(runsBucket); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(outputsBucket); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	compressor, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init compressor: %w", err)
	}

	decompressor, err := zstd.NewReader(nil)
	if err != nil {
		compressor.Close()
		db.Close()
		return nil, fmt.Errorf("init decompressor: %w", err)
	}

	return &BboltStore{
		db:           db,
		compressor:   compressor,
		decompressor: decompressor,
	}, nil
}

// SaveRun persists one completed run.
func (s *BboltStore) SaveRun(rec *Record) error {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode run record: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(runsBucket).Put([]byte(rec.ID), encoded); err != nil {
			return err
		}
		if len(rec.Output) == 0 {
			return nil
		}
		return tx.Bucket(outputsBucket).Put([]byte(rec.ID), s.archive(rec.Output))
	})
}

// GetRun loads one run and its archived output.
func (s *BboltStore) GetRun(id string) (*Record, error) {
	var rec *Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(runsBucket).Get([]byte(id))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}

		rec = &Record{}
		if err := json.Unmarshal(v, rec); err != nil {
			return fmt.Errorf("decode run record: %w", err)
		}

		if blob := tx.Bucket(outputsBucket).Get([]byte(id)); blob != nil {
			out, err := s.unarchive(blob)
			if err != nil {
				return fmt.Errorf("unarchive output for %s: %w", id, err)
			}
			rec.Output = out
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// ListRuns returns up to limit run records, most recent first, without
// their output blobs. limit <= 0 means no limit.
func (s *BboltStore) ListRuns(limit int) ([]*Record, error) {
	var recs []*Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(runsBucket).ForEach(func(k, v []byte) error {
			rec := &Record{}
			if err := json.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("decode run record %s: %w", k, err)
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].StartedAt.After(recs[j].StartedAt)
	})

	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}

	return recs, nil
}

// Close releases the database and the compression engines.
func (s *BboltStore) Close() error {
	s.compressor.Close()
	s.decompressor.Close()
	return s.db.Close()
}

// archive frames an output blob for storage: a flag byte, then the
// payload, zstd-compressed past the size threshold.
func (s *BboltStore) archive(data []byte) []byte {
	if len(data) < minCompressSize {
		blob := make([]byte, 1+len(data))
		blob[0] = archiveRaw
		copy(blob[1:], data)
		return blob
	}

	return s.compressor.EncodeAll(data, []byte{archiveZstd})
}

// unarchive restores an output blob from its stored framing.
func (s *BboltStore) unarchive(blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return nil, nil
	}

	switch blob[0] {
	case archiveRaw:
		// Copy the payload since it's only valid during the transaction
		out := make([]byte, len(blob)-1)
		copy(out, blob[1:])
		return out, nil
	case archiveZstd:
		return s.decompressor.DecodeAll(blob[1:], nil)
	default:
		return nil, fmt.Errorf("unknown archive flag 0x%02x", blob[0])
	}
}
