package store

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

const defaultBucket = "xandalyze"

// BoltKV is a single-bucket bbolt store. This is the default backend:
// one local file, no external service.
type BoltKV struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the store file at path.
func OpenBolt(path string) (*BoltKV, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(defaultBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltKV{db: db}, nil
}

func (s *BoltKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(defaultBucket)).Get([]byte(key))
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, value != nil, nil
}

func (s *BoltKV) Put(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(defaultBucket)).Put([]byte(key), value)
	})
}

func (s *BoltKV) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(defaultBucket)).Delete([]byte(key))
	})
}

func (s *BoltKV) Close() error {
	return s.db.Close()
}
