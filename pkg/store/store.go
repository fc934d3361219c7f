// Package store persists the last decoded physical value of every
// signal, one bbolt bucket per bus. The watch command writes to it;
// nothing in this module reads the values back when watch starts.
package store

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store wraps a bbolt database with one bucket per bus.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) a bbolt database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func bucketName(bus string) []byte {
	return []byte("bus:" + bus)
}

func signalKey(messageID uint32, signalName string) []byte {
	return []byte(fmt.Sprintf("%d:%s", messageID, signalName))
}

// SetSignal records the last known physical value of one signal.
func (s *Store) SetSignal(bus string, messageID uint32, signalName string, physical float64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName(bus))
		if err != nil {
			return err
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(physical))
		return b.Put(signalKey(messageID, signalName), buf)
	})
}

// GetSignal returns the last known physical value of one signal, if
// any was ever recorded.
func (s *Store) GetSignal(bus string, messageID uint32, signalName string) (float64, bool, error) {
	var value float64
	var found bool

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(bus))
		if b == nil {
			return nil
		}
		raw := b.Get(signalKey(messageID, signalName))
		if raw == nil {
			return nil
		}
		value = math.Float64frombits(binary.BigEndian.Uint64(raw))
		found = true
		return nil
	})
	return value, found, err
}

// ClearBus drops every persisted value for a bus.
func (s *Store) ClearBus(bus string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketName(bus)) == nil {
			return nil
		}
		return tx.DeleteBucket(bucketName(bus))
	})
}
