package artifact

import (
	"encoding/json"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var (
	ErrNotFound        = errors.New("artifact not found")
	ErrAlreadyRecorded = errors.New("artifact already recorded")
	ErrSelfReference   = errors.New("artifact cannot be derived from itself")
)

const stageInput = "input"

// Record stores a. Records are immutable: a key can be written once. An
// unknown Source is recorded first as a raw input, so every Source a record
// names already exists and the graph stays acyclic.
func (s *implStore) Record(a Artifact) error {
	if a.Key == "" {
		return errors.New("artifact key is required")
	}
	if a.Key == a.Source {
		return ErrSelfReference
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get([]byte(a.Key)) != nil {
			return fmt.Errorf("%w: %s", ErrAlreadyRecorded, a.Key)
		}

		if a.Source != "" && b.Get([]byte(a.Source)) == nil {
			if err := put(b, Artifact{Key: a.Source, Stage: stageInput, CreatedAt: a.CreatedAt}); err != nil {
				return err
			}
		}
		return put(b, a)
	})
}

func put(b *bolt.Bucket, a Artifact) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return b.Put([]byte(a.Key), data)
}

func (s *implStore) Lookup(key string) (*Artifact, error) {
	var a *Artifact
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		a, err = get(tx.Bucket(bucketName), key)
		return err
	})
	return a, err
}

func get(b *bolt.Bucket, key string) (*Artifact, error) {
	data := b.Get([]byte(key))
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", key, err)
	}
	return &a, nil
}

// Lineage returns key's record followed by each ancestor, ending at the raw input.
func (s *implStore) Lineage(key string) ([]Artifact, error) {
	var chain []Artifact
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		seen := make(map[string]bool)
		for k := key; k != ""; {
			if seen[k] {
				return fmt.Errorf("lineage cycle at %s", k)
			}
			seen[k] = true

			a, err := get(b, k)
			if err != nil {
				return err
			}
			chain = append(chain, *a)
			k = a.Source
		}
		return nil
	})
	return chain, err
}
