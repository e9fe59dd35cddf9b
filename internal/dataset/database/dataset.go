package database

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	xdr "github.com/davecgh/go-xdr/xdr2"
	bolt "go.etcd.io/bbolt"

	"aoa/internal/database"
	"aoa/internal/dataset/model"
	"aoa/internal/util"
)

const bucket = "dataset:"

var ErrNotFound = errors.New("dataset not found")

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

// Save stores a dataset under its name, replacing any previous version.
func (db *DB) Save(_ context.Context, dataset model.Dataset) error {
	buffer := util.GetBytesBuffer()
	defer util.PutBytesBuffer(buffer)
	if _, err := xdr.Marshal(buffer, dataset); err != nil {
		return fmt.Errorf("encode dataset %q: %w", dataset.Name, err)
	}

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if err := b.Put([]byte(dataset.Name), buffer.Bytes()); err != nil {
			return fmt.Errorf("put to bucket: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}

func (db *DB) Find(_ context.Context, name string) (model.Dataset, error) {
	var dataset model.Dataset
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrNotFound
		}
		raw := b.Get([]byte(name))
		if raw == nil {
			return ErrNotFound
		}
		if _, err := xdr.Unmarshal(bytes.NewReader(raw), &dataset); err != nil {
			return fmt.Errorf("decode dataset %q: %w", name, err)
		}
		return nil
	}); err != nil {
		return model.Dataset{}, err
	}

	return dataset, nil
}

func (db *DB) Names() ([]string, error) {
	var names []string
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			names = append(names, string(k))
		}
		return nil
	})

	return names, err
}

func (db *DB) Delete(_ context.Context, name string) error {
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(name))
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}
