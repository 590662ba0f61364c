package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

var _ Store = (*LevelDBStore)(nil)

// LevelDBStore is a Store backed by an on-disk LevelDB database.
type LevelDBStore struct {
	dir string
	db  *leveldb.DB
}

// NewLevelDB opens (or creates) a LevelDB database in dir.
func NewLevelDB(dir string) (*LevelDBStore, error) {
	opts := &opt.Options{
		NoWriteMerge: true,
	}

	db, err := leveldb.OpenFile(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB at %s: %w", dir, err)
	}

	return &LevelDBStore{
		dir: dir,
		db:  db,
	}, nil
}

func (l *LevelDBStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	value, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(value), true, nil
}

func (l *LevelDBStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.db.Put([]byte(key), []byte(value), &opt.WriteOptions{Sync: true})
}

func (l *LevelDBStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.db.Delete([]byte(key), &opt.WriteOptions{Sync: true})
}

func (l *LevelDBStore) Close() error {
	return l.db.Close()
}
