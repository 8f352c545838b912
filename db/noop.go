package db

import "context"

// NoopStore discards everything. It is used when no manifest path is set.
type NoopStore struct{}

func (NoopStore) SaveRun(context.Context, Run, []Dataset) error { return nil }

func (NoopStore) ListDatasets(context.Context, string) ([]Dataset, error) { return nil, nil }

func (NoopStore) Close() error { return nil }

// Open returns a SQLite store at path, or a NoopStore when path is empty.
func Open(path string) (Store, error) {
	if path == "" {
		return NoopStore{}, nil
	}
	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}
