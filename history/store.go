/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mikeb26/donuts/s3store"
)

// Store persists a History between pairing runs. Loading from a store that
// has never been saved returns an empty History.
type Store interface {
	Load(ctx context.Context) (*History, error)
	Save(ctx context.Context, h *History) error
	Close()
}

// Open returns the Store named by uri:
//   - s3://bucket/key for an object in S3
//   - postgres://... or postgresql://... for a Postgres database
//   - anything else is a local file path
func Open(ctx context.Context, uri string) (Store, error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		u, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("history.open: %w", err)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("history.open: %v must be s3://bucket/key", uri)
		}
		bucket := s3store.New(u.Host, false)
		if err := bucket.Init(ctx); err != nil {
			return nil, err
		}
		return NewS3Store(bucket, key), nil
	case strings.HasPrefix(uri, "postgres://"),
		strings.HasPrefix(uri, "postgresql://"):
		return NewPgStore(ctx, uri)
	case uri == "":
		return nil, errors.New("history.open: empty history location")
	default:
		return &FileStore{Path: uri}, nil
	}
}

func decode(data []byte) (*History, error) {
	h := New()
	if err := json.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	if h.Seen == nil {
		h.Seen = make(map[string]map[string]bool)
	}

	return h, nil
}

// FileStore keeps the history as indented JSON in a local file
type FileStore struct {
	Path string
}

func (fs *FileStore) Load(ctx context.Context) (*History, error) {
	data, err := os.ReadFile(fs.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("history.load: can not read %v: %w", fs.Path, err)
	}

	return decode(data)
}

// Save writes to a temporary file in the same directory and renames it
// over Path, so a failed save leaves the previous history intact.
func (fs *FileStore) Save(ctx context.Context, h *History) error {
	data, err := json.MarshalIndent(h, "", " ")
	if err != nil {
		return fmt.Errorf("history.save: can not marshal json: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.Path), ".history-*.json")
	if err != nil {
		return fmt.Errorf("history.save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("history.save: can not write %v: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("history.save: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.Path); err != nil {
		return fmt.Errorf("history.save: %w", err)
	}

	return nil
}

func (fs *FileStore) Close() {}

// S3Store keeps the history as a JSON object in S3
type S3Store struct {
	bucket *s3store.Bucket
	key    string
}

func NewS3Store(bucket *s3store.Bucket, key string) *S3Store {
	return &S3Store{bucket: bucket, key: key}
}

func (ss *S3Store) Load(ctx context.Context) (*History, error) {
	data, err := ss.bucket.Get(ctx, ss.key)
	if err != nil {
		if errors.Is(err, s3store.ErrNotFound) {
			return New(), nil
		}
		return nil, fmt.Errorf("history.load: %w", err)
	}

	return decode(data)
}

func (ss *S3Store) Save(ctx context.Context, h *History) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("history.save: can not marshal json: %w", err)
	}
	if err := ss.bucket.Put(ctx, ss.key, data); err != nil {
		return fmt.Errorf("history.save: %w", err)
	}

	return nil
}

func (ss *S3Store) Close() {}
