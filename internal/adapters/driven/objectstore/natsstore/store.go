// Package natsstore stores objects in a NATS JetStream object store bucket.
package natsstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
	"github.com/oceandata/ingest/internal/logger"
)

// Verify interface compliance.
var _ driven.ObjectStore = (*Store)(nil)

// Connection defaults.
const (
	DefaultClientName    = "ingest"
	defaultTimeout       = 5 * time.Second
	defaultReconnectWait = 2 * time.Second
	defaultMaxReconnects = 10
)

// Dial connects to the NATS server at url.
// Disconnects and reconnects are logged.
func Dial(url string) (*nats.Conn, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: nats url is required", domain.ErrInvalidConfig)
	}
	opts := []nats.Option{
		nats.Name(DefaultClientName),
		nats.Timeout(defaultTimeout),
		nats.MaxReconnects(defaultMaxReconnects),
		nats.ReconnectWait(defaultReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return nc, nil
}

// Open binds to bucket, creating it if it does not exist.
func Open(ctx context.Context, nc *nats.Conn, bucket string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: nats bucket is required", domain.ErrInvalidConfig)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	obs, err := js.CreateOrUpdateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      bucket,
		Description: "Published production files",
	})
	if err != nil {
		return nil, fmt.Errorf("open object store %s: %w", bucket, err)
	}
	return New(obs, bucket), nil
}

// Store adapts a JetStream object store to the write-once object store port.
type Store struct {
	obs    jetstream.ObjectStore
	bucket string
}

// New wraps an already bound object store.
func New(obs jetstream.ObjectStore, bucket string) *Store {
	return &Store{obs: obs, bucket: bucket}
}

// Exists reports whether a live object is stored at key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.obs.GetInfo(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, jetstream.ErrObjectNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", s.Location(key), err)
	}
}

// Put uploads srcPath under key unless an object is already there.
// JetStream has no create-only put, so a concurrent writer between the
// check and the upload can still win.
func (s *Store) Put(ctx context.Context, key, srcPath string) error {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := s.obs.Put(ctx, jetstream.ObjectMeta{
		Name:     key,
		Metadata: map[string]string{"source": filepath.Base(srcPath)},
	}, f)
	if err != nil {
		return fmt.Errorf("put %s: %w", s.Location(key), err)
	}
	logger.Debug("Stored %s (%d bytes, %s)", s.Location(key), info.Size, info.Digest)
	return nil
}

// Location returns nats://bucket/key.
func (s *Store) Location(key string) string {
	return "nats://" + s.bucket + "/" + key
}
