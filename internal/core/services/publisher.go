package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
	"github.com/oceandata/ingest/internal/logger"
)

// PublishRequest is everything a publish needs about one validated file.
type PublishRequest struct {
	File           *domain.IncomingFile
	Path           domain.HierarchyPath
	Handler        string
	Classification domain.Classification
	Options        domain.PublishOptions
}

// Publisher places a validated file in the durable object store and the
// serving mirror, optionally indexing its content first.
type Publisher struct {
	objects    driven.ObjectStore
	mirror     driven.Mirror
	indexer    driven.Indexer
	inspector  driven.ContentInspector
	objectRoot string
	now        func() time.Time
}

// NewPublisher creates a publisher. indexer and inspector may be nil; without
// an indexer the Index option is ignored.
func NewPublisher(
	objects driven.ObjectStore,
	mirror driven.Mirror,
	indexer driven.Indexer,
	inspector driven.ContentInspector,
	objectRoot string,
) *Publisher {
	return &Publisher{
		objects:    objects,
		mirror:     mirror,
		indexer:    indexer,
		inspector:  inspector,
		objectRoot: objectRoot,
		now:        time.Now,
	}
}

// Publish updates both destinations. Indexing, when requested, completes
// before anything is placed; an index failure aborts the publish. The two
// destinations are independent: both are attempted and their failures
// joined, so a partial publish is possible and left for an idempotent re-run.
func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (*domain.PublishRecord, error) {
	info, err := os.Stat(req.File.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", domain.ErrPublish, req.File.Name, err)
	}

	record := &domain.PublishRecord{
		Source:    req.File.Name,
		Path:      req.Path,
		Overwrite: req.Options.ForceOverwriteOnMirror,
		Bytes:     info.Size(),
	}

	// 1. INDEX (against the content path, i.e. the working copy if any)
	if req.Options.Index && p.indexer != nil {
		if err := p.index(ctx, req); err != nil {
			record.Destinations = append(record.Destinations, domain.DestinationResult{
				Destination: domain.DestinationIndex,
				Status:      domain.StatusFailed,
				Location:    req.Path.String(),
				Err:         err,
			})
			return record, fmt.Errorf("%w: %w", domain.ErrIndex, err)
		}
		record.Destinations = append(record.Destinations, domain.DestinationResult{
			Destination: domain.DestinationIndex,
			Status:      domain.StatusWritten,
			Location:    req.Path.String(),
		})
	}

	// 2. OBJECT STORE (the original artifact; existing object is already done)
	objRes := p.putObject(ctx, req)
	record.Destinations = append(record.Destinations, objRes)

	// 3. SERVING MIRROR
	mirRes := p.writeMirror(ctx, req)
	record.Destinations = append(record.Destinations, mirRes)

	var errs []error
	for _, res := range []domain.DestinationResult{objRes, mirRes} {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Destination, res.Err))
		}
	}
	if len(errs) > 0 {
		return record, fmt.Errorf("%w: %w", domain.ErrPublish, errors.Join(errs...))
	}
	return record, nil
}

func (p *Publisher) putObject(ctx context.Context, req PublishRequest) domain.DestinationResult {
	key := req.Path.Under(p.objectRoot)
	res := domain.DestinationResult{
		Destination: domain.DestinationObjectStore,
		Location:    p.objects.Location(key),
	}

	exists, err := p.objects.Exists(ctx, key)
	if err != nil {
		res.Status, res.Err = domain.StatusFailed, err
		return res
	}
	if exists {
		logger.Info("Object %s already stored, leaving it untouched", key)
		res.Status = domain.StatusAlreadyPresent
		return res
	}

	err = p.objects.Put(ctx, key, req.File.Path)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		res.Status = domain.StatusAlreadyPresent
	case err != nil:
		res.Status, res.Err = domain.StatusFailed, err
	default:
		res.Status = domain.StatusWritten
	}
	return res
}

func (p *Publisher) writeMirror(ctx context.Context, req PublishRequest) domain.DestinationResult {
	res := domain.DestinationResult{
		Destination: domain.DestinationMirror,
		Location:    p.mirror.Location(req.Path),
	}

	written, err := p.mirror.Write(ctx, req.Path, req.File.Path, req.Options.ForceOverwriteOnMirror)
	switch {
	case err != nil:
		res.Status, res.Err = domain.StatusFailed, err
	case written:
		res.Status = domain.StatusWritten
	default:
		res.Status = domain.StatusAlreadyPresent
	}
	return res
}

func (p *Publisher) index(ctx context.Context, req PublishRequest) error {
	content := req.File.ContentPath()

	size, digest, err := digestFile(content)
	if err != nil {
		return err
	}

	entry := domain.IndexEntry{
		Path:      req.Path,
		FileName:  req.File.Name,
		Handler:   req.Handler,
		Category:  req.Classification.Category,
		Fields:    req.Classification.Fields,
		Size:      size,
		SHA256:    digest,
		IndexedAt: p.now().UTC(),
	}

	if p.inspector != nil {
		format, attrs, err := p.inspector.Inspect(ctx, content)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", req.File.Name, err)
		}
		entry.Format = format
		entry.Attributes = attrs
	}

	return p.indexer.Index(ctx, entry)
}

// digestFile returns the size and hex SHA-256 of a file.
func digestFile(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}
