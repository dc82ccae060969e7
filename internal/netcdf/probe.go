package netcdf

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// Ensure Probe implements the interfaces.
var (
	_ driven.FormatProbe      = (*Probe)(nil)
	_ driven.ContentInspector = (*Probe)(nil)
)

// Probe is the structural check for NetCDF content.
type Probe struct{}

// NewProbe creates a probe.
func NewProbe() *Probe {
	return &Probe{}
}

// Probe returns nil when path holds a readable NetCDF header.
func (p *Probe) Probe(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := Open(path); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidFormat, err)
	}
	return nil
}

// Inspect returns the container format and global attributes of path.
func (p *Probe) Inspect(ctx context.Context, path string) (string, map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	h, err := Open(path)
	if err != nil {
		return "", nil, err
	}
	return string(h.Format), h.Attributes, nil
}

// Open reads the header of the file at path, decompressing gzip input.
func Open(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, closeFn, err := decompressed(f)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return ReadHeader(r)
}

// decompressed wraps r in a gzip reader when it starts with the gzip magic.
func decompressed(r io.Reader) (io.Reader, func(), error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil || magic[0] != 0x1f || magic[1] != 0x8b {
		return br, func() {}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: gzip: %v", ErrNotNetCDF, err)
	}
	return zr, func() { _ = zr.Close() }, nil
}
