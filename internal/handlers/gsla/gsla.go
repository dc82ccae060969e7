// Package gsla implements the handler for the OceanCurrent gridded sea
// level anomaly products.
//
// Three naming templates are recognised, tried in order:
//
//	IMOS_OceanCurrent_HV_<yyyymmdd>T000000Z_GSLA_FV02_NRT00_C-<timestamp>.nc.gz  near real time
//	IMOS_OceanCurrent_HV_<yyyymmdd>T000000Z_GSLA_FV02_DM00_C-<timestamp>.nc.gz   delayed mode
//	IMOS_OceanCurrent_HV_<yyyy>_C-<timestamp>.nc.gz                             yearly archive
//
// Daily products are decompressed into a working copy before checking; the
// yearly archive is checked and published as delivered and never indexed.
package gsla

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// Name is the handler family identifier.
const Name = "gsla"

// Hierarchy segments.
const (
	baseSegment   = "OceanCurrent/GSLA"
	yearlySegment = "DM00/yearfiles"
)

// Year extraction: split the base name on '_', take field 3, first 4 chars.
const (
	fieldSep   = "_"
	yearField  = 3
	yearLength = 4
)

var (
	dailyPattern  = regexp.MustCompile(`^IMOS_OceanCurrent_HV_\d{8}T000000Z_GSLA_FV02_(NRT00|DM00)_C-\d{8}T\d{6}Z\.nc\.gz$`)
	yearlyPattern = regexp.MustCompile(`^IMOS_OceanCurrent_HV_\d{4}_C-\d{8}T\d{6}Z\.nc\.gz$`)
)

// categories maps a product code onto its category.
var categories = map[string]domain.Category{
	"NRT00": domain.CategoryNearRealTime,
	"DM00":  domain.CategoryDelayedMode,
}

// Ensure Handler implements the interface.
var _ driven.Handler = (*Handler)(nil)

// Handler is the gridded sea level anomaly handler.
type Handler struct {
	workDir string
	checks  []domain.CheckRequest
	newName func() string
}

// New creates a handler that decompresses into workDir and runs checks.
func New(workDir string, checks []domain.CheckRequest) *Handler {
	return &Handler{
		workDir: workDir,
		checks:  checks,
		newName: func() string { return uuid.New().String() },
	}
}

// Name returns the handler family identifier.
func (h *Handler) Name() string {
	return Name
}

// Classify matches the base name against the templates in priority order.
func (h *Handler) Classify(fileName string) domain.Classification {
	if m := dailyPattern.FindStringSubmatch(fileName); m != nil {
		year, ok := extractYear(fileName)
		if !ok {
			return domain.NoMatch()
		}
		return domain.Matched(categories[m[1]], map[string]string{
			domain.FieldYear:        year,
			domain.FieldProductCode: m[1],
		})
	}
	if yearlyPattern.MatchString(fileName) {
		year, ok := extractYear(fileName)
		if !ok {
			return domain.NoMatch()
		}
		return domain.Matched(domain.CategoryDelayedModeYearly, map[string]string{
			domain.FieldYear: year,
		})
	}
	return domain.NoMatch()
}

func extractYear(fileName string) (string, bool) {
	fields := strings.Split(fileName, fieldSep)
	if len(fields) <= yearField || len(fields[yearField]) < yearLength {
		return "", false
	}
	return fields[yearField][:yearLength], true
}

// ResolveHierarchy places daily products under their product code and year,
// and yearly archives under the yearfiles segment.
func (h *Handler) ResolveHierarchy(_ context.Context, file *domain.IncomingFile, cls domain.Classification) (domain.HierarchyPath, error) {
	switch cls.Category {
	case domain.CategoryDelayedModeYearly:
		return domain.NewHierarchyPath(baseSegment, yearlySegment, file.Name)
	case domain.CategoryNearRealTime, domain.CategoryDelayedMode:
		code, year := cls.Field(domain.FieldProductCode), cls.Field(domain.FieldYear)
		if code == "" || year == "" {
			return "", fmt.Errorf("%w: classification of %s lacks product code or year", domain.ErrResolution, file.Name)
		}
		return domain.NewHierarchyPath(baseSegment, code, year, file.Name)
	default:
		return "", fmt.Errorf("%w: unexpected category %q", domain.ErrResolution, cls.Category)
	}
}

// Prepare decompresses daily products into a uuid-named working copy.
func (h *Handler) Prepare(_ context.Context, file *domain.IncomingFile, cls domain.Classification) (func() error, error) {
	noop := func() error { return nil }
	if cls.Category == domain.CategoryDelayedModeYearly {
		return noop, nil
	}

	dst := filepath.Join(h.workDir, h.newName()+"-"+strings.TrimSuffix(file.Name, ".gz"))
	release := func() error {
		if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	if err := gunzip(file.Path, dst); err != nil {
		// Remove whatever was partially written before reporting.
		_ = release()
		return noop, fmt.Errorf("decompress %s: %w", file.Name, err)
	}
	file.WorkingCopy = dst
	return release, nil
}

func gunzip(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return malformed(err)
	}
	defer zr.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, corruptionReader{zr}); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// malformed marks a decode failure as bad input rather than a system fault.
// An empty or truncated stream is malformed too.
func malformed(err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %w", domain.ErrInvalidFormat, err)
}

// corruptionReader tags errors from the gzip stream so they are not
// confused with write errors on the working copy.
type corruptionReader struct {
	r io.Reader
}

func (c corruptionReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if err != nil && err != io.EOF {
		err = malformed(err)
	}
	return n, err
}

// Checks returns the configured named checks.
func (h *Handler) Checks() []domain.CheckRequest {
	return h.checks
}

// PublishOptions never indexes the yearly archive.
func (h *Handler) PublishOptions(cls domain.Classification, base domain.PublishOptions) domain.PublishOptions {
	if cls.Category == domain.CategoryDelayedModeYearly {
		base.Index = false
	}
	return base
}
