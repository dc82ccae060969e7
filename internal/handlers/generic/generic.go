// Package generic implements the catch-all handler: an optional name filter,
// hierarchy paths computed by an external evaluator and a caller-supplied
// list of named checks.
package generic

import (
	"context"
	"fmt"
	"regexp"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// Name is the handler family identifier.
const Name = "generic"

// Ensure Handler implements the interface.
var _ driven.Handler = (*Handler)(nil)

// Handler is the generic handler.
type Handler struct {
	filter    *regexp.Regexp
	evaluator driven.PathEvaluator
	checks    []domain.CheckRequest
}

// Option configures a Handler.
type Option func(*Handler)

// WithFilter accepts only base names matching re.
func WithFilter(re *regexp.Regexp) Option {
	return func(h *Handler) {
		h.filter = re
	}
}

// WithChecks sets the ordered named checks.
func WithChecks(checks []domain.CheckRequest) Option {
	return func(h *Handler) {
		h.checks = checks
	}
}

// New creates a generic handler resolving paths with evaluator.
func New(evaluator driven.PathEvaluator, opts ...Option) *Handler {
	h := &Handler{evaluator: evaluator}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CompileFilter compiles a filter expression. An empty expression accepts
// every name.
func CompileFilter(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: regex %q: %v", domain.ErrInvalidInput, expr, err)
	}
	return re, nil
}

// Name returns the handler family identifier.
func (h *Handler) Name() string {
	return Name
}

// Classify matches the name against the filter.
func (h *Handler) Classify(fileName string) domain.Classification {
	if fileName == "" {
		return domain.NoMatch()
	}
	if h.filter != nil && !h.filter.MatchString(fileName) {
		return domain.NoMatch()
	}
	return domain.Matched(domain.CategoryGeneric, nil)
}

// ResolveHierarchy asks the evaluator where the file belongs.
func (h *Handler) ResolveHierarchy(ctx context.Context, file *domain.IncomingFile, _ domain.Classification) (domain.HierarchyPath, error) {
	if h.evaluator == nil {
		return "", fmt.Errorf("%w: no path evaluator configured", domain.ErrResolution)
	}
	out, err := h.evaluator.Evaluate(ctx, file.Path)
	if err != nil {
		return "", err
	}
	return domain.ParseHierarchyPath(out)
}

// Prepare does nothing: generic files are checked as delivered.
func (h *Handler) Prepare(context.Context, *domain.IncomingFile, domain.Classification) (func() error, error) {
	return func() error { return nil }, nil
}

// Checks returns the configured named checks.
func (h *Handler) Checks() []domain.CheckRequest {
	return h.checks
}

// PublishOptions returns the configured options unchanged.
func (h *Handler) PublishOptions(_ domain.Classification, base domain.PublishOptions) domain.PublishOptions {
	return base
}
