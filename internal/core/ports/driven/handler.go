package driven

import (
	"context"

	"github.com/oceandata/ingest/internal/core/domain"
)

// Handler implements one handler family: the rules that classify a file
// name, place it in the hierarchy and prepare it for checking.
type Handler interface {
	// Name returns the handler family identifier.
	Name() string

	// Classify matches a base file name against the handler's ruleset.
	// It has no side effects.
	Classify(fileName string) domain.Classification

	// ResolveHierarchy computes the hierarchy path of a classified file.
	// It must return the same path for the same input on every call.
	ResolveHierarchy(ctx context.Context, file *domain.IncomingFile, cls domain.Classification) (domain.HierarchyPath, error)

	// Prepare performs classification-dependent pre-processing, such as
	// decompression into file.WorkingCopy. The returned release func deletes
	// anything Prepare created and is safe to call when nothing was created.
	Prepare(ctx context.Context, file *domain.IncomingFile, cls domain.Classification) (release func() error, err error)

	// Checks returns the ordered named checks this handler runs.
	// An empty list means the structural probe only.
	Checks() []domain.CheckRequest

	// PublishOptions adjusts the configured publish options for a classification.
	PublishOptions(cls domain.Classification, base domain.PublishOptions) domain.PublishOptions
}

// PathEvaluator asks an external collaborator for a file's hierarchy path.
type PathEvaluator interface {
	// Evaluate returns the single-line path printed by the collaborator.
	// A non-zero exit or empty output is a resolution failure.
	Evaluate(ctx context.Context, path string) (string, error)
}
