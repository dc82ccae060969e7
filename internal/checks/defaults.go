package checks

import (
	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// FromSettings builds a registry holding one exec check per configured
// definition. Every checker runs with env.
func FromSettings(defs []domain.CheckDefinition, env []string) (*Registry, error) {
	r := NewRegistry()
	builder := execBuilder(env)
	for _, def := range defs {
		if err := r.Build(def, builder); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func execBuilder(env []string) BuilderFunc {
	return func(def domain.CheckDefinition) (driven.Check, error) {
		return NewExecCheck(def, env)
	}
}
