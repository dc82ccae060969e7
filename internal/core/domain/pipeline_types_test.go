package domain

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIncomingFile(t *testing.T) {
	t.Run("absolute path and base name", func(t *testing.T) {
		f, err := NewIncomingFile("/data/incoming/a.nc.gz")
		require.NoError(t, err)
		assert.Equal(t, "/data/incoming/a.nc.gz", f.Path)
		assert.Equal(t, "a.nc.gz", f.Name)
		assert.False(t, f.HasWorkingCopy())
		assert.Equal(t, f.Path, f.ContentPath())
	})

	t.Run("relative path is made absolute", func(t *testing.T) {
		f, err := NewIncomingFile("a.nc")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(f.Path))
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewIncomingFile("")
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("working copy is the content path", func(t *testing.T) {
		f := &IncomingFile{Path: "/in/a.nc.gz", Name: "a.nc.gz", WorkingCopy: "/tmp/x.nc"}
		assert.Equal(t, "/tmp/x.nc", f.ContentPath())
	})
}

func TestClassification(t *testing.T) {
	no := NoMatch()
	assert.False(t, no.Matched)
	assert.Equal(t, "", no.Field(FieldYear))

	c := Matched(CategoryNearRealTime, map[string]string{FieldYear: "2023"})
	assert.True(t, c.Matched)
	assert.Equal(t, "2023", c.Field(FieldYear))
	assert.True(t, c.Category.IsValid())
	assert.False(t, Category("weekly").IsValid())

	assert.NotNil(t, Matched(CategoryGeneric, nil).Fields)
}

func TestHierarchyPath(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p, err := NewHierarchyPath("OceanCurrent", "GSLA", "NRT00", "2023", "a.nc.gz")
		require.NoError(t, err)
		assert.Equal(t, "OceanCurrent/GSLA/NRT00/2023/a.nc.gz", p.String())
		assert.Equal(t, "a.nc.gz", p.Base())
		assert.Len(t, p.Segments(), 5)
		assert.Equal(t, "IMOS/OceanCurrent/GSLA/NRT00/2023/a.nc.gz", p.Under("/IMOS/"))
		assert.Equal(t, p.String(), p.Under(""))
	})

	invalid := []string{"", "/abs/path", "trailing/", "a//b", "a/../b", "./a", "a\\b"}
	for _, s := range invalid {
		t.Run("invalid "+s, func(t *testing.T) {
			_, err := ParseHierarchyPath(s)
			assert.True(t, errors.Is(err, ErrResolution))
		})
	}
}

func TestCheckOutcome(t *testing.T) {
	t.Run("empty outcome does not pass", func(t *testing.T) {
		assert.False(t, CheckOutcome{}.Passed())
	})

	t.Run("all pass", func(t *testing.T) {
		o := CheckOutcome{Results: []CheckResult{
			{Name: StructuralCheckName, Status: CheckPassed},
			{Name: "cf", Status: CheckPassed},
		}}
		assert.True(t, o.Passed())
		assert.Nil(t, o.FirstFailure())
	})

	t.Run("fault is a failure", func(t *testing.T) {
		o := CheckOutcome{Results: []CheckResult{
			{Name: StructuralCheckName, Status: CheckPassed},
			{Name: "imos", Status: CheckFaulted},
		}}
		assert.False(t, o.Passed())
		require.NotNil(t, o.FirstFailure())
		assert.Equal(t, "imos", o.FirstFailure().Name)
	})
}

func TestParseCheckList(t *testing.T) {
	tests := []struct {
		in   string
		want []CheckRequest
	}{
		{"", []CheckRequest{}},
		{"cf", []CheckRequest{{Name: "cf"}}},
		{"cf imos:1.4", []CheckRequest{{Name: "cf"}, {Name: "imos", Version: "1.4"}}},
		{"cf, imos:1.4,,acdd", []CheckRequest{{Name: "cf"}, {Name: "imos", Version: "1.4"}, {Name: "acdd"}}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCheckList(tt.in))
		})
	}

	assert.Equal(t, "imos:1.4", CheckRequest{Name: "imos", Version: "1.4"}.String())
	assert.Equal(t, "cf", CheckRequest{Name: "cf"}.String())
}

func TestState_Transitions(t *testing.T) {
	forward := []State{
		StateReceived, StateClassified, StateHierarchyResolved,
		StateChecked, StatePublished, StateDone,
	}
	for i := 0; i < len(forward)-1; i++ {
		assert.True(t, CanTransition(forward[i], forward[i+1]), "%s -> %s", forward[i], forward[i+1])
		assert.True(t, CanTransition(forward[i], StateFailed))
		assert.True(t, CanTransition(forward[i], StateRejected))
	}

	assert.False(t, CanTransition(StateReceived, StateChecked))
	assert.False(t, CanTransition(StateDone, StateFailed))
	assert.False(t, CanTransition(StateRejected, StateClassified))
	assert.True(t, StateFailed.IsTerminal())
	assert.False(t, StatePublished.IsTerminal())
}

func TestNewReport(t *testing.T) {
	finished := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	o := &Outcome{
		ID:         "id-1",
		File:       &IncomingFile{Path: "/in/random_file.txt", Name: "random_file.txt"},
		Handler:    "gsla",
		State:      StateRejected,
		Stage:      StateClassified,
		Err:        NewStageError(StateClassified, "random_file.txt", ErrNoPatternMatched),
		FinishedAt: finished,
	}

	r := NewReport(o, "")

	assert.Equal(t, DefaultRecipient, r.Recipient)
	assert.Equal(t, "/in/random_file.txt", r.File)
	assert.Equal(t, KindData, r.Kind)
	assert.Equal(t, SeverityInfo, r.Severity)
	assert.Equal(t, "no pattern matched", r.Message)
	assert.Equal(t, finished, r.Time)

	assert.Equal(t, "ops@example.org", NewReport(o, "ops@example.org").Recipient)
}

func TestSettings_Validate(t *testing.T) {
	valid := func() Settings {
		s := DefaultSettings()
		s.Paths.WorkDir = "/srv/work"
		s.Publish.ObjectDir = "/srv/objects"
		s.Publish.MirrorDir = "/srv/mirror"
		return s
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"unknown backend", func(s *Settings) { s.Publish.ObjectBackend = "s4" }},
		{"filesystem without dir", func(s *Settings) { s.Publish.ObjectDir = "" }},
		{"nats without url", func(s *Settings) { s.Publish.ObjectBackend = ObjectBackendNATS }},
		{"no mirror", func(s *Settings) { s.Publish.MirrorDir = "" }},
		{"index without dir", func(s *Settings) { s.Publish.Index = true }},
		{"no workers", func(s *Settings) { s.Watch.Workers = 0 }},
		{"no work dir", func(s *Settings) { s.Paths.WorkDir = "" }},
		{"check without command", func(s *Settings) { s.Checks = []CheckDefinition{{Name: "cf"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			assert.True(t, errors.Is(s.Validate(), ErrInvalidConfig))
		})
	}
}
