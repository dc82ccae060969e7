package domain

import "fmt"

// ObjectBackend selects the durable object store implementation.
type ObjectBackend string

// Available object store backends.
const (
	// ObjectBackendFilesystem stores objects in a local directory tree.
	ObjectBackendFilesystem ObjectBackend = "filesystem"

	// ObjectBackendNATS stores objects in a NATS JetStream object store bucket.
	ObjectBackendNATS ObjectBackend = "nats"
)

// IsValid returns true if the backend is recognised.
func (b ObjectBackend) IsValid() bool {
	return b == ObjectBackendFilesystem || b == ObjectBackendNATS
}

// CheckDefinition binds a check name to an external executable.
type CheckDefinition struct {
	// Name is the registry key.
	Name string

	// Command is the executable to run.
	Command string

	// Args are passed before the file path.
	Args []string

	// Facility, when set, is passed to the checker as a facility identifier.
	Facility string
}

// PathSettings locate the directories an invocation uses.
type PathSettings struct {
	WorkDir   string
	LogDir    string
	ErrorDir  string
	ReportDir string
}

// PublishSettings configure the publish destinations.
type PublishSettings struct {
	ObjectBackend        ObjectBackend
	ObjectRoot           string
	ObjectDir            string
	NATSURL              string
	NATSBucket           string
	MirrorDir            string
	IndexDir             string
	Index                bool
	ForceOverwriteMirror bool
}

// ReportSettings configure failure reporting.
type ReportSettings struct {
	Recipient   string
	NATSSubject string
}

// WatchSettings configure the watch mode dispatcher.
type WatchSettings struct {
	Workers int
	Rate    float64
}

// Settings is the explicit configuration handed to every component.
// No component consults ambient process state.
type Settings struct {
	Paths   PathSettings
	Publish PublishSettings
	Report  ReportSettings
	Watch   WatchSettings

	// MetricsTextfile is where Prometheus metrics are written, if set.
	MetricsTextfile string

	// Checks are the named checks available to the registry.
	Checks []CheckDefinition

	// GSLAChecks are the named checks run by the gridded-product handler.
	GSLAChecks []CheckRequest
}

// DefaultSettings returns settings with defaults applied. Paths.WorkDir is
// left empty: the process temp dir is resolved by the caller.
func DefaultSettings() Settings {
	return Settings{
		Publish: PublishSettings{
			ObjectBackend:        ObjectBackendFilesystem,
			ObjectRoot:           "IMOS",
			NATSBucket:           "production",
			ForceOverwriteMirror: true,
		},
		Report: ReportSettings{
			Recipient: DefaultRecipient,
		},
		Watch: WatchSettings{
			Workers: 4,
			Rate:    10,
		},
	}
}

// Validate checks the settings can drive a pipeline.
func (s Settings) Validate() error {
	if !s.Publish.ObjectBackend.IsValid() {
		return fmt.Errorf("%w: unknown object backend %q", ErrInvalidConfig, s.Publish.ObjectBackend)
	}
	switch s.Publish.ObjectBackend {
	case ObjectBackendFilesystem:
		if s.Publish.ObjectDir == "" {
			return fmt.Errorf("%w: publish.object_dir is required for the filesystem backend", ErrInvalidConfig)
		}
	case ObjectBackendNATS:
		if s.Publish.NATSURL == "" || s.Publish.NATSBucket == "" {
			return fmt.Errorf("%w: publish.nats_url and publish.nats_bucket are required for the nats backend", ErrInvalidConfig)
		}
	}
	if s.Publish.MirrorDir == "" {
		return fmt.Errorf("%w: publish.mirror_dir is required", ErrInvalidConfig)
	}
	if s.Publish.Index && s.Publish.IndexDir == "" {
		return fmt.Errorf("%w: publish.index_dir is required when indexing is enabled", ErrInvalidConfig)
	}
	if s.Paths.WorkDir == "" {
		return fmt.Errorf("%w: paths.work_dir is required", ErrInvalidConfig)
	}
	if s.Watch.Workers < 1 {
		return fmt.Errorf("%w: watch.workers must be positive", ErrInvalidConfig)
	}
	for _, c := range s.Checks {
		if c.Command == "" {
			return fmt.Errorf("%w: check %q has no command", ErrInvalidConfig, c.Name)
		}
	}
	return nil
}
