package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
	"github.com/oceandata/ingest/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyWorkDir         = "paths.work_dir"
	keyLogDir          = "paths.log_dir"
	keyErrorDir        = "paths.error_dir"
	keyReportDir       = "paths.report_dir"
	keyObjectBackend   = "publish.object_backend"
	keyObjectRoot      = "publish.object_root"
	keyObjectDir       = "publish.object_dir"
	keyNATSURL         = "publish.nats_url"
	keyNATSBucket      = "publish.nats_bucket"
	keyMirrorDir       = "publish.mirror_dir"
	keyIndex           = "publish.index"
	keyIndexDir        = "publish.index_dir"
	keyForceOverwrite  = "publish.force_overwrite_mirror"
	keyRecipient       = "report.recipient"
	keyReportSubject   = "report.nats_subject"
	keyMetricsTextfile = "metrics.textfile"
	keyGSLAChecks      = "gsla.checks"
	keyWatchWorkers    = "watch.workers"
	keyWatchRate       = "watch.rate"

	checksPrefix = "checks."
)

// knownKeys are the scalar keys accepted by Set, besides checks.<name>.*.
var knownKeys = map[string]bool{
	keyWorkDir: true, keyLogDir: true, keyErrorDir: true, keyReportDir: true,
	keyObjectBackend: true, keyObjectRoot: true, keyObjectDir: true,
	keyNATSURL: true, keyNATSBucket: true, keyMirrorDir: true,
	keyIndex: true, keyIndexDir: true, keyForceOverwrite: true,
	keyRecipient: true, keyReportSubject: true, keyMetricsTextfile: true,
	keyGSLAChecks: true, keyWatchWorkers: true, keyWatchRate: true,
}

// SettingsService manages ingest settings.
type SettingsService struct {
	configStore    driven.ConfigStore
	defaultWorkDir string
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithDefaultWorkDir sets the working-copy directory used when
// paths.work_dir is not configured.
func WithDefaultWorkDir(dir string) SettingsOption {
	return func(s *SettingsService) {
		s.defaultWorkDir = dir
	}
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{configStore: configStore}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the effective settings.
func (s *SettingsService) Get() (domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := domain.Settings{
		Paths: domain.PathSettings{
			WorkDir:   s.getString(keyWorkDir, s.defaultWorkDir),
			LogDir:    s.configStore.GetString(keyLogDir),
			ErrorDir:  s.configStore.GetString(keyErrorDir),
			ReportDir: s.configStore.GetString(keyReportDir),
		},
		Publish: domain.PublishSettings{
			ObjectBackend:        domain.ObjectBackend(s.getString(keyObjectBackend, string(defaults.Publish.ObjectBackend))),
			ObjectRoot:           s.getString(keyObjectRoot, defaults.Publish.ObjectRoot),
			ObjectDir:            s.configStore.GetString(keyObjectDir),
			NATSURL:              s.configStore.GetString(keyNATSURL),
			NATSBucket:           s.getString(keyNATSBucket, defaults.Publish.NATSBucket),
			MirrorDir:            s.configStore.GetString(keyMirrorDir),
			IndexDir:             s.configStore.GetString(keyIndexDir),
			Index:                s.getBool(keyIndex, defaults.Publish.Index),
			ForceOverwriteMirror: s.getBool(keyForceOverwrite, defaults.Publish.ForceOverwriteMirror),
		},
		Report: domain.ReportSettings{
			Recipient:   s.getString(keyRecipient, defaults.Report.Recipient),
			NATSSubject: s.configStore.GetString(keyReportSubject),
		},
		Watch: domain.WatchSettings{
			Workers: s.getInt(keyWatchWorkers, defaults.Watch.Workers),
			Rate:    s.getFloat(keyWatchRate, defaults.Watch.Rate),
		},
		MetricsTextfile: s.configStore.GetString(keyMetricsTextfile),
	}

	for _, name := range s.gslaChecks() {
		settings.GSLAChecks = append(settings.GSLAChecks, domain.ParseCheckRequest(name))
	}

	checks, err := s.checkDefinitions()
	if err != nil {
		return settings, err
	}
	settings.Checks = checks

	return settings, nil
}

// Validate checks the effective settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// Set parses value according to the key and persists it. Booleans,
// integers and floats are stored typed; list keys take a comma-separated value.
func (s *SettingsService) Set(key, value string) error {
	if !knownKeys[key] && !isCheckKey(key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var typed any
	switch key {
	case keyIndex, keyForceOverwrite:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		typed = b
	case keyWatchWorkers:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case keyWatchRate:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		typed = f
	case keyObjectBackend:
		if !domain.ObjectBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown object backend %q", domain.ErrInvalidInput, value)
		}
		typed = value
	default:
		if key == keyGSLAChecks || strings.HasSuffix(key, ".args") {
			typed = splitList(value)
		} else {
			typed = value
		}
	}

	return s.configStore.Set(key, typed)
}

// checkDefinitions collects checks.<name>.{command,args,facility}.
func (s *SettingsService) checkDefinitions() ([]domain.CheckDefinition, error) {
	names := map[string]bool{}
	for _, key := range s.configStore.Keys(checksPrefix) {
		rest := strings.TrimPrefix(key, checksPrefix)
		name, field, ok := strings.Cut(rest, ".")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: malformed check key %q", domain.ErrInvalidConfig, key)
		}
		switch field {
		case "command", "args", "facility":
		default:
			return nil, fmt.Errorf("%w: unknown check field %q", domain.ErrInvalidConfig, key)
		}
		names[name] = true
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	defs := make([]domain.CheckDefinition, 0, len(sorted))
	for _, name := range sorted {
		prefix := checksPrefix + name + "."
		defs = append(defs, domain.CheckDefinition{
			Name:     name,
			Command:  s.configStore.GetString(prefix + "command"),
			Args:     s.configStore.GetStringSlice(prefix + "args"),
			Facility: s.configStore.GetString(prefix + "facility"),
		})
	}
	return defs, nil
}

// gslaChecks accepts either an array or a single space/comma separated string.
func (s *SettingsService) gslaChecks() []string {
	if list := s.configStore.GetStringSlice(keyGSLAChecks); list != nil {
		return list
	}
	return splitList(s.configStore.GetString(keyGSLAChecks))
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func isCheckKey(key string) bool {
	rest, ok := strings.CutPrefix(key, checksPrefix)
	if !ok {
		return false
	}
	name, field, ok := strings.Cut(rest, ".")
	return ok && name != "" && (field == "command" || field == "args" || field == "facility")
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
