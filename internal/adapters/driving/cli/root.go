package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oceandata/ingest/internal/adapters/driven/config/file"
	"github.com/oceandata/ingest/internal/app"
	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driving"
	"github.com/oceandata/ingest/internal/core/services"
	"github.com/oceandata/ingest/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Global flags.
var (
	configDir string
	verbose   bool
)

// ErrUnsuccessful is returned when a file ends Rejected or Failed. Its report
// has already been emitted.
var ErrUnsuccessful = errors.New("file was not published")

// Runtime is what the processing commands need from the assembled adapters.
type Runtime interface {
	Pipeline(spec app.HandlerSpec) (driving.Pipeline, error)
	Close() error
}

// Catalogue is the index read side plus its lifetime.
type Catalogue interface {
	driving.IndexService
	Close() error
}

// Services used by the commands. Tests replace them.
var (
	settingsService driving.SettingsService

	newRuntime = func(ctx context.Context, settings domain.Settings, env []string) (Runtime, error) {
		a, err := app.New(ctx, settings, env)
		if err != nil {
			return nil, err
		}
		return a, nil
	}

	openCatalogue = func(settings domain.Settings) (Catalogue, error) {
		store, err := app.OpenCatalogue(settings)
		if err != nil {
			return nil, err
		}
		return catalogue{IndexService: services.NewIndexService(store), close: store.Close}, nil
	}
)

type catalogue struct {
	*services.IndexService
	close func() error
}

func (c catalogue) Close() error { return c.close() }

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Validate, classify and publish incoming data files",
	Long: `ingest takes one delivered file at a time through classification,
hierarchy resolution, compliance checks and publish to the durable object
store and the serving mirror. Files that cannot be published are reported
and, when an error directory is configured, quarantined.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "",
		"directory holding config.toml (default ~/"+file.DefaultDirName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// setup applies global flags.
func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	return nil
}

// settings returns the settings service, opening the configuration in
// --config on first use.
func settings() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening configuration: %w", err)
	}
	logger.Debug("Using configuration %s", store.Path())
	settingsService = services.NewSettingsService(store, services.WithDefaultWorkDir(os.TempDir()))
	return settingsService, nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// loadSettings returns validated effective settings.
func loadSettings() (domain.Settings, error) {
	svc, err := settings()
	if err != nil {
		return domain.Settings{}, err
	}
	s, err := svc.Get()
	if err != nil {
		return s, err
	}
	return s, s.Validate()
}
