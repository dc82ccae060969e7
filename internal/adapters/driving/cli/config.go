package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oceandata/ingest/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ingest configuration",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it to config.toml.

Examples of keys:
  publish.mirror_dir        serving mirror root
  publish.object_backend    filesystem or nats
  publish.index             true or false
  gsla.checks               comma-separated check names
  checks.cf.command         executable of the "cf" check
  checks.cf.args            comma-separated arguments`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration can drive a pipeline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := loadSettings(); err != nil {
			return err
		}
		cmd.Println("Configuration is valid.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, err := settings()
	if err != nil {
		return err
	}
	s, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("[Paths]")
	cmd.Printf("  Work dir:   %s\n", orUnset(s.Paths.WorkDir))
	cmd.Printf("  Log dir:    %s\n", orUnset(s.Paths.LogDir))
	cmd.Printf("  Error dir:  %s\n", orUnset(s.Paths.ErrorDir))
	cmd.Printf("  Report dir: %s\n", orUnset(s.Paths.ReportDir))
	cmd.Println()

	cmd.Println("[Publish]")
	cmd.Printf("  Object backend: %s\n", s.Publish.ObjectBackend)
	cmd.Printf("  Object root:    %s\n", s.Publish.ObjectRoot)
	switch s.Publish.ObjectBackend {
	case domain.ObjectBackendNATS:
		cmd.Printf("  NATS URL:       %s\n", orUnset(s.Publish.NATSURL))
		cmd.Printf("  NATS bucket:    %s\n", orUnset(s.Publish.NATSBucket))
	default:
		cmd.Printf("  Object dir:     %s\n", orUnset(s.Publish.ObjectDir))
	}
	cmd.Printf("  Mirror dir:     %s\n", orUnset(s.Publish.MirrorDir))
	cmd.Printf("  Overwrite:      %t\n", s.Publish.ForceOverwriteMirror)
	cmd.Printf("  Index:          %t\n", s.Publish.Index)
	if s.Publish.Index {
		cmd.Printf("  Index dir:      %s\n", orUnset(s.Publish.IndexDir))
	}
	cmd.Println()

	cmd.Println("[Report]")
	cmd.Printf("  Recipient:    %s\n", s.Report.Recipient)
	cmd.Printf("  NATS subject: %s\n", orUnset(s.Report.NATSSubject))
	cmd.Printf("  Metrics file: %s\n", orUnset(s.MetricsTextfile))
	cmd.Println()

	cmd.Println("[Checks]")
	if len(s.Checks) == 0 {
		cmd.Println("  (none)")
	}
	for _, c := range s.Checks {
		line := c.Command
		if len(c.Args) > 0 {
			line += " " + strings.Join(c.Args, " ")
		}
		if c.Facility != "" {
			line += " (facility " + c.Facility + ")"
		}
		cmd.Printf("  %s: %s\n", c.Name, line)
	}
	names := make([]string, 0, len(s.GSLAChecks))
	for _, r := range s.GSLAChecks {
		names = append(names, r.String())
	}
	cmd.Printf("  GSLA checks: %s\n", orUnset(strings.Join(names, " ")))
	cmd.Println()

	cmd.Println("[Watch]")
	cmd.Printf("  Workers: %d\n", s.Watch.Workers)
	cmd.Printf("  Rate:    %g/s\n", s.Watch.Rate)

	if err := s.Validate(); err != nil {
		cmd.Println()
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := settings()
	if err != nil {
		return err
	}
	if err := svc.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("%s set.\n", args[0])
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
