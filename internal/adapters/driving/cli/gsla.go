package cli

import (
	"github.com/spf13/cobra"

	"github.com/oceandata/ingest/internal/app"
)

var gslaFlags handlerFlags

var gslaCmd = &cobra.Command{
	Use:   "gsla FILE",
	Short: "Process one gridded sea level anomaly file",
	Long: `Runs FILE through the OceanCurrent GSLA handler. Daily near-real-time and
delayed-mode files are decompressed for checking and indexed; yearly archive
files are checked as delivered and never indexed.

Checks default to gsla.checks from the configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return processOne(cmd, gslaFlags.spec(app.FamilyGSLA), gslaFlags.env, args[0])
	},
}

func init() {
	gslaFlags.registerCommon(gslaCmd)
	rootCmd.AddCommand(gslaCmd)
}
