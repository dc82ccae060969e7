package cli

import (
	"github.com/spf13/cobra"

	"github.com/oceandata/ingest/internal/app"
)

var runFlags handlerFlags

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Process one file with the generic handler",
	Long: `Runs FILE through the generic handler: optional file name filter,
hierarchy path from the --path-eval executable, the structural probe and the
named checks, then publish.

The executable is called with the file path and must print the hierarchy
path on a single line and exit 0. Exit status is 1 if the file was rejected
or failed; its report has already been sent.`,
	Example: `  ingest run /incoming/IMOS_ANMN-NRS_20240101.nc --path-eval anmn-dest-path --checks "cf imos:1.4"
  ingest run data.nc --path-eval dest-path --env IMOS_PO_CREDS=/etc/creds --env TZ=UTC`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return processOne(cmd, runFlags.spec(app.FamilyGeneric), runFlags.env, args[0])
	},
}

func init() {
	runFlags.registerGeneric(runCmd)
	runFlags.registerCommon(runCmd)
	_ = runCmd.MarkFlagRequired("path-eval")
	rootCmd.AddCommand(runCmd)
}
