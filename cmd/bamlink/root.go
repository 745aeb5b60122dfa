package bamlink

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/seqops/bamlink/internal/version"
	"github.com/seqops/bamlink/pkg/logging"
)

// NewRootCmd builds the bamlink command tree.
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "bamlink",
		Short: "Publish versioned symlink views of per-sample BAM files",
		Long: `bamlink scans a runs directory for per-sample sequencing output and
publishes a versioned, patient-organized tree of symlinks to each
sample's BAM/BAI files.

Projects are searched up to three directory levels below their bam_qc
folder, preferring a "current" snapshot when one exists. When the same
sample directory is found more than once, the most recently modified
copy wins.

Runs against the same output tree must not overlap: link updates are
remove-then-create and concurrent invocations can race.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(newProjectCmd())
	rootCmd.AddCommand(newAllCmd())
	rootCmd.AddCommand(newGenconfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bamlink version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}
