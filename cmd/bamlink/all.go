package bamlink

import "github.com/spf13/cobra"

func newAllCmd() *cobra.Command {
	opts := &publishOptions{}
	var excludes []string

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Link BAM files for every project in the runs directory",
		Long: `Link BAM files for all projects found under the runs directory by
name prefix (Project_* by default), minus any excluded with -e.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, opts, nil, excludes, true)
		},
	}

	cmd.Flags().StringArrayVarP(&excludes, "exclude", "e", nil,
		"Exclude a project. Can be repeated.")
	addPublishFlags(cmd, opts)

	return cmd
}
