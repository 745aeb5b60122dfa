package bamlink

import "github.com/spf13/cobra"

func newProjectCmd() *cobra.Command {
	opts := &publishOptions{}
	var projects []string

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Link BAM files for one or more specific projects",
		Long: `Link BAM files for the named projects. A project whose scan root does
not exist is an error; use "bamlink all" to publish whatever is
present.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, opts, projects, nil, false)
		},
	}

	cmd.Flags().StringArrayVarP(&projects, "project", "p", nil,
		"Project to create bam links for (e.g. Project_10747_D). Can be repeated. Required.")
	_ = cmd.MarkFlagRequired("project")
	addPublishFlags(cmd, opts)

	return cmd
}
