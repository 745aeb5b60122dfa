package bamlink

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seqops/bamlink/pkg/config"
)

func newGenconfigCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "genconfig",
		Short: "Print the effective configuration as TOML",
		Long: `Print the merged configuration (built-in defaults plus any user
config file) as TOML. Redirect the output to
$XDG_CONFIG_HOME/bamlink/bamlink.toml to use it as a starting point.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			out, err := cfg.TOML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file to merge over the defaults")

	return cmd
}
