package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/replicate/dockgen/pkg/global"
	"github.com/replicate/dockgen/pkg/util/console"
)

func NewRootCommand() (*cobra.Command, error) {
	rootCmd := cobra.Command{
		Use:   "dockgen",
		Short: "Generate Dockerfiles from dockgen.yaml",
		Long: `Generate Dockerfiles from dockgen.yaml.

To get started, write a dockgen.yaml with a "from" base image and a list of
steps, then run "dockgen generate".`,
		Version: fmt.Sprintf("%s (built %s)", global.Version, global.BuildTime),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := console.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
			}
			if global.Verbose {
				level = console.DebugLevel
			}
			console.SetLevel(level)
			console.SetColor(console.IsTerminal())
			cmd.SilenceUsage = true
			return nil
		},
		// This stops errors being printed because we print them in cmd/dockgen/main.go
		SilenceErrors: true,
	}
	setPersistentFlags(&rootCmd)

	rootCmd.AddCommand(
		newGenerateCommand(),
		newValidateCommand(),
	)

	return &rootCmd, nil
}

var logLevel string

func setPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "Verbose output, same as --log-level=debug")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", console.InfoLevel.String(), "Log level: debug, info, warn, error or fatal")
}
