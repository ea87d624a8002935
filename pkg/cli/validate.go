package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/replicate/dockgen/pkg/util/console"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that dockgen.yaml can be turned into a Dockerfile",
		RunE:  validateCommand,
		Args:  cobra.NoArgs,
	}

	addConfigFlag(cmd)
	addStrictFlag(cmd)

	return cmd
}

func validateCommand(cmd *cobra.Command, args []string) error {
	result, name, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	console.Debugf("Config in %s renders %d instructions", result.RootDir, len(result.Dockerfile.Instructions()))
	console.Infof("Valid %s", filepath.Base(name))
	return nil
}
