package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/replicate/dockgen/pkg/util/console"
	"github.com/replicate/dockgen/pkg/util/files"
)

var generateOutput string

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:        "generate",
		SuggestFor: []string{"render", "build"},
		Short:      "Generate a Dockerfile from dockgen.yaml",
		Long: `Generate a Dockerfile from dockgen.yaml.

The Dockerfile is printed to stdout unless --output is set. An existing output
file is only rewritten when its content changes.`,
		RunE: generateCommand,
		Args: cobra.NoArgs,
	}

	addConfigFlag(cmd)
	addStrictFlag(cmd)
	cmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write the Dockerfile to this path instead of stdout")

	return cmd
}

func generateCommand(cmd *cobra.Command, args []string) error {
	result, _, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	content := result.Dockerfile.String()
	if generateOutput == "" {
		if console.IsTTY(os.Stdout) {
			console.Debug("Printing the Dockerfile, use --output to write it to a file")
		}
		console.Output(content)
		return nil
	}

	written, err := files.WriteIfDifferent(generateOutput, content)
	if err != nil {
		return err
	}
	if written {
		console.Infof("Wrote %s", generateOutput)
	} else {
		console.Infof("%s is up to date", generateOutput)
	}
	return nil
}
