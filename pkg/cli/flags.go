package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/replicate/dockgen/pkg/config"
	"github.com/replicate/dockgen/pkg/global"
	"github.com/replicate/dockgen/pkg/util/files"
)

var (
	configFilename     string
	strictDeprecations bool
)

func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFilename, "file", "f", global.ConfigFilename, "The name of the config file, a path to it, or a directory holding dockgen.yaml")
}

func addStrictFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&strictDeprecations, "strict", false, "Treat deprecated fields as errors")
}

func validateOptions() []config.ValidateOption {
	if strictDeprecations {
		return []config.ValidateOption{config.WithStrictDeprecations()}
	}
	return nil
}

// loadConfig loads the config named by --file and returns it with the
// filename it was read from. A bare filename is searched for in the current
// directory and its parents. A directory is searched for dockgen.yaml.
// Anything else with a directory component is loaded from exactly that path.
func loadConfig(flags *pflag.FlagSet) (*config.LoadResult, string, error) {
	name := configFilename
	if flags.Changed("file") {
		expanded, err := files.ExpandUser(name)
		if err != nil {
			return nil, "", err
		}
		exists, err := files.Exists(expanded)
		if err != nil {
			return nil, "", err
		}
		if exists {
			isDir, err := files.IsDir(expanded)
			if err != nil {
				return nil, "", err
			}
			if isDir {
				expanded = filepath.Join(expanded, global.ConfigFilename)
			}
		}
		if filepath.Base(expanded) != expanded {
			result, err := config.LoadFile(expanded, validateOptions()...)
			return result, filepath.Base(expanded), err
		}
		name = expanded
	}
	result, err := config.Load(name, validateOptions()...)
	return result, name, err
}
