package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/replicate/dockgen/pkg/global"
	"github.com/replicate/dockgen/pkg/util/files"
)

// FindConfigFile searches for a config file (typically dockgen.yaml) in the given directory
// and parent directories. Returns the directory containing the config file.
func FindConfigFile(dir string, configFilename string) (string, error) {
	if configFilename == "" {
		configFilename = global.ConfigFilename
	}
	return findProjectRootDir(dir, configFilename)
}

// FindConfigFileFromCwd searches for a config file starting from the current working directory.
func FindConfigFileFromCwd(configFilename string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindConfigFile(cwd, configFilename)
}

// Parse reads and parses a dockgen.yaml file into a ConfigFile.
// This only does YAML parsing - no validation.
// Returns ParseError if the file cannot be read or parsed.
func Parse(filename string) (*ConfigFile, error) {
	contents, err := readConfig(filename)
	if err != nil {
		return nil, err
	}
	return ParseBytes(contents, filename)
}

// ParseBytes parses YAML content into a ConfigFile.
// The filename is used for error messages only.
func ParseBytes(contents []byte, filename string) (*ConfigFile, error) {
	cfg := &ConfigFile{}

	if len(contents) == 0 {
		// Empty file parses; validation reports the missing base image
		return cfg, nil
	}

	if err := yaml.UnmarshalStrict(contents, cfg); err != nil {
		return nil, &ParseError{
			Filename: filename,
			Err:      fmt.Errorf("invalid YAML: %w", err),
		}
	}

	return cfg, nil
}

// ParseReader parses from an io.Reader (useful for testing).
func ParseReader(r io.Reader, filename string) (*ConfigFile, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}
	return ParseBytes(contents, filename)
}

func readConfig(filename string) ([]byte, error) {
	exists, err := files.Exists(filename)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	if !exists {
		return nil, &ParseError{
			Filename: filename,
			Err:      fmt.Errorf("%s does not exist in %s", filepath.Base(filename), filepath.Dir(filename)),
		}
	}

	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}
	return contents, nil
}
