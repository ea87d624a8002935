package config

import (
	"fmt"
	"path/filepath"

	"github.com/replicate/dockgen/pkg/dockerfile"
	"github.com/replicate/dockgen/pkg/errors"
	"github.com/replicate/dockgen/pkg/global"
	"github.com/replicate/dockgen/pkg/util/console"
	"github.com/replicate/dockgen/pkg/util/files"
)

const maxSearchDepth = 100

// LoadResult is everything produced by loading a dockgen.yaml.
type LoadResult struct {
	Config     *ConfigFile
	RootDir    string
	Warnings   []DeprecationWarning
	Dockerfile *dockerfile.Dockerfile
}

// Load finds configFilename in the current directory or one of its parents
// and loads it.
func Load(configFilename string, opts ...ValidateOption) (*LoadResult, error) {
	if configFilename == "" {
		configFilename = global.ConfigFilename
	}
	rootDir, err := FindConfigFileFromCwd(configFilename)
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(rootDir, configFilename), opts...)
}

// LoadFile reads, validates and converts the config at path.
// Schema and validation failures are returned as CONFIG_INVALID errors
// that wrap the underlying SchemaError or ValidationError.
func LoadFile(path string, opts ...ValidateOption) (*LoadResult, error) {
	console.Debugf("Loading config from %s", path)

	contents, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	if err := ValidateYAML(contents); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("%s is invalid", filepath.Base(path)), err)
	}

	cfg, err := ParseBytes(contents, path)
	if err != nil {
		return nil, err
	}

	result := ValidateConfigFile(cfg, opts...)
	for _, w := range result.Warnings {
		console.Warn(w.Error())
	}
	if err := result.Err(); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("%s is invalid", filepath.Base(path)), err)
	}

	df, err := cfg.Dockerfile()
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("%s is invalid", filepath.Base(path)), err)
	}
	console.Debugf("Loaded %d instructions and %d ONBUILD triggers", len(df.Instructions()), len(df.OnBuilds()))

	return &LoadResult{
		Config:     cfg,
		RootDir:    filepath.Dir(path),
		Warnings:   result.Warnings,
		Dockerfile: df,
	}, nil
}

// Given a directory, find the config file in that directory
func findConfigPathInDirectory(dir string, configFilename string) (string, error) {
	filePath := filepath.Join(dir, configFilename)
	exists, err := files.Exists(filePath)
	if err != nil {
		return "", fmt.Errorf("Failed to scan directory %s for %s: %w", dir, filePath, err)
	} else if exists {
		return filePath, nil
	}

	return "", errors.ConfigNotFound(fmt.Sprintf("%s not found in %s", configFilename, dir))
}

// Walk up the directory tree to find the root of the project.
// The project root is the directory housing the config file.
func findProjectRootDir(startDir string, configFilename string) (string, error) {
	dir := startDir
	for range maxSearchDepth {
		switch _, err := findConfigPathInDirectory(dir, configFilename); {
		case err != nil && !errors.IsConfigNotFound(err):
			return "", err
		case err == nil:
			return dir, nil
		case dir == "." || dir == filepath.Dir(dir):
			return "", errors.ConfigNotFound(fmt.Sprintf("%s not found in %s (or in any parent directories)", configFilename, startDir))
		}

		dir = filepath.Dir(dir)
	}

	return "", errors.ConfigNotFound(fmt.Sprintf("No %s found in parent directories.", configFilename))
}
