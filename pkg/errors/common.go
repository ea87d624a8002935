package errors

import (
	"errors"

	"github.com/replicate/dockgen/pkg/global"
)

var (
	ErrorUnsupportedConfigVersion = errors.New("The config version is not supported by this version of dockgen. Supported versions: " + global.SupportedConfigVersions)
)

// As is errors.As, re-exported so callers importing this package don't need both.
func As(err error, target any) bool {
	return errors.As(err, target)
}
