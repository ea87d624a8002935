package global

var (
	Version                 = "0.0.1"
	BuildTime               = "none"
	Verbose                 = false
	ConfigFilename          = "dockgen.yaml"
	DefaultConfigVersion    = "1.0"
	SupportedConfigVersions = ">= 1.0, < 2.0"
)
