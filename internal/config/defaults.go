package config

const (
	defaultConfigPath      = "~/.config/bagger/config.toml"
	defaultStagingDir      = "~/.local/share/bagger/staging"
	defaultOutputDir       = "~/.local/share/bagger/bags"
	defaultLogDir          = "~/.local/share/bagger/logs"
	defaultHTTPTimeout     = 60
	defaultVerifyCA        = true
	defaultNameTemplate    = NameTemplateNodeID
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultAlgorithm       = "sha256"
	defaultMediaPluginName = "AddMedia"
)

// Bag name templates.
const (
	NameTemplateNodeID = "nid"
	NameTemplateUUID   = "uuid"
)

// Serialization formats. An empty value leaves the bag as a directory.
const (
	SerializeNone = ""
	SerializeTar  = "tar"
	SerializeTGZ  = "tgz"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Drupal: Drupal{
			HTTPTimeout: defaultHTTPTimeout,
			VerifyCA:    defaultVerifyCA,
		},
		Media: Media{
			DrupalMediaTags: []string{},
		},
		Bag: Bag{
			NameTemplate: defaultNameTemplate,
			Serialize:    SerializeNone,
			Algorithms:   []string{defaultAlgorithm},
			Plugins:      []string{defaultMediaPluginName},
			Info:         map[string]string{},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
