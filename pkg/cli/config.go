package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dridi71/sarah/pkg/adapter"
	"github.com/dridi71/sarah/pkg/locale"
	"github.com/dridi71/sarah/pkg/repository"
	"github.com/dridi71/sarah/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// config holds configuration values
type config struct {
	dataDir  string
	language string
	logLevel string

	// Gateway client
	gatewayURL string

	// Gateway server
	addr           string
	configPath     string
	geminiAPIKey   string
	geminiProject  string
	geminiLocation string
	geminiModel    string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data-dir",
			Aliases:     []string{"d"},
			Usage:       "Directory holding the persisted conversation and corpus blobs",
			Sources:     cli.EnvVars("SARAH_DATA_DIR"),
			Destination: &cfg.dataDir,
		},
		&cli.StringFlag{
			Name:        "language",
			Aliases:     []string{"l"},
			Usage:       "Assistant language (fr or ar)",
			Value:       string(locale.Default),
			Sources:     cli.EnvVars("SARAH_LANGUAGE"),
			Destination: &cfg.language,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("SARAH_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// gatewayFlags returns flags for commands that talk to a running gateway
func gatewayFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gateway-url",
			Aliases:     []string{"g"},
			Usage:       "Base URL of the inference gateway",
			Value:       "http://localhost:8080",
			Sources:     cli.EnvVars("SARAH_GATEWAY_URL"),
			Destination: &cfg.gatewayURL,
		},
	}
}

// serveFlags returns flags for the gateway server
func serveFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       ":8080",
			Sources:     cli.EnvVars("SARAH_ADDR"),
			Destination: &cfg.addr,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("SARAH_CONFIG"),
			Destination: &cfg.configPath,
		},
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key (takes precedence over Vertex AI settings)",
			Sources:     cli.EnvVars("GEMINI_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Vertex AI",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Vertex AI",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Generative model name",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// setupLogging installs the default logger and returns a context carrying it
func (cfg *config) setupLogging(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// lang returns the validated language, falling back to the default
func (cfg *config) lang() locale.Language {
	l := locale.Language(cfg.language)
	if !l.Valid() {
		return locale.Default
	}
	return l
}

// newRepository creates the file-backed repository. An empty data-dir
// defaults to ~/.sarah.
func (cfg *config) newRepository() (repository.Repository, error) {
	dir := cfg.dataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve home directory")
		}
		dir = filepath.Join(home, ".sarah")
	}

	repo, err := repository.NewLocal(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newGateway creates a gateway client instance
func (cfg *config) newGateway() (adapter.Gateway, error) {
	if cfg.gatewayURL == "" {
		return nil, goerr.New("gateway-url is required")
	}
	return adapter.NewGateway(cfg.gatewayURL)
}

// newGemini creates a Gemini adapter instance for the gateway server
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiAPIKey == "" && cfg.geminiProject == "" {
		return nil, goerr.New("either gemini-api-key or gemini-project is required")
	}

	gemini, err := adapter.NewGemini(ctx, cfg.geminiAPIKey, cfg.geminiProject, cfg.geminiLocation,
		adapter.WithGenerativeModel(cfg.geminiModel))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini adapter")
	}
	return gemini, nil
}

// fileConfig is the YAML shape of the serve config file. File values fill
// only the settings left empty by flags and environment.
type fileConfig struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`
	Gemini   struct {
		APIKey   string `yaml:"api_key"`
		Project  string `yaml:"project"`
		Location string `yaml:"location"`
		Model    string `yaml:"model"`
	} `yaml:"gemini"`
}

// applyConfigFile overlays settings from the YAML file named by --config
func (cfg *config) applyConfigFile() error {
	if cfg.configPath == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.configPath)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configPath))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configPath))
	}

	if cfg.addr == "" || cfg.addr == ":8080" {
		if fc.Addr != "" {
			cfg.addr = fc.Addr
		}
	}
	if fc.LogLevel != "" && cfg.logLevel == "info" {
		cfg.logLevel = fc.LogLevel
	}
	if cfg.geminiAPIKey == "" {
		cfg.geminiAPIKey = fc.Gemini.APIKey
	}
	if cfg.geminiProject == "" {
		cfg.geminiProject = fc.Gemini.Project
	}
	if fc.Gemini.Location != "" && cfg.geminiLocation == "us-central1" {
		cfg.geminiLocation = fc.Gemini.Location
	}
	if fc.Gemini.Model != "" && cfg.geminiModel == "gemini-2.5-flash" {
		cfg.geminiModel = fc.Gemini.Model
	}
	return nil
}
