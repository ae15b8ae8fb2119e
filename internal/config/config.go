// ABOUTME: Configuration loading for hiring-router
// ABOUTME: Optional YAML file with ${VAR} expansion, then environment overrides and validation

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/2389/hiring-router/internal/routing"
	"github.com/2389/hiring-router/internal/telemetry"
)

// PathEnv names the environment variable holding the config file path.
const PathEnv = "HIRING_ROUTER_CONFIG"

// DefaultPath is used when PathEnv is unset.
const DefaultPath = "./hiring-router.yaml"

// Config represents the complete hiring-router configuration
type Config struct {
	Environment string            `yaml:"environment"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Router      RouterConfig      `yaml:"router"`
	Workflows   WorkflowsConfig   `yaml:"workflows"`
	Integration IntegrationConfig `yaml:"integrations"`
	Research    ResearchConfig    `yaml:"research"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Bind, strconv.Itoa(s.Port))
}

// LoggingConfig holds request-log and console settings
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Dir           string `yaml:"dir"`
	Retention     int    `yaml:"retention"` // rotated files kept
	ConsoleFormat string `yaml:"console_format"`
	WebhookURL    string `yaml:"webhook_url"`
	WebhookSecret string `yaml:"webhook_secret"`
	ClientID      string `yaml:"client_id"`
}

// RouterConfig holds routing decision logging settings
type RouterConfig struct {
	PrivacyMode    string   `yaml:"privacy_mode"`
	IdentityFields []string `yaml:"identity_fields"`
}

// WorkflowsConfig holds external workflow endpoints
type WorkflowsConfig struct {
	N8NWebhookURL string `yaml:"n8n_webhook_url"`
}

// IntegrationConfig holds third-party credentials.
// HHAPIKey is carried for deployments that front hh.ru; no tool calls the API.
type IntegrationConfig struct {
	HHAPIKey string `yaml:"hh_api_key"`
}

// ResearchConfig holds the research server's corpus location
type ResearchConfig struct {
	RecordsPath string `yaml:"records_path"`
}

// Default returns the configuration used when neither file nor environment
// set a value.
func Default() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:         "INFO",
			Dir:           "./hiring_logs",
			Retention:     telemetry.DefaultRetention,
			ConsoleFormat: "text",
		},
		Router: RouterConfig{
			PrivacyMode:    string(routing.PolicyPrivate),
			IdentityFields: []string{"user_id"},
		},
		Research: ResearchConfig{
			RecordsPath: "./records.json",
		},
	}
}

// FromEnv loads the file named by HIRING_ROUTER_CONFIG, or DefaultPath.
func FromEnv() (*Config, error) {
	path := os.Getenv(PathEnv)
	if path == "" {
		path = DefaultPath
	}
	return Load(path)
}

// Load reads an optional configuration file, applies environment overrides
// and validates the result. A missing file is not an error. The log
// directory is made absolute and created.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		// Expand environment variables in the raw YAML content
		expandedData := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if err := prepareLogDir(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnv overlays environment variables. Set-but-empty values count as
// set, except for PORT which must parse.
func applyEnv(cfg *Config) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"ENVIRONMENT", &cfg.Environment},
		{"LOG_LEVEL", &cfg.Logging.Level},
		{"LOG_DIR", &cfg.Logging.Dir},
		{"LOG_WEBHOOK_URL", &cfg.Logging.WebhookURL},
		{"LOG_CLIENT_ID", &cfg.Logging.ClientID},
		{"LOG_WEBHOOK_SECRET", &cfg.Logging.WebhookSecret},
		{"CONSOLE_LOG_FORMAT", &cfg.Logging.ConsoleFormat},
		{"N8N_WEBHOOK_URL", &cfg.Workflows.N8NWebhookURL},
		{"HH_API_KEY", &cfg.Integration.HHAPIKey},
		{"BIND", &cfg.Server.Bind},
		{"ROUTER_PRIVACY_MODE", &cfg.Router.PrivacyMode},
		{"DEEP_RESEARCH_RECORDS_PATH", &cfg.Research.RecordsPath},
	}
	for _, s := range strs {
		if v, ok := os.LookupEnv(s.name); ok {
			*s.dst = v
		}
	}

	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	return nil
}

// Validate checks that all configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Logging.Dir == "" {
		return fmt.Errorf("logging.dir is required")
	}
	if _, err := routing.ParsePolicy(c.Router.PrivacyMode); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.ConsoleFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid console log format %q (want text or json)", c.Logging.ConsoleFormat)
	}
	return nil
}

// Policy returns the parsed privacy mode. Valid after Validate.
func (c *Config) Policy() routing.Policy {
	p, _ := routing.ParsePolicy(c.Router.PrivacyMode)
	return p
}

// LogLevel returns the configured request-log threshold. Unknown names
// fall back to INFO.
func (c *Config) LogLevel() telemetry.Level {
	l, _ := telemetry.ParseLevel(c.Logging.Level)
	return l
}

func prepareLogDir(cfg *Config) error {
	dir, err := filepath.Abs(cfg.Logging.Dir)
	if err != nil {
		return fmt.Errorf("resolving log dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}
	cfg.Logging.Dir = dir
	return nil
}
