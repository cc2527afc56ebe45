package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the root configuration for timesheet, stored in ~/.timesheet/config.json.
// The file supports single-line // comments for documentation purposes.
// Every field can be overridden from the environment.
type Config struct {
	// HTTPAddr is the listen address of the web server.
	HTTPAddr string `json:"http_addr" env:"TIMESHEET_HTTP_ADDR"`
	// ServerURL is the base URL the CLI commands talk to.
	ServerURL string `json:"server_url" env:"TIMESHEET_SERVER_URL"`
	// Timezone is the IANA zone in which "today" is evaluated. Empty = local.
	Timezone string `json:"timezone" env:"TIMESHEET_TIMEZONE"`
	// OTelEndpoint enables OTLP/HTTP trace export when set.
	OTelEndpoint string `json:"otel_endpoint" env:"TIMESHEET_OTEL_ENDPOINT"`

	Outlook OutlookConfig `json:"outlook" envPrefix:"TIMESHEET_OUTLOOK_"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar import settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `json:"tenant_id" env:"TENANT_ID"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `json:"client_id" env:"CLIENT_ID"`
	// DefaultProject is the project name assigned to imported Outlook events.
	DefaultProject string `json:"default_project" env:"DEFAULT_PROJECT"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = UTC.
	Timezone string `json:"timezone" env:"TIMEZONE"`
}

const (
	// DefaultHTTPAddr is where the web server listens unless configured otherwise.
	DefaultHTTPAddr = ":8080"
	// DefaultServerURL is the server the CLI commands contact by default.
	DefaultServerURL = "http://localhost:8080"
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultProject is the project name used for imported events when none is specified.
	DefaultProject = "Meetings"
)

// Default returns a Config pre-filled with the built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr:  DefaultHTTPAddr,
		ServerURL: DefaultServerURL,
		Outlook: OutlookConfig{
			TenantID:       DefaultTenantID,
			ClientID:       DefaultClientID,
			DefaultProject: DefaultProject,
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing.
const configTemplate = `// timesheet configuration – ~/.timesheet/config.json
//
// All settings are optional. Every value can also be set through the
// environment variable named next to it, which takes precedence.
{
  // Listen address of "timesheet serve". (TIMESHEET_HTTP_ADDR)
  "http_addr": ":8080",

  // Server used by add, list, export and outlook import. (TIMESHEET_SERVER_URL)
  "server_url": "http://localhost:8080",

  // IANA time zone deciding what "today" is, e.g. "Europe/Berlin".
  // Leave empty to use the machine's local zone. (TIMESHEET_TIMEZONE)
  "timezone": "",

  // OTLP/HTTP endpoint for traces, e.g. "http://localhost:4318".
  // Leave empty to disable tracing. (TIMESHEET_OTEL_ENDPOINT)
  "otel_endpoint": "",

  // ── Microsoft Graph / Outlook calendar import ────────────────────────────
  "outlook": {
    // Azure AD tenant ID. "common" works for personal accounts and most
    // organisations. (TIMESHEET_OUTLOOK_TENANT_ID)
    "tenant_id": "common",

    // Azure application (client) ID used for the OAuth2 device code flow.
    // The built-in value is the public Azure CLI app. (TIMESHEET_OUTLOOK_CLIENT_ID)
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",

    // Project assigned to imported calendar events. (TIMESHEET_OUTLOOK_DEFAULT_PROJECT)
    "default_project": "Meetings",

    // IANA timezone for interpreting event times. Empty = UTC. (TIMESHEET_OUTLOOK_TIMEZONE)
    "timezone": ""
  }
}
`

// DefaultPath returns the path to ~/.timesheet/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".timesheet", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config file at path, creating it with annotated defaults on
// first run, then applies environment overrides. An empty path uses DefaultPath.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default(), err
		}
		path = p
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
			return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Default(), fmt.Errorf("parse env: %w", err)
	}

	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults replaces zero-value fields with built-in defaults so callers
// always get a usable Config even from a partially filled file.
func (c *Config) fillDefaults() {
	d := Default()
	if c.HTTPAddr == "" {
		c.HTTPAddr = d.HTTPAddr
	}
	if c.ServerURL == "" {
		c.ServerURL = d.ServerURL
	}
	if c.Outlook.TenantID == "" {
		c.Outlook.TenantID = d.Outlook.TenantID
	}
	if c.Outlook.ClientID == "" {
		c.Outlook.ClientID = d.Outlook.ClientID
	}
	if c.Outlook.DefaultProject == "" {
		c.Outlook.DefaultProject = d.Outlook.DefaultProject
	}
}

// Location resolves Timezone. An empty Timezone yields time.Local.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
