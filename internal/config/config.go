// Package config loads the optional loadflow.yaml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

type SinkConfig struct {
	Driver     string           `yaml:"driver"`
	Path       string           `yaml:"path,omitempty"`
	Connection ConnectionConfig `yaml:"connection"`
}

type SourcesConfig struct {
	Catalog            string `yaml:"catalog"`
	CatalogDelimiter   string `yaml:"catalog_delimiter,omitempty"`
	Employees          string `yaml:"employees"`
	EmployeesDelimiter string `yaml:"employees_delimiter,omitempty"`
}

type ProjectConfig struct {
	Sink        SinkConfig    `yaml:"sink"`
	Sources     SourcesConfig `yaml:"sources"`
	BatchSize   int           `yaml:"batch_size,omitempty"`
	Fingerprint string        `yaml:"fingerprint,omitempty"`
	Timeout     string        `yaml:"timeout"`
}

const ConfigFileName = "loadflow.yaml"

func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}
	return &cfg, nil
}

// ParseDelimiter converts a configured field separator to a rune.
// "tab" and `\t` both select the tab character; an empty string returns def.
func ParseDelimiter(s string, def rune) (rune, error) {
	switch s {
	case "":
		return def, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '\r' || r == '\n' || r == '"' {
		return 0, fmt.Errorf("invalid delimiter %q: must be a single character other than a quote or newline", s)
	}
	return r, nil
}
