package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/artugro/load-flow/internal/config"
	"github.com/artugro/load-flow/pkg/loadflow"
)

// GranularConnFlags holds the PostgreSQL-style connection flags (-h, -p, -U, -d).
//
// There is no password flag. Use $PGPASSWORD, .pgpass or a connection string.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server-addressing flag was given. Database is
// not considered: -d may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags holds the cloud authentication flags. They override the
// matching loadflow.yaml keys and environment variables.
type CloudFlags struct {
	AuthMethod     string
	AWSRegion      string
	GoogleInstance string
	AzureTenantID  string
	AzureClientID  string
}

// EnvVars holds the libpq and cloud SDK environment variables the resolver reads.
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	AWS_REGION          string
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

func (e *EnvVars) hasGranular() bool {
	return e.PGHOST != "" || e.PGPORT != "" || e.PGUSER != "" || e.PGDATABASE != ""
}

// ResolveConnectionParams resolves PostgreSQL connection parameters.
//
// Server address precedence:
//
//  1. --connection
//  2. granular flags (-h, -p, -U, -d, --sslmode)
//  3. PG* environment variables
//  4. DATABASE_URL, when no flag or PG* variable addresses the server
//  5. loadflow.yaml sink.connection
//  6. defaults (localhost:5432, sslmode=prefer)
//
// -d overrides the database of a connection string. The auth method comes
// from --auth-method, then auth_method in loadflow.yaml, then switches to
// Azure Entra ID when Azure tenant or client ids are present.
//
// Giving both --connection and server flags is an error.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConn *config.ConnectionConfig,
) (*loadflow.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}
	if projectConn == nil {
		projectConn = &config.ConnectionConfig{}
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf("cannot specify both --connection and granular flags (-h, -p, -U, --sslmode): %w", loadflow.ErrInvalidConfig)
	}

	var cfg *loadflow.ConnectionConfig
	var err error
	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && !envVars.hasGranular() && envVars.DATABASE_URL != "":
		cfg, err = resolveFromConnectionString(envVars.DATABASE_URL, envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, projectConn)
	}
	if err != nil {
		return nil, err
	}

	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}

	if err := applyAuth(cfg, cloudFlags, envVars, projectConn); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFromConnectionString(connStr string, envVars *EnvVars) (*loadflow.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w: %w", loadflow.ErrInvalidConfig, err)
	}
	if cfg.Password == "" {
		cfg.Password = envVars.PGPASSWORD
	}
	return cfg, nil
}

// resolveFromGranularParams resolves each field as flag > env > yaml > default.
func resolveFromGranularParams(flags *GranularConnFlags, envVars *EnvVars, pc *config.ConnectionConfig) (*loadflow.ConnectionConfig, error) {
	cfg := &loadflow.ConnectionConfig{
		AuthMethod:       loadflow.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, defaultHost)

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case envVars.PGPORT != "":
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", envVars.PGPORT, loadflow.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = defaultPort
	}

	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = envVars.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, envVars.PGDATABASE, pc.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, defaultSSLMode)

	return cfg, nil
}

func applyAuth(cfg *loadflow.ConnectionConfig, flags *CloudFlags, env *EnvVars, pc *config.ConnectionConfig) error {
	method, err := loadflow.ParseAuthMethod(firstNonEmpty(flags.AuthMethod, pc.AuthMethod))
	if err != nil {
		return err
	}

	cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, pc.AWSRegion, env.AWS_REGION)
	cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	cfg.AzureTenantID = firstNonEmpty(flags.AzureTenantID, pc.AzureTenantID, env.AZURE_TENANT_ID)
	cfg.AzureClientID = firstNonEmpty(flags.AzureClientID, pc.AzureClientID, env.AZURE_CLIENT_ID)
	cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET

	if method == loadflow.AuthMethodStandard && flags.AuthMethod == "" && pc.AuthMethod == "" &&
		(cfg.AzureTenantID != "" || cfg.AzureClientID != "") {
		method = loadflow.AuthMethodAzureEntraID
	}
	cfg.AuthMethod = method
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
