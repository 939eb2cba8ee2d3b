package loadflow

import (
	"errors"
	"fmt"
	"time"
)

// PipelineConfig contains all parameters needed for one run.
type PipelineConfig struct {
	// ProjectPath is the directory relative paths are resolved against.
	ProjectPath string

	// CatalogPath is the flat file holding the dimension names.
	CatalogPath string

	// CatalogDelimiter is the CSV field separator of CatalogPath.
	CatalogDelimiter rune

	// EmployeesPath is the flat file holding the employee rows.
	EmployeesPath string

	// EmployeesDelimiter is the CSV field separator of EmployeesPath.
	EmployeesDelimiter rune

	// Sink selects and configures the relational store.
	Sink SinkConfig

	// BatchSize is the employee flush threshold.
	BatchSize int

	// Fingerprint names the fingerprint algorithm ("md5" or "murmur3").
	Fingerprint string

	// Timeout is the global timeout for the entire run.
	Timeout time.Duration

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks if the PipelineConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *PipelineConfig) Validate() error {
	var errs []error

	if c.CatalogPath == "" {
		errs = append(errs, fmt.Errorf("CatalogPath is required: %w", ErrInvalidConfig))
	}
	if c.EmployeesPath == "" {
		errs = append(errs, fmt.Errorf("EmployeesPath is required: %w", ErrInvalidConfig))
	}
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch size must be positive, got %d: %w", c.BatchSize, ErrInvalidConfig))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}
	if err := c.Sink.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Driver names a sink implementation.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
	DriverMemory   Driver = "memory"
)

// SinkConfig selects and configures the relational store.
type SinkConfig struct {
	Driver Driver

	// SQLitePath is the database file for DriverSQLite.
	SQLitePath string

	// Connection holds resolved parameters for DriverPostgres.
	Connection *ConnectionConfig
}

// Validate checks the fields required by the selected driver.
func (c *SinkConfig) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.Connection == nil {
			return fmt.Errorf("postgres driver requires connection parameters: %w", ErrInvalidConfig)
		}
		if c.Connection.Database == "" {
			return fmt.Errorf("postgres driver requires a database name: %w", ErrInvalidConfig)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite driver requires a database path: %w", ErrInvalidConfig)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}
	return nil
}

// ConnectionConfig represents parsed PostgreSQL connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWSRegion is used when AuthMethod is AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name
	// (project:region:instance) used when AuthMethod is AuthMethodGoogleIAM.
	GoogleInstance string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// Otherwise the DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// ParseAuthMethod maps a config spelling to an AuthMethod.
// The empty string selects AuthMethodStandard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch s {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("%w: %q", ErrUnsupportedAuthMethod, s)
	}
}
