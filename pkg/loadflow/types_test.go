package loadflow_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artugro/load-flow/pkg/loadflow"
)

func validConfig() loadflow.PipelineConfig {
	return loadflow.PipelineConfig{
		CatalogPath:   "catalogos.csv",
		EmployeesPath: "employees.csv",
		BatchSize:     loadflow.DefaultBatchSize,
		Sink:          loadflow.SinkConfig{Driver: loadflow.DriverSQLite, SQLitePath: "load_flow.db"},
	}
}

func TestPipelineConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*loadflow.PipelineConfig)
		wantErr error
	}{
		{"valid", func(*loadflow.PipelineConfig) {}, nil},
		{"missing catalog", func(c *loadflow.PipelineConfig) { c.CatalogPath = "" }, loadflow.ErrInvalidConfig},
		{"missing employees", func(c *loadflow.PipelineConfig) { c.EmployeesPath = "" }, loadflow.ErrInvalidConfig},
		{"zero batch", func(c *loadflow.PipelineConfig) { c.BatchSize = 0 }, loadflow.ErrInvalidConfig},
		{"negative timeout", func(c *loadflow.PipelineConfig) { c.Timeout = -1 }, loadflow.ErrInvalidConfig},
		{"unknown driver", func(c *loadflow.PipelineConfig) { c.Sink.Driver = "mysql" }, loadflow.ErrUnsupportedDriver},
		{"sqlite without path", func(c *loadflow.PipelineConfig) { c.Sink.SQLitePath = "" }, loadflow.ErrInvalidConfig},
		{"postgres without connection", func(c *loadflow.PipelineConfig) {
			c.Sink = loadflow.SinkConfig{Driver: loadflow.DriverPostgres}
		}, loadflow.ErrInvalidConfig},
		{"postgres without database", func(c *loadflow.PipelineConfig) {
			c.Sink = loadflow.SinkConfig{Driver: loadflow.DriverPostgres, Connection: &loadflow.ConnectionConfig{Host: "localhost"}}
		}, loadflow.ErrInvalidConfig},
		{"memory", func(c *loadflow.PipelineConfig) { c.Sink = loadflow.SinkConfig{Driver: loadflow.DriverMemory} }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
		})
	}
}

func TestPipelineConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := loadflow.PipelineConfig{Sink: loadflow.SinkConfig{Driver: loadflow.DriverMemory}}
	err := cfg.Validate()
	assert.Contains(t, err.Error(), "CatalogPath")
	assert.Contains(t, err.Error(), "EmployeesPath")
	assert.Contains(t, err.Error(), "batch size")
}

func TestDimensionBindings(t *testing.T) {
	tests := []struct {
		dim    loadflow.Dimension
		table  string
		column string
	}{
		{loadflow.DimensionAgency, "agency", "agency_name"},
		{loadflow.DimensionProfession, "profession", "class_title"},
		{loadflow.DimensionEthnicity, "ethnicity", "ethnicity"},
		{loadflow.DimensionGender, "gender", "gender"},
	}
	for _, tt := range tests {
		t.Run(tt.dim.String(), func(t *testing.T) {
			assert.True(t, tt.dim.IsValid())
			assert.Equal(t, tt.table, tt.dim.Table())
			assert.Equal(t, tt.column, tt.dim.SourceColumn())
		})
	}

	assert.Equal(t, []loadflow.Dimension{
		loadflow.DimensionAgency,
		loadflow.DimensionProfession,
		loadflow.DimensionEthnicity,
		loadflow.DimensionGender,
	}, loadflow.Dimensions)
	assert.False(t, loadflow.Dimension(42).IsValid())
	assert.Equal(t, "Unknown(42)", loadflow.Dimension(42).String())
}

func TestParseAuthMethod(t *testing.T) {
	for in, want := range map[string]loadflow.AuthMethod{
		"":         loadflow.AuthMethodStandard,
		"standard": loadflow.AuthMethodStandard,
		"aws":      loadflow.AuthMethodAWSIAM,
		"google":   loadflow.AuthMethodGoogleIAM,
		"azure":    loadflow.AuthMethodAzureEntraID,
	} {
		got, err := loadflow.ParseAuthMethod(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := loadflow.ParseAuthMethod("kerberos")
	assert.True(t, errors.Is(err, loadflow.ErrUnsupportedAuthMethod))
}
