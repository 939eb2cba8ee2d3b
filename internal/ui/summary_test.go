package ui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artugro/load-flow/pkg/loadflow"
)

func sampleSummary() *loadflow.RunSummary {
	return &loadflow.RunSummary{
		RunID: "3f2a9c1e",
		Catalog: []loadflow.CatalogLoadResult{
			{Dimension: loadflow.DimensionAgency, Observed: 3, Existing: 0, Staged: 2, Inserted: 2},
			{Dimension: loadflow.DimensionGender, Observed: 2, Staged: 1,
				Conflict: fmt.Errorf("%w: gender", loadflow.ErrDuplicateCatalogValue)},
		},
		Employees: loadflow.IngestStats{Read: 5, SkippedUnresolved: 1, Inserted: 4, BatchesCommitted: 1},
		Counts: loadflow.TableCounts{
			Dimensions: map[loadflow.Dimension]int64{loadflow.DimensionAgency: 2, loadflow.DimensionGender: 1},
			Employees:  4,
		},
		Duration: 1500 * time.Millisecond,
	}
}

func TestRenderSummary_Plain(t *testing.T) {
	out := RenderSummary(sampleSummary(), false)

	assert.Contains(t, out, "Run 3f2a9c1e finished in 1.5s")
	assert.Contains(t, out, "Agency")
	assert.Contains(t, out, "conflict, rolled back")
	assert.Contains(t, out, "skipped (unresolved reference)")
	assert.NotContains(t, out, "\x1b[", "plain output must not contain ANSI escapes")
	assert.NotContains(t, out, "╭")

	lines := strings.Split(out, "\n")
	var employeeLine string
	for _, l := range lines {
		if strings.HasPrefix(l, "employee ") {
			employeeLine = l
		}
	}
	require.NotEmpty(t, employeeLine)
	assert.True(t, strings.HasSuffix(employeeLine, "4"))
}

func TestRenderSummary_PlainColumnsAligned(t *testing.T) {
	out := renderPlain([]string{"Table", "Rows"}, [][]string{{"agency", "2"}, {"profession", "10"}})

	assert.Equal(t, "Table       Rows\nagency      2\nprofession  10", out)
}

func TestRenderSummary_Styled(t *testing.T) {
	out := RenderSummary(sampleSummary(), true)

	assert.Contains(t, out, "3f2a9c1e")
	assert.Contains(t, out, "agency")
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "batches committed")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, sampleSummary(), false))

	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "employee")
}

func TestStyledOutput_EnvOverrides(t *testing.T) {
	for _, env := range []string{"LOADFLOW_PLAIN", "CI", "NO_COLOR"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("LOADFLOW_PLAIN", "")
			t.Setenv("CI", "")
			t.Setenv("NO_COLOR", "")
			t.Setenv(env, "1")

			assert.False(t, StyledOutput(nil))
		})
	}
}

func TestStyledOutput_NilFile(t *testing.T) {
	t.Setenv("LOADFLOW_PLAIN", "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")

	assert.False(t, StyledOutput(nil))
}
