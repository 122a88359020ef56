package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlens/airlens/internal/adapter"
	"github.com/airlens/airlens/internal/cli/config"
	clitest "github.com/airlens/airlens/internal/cli/testutil"
	"github.com/airlens/airlens/internal/load"
	"github.com/airlens/airlens/internal/testutil"
)

// seedListingsDB loads the sample listings CSV into a fresh sqlite database
// file and returns its path.
func seedListingsDB(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "listings.db")
	adapterCfg := adapter.Config{Driver: "sqlite", Path: dbPath}
	ad, err := adapter.NewAdapter(adapterCfg, testutil.NewTestLogger(t))
	require.NoError(t, err)
	require.NoError(t, ad.Connect(ctx, adapterCfg))

	_, err = load.NewLoader(ad, testutil.NewTestLogger(t)).LoadFile(ctx, "listings", clitest.SetupListingsCSV(t))
	require.NoError(t, err)
	require.NoError(t, ad.Close())

	return dbPath
}

func checkByID(t *testing.T, out *DoctorOutput, id string) HealthCheck {
	t.Helper()
	for _, c := range out.Checks {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("no check with id %s in %+v", id, out.Checks)
	return HealthCheck{}
}

func TestBuildDoctorOutputHealthy(t *testing.T) {
	cfg := &config.Config{Driver: "sqlite", DBPath: seedListingsDB(t), Table: "listings"}

	out := buildDoctorOutput(context.Background(), cfg)

	require.NotNil(t, out)
	assert.Equal(t, 100, out.Score)
	assert.True(t, out.Healthy)
	assert.Empty(t, out.Recommendations)

	require.Len(t, out.Checks, 7)
	for _, c := range out.Checks {
		assert.Equal(t, "pass", c.Status, "check %s should pass", c.ID)
	}

	table := checkByID(t, out, "DB03")
	require.NotEmpty(t, table.Details)
	assert.Contains(t, table.Details[0], "8 rows")
}

func TestBuildDoctorOutputMissingTable(t *testing.T) {
	// No db_path means an in-memory database, which has no listings table.
	cfg := &config.Config{Driver: "sqlite", Table: "listings"}

	out := buildDoctorOutput(context.Background(), cfg)

	assert.False(t, out.Healthy)
	assert.Equal(t, 75, out.Score)
	assert.Equal(t, "pass", checkByID(t, out, "DB02").Status)

	table := checkByID(t, out, "DB03")
	assert.Equal(t, "error", table.Status)
	require.NotEmpty(t, table.Details)
	assert.Contains(t, table.Details[0], "not readable")

	assert.Equal(t, "skip", checkByID(t, out, "DB04").Status)

	require.Len(t, out.Recommendations, 1)
	assert.Contains(t, out.Recommendations[0], "airlens load")
}

func TestBuildDoctorOutputMissingDatabaseName(t *testing.T) {
	cfg := &config.Config{Driver: "postgres", Table: "listings"}

	out := buildDoctorOutput(context.Background(), cfg)

	assert.Equal(t, "error", checkByID(t, out, "CF01").Status)
	assert.Equal(t, "pass", checkByID(t, out, "DB01").Status, "postgres itself is a valid driver")
	for _, id := range []string{"DB02", "DB03", "DB04"} {
		assert.Equal(t, "skip", checkByID(t, out, id).Status, "connectivity checks skip on broken config")
	}

	assert.Equal(t, 75, out.Score)
	require.Len(t, out.Recommendations, 1)
	assert.Contains(t, out.Recommendations[0], "AIRLENS_")
}

func TestBuildDoctorOutputUnknownDriver(t *testing.T) {
	cfg := &config.Config{Driver: "oracle", Table: "listings"}

	out := buildDoctorOutput(context.Background(), cfg)

	driver := checkByID(t, out, "DB01")
	assert.Equal(t, "error", driver.Status)
	require.NotEmpty(t, driver.Details)
	assert.Contains(t, driver.Details[0], "not supported")
	assert.Contains(t, driver.Details[0], "sqlite", "error should list the available drivers")

	for _, id := range []string{"DB02", "DB03", "DB04"} {
		assert.Equal(t, "skip", checkByID(t, out, id).Status)
	}

	require.Len(t, out.Recommendations, 1)
	assert.Contains(t, out.Recommendations[0], "postgres, duckdb or sqlite")
}

func TestCalculateHealthScore(t *testing.T) {
	tests := []struct {
		name   string
		checks []HealthCheck
		want   int
	}{
		{name: "no checks", checks: nil, want: 100},
		{
			name:   "all passing",
			checks: []HealthCheck{{Status: "pass"}, {Status: "pass"}, {Status: "skip"}},
			want:   100,
		},
		{
			name:   "warning costs ten",
			checks: []HealthCheck{{Status: "pass"}, {Status: "warn"}},
			want:   90,
		},
		{
			name:   "error costs twenty five",
			checks: []HealthCheck{{Status: "error"}},
			want:   75,
		},
		{
			name:   "mixed findings stack",
			checks: []HealthCheck{{Status: "error"}, {Status: "error"}, {Status: "warn"}},
			want:   40,
		},
		{
			name: "score never goes below zero",
			checks: []HealthCheck{
				{Status: "error"}, {Status: "error"}, {Status: "error"},
				{Status: "error"}, {Status: "error"},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateHealthScore(tt.checks))
		})
	}
}

func TestGenerateRecommendationsDedupes(t *testing.T) {
	// DB03 and DB04 share the same fix, so it should appear once.
	checks := []HealthCheck{
		{ID: "DB03", Status: "error"},
		{ID: "DB04", Status: "warn"},
	}
	recs := generateRecommendations(checks)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0], "airlens load")
}

func TestGenerateRecommendationsSkipsHealthyChecks(t *testing.T) {
	checks := []HealthCheck{
		{ID: "CF01", Status: "pass"},
		{ID: "DB02", Status: "skip"},
	}
	assert.Empty(t, generateRecommendations(checks))
}

func doctorFixture() *DoctorOutput {
	return &DoctorOutput{
		Checks: []HealthCheck{
			{ID: "CF01", Name: "Required keys", Group: "configuration", Status: "pass"},
			{ID: "DB01", Name: "Driver", Group: "database", Status: "error",
				Details: []string{`driver "oracle" is not supported`}},
			{ID: "DB02", Name: "Connectivity", Group: "database", Status: "skip"},
		},
		Score:           75,
		Healthy:         false,
		Recommendations: []string{"Set driver to postgres, duckdb or sqlite"},
	}
}

func TestRenderDoctorText(t *testing.T) {
	tr := clitest.NewTestRendererText()

	require.NoError(t, renderDoctorText(tr.Renderer, doctorFixture()))

	got := tr.Output()
	assert.Contains(t, got, "airlens Health Report")
	assert.Contains(t, got, "Configuration")
	assert.Contains(t, got, "Database")
	assert.Contains(t, got, "CF01: Required keys")
	assert.Contains(t, got, `driver "oracle" is not supported`)
	assert.Contains(t, got, "(skipped)")
	assert.Contains(t, got, "75/100")
	assert.Contains(t, got, "1. Set driver to postgres, duckdb or sqlite")
}

func TestRenderDoctorMarkdown(t *testing.T) {
	tr := clitest.NewTestRendererMarkdown()

	require.NoError(t, renderDoctorMarkdown(tr.Renderer, doctorFixture()))

	got := tr.Output()
	clitest.AssertNoANSI(t, got)
	assert.Contains(t, got, "# airlens Health Report")
	assert.Contains(t, got, "## Configuration")
	assert.Contains(t, got, "- **[PASS]** CF01: Required keys")
	assert.Contains(t, got, "- **[ERROR]** DB01: Driver")
	assert.Contains(t, got, "## Health Score")
	assert.Contains(t, got, "**75/100**")
	assert.Contains(t, got, "## Recommendations")
}
