package commands

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/airlens/airlens/internal/adapter"
	"github.com/airlens/airlens/internal/catalog"
	"github.com/airlens/airlens/internal/cli/config"
	"github.com/airlens/airlens/internal/cli/output"
	"github.com/airlens/airlens/internal/dialect"
	"github.com/spf13/cobra"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration, database and catalog",
		Long: `Check that airlens is ready to run queries.

The doctor command verifies, in order:
- Configuration (required keys, config file discovery)
- Database (driver, connectivity, listings table, expected columns)
- Catalog (every query template is well-formed)

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run all checks
  airlens doctor

  # Output as JSON
  airlens doctor --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Checks          []HealthCheck `json:"checks"`
	Score           int           `json:"score"`
	Healthy         bool          `json:"healthy"`
	Recommendations []string      `json:"recommendations"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Group   string   `json:"group"`
	Status  string   `json:"status"` // "pass", "warn", "error", "skip"
	Details []string `json:"details,omitempty"`
}

// requiredColumns are the listings columns the catalog queries reference.
var requiredColumns = []string{
	"name",
	"neighbourhood",
	"room_type",
	"price",
	"accommodates",
	"number_of_reviews",
	"reviews_per_month",
	"review_scores_rating",
	"availability_365",
	"amenities",
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx := NewCommandContextWithoutDB(cmd)
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	doctorOutput := buildDoctorOutput(cmd.Context(), cmdCtx.Cfg)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(doctorOutput)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, doctorOutput)
	default:
		return renderDoctorText(r, doctorOutput)
	}
}

func buildDoctorOutput(ctx context.Context, cfg *config.Config) *DoctorOutput {
	var checks []HealthCheck

	// Configuration
	configOK := true
	if err := cfg.Validate(); err != nil {
		configOK = false
		checks = append(checks, HealthCheck{
			ID: "CF01", Name: "Required keys", Group: "configuration",
			Status: "error", Details: []string{err.Error()},
		})
	} else {
		checks = append(checks, HealthCheck{
			ID: "CF01", Name: "Required keys", Group: "configuration", Status: "pass",
		})
	}

	if file := config.GetConfigFileUsed(); file != "" {
		checks = append(checks, HealthCheck{
			ID: "CF02", Name: "Config file", Group: "configuration",
			Status: "pass", Details: []string{file},
		})
	} else {
		checks = append(checks, HealthCheck{
			ID: "CF02", Name: "Config file", Group: "configuration",
			Status: "pass", Details: []string{"no airlens.yaml found, using defaults and environment"},
		})
	}

	// Database
	driverOK := adapter.IsRegistered(cfg.Driver)
	_, dialectOK := dialect.Get(cfg.Driver)
	if driverOK && dialectOK {
		checks = append(checks, HealthCheck{
			ID: "DB01", Name: "Driver", Group: "database",
			Status: "pass", Details: []string{cfg.Driver},
		})
	} else {
		checks = append(checks, HealthCheck{
			ID: "DB01", Name: "Driver", Group: "database", Status: "error",
			Details: []string{fmt.Sprintf("driver %q is not supported (available: %s)",
				cfg.Driver, strings.Join(adapter.ListAdapters(), ", "))},
		})
	}

	checks = append(checks, runConnectivityChecks(ctx, cfg, configOK && driverOK && dialectOK)...)

	// Catalog
	if err := catalog.Validate(); err != nil {
		checks = append(checks, HealthCheck{
			ID: "CT01", Name: "Query templates", Group: "catalog",
			Status: "error", Details: []string{err.Error()},
		})
	} else {
		checks = append(checks, HealthCheck{
			ID: "CT01", Name: "Query templates", Group: "catalog",
			Status: "pass", Details: []string{fmt.Sprintf("%d queries", len(catalog.All()))},
		})
	}

	score := calculateHealthScore(checks)
	return &DoctorOutput{
		Checks:          checks,
		Score:           score,
		Healthy:         score == 100,
		Recommendations: generateRecommendations(checks),
	}
}

// runConnectivityChecks connects, pings, and inspects the listings table.
// When ready is false a prerequisite check already failed and every
// database check is reported as skipped.
func runConnectivityChecks(ctx context.Context, cfg *config.Config, ready bool) []HealthCheck {
	skip := func(id, name string) HealthCheck {
		return HealthCheck{ID: id, Name: name, Group: "database", Status: "skip"}
	}
	connError := func(err error) []HealthCheck {
		return []HealthCheck{
			{ID: "DB02", Name: "Connectivity", Group: "database", Status: "error", Details: []string{err.Error()}},
			skip("DB03", "Listings table"), skip("DB04", "Expected columns"),
		}
	}
	if !ready {
		return []HealthCheck{skip("DB02", "Connectivity"), skip("DB03", "Listings table"), skip("DB04", "Expected columns")}
	}

	adapterCfg := cfg.AdapterConfig()
	ad, err := adapter.NewAdapter(adapterCfg, nil)
	if err != nil {
		return connError(err)
	}
	if err := ad.Connect(ctx, adapterCfg); err != nil {
		return connError(err)
	}
	defer func() { _ = ad.Close() }()

	if err := ad.Ping(ctx); err != nil {
		return connError(err)
	}

	checks := []HealthCheck{{ID: "DB02", Name: "Connectivity", Group: "database", Status: "pass"}}

	meta, err := ad.TableMetadata(ctx, cfg.Table)
	if err != nil {
		checks = append(checks,
			HealthCheck{ID: "DB03", Name: "Listings table", Group: "database", Status: "error",
				Details: []string{fmt.Sprintf("table %q is not readable: %v", cfg.Table, err)}},
			skip("DB04", "Expected columns"))
		return checks
	}

	tableCheck := HealthCheck{
		ID: "DB03", Name: "Listings table", Group: "database", Status: "pass",
		Details: []string{fmt.Sprintf("%s: %d rows, %d columns", meta.Name, meta.RowCount, len(meta.Columns))},
	}
	if meta.RowCount == 0 {
		tableCheck.Status = "warn"
		tableCheck.Details = append(tableCheck.Details, "table is empty")
	}
	checks = append(checks, tableCheck)

	present := make(map[string]bool, len(meta.Columns))
	for _, c := range meta.Columns {
		present[strings.ToLower(c.Name)] = true
	}
	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		checks = append(checks, HealthCheck{
			ID: "DB04", Name: "Expected columns", Group: "database", Status: "warn",
			Details: []string{"missing: " + strings.Join(missing, ", "), "queries touching them will fail"},
		})
	} else {
		checks = append(checks, HealthCheck{ID: "DB04", Name: "Expected columns", Group: "database", Status: "pass"})
	}

	return checks
}

// calculateHealthScore computes a health score from 0-100.
func calculateHealthScore(checks []HealthCheck) int {
	score := 100
	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= 25
		case "warn":
			score -= 10
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	seen := make(map[string]bool)

	for _, check := range checks {
		if check.Status != "error" && check.Status != "warn" {
			continue
		}
		rec := getRecommendation(check.ID)
		if rec != "" && !seen[rec] {
			recommendations = append(recommendations, rec)
			seen[rec] = true
		}
	}
	return recommendations
}

// getRecommendation returns a recommendation for a specific check.
func getRecommendation(checkID string) string {
	switch checkID {
	case "CF01":
		return "Set the missing keys in airlens.yaml or export them with the AIRLENS_ prefix"
	case "DB01":
		return "Set driver to postgres, duckdb or sqlite"
	case "DB02":
		return "Check the connection settings and that the database is reachable"
	case "DB03", "DB04":
		return "Load a listings export with 'airlens load <csv>'"
	case "CT01":
		return "Fix the reported catalog template before running queries"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render("airlens Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.StatusSuccess.String()
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.StatusFailed.String()
		case "skip":
			icon = styles.Muted.Render("-")
		}

		status := fmt.Sprintf("%s %s: %s", icon, check.ID, check.Name)
		if check.Status == "skip" {
			status += styles.Muted.Render(" (skipped)")
		}
		r.Println("   " + status)

		for _, detail := range check.Details {
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# airlens Health Report")
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("## " + titleCaser.String(currentGroup))
			r.Println("")
		}

		r.Printf("- **[%s]** %s: %s\n", strings.ToUpper(check.Status), check.ID, check.Name)
		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
