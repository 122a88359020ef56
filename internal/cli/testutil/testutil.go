// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/airlens/airlens/internal/cli/output"
)

// listingsCSV is a small, representative slice of an Airbnb listings export.
// It covers every column the query catalog touches, including empty cells
// that load as NULL.
const listingsCSV = `id,name,neighbourhood,room_type,accommodates,price,minimum_nights,number_of_reviews,reviews_per_month,review_scores_rating,availability_365,amenities
1,Sunny loft in Gardens,Gardens,Entire home/apt,4,450.00,2,120,2.35,4.80,220,"Wifi, Kitchen, Washer"
2,Quiet room near Old Biscuit Mill,Woodstock,Private room,2,80.00,1,45,1.10,4.55,90,Wifi
3,Sea view villa,Camps Bay,Entire home/apt,8,1200.00,3,18,0.40,4.95,300,"Wifi, Pool, Parking"
4,Artist studio,Woodstock,Entire home/apt,2,150.00,2,200,3.80,4.70,180,"Wifi, Kitchen"
5,Garden cottage,Gardens,Entire home/apt,3,300.00,2,75,1.90,4.60,140,"Kitchen, Parking"
6,Backpacker bunk,Woodstock,Shared room,1,40.00,1,310,5.60,4.20,350,Wifi
7,Penthouse with deck,Camps Bay,Entire home/apt,6,950.00,2,60,1.25,,250,"Wifi, Pool"
8,Cosy attic room,Gardens,Private room,2,110.00,1,5,,4.90,30,"Wifi, Washer"
`

// SetupListingsCSV writes the sample listings dataset into a temporary
// directory and returns the path to the CSV file.
func SetupListingsCSV(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "listings.csv")
	if err := os.WriteFile(path, []byte(listingsCSV), 0644); err != nil {
		t.Fatalf("failed to write listings fixture: %v", err)
	}
	return path
}

// TestRenderer is a Renderer whose streams land in buffers, so tests can
// assert on exactly what a command printed, per output mode.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer builds a buffer-backed renderer with the given mode and
// TTY state.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererAuto simulates piped output: auto mode without a TTY,
// which resolves to markdown.
func NewTestRendererAuto() *TestRenderer {
	return NewTestRenderer(output.ModeAuto, false)
}

// NewTestRendererText simulates a terminal in text mode.
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown builds a renderer pinned to markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON builds a renderer pinned to JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns everything written to stdout so far.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns everything written to stderr so far.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI fails the test when s carries ANSI escape codes. Markdown
// and JSON output must stay clean for pipes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
