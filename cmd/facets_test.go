package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ademuri/album-roulette/internal/facet"
)

func TestPrintFacetsTable(t *testing.T) {
	ix := facet.BuildCatalog(testCatalog(t))
	out := new(bytes.Buffer)
	if err := printFacets(out, ix, "", 3, "table"); err != nil {
		t.Fatalf("printFacets() error: %v", err)
	}
	got := out.String()
	for _, want := range []string{"1965", "1994", "1997", "Found 3 years from 1965 to 1997", "East Coast Hip Hop", "Found 10 genres"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Spiritual Jazz") {
		t.Errorf("Expected genres to be limited to 3:\n%s", got)
	}
}

func TestPrintFacetsOnlyYears(t *testing.T) {
	ix := facet.BuildCatalog(testCatalog(t))
	out := new(bytes.Buffer)
	if err := printFacets(out, ix, "years", 0, "table"); err != nil {
		t.Fatalf("printFacets() error: %v", err)
	}
	if strings.Contains(out.String(), "genres") {
		t.Errorf("Expected no genre table:\n%s", out.String())
	}
}

func TestPrintFacetsYAML(t *testing.T) {
	ix := facet.BuildCatalog(testCatalog(t))
	out := new(bytes.Buffer)
	if err := printFacets(out, ix, "genres", 1, "yaml"); err != nil {
		t.Fatalf("printFacets() error: %v", err)
	}
	want := "genres:\n  - tag: East Coast Hip Hop\n    count: 2\n"
	if out.String() != want {
		t.Errorf("printFacets() yaml = %q, want %q", out.String(), want)
	}
}

func TestPrintFacetsEmpty(t *testing.T) {
	out := new(bytes.Buffer)
	if err := printFacets(out, facet.Index{}, "", 0, "table"); err != nil {
		t.Fatalf("printFacets() error: %v", err)
	}
	if !strings.Contains(out.String(), "Found no years") || !strings.Contains(out.String(), "Found 0 genres") {
		t.Errorf("Unexpected output for an empty catalog:\n%s", out.String())
	}
}
