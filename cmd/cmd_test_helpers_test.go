package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ademuri/album-roulette/internal/catalog"
)

const testCSV = `position,release_name,artist_name,release_date,release_type,primary_genres,secondary_genres,descriptors,avg_rating,rating_count
1,Illmatic,Nas,1994-04-19,album,"East Coast Hip Hop, Boom Bap","Hardcore Hip Hop, Jazz Rap","urban, lyrical, introspective, poetic, nocturnal, dense, rhythmic, conscious, boastful, melancholic",4.28,"58,021"
2,A Love Supreme,John Coltrane,1965-02-01,album,"Spiritual Jazz, Avant-Garde Jazz",NA,"spiritual, passionate",4.32,47188
3,Life After Death,The Notorious B.I.G.,1997-03-25,album,"East Coast Hip Hop, Hardcore Hip Hop, Gangsta Rap, Mafioso Rap, Pop Rap","Boom Bap, Jazz Rap, G-Funk","urban, crime",??,31000
`

func writeTestCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "music.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	result, err := catalog.Parse(strings.NewReader(testCSV))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return result.Catalog()
}
