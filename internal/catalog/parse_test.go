package catalog

import (
	"bytes"
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const testCSV = `position,release_name,artist_name,release_date,release_type,primary_genres,secondary_genres,descriptors,avg_rating,rating_count
1,Illmatic,Nas,1994-04-19,album,"East Coast Hip Hop, Boom Bap","Hardcore Hip Hop, Jazz Rap","urban, lyrical, introspective",4.28,58021
2,A Love Supreme,John Coltrane,1965-02-01,album,"Spiritual Jazz, Avant-Garde Jazz",NA,"spiritual, passionate",4.32,47188
3,Life After Death,The Notorious B.I.G.,1997-03-25,album,East Coast Hip Hop,"Gangsta Rap, Hardcore Hip Hop","urban, crime",3.96,31000
`

func TestParse(t *testing.T) {
	result, err := Parse(strings.NewReader(testCSV))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("Expected no row errors, got %v", result.Errors)
	}
	if len(result.Albums) != 3 {
		t.Fatalf("Expected 3 albums, got %d", len(result.Albums))
	}

	illmatic := result.Albums[0]
	if illmatic.Position != 1 || illmatic.ReleaseName != "Illmatic" || illmatic.ArtistName != "Nas" {
		t.Errorf("Unexpected first album: %+v", illmatic)
	}
	if year, ok := illmatic.Year(); !ok || year != 1994 {
		t.Errorf("Year() = %d, %v, want 1994, true", year, ok)
	}
	wantPrimary := []string{"East Coast Hip Hop", "Boom Bap"}
	if !reflect.DeepEqual(illmatic.PrimaryGenres, wantPrimary) {
		t.Errorf("PrimaryGenres = %q, want %q", illmatic.PrimaryGenres, wantPrimary)
	}
	if illmatic.AvgRating != 4.28 || illmatic.RatingCount != 58021 {
		t.Errorf("Unexpected rating %v / %d", illmatic.AvgRating, illmatic.RatingCount)
	}
	if len(illmatic.Descriptors) != 3 || illmatic.Descriptors[2] != "introspective" {
		t.Errorf("Unexpected descriptors %q", illmatic.Descriptors)
	}

	// Output order follows input order.
	for i, want := range []string{"Illmatic", "A Love Supreme", "Life After Death"} {
		if got := result.Albums[i].ReleaseName; got != want {
			t.Errorf("Albums[%d] = %q, want %q", i, got, want)
		}
	}
}

func TestParse_notApplicableSecondaryGenres(t *testing.T) {
	result, err := Parse(strings.NewReader(testCSV))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	coltrane := result.Albums[1]
	if len(coltrane.SecondaryGenres) != 0 {
		t.Fatalf("NA should normalize to no secondary genres, got %q", coltrane.SecondaryGenres)
	}
	if !reflect.DeepEqual(coltrane.Genres(), coltrane.PrimaryGenres) {
		t.Errorf("Genres() = %q, want primary only %q", coltrane.Genres(), coltrane.PrimaryGenres)
	}

	biggie := result.Albums[2]
	want := []string{"Gangsta Rap", "Hardcore Hip Hop"}
	if !reflect.DeepEqual(biggie.SecondaryGenres, want) {
		t.Errorf("SecondaryGenres = %q, want %q", biggie.SecondaryGenres, want)
	}
}

func TestParse_malformedNumbersKeepRow(t *testing.T) {
	input := `position,release_name,artist_name,release_date,release_type,primary_genres,secondary_genres,descriptors,avg_rating,rating_count
x,Broken,Someone,1999,album,Rock,NA,loud,n/a,many
2,Fine,Someone Else,2001-05-01,album,Pop,NA,catchy,3.5,10
`
	result, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(result.Albums) != 2 {
		t.Fatalf("A corrupt row must not drop the catalog, got %d albums", len(result.Albums))
	}

	broken := result.Albums[0]
	if broken.HasRating() || !math.IsNaN(broken.AvgRating) {
		t.Errorf("AvgRating should be NaN, got %v", broken.AvgRating)
	}
	if broken.RatingCount != 0 || broken.Position != 0 {
		t.Errorf("Expected zero position and count, got %d / %d", broken.Position, broken.RatingCount)
	}
	for _, column := range []string{ColPosition, ColAvgRating, ColRatingCount} {
		if broken.IsValid(column) {
			t.Errorf("Expected %s to be marked invalid", column)
		}
	}
	if year, ok := broken.Year(); !ok || year != 1999 {
		t.Errorf("Year() = %d, %v, want 1999, true", year, ok)
	}
	if len(result.Errors) != 3 {
		t.Errorf("Expected 3 row errors, got %d: %v", len(result.Errors), result.Errors)
	}
	for _, rowErr := range result.Errors {
		if rowErr.Line != 2 {
			t.Errorf("Expected errors on line 2, got %d", rowErr.Line)
		}
	}

	fine := result.Albums[1]
	if len(fine.Invalid) != 0 || fine.AvgRating != 3.5 {
		t.Errorf("Unexpected second album: %+v", fine)
	}
}

func TestParse_columnOrderAndShortRows(t *testing.T) {
	input := "release_name,position,avg_rating\nFirst,7,4.1\nShort\n\n"
	result, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(result.Albums) != 2 {
		t.Fatalf("Expected 2 albums (blank line skipped), got %d", len(result.Albums))
	}
	if result.Albums[0].Position != 7 || result.Albums[0].AvgRating != 4.1 {
		t.Errorf("Columns should be matched by header name: %+v", result.Albums[0])
	}
	if result.Albums[1].ReleaseName != "Short" || result.Albums[1].IsValid(ColPosition) {
		t.Errorf("Short row should keep its name and mark position invalid: %+v", result.Albums[1])
	}
}

func TestParse_unterminatedQuoteIsReported(t *testing.T) {
	input := `position,release_name,artist_name,release_date,release_type,primary_genres,secondary_genres,descriptors,avg_rating,rating_count
1,A,X,1994,album,Rock,NA,loud,3.1,10
2,"Broken,Y,1995,album,Rock,NA,loud,3.2,11
3,C,Z,1996,album,Rock,NA,loud,3.3,12
4,D,W,1997,album,Rock,NA,loud,3.4,13
`
	result, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(result.Albums) == 0 || result.Albums[0].ReleaseName != "A" {
		t.Fatalf("Rows before the broken one should load, got %+v", result.Albums)
	}

	var shape *RowError
	for i := range result.Errors {
		if result.Errors[i].Column == RowColumn {
			shape = &result.Errors[i]
		}
	}
	if shape == nil {
		t.Fatalf("Expected a row error for the unterminated quote, got %v", result.Errors)
	}
	if shape.Line != 3 || !errors.Is(shape, ErrRowShape) {
		t.Errorf("Unexpected row error %v", shape)
	}
	if strings.Contains(shape.Value, "\n") {
		t.Errorf("Row error value should be a single line preview, got %q", shape.Value)
	}
}

func TestParse_fieldCountMismatchIsReported(t *testing.T) {
	input := "release_name,position\nFirst,1\nSecond,2,extra\n"
	result, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(result.Albums) != 2 {
		t.Fatalf("Expected 2 albums, got %d", len(result.Albums))
	}
	var lines []int
	for _, rowErr := range result.Errors {
		if rowErr.Column == RowColumn {
			lines = append(lines, rowErr.Line)
		}
	}
	if len(lines) != 1 || lines[0] != 3 {
		t.Errorf("Expected one row error on line 3, got %v", result.Errors)
	}
}

func TestParse_noHeader(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if !errors.Is(err, ErrNoHeader) {
		t.Fatalf("Expected ErrNoHeader, got %v", err)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	result, err := Parse(strings.NewReader(testCSV))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, result.Albums); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	again, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse(Write()) error: %v", err)
	}
	if len(again.Albums) != len(result.Albums) {
		t.Fatalf("Expected %d albums after round trip, got %d", len(result.Albums), len(again.Albums))
	}
	for i := range result.Albums {
		a, b := result.Albums[i], again.Albums[i]
		if a.Position != b.Position || a.AvgRating != b.AvgRating || a.RatingCount != b.RatingCount {
			t.Errorf("Numeric fields changed on round trip: %+v vs %+v", a, b)
		}
		if !reflect.DeepEqual(a.Genres(), b.Genres()) {
			t.Errorf("Genres changed on round trip: %q vs %q", a.Genres(), b.Genres())
		}
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "music.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	result, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	if result.Catalog().Len() != 3 {
		t.Errorf("Expected 3 albums, got %d", result.Catalog().Len())
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Errorf("Expected error reading a missing file")
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/music.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(testCSV))
	}))
	defer srv.Close()

	result, err := Fetch(context.Background(), srv.Client(), srv.URL+"/music.csv")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(result.Albums) != 3 {
		t.Errorf("Expected 3 albums, got %d", len(result.Albums))
	}

	if _, err := Fetch(context.Background(), srv.Client(), srv.URL+"/nope.csv"); err == nil {
		t.Errorf("Expected error for a 404 catalog")
	}
}

func TestCatalogIsReadOnly(t *testing.T) {
	result, err := Parse(strings.NewReader(testCSV))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	c := result.Catalog()
	albums := c.Albums()
	albums[0].ReleaseName = "changed"
	if c.At(0).ReleaseName != "Illmatic" {
		t.Errorf("Mutating Albums() should not change the catalog")
	}

	var empty *Catalog
	if empty.Len() != 0 || empty.Albums() != nil {
		t.Errorf("nil catalog should behave as empty")
	}
}
