package facet

import (
	"reflect"
	"testing"

	"github.com/ademuri/album-roulette/internal/catalog"
)

func album(name, date, primary, secondary string) catalog.Album {
	d, _ := catalog.ParseReleaseDate(date)
	return catalog.Album{
		ReleaseName:     name,
		ReleaseDate:     d,
		PrimaryGenres:   catalog.SplitTags(primary),
		SecondaryGenres: catalog.SplitTags(secondary),
	}
}

func TestBuild_example(t *testing.T) {
	albums := []catalog.Album{
		album("a", "1994-01-01", "Hip Hop", ""),
		album("b", "1994-06-01", "Jazz", ""),
		album("c", "1997-03-01", "Hip Hop", ""),
	}
	ix := Build(albums)

	if want := []int{1994, 1997}; !reflect.DeepEqual(ix.Years, want) {
		t.Errorf("Years = %v, want %v", ix.Years, want)
	}
	want := []GenreCount{{"Hip Hop", 2}, {"Jazz", 1}}
	if !reflect.DeepEqual(ix.Genres, want) {
		t.Errorf("Genres = %v, want %v", ix.Genres, want)
	}
	if year, ok := ix.DefaultYear(); !ok || year != 1997 {
		t.Errorf("DefaultYear() = %d, %v", year, ok)
	}
	if genre, ok := ix.DefaultGenre(); !ok || genre != "Hip Hop" {
		t.Errorf("DefaultGenre() = %q, %v", genre, ok)
	}
	if first, last, ok := ix.Span(); !ok || first != 1994 || last != 1997 {
		t.Errorf("Span() = %d, %d, %v", first, last, ok)
	}
}

func TestBuild_yearsAscendingDistinct(t *testing.T) {
	albums := []catalog.Album{
		album("a", "2001", "Rock", ""),
		album("b", "1970-05", "Rock", ""),
		album("c", "2001-02-03", "Rock", ""),
		album("d", "garbage", "Rock", ""),
		album("e", "1985", "Rock", ""),
	}
	ix := Build(albums)
	want := []int{1970, 1985, 2001}
	if !reflect.DeepEqual(ix.Years, want) {
		t.Fatalf("Years = %v, want %v", ix.Years, want)
	}
	for i := 1; i < len(ix.Years); i++ {
		if ix.Years[i] <= ix.Years[i-1] {
			t.Errorf("Years not strictly ascending: %v", ix.Years)
		}
	}
	if !ix.HasYear(1985) || ix.HasYear(1986) {
		t.Errorf("HasYear mismatch for %v", ix.Years)
	}
}

func TestBuild_tiesKeepFirstAppearance(t *testing.T) {
	albums := []catalog.Album{
		album("a", "2000", "Shoegaze, Dream Pop", "Noise Pop"),
		album("b", "2000", "Noise Pop", ""),
		album("c", "2000", "Dream Pop, Ambient", ""),
		album("d", "2000", "Ambient", "Shoegaze"),
	}
	ix := Build(albums)

	// Counts: Shoegaze 2, Dream Pop 2, Noise Pop 2, Ambient 2.
	want := []string{"Shoegaze", "Dream Pop", "Noise Pop", "Ambient"}
	if got := ix.GenreTags(); !reflect.DeepEqual(got, want) {
		t.Fatalf("GenreTags() = %q, want %q", got, want)
	}
	for i := 1; i < len(ix.Genres); i++ {
		if ix.Genres[i].Count > ix.Genres[i-1].Count {
			t.Errorf("Genres not non-increasing: %v", ix.Genres)
		}
	}
}

func TestBuild_duplicateTagCountsTwice(t *testing.T) {
	albums := []catalog.Album{
		album("a", "2010", "Jazz", "Jazz"),
		album("b", "2010", "Funk", ""),
		album("c", "2010", "Funk", ""),
	}
	ix := Build(albums)
	if got := ix.Count("Jazz"); got != 2 {
		t.Errorf("Count(Jazz) = %d, want 2", got)
	}
	// Jazz was seen first, so it wins the tie with Funk.
	if genre, _ := ix.DefaultGenre(); genre != "Jazz" {
		t.Errorf("DefaultGenre() = %q, want Jazz", genre)
	}
}

func TestBuild_empty(t *testing.T) {
	ix := Build(nil)
	if _, ok := ix.DefaultYear(); ok {
		t.Errorf("DefaultYear() should be unset for an empty catalog")
	}
	if _, ok := ix.DefaultGenre(); ok {
		t.Errorf("DefaultGenre() should be unset for an empty catalog")
	}
	if len(ix.TopGenres(5)) != 0 {
		t.Errorf("TopGenres() should be empty")
	}
}

func TestTopGenres(t *testing.T) {
	ix := Index{Genres: []GenreCount{{"a", 3}, {"b", 2}, {"c", 1}}}
	if got := ix.TopGenres(2); len(got) != 2 || got[1].Tag != "b" {
		t.Errorf("TopGenres(2) = %v", got)
	}
	if got := ix.TopGenres(0); len(got) != 3 {
		t.Errorf("TopGenres(0) = %v", got)
	}
}
