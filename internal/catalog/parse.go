package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = errors.New("catalog has no header row")

// ErrRowShape marks a row whose field count differs from the header or that
// runs over several lines, usually because of an unterminated quote.
var ErrRowShape = errors.New("malformed row")

// RowColumn is the RowError.Column of problems with a row as a whole.
const RowColumn = "row"

// RowError describes a cell that could not be parsed. The row is still
// part of the result.
type RowError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Result is the outcome of parsing a catalog.
type Result struct {
	Albums []Album
	Errors []RowError
}

// Catalog wraps the parsed albums.
func (r Result) Catalog() *Catalog {
	return New(r.Albums)
}

// Parse reads a catalog with a header row. Columns are found by header
// name. Malformed cells are recorded in Result.Errors and the row is kept.
// Only an unreadable input or a missing header fails the whole parse.
func Parse(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return Result{}, ErrNoHeader
	}
	if err != nil {
		return Result{}, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	var result Result
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && record == nil {
				result.Errors = append(result.Errors, RowError{Line: perr.Line, Column: RowColumn, Err: perr.Err})
				continue
			}
			if record == nil {
				return result, fmt.Errorf("reading catalog: %w", err)
			}
		}
		if isBlank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		cell := func(column string) string {
			i, ok := index[column]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		album, rowErrs := parseRow(cell, line)
		if shapeErr := checkShape(record, len(header), line); shapeErr != nil {
			rowErrs = append([]RowError{*shapeErr}, rowErrs...)
		}
		result.Albums = append(result.Albums, album)
		result.Errors = append(result.Errors, rowErrs...)
	}
	return result, nil
}

// checkShape reports a record that does not line up with the header.
func checkShape(record []string, width, line int) *RowError {
	var err error
	if len(record) != width {
		err = fmt.Errorf("%w: %d fields, header has %d", ErrRowShape, len(record), width)
	} else if n := newlines(record); n > 0 {
		err = fmt.Errorf("%w: spans %d lines", ErrRowShape, n+1)
	}
	if err == nil {
		return nil
	}
	return &RowError{Line: line, Column: RowColumn, Value: preview(record), Err: err}
}

func newlines(record []string) int {
	n := 0
	for _, f := range record {
		n += strings.Count(f, "\n")
	}
	return n
}

func preview(record []string) string {
	const max = 60
	s := strings.Join(record, ",")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + "..."
	}
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRow(cell func(string) string, line int) (Album, []RowError) {
	var errs []RowError
	fail := func(a *Album, column, value string, err error) {
		a.Invalid = append(a.Invalid, column)
		errs = append(errs, RowError{Line: line, Column: column, Value: value, Err: err})
	}

	secondary := cell(ColSecondaryGenres)
	if secondary == NotApplicable {
		secondary = ""
	}

	a := Album{
		ReleaseName:     cell(ColReleaseName),
		ArtistName:      cell(ColArtistName),
		ReleaseType:     cell(ColReleaseType),
		PrimaryGenres:   SplitTags(cell(ColPrimaryGenres)),
		SecondaryGenres: SplitTags(secondary),
		Descriptors:     SplitTags(cell(ColDescriptors)),
		AvgRating:       math.NaN(),
	}

	if v := cell(ColPosition); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail(&a, ColPosition, v, err)
		} else {
			a.Position = n
		}
	} else {
		fail(&a, ColPosition, v, strconv.ErrSyntax)
	}

	if v := cell(ColAvgRating); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			fail(&a, ColAvgRating, v, err)
		} else {
			a.AvgRating = f
		}
	} else {
		fail(&a, ColAvgRating, v, strconv.ErrSyntax)
	}

	if v := cell(ColRatingCount); v != "" {
		n, err := strconv.Atoi(strings.ReplaceAll(v, ",", ""))
		if err != nil {
			fail(&a, ColRatingCount, v, err)
		} else {
			a.RatingCount = n
		}
	} else {
		fail(&a, ColRatingCount, v, strconv.ErrSyntax)
	}

	if v := cell(ColReleaseDate); v != "" {
		d, err := ParseReleaseDate(v)
		if err != nil {
			errs = append(errs, RowError{Line: line, Column: ColReleaseDate, Value: v, Err: err})
		} else {
			a.ReleaseDate = d
		}
	}

	return a, errs
}

// ParseRecord builds an Album from cells keyed by column name. It applies
// the same rules as Parse; line is only used in the returned errors.
func ParseRecord(cells map[string]string, line int) (Album, []RowError) {
	return parseRow(func(column string) string {
		return strings.TrimSpace(cells[column])
	}, line)
}

// Record renders a in Columns order, the inverse of ParseRecord. Invalid
// numeric fields render as empty cells and empty secondary genres as NA.
func (a Album) Record() []string {
	record := make([]string, len(Columns))
	for i, column := range Columns {
		switch column {
		case ColPosition:
			if a.IsValid(ColPosition) {
				record[i] = strconv.Itoa(a.Position)
			}
		case ColReleaseName:
			record[i] = a.ReleaseName
		case ColArtistName:
			record[i] = a.ArtistName
		case ColReleaseDate:
			record[i] = a.ReleaseDate.String()
		case ColReleaseType:
			record[i] = a.ReleaseType
		case ColPrimaryGenres:
			record[i] = strings.Join(a.PrimaryGenres, ", ")
		case ColSecondaryGenres:
			if len(a.SecondaryGenres) == 0 {
				record[i] = NotApplicable
			} else {
				record[i] = strings.Join(a.SecondaryGenres, ", ")
			}
		case ColDescriptors:
			record[i] = strings.Join(a.Descriptors, ", ")
		case ColAvgRating:
			if a.HasRating() {
				record[i] = strconv.FormatFloat(a.AvgRating, 'f', -1, 64)
			}
		case ColRatingCount:
			if a.IsValid(ColRatingCount) {
				record[i] = strconv.Itoa(a.RatingCount)
			}
		}
	}
	return record
}

// Write renders albums as a catalog with a header row.
func Write(w io.Writer, albums []Album) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, a := range albums {
		if err := writer.Write(a.Record()); err != nil {
			return fmt.Errorf("writing %q: %w", a.ReleaseName, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadFile parses the catalog stored at path.
func ReadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	result, err := Parse(f)
	if err != nil {
		return result, fmt.Errorf("parsing %s: %w", path, err)
	}
	return result, nil
}

// Fetch downloads and parses the catalog served at url. A nil client uses
// http.DefaultClient.
func Fetch(ctx context.Context, client *http.Client, url string) (Result, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("building catalog request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetching catalog: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("fetching catalog: %s", resp.Status)
	}

	result, err := Parse(resp.Body)
	if err != nil {
		return result, fmt.Errorf("parsing %s: %w", url, err)
	}
	return result, nil
}

// IsURL reports whether location names an http(s) resource rather than a
// local file.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
