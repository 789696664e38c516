// Package csvload reads the index dump CSV into domain series.
//
// Expected columns (header names are trimmed, extra columns are ignored):
//
//	index_name, index_date, open_index_value
//
// Dates come in mixed formats and are read day-first.
package csvload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"index_backend/internal/feature/indicators/domain/entity"
)

const (
	ColumnName  = "index_name"
	ColumnDate  = "index_date"
	ColumnValue = "open_index_value"
)

// missingTokens are cell values read as "no value", compared case-insensitively.
var missingTokens = map[string]struct{}{
	"":     {},
	"-":    {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
}

// dateLayouts are tried in order. Day comes before month wherever the
// format is ambiguous.
var dateLayouts = []string{
	"2006-01-02",
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2006/1/2",
	"2-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2-1-2006 15:04:05",
	"2/1/2006 15:04:05",
	"2-1-2006 15:04",
	"2/1/2006 15:04",
}

// ParseDate parses a date in any of the supported layouts as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// LoadFile opens path and calls Load.
func LoadFile(path string) ([]entity.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close csv file", "path", path, "error", err)
		}
	}()
	return Load(f)
}

// Load reads every row and groups it by trimmed index name, in first-seen
// order. Each series is sorted by date; rows sharing a date keep file order.
// Rows whose value is empty, an NA token or not finite are skipped.
func Load(r io.Reader) ([]entity.Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var (
		order   []string
		byName  = map[string]*entity.Series{}
		line    = 1
		skipped = 0
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		name := field(rec, cols[ColumnName])
		rawValue := strings.ReplaceAll(field(rec, cols[ColumnValue]), ",", "")
		if name == "" || isMissing(rawValue) {
			skipped++
			continue
		}
		date, err := ParseDate(field(rec, cols[ColumnDate]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		value, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse value %q: %w", line, rawValue, err)
		}
		// NaN/Inf はJSONにエンコードできないので欠損として扱う
		if math.IsNaN(value) || math.IsInf(value, 0) {
			skipped++
			continue
		}

		s, ok := byName[name]
		if !ok {
			s = &entity.Series{Name: name}
			byName[name] = s
			order = append(order, name)
		}
		s.Observations = append(s.Observations, entity.Observation{Date: date, Value: value})
	}
	if skipped > 0 {
		slog.Warn("skipped csv rows without a value", "rows", skipped)
	}

	out := make([]entity.Series, 0, len(order))
	for _, name := range order {
		s := byName[name]
		sort.SliceStable(s.Observations, func(i, j int) bool {
			return s.Observations[i].Date.Before(s.Observations[j].Date)
		})
		out = append(out, *s)
	}
	return out, nil
}

func isMissing(v string) bool {
	_, ok := missingTokens[strings.ToLower(v)]
	return ok
}

func columnIndex(header []string) (map[string]int, error) {
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, want := range []string{ColumnName, ColumnDate, ColumnValue} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("missing column %q", want)
		}
	}
	return cols, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
