// Package csvfile reads the journeys table from a delimited text file.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/letter-journeys/internal/domain"
)

// Reader implements pipeline.Extractor over a CSV file on disk.
type Reader struct {
	path   string
	comma  rune
	logger *slog.Logger
}

// NewReader creates a Reader. Files ending in .tsv are read tab-separated.
func NewReader(path string, logger *slog.Logger) *Reader {
	comma := ','
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		comma = '\t'
	}
	return &Reader{path: path, comma: comma, logger: logger}
}

// Extract reads and parses every row. The file is re-read on each call so a
// refreshed input is picked up by the next pipeline cycle.
func (r *Reader) Extract(ctx context.Context) ([]domain.JourneyRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	records, err := Parse(ctx, f, r.comma)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	r.logger.Debug("journeys read", "path", r.path, "records", len(records))
	return records, nil
}

// Parse decodes a journeys table from rd. The first row is the header;
// header names are normalized with domain.NormalizeColumn.
func Parse(ctx context.Context, rd io.Reader, comma rune) ([]domain.JourneyRecord, error) {
	cr := csv.NewReader(rd)
	cr.Comma = comma
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.DataError{Line: 1, Field: "header", Reason: "empty input"}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, h := range header {
		columns[i] = domain.NormalizeColumn(strings.TrimPrefix(h, "\ufeff"))
		// Unnamed trailing columns are ignored, not duplicates.
		if columns[i] != "" && present[columns[i]] {
			return nil, &domain.DataError{Line: 1, Field: columns[i], Value: h, Reason: "duplicate column"}
		}
		present[columns[i]] = true
	}
	for _, col := range domain.RequiredColumns {
		if !present[col] {
			return nil, &domain.DataError{Line: 1, Field: col, Reason: "missing column"}
		}
	}

	var records []domain.JourneyRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &domain.DataError{Line: perr.Line, Field: "row", Reason: perr.Err.Error()}
			}
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(row) {
				fields[col] = row[i]
			}
		}
		rec, err := domain.ParseRecord(line, fields)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
