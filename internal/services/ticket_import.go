package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ImportResult summarises a CSV ticket import.
type ImportResult struct {
	TotalRows  int      `json:"totalRows"`
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Errors     []string `json:"errors"`
}

// ImportCSV imports pre-printed tickets from CSV. The header must contain a code column
// ("Code", "Ticket", "Ticket Code") and a reward column ("Reward", "Points", "Amount").
// Bad rows are reported and skipped; an unreadable header or a failing reader aborts the
// import, returning what was imported so far.
func (s *TicketService) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	codeIdx := findColumnIndex(header, []string{"Code", "Ticket", "Ticket Code"})
	rewardIdx := findColumnIndex(header, []string{"Reward", "Points", "Amount"})
	if codeIdx == -1 {
		return nil, errors.New("code column not found in CSV")
	}
	if rewardIdx == -1 {
		return nil, errors.New("reward column not found in CSV")
	}

	result := &ImportResult{Errors: []string{}}
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		result.TotalRows++
		if err != nil {
			// Malformed rows are skipped; anything else is the reader failing.
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return result, fmt.Errorf("read row %d: %w", result.TotalRows, err)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", result.TotalRows, err))
			continue
		}
		if codeIdx >= len(row) || rewardIdx >= len(row) {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: missing columns", result.TotalRows))
			continue
		}

		_, err = s.Import(ctx, row[codeIdx], row[rewardIdx])
		switch {
		case err == nil:
			result.Imported++
		case errors.Is(err, ErrDuplicateCode):
			result.Duplicates++
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", result.TotalRows, err))
		}
	}
	return result, nil
}

func findColumnIndex(header []string, names []string) int {
	for i, col := range header {
		col = strings.TrimSpace(col)
		for _, name := range names {
			if strings.EqualFold(col, name) {
				return i
			}
		}
	}
	return -1
}
