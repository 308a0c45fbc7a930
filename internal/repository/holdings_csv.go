package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"FolioPulse/internal/domain/models"
)

var csvHeader = []string{"Name", "Type", "Entry Date", "Entry Price", "Amount Invested", "Risk Level"}

// ExportCSV writes the holdings list in a spreadsheet-friendly shape.
func (s *FileHoldingsStore) ExportCSV(ctx context.Context, w io.Writer) error {
	list, err := s.List(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, inv := range list {
		row := []string{
			inv.DisplayName,
			string(inv.AssetClass),
			inv.EntryDate.Format("2006-01-02"),
			strconv.FormatFloat(inv.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(inv.AmountInvested, 'f', -1, 64),
			inv.RiskLevel,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV appends holdings parsed from r. Rows failing validation abort the
// import before anything is persisted.
func (s *FileHoldingsStore) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return 0, fmt.Errorf("csv has no data rows")
	}

	imported := make([]models.Investment, 0, len(records)-1)
	for i, row := range records[1:] {
		if len(row) < 6 {
			return 0, fmt.Errorf("csv row %d: expected 6 columns, got %d", i+2, len(row))
		}
		entryDate, err := time.Parse("2006-01-02", row[2])
		if err != nil {
			return 0, fmt.Errorf("csv row %d: bad entry date: %w", i+2, err)
		}
		entryPrice, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return 0, fmt.Errorf("csv row %d: bad entry price: %w", i+2, err)
		}
		amount, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return 0, fmt.Errorf("csv row %d: bad amount: %w", i+2, err)
		}
		inv, err := models.NewInvestment("", models.AssetClass(row[1]), row[0], entryDate, entryPrice, amount, row[5])
		if err != nil {
			return 0, fmt.Errorf("csv row %d: %w", i+2, err)
		}
		imported = append(imported, inv)
	}

	for _, inv := range imported {
		if _, err := s.Add(ctx, inv); err != nil {
			return 0, err
		}
	}
	return len(imported), nil
}
