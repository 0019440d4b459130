package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"aibacktest/types"
)

// ExportTransactionsCSV writes the transaction log to a CSV file at path.
func ExportTransactionsCSV(path string, transactions []types.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create transactions file: %w", err)
	}
	defer f.Close()

	return WriteTransactionsCSV(f, transactions)
}

// WriteTransactionsCSV writes the transaction log to any io.Writer as CSV.
func WriteTransactionsCSV(w io.Writer, transactions []types.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"date", "instrument", "action", "shares", "price", "amount", "confidence"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, t := range transactions {
		row := []string{
			t.Date.Format("2006-01-02"),
			t.Instrument,
			string(t.Action),
			t.Shares.String(),
			t.Price.String(),
			t.Amount.String(),
			fmt.Sprintf("%.2f", t.Confidence),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return cw.Error()
}
