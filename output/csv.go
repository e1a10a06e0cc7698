// Package output persists extraction results to CSV and JSON files and
// delivers signed webhook events.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/use-agent/futmarket/models"
)

// Record is one persisted extraction: the result plus the registry entry
// it was extracted for.
type Record struct {
	Timestamp      time.Time
	ConfiguredName string
	Notes          string
	Result         models.ExtractionResult
}

var csvHeader = []string{
	"timestamp",
	"player_name",
	"configured_name",
	"card_type",
	"card_rarity",
	"overall_rating",
	"position",
	"cheapest_sale",
	"average_bin",
	"ea_avg_price",
	"notes",
	"url",
}

// AppendCSV appends records to path, writing the header first when the file
// is new or empty.
func AppendCSV(path string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("output: open csv: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("output: stat csv: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("output: write csv header: %w", err)
		}
	}
	for _, rec := range records {
		if err := w.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("output: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("output: flush csv: %w", err)
	}
	return nil
}

func csvRow(rec Record) []string {
	meta := rec.Result.Metadata
	fields := rec.Result.Fields

	rating := ""
	if meta.OverallRating > 0 {
		rating = strconv.Itoa(meta.OverallRating)
	}

	return []string{
		rec.Timestamp.UTC().Format(time.RFC3339),
		meta.DisplayName,
		rec.ConfiguredName,
		meta.CardType,
		meta.CardRarity,
		rating,
		meta.Position,
		priceCell(fields.CheapestSale),
		priceCell(fields.AverageBIN),
		priceCell(fields.EAAverage),
		rec.Notes,
		rec.Result.URL,
	}
}

// priceCell renders an absent price as an empty cell rather than a zero,
// so spreadsheet aggregates stay honest.
func priceCell(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
