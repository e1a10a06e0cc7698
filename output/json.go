package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// jsonRecord is the flattened form written to the JSON results file.
type jsonRecord struct {
	Timestamp      string `json:"timestamp"`
	ConfiguredName string `json:"configured_name,omitempty"`
	Notes          string `json:"notes,omitempty"`

	Success      bool   `json:"success"`
	URL          string `json:"url"`
	PlayerName   string `json:"player_name,omitempty"`
	CardType     string `json:"card_type,omitempty"`
	CardRarity   string `json:"card_rarity,omitempty"`
	Rating       int    `json:"overall_rating,omitempty"`
	Position     string `json:"position,omitempty"`
	CheapestSale *int   `json:"cheapest_sale"`
	AverageBIN   *int   `json:"average_bin"`
	EAAverage    *int   `json:"ea_avg_price"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// WriteJSON writes the full batch to path, replacing any previous file.
func WriteJSON(path string, records []Record) error {
	out := make([]jsonRecord, 0, len(records))
	for _, rec := range records {
		jr := jsonRecord{
			Timestamp:      rec.Timestamp.UTC().Format(time.RFC3339),
			ConfiguredName: rec.ConfiguredName,
			Notes:          rec.Notes,
			Success:        rec.Result.Success,
			URL:            rec.Result.URL,
			PlayerName:     rec.Result.Metadata.DisplayName,
			CardType:       rec.Result.Metadata.CardType,
			CardRarity:     rec.Result.Metadata.CardRarity,
			Rating:         rec.Result.Metadata.OverallRating,
			Position:       rec.Result.Metadata.Position,
			CheapestSale:   rec.Result.Fields.CheapestSale,
			AverageBIN:     rec.Result.Fields.AverageBIN,
			EAAverage:      rec.Result.Fields.EAAverage,
		}
		if rec.Result.Error != nil {
			jr.ErrorCode = rec.Result.Error.Code
			jr.ErrorMessage = rec.Result.Error.Message
		}
		out = append(out, jr)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("output: marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("output: write json: %w", err)
	}
	return nil
}
