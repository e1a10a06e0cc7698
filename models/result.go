package models

// MarketFields holds the three price statistics targeted on a market page.
// Any subset may be present; a nil field means the value could not be located.
type MarketFields struct {
	// CheapestSale is the lowest currently listed sale price, in coins.
	CheapestSale *int `json:"cheapest_sale"`

	// AverageBIN is the average buy-it-now price, in coins.
	AverageBIN *int `json:"average_bin"`

	// EAAverage is EA's own average price statistic, in coins.
	EAAverage *int `json:"ea_avg_price"`
}

// Empty reports whether no market field was extracted.
func (f MarketFields) Empty() bool {
	return f.CheapestSale == nil && f.AverageBIN == nil && f.EAAverage == nil
}

// PlayerMetadata is opportunistically extracted card information.
// All fields are optional and never affect extraction success.
type PlayerMetadata struct {
	DisplayName   string `json:"display_name,omitempty"`
	CardType      string `json:"card_type,omitempty"`
	CardRarity    string `json:"card_rarity,omitempty"`
	OverallRating int    `json:"overall_rating,omitempty"`
	Position      string `json:"position,omitempty"`
}

// ExtractionResult is the sole contract returned to callers of the
// extraction engine. Success is true if and only if at least one market
// field was extracted; metadata presence never affects it.
type ExtractionResult struct {
	Success  bool           `json:"success"`
	URL      string         `json:"url"`
	Fields   MarketFields   `json:"fields"`
	Metadata PlayerMetadata `json:"metadata"`
	Error    *ErrorDetail   `json:"error,omitempty"`
}

// FailureResult builds a failed ExtractionResult carrying the given error.
func FailureResult(url string, err *ExtractError) *ExtractionResult {
	return &ExtractionResult{
		Success: false,
		URL:     url,
		Error:   err.ToDetail(),
	}
}
