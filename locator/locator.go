// Package locator finds market price fields and card metadata inside a
// rendered document. Each field is resolved by an ordered cascade of
// strategies; the first strategy producing a plausible value wins and later
// strategies never overwrite it. The target site restructures its markup
// periodically, so every strategy is best-effort and an unresolved field
// simply stays absent.
package locator

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/use-agent/futmarket/models"
	"github.com/use-agent/futmarket/normalize"
)

// Field keys for the three market price statistics.
const (
	KeyCheapestSale = "cheapest_sale"
	KeyAverageBIN   = "average_bin"
	KeyEAAverage    = "ea_avg_price"
)

// PriceField describes how one price statistic appears on the page: the
// structural container class the current layout uses and the human-readable
// labels that caption it.
type PriceField struct {
	Key       string
	Container string
	Labels    []string
}

// DefaultPriceFields is the current layout of the market grid.
func DefaultPriceFields() []PriceField {
	return []PriceField{
		{Key: KeyCheapestSale, Container: "div.market-grid-cheapest-sale", Labels: []string{"Cheapest Sale"}},
		{Key: KeyAverageBIN, Container: "div.market-grid-average-bin", Labels: []string{"Average BIN"}},
		{Key: KeyEAAverage, Container: "div.market-grid-ea-avg", Labels: []string{"EA Avg. Price", "EA Avg"}},
	}
}

// Options tunes the locator.
type Options struct {
	// MinPrice is the plausibility threshold: a candidate is accepted only
	// if its parsed value exceeds it. Filters accidental matches such as a
	// stray "1" from unrelated UI chrome.
	MinPrice int

	// ScanWindow bounds how many lines past a label the line-scan fallback
	// inspects.
	ScanWindow int

	// Fields overrides the price field layout. Defaults to
	// DefaultPriceFields.
	Fields []PriceField

	// ValueSelector matches the numeric sub-element inside a field
	// container. Default: "div.standard-font".
	ValueSelector string
}

type compiledField struct {
	PriceField
	container cascadia.Selector
}

// Locator resolves market fields and metadata from rendered documents.
// It is stateless after construction and safe for concurrent use.
type Locator struct {
	minPrice   int
	scanWindow int
	fields     []compiledField
	valueSel   cascadia.Selector
}

// New builds a Locator, compiling all field selectors up front so a bad
// override fails at construction rather than per-document.
func New(opts Options) (*Locator, error) {
	if opts.MinPrice <= 0 {
		opts.MinPrice = 100
	}
	if opts.ScanWindow <= 0 {
		opts.ScanWindow = 5
	}
	if len(opts.Fields) == 0 {
		opts.Fields = DefaultPriceFields()
	}
	if opts.ValueSelector == "" {
		opts.ValueSelector = "div.standard-font"
	}

	valueSel, err := cascadia.Compile(opts.ValueSelector)
	if err != nil {
		return nil, err
	}

	fields := make([]compiledField, 0, len(opts.Fields))
	for _, f := range opts.Fields {
		sel, err := cascadia.Compile(f.Container)
		if err != nil {
			return nil, err
		}
		fields = append(fields, compiledField{PriceField: f, container: sel})
	}

	return &Locator{
		minPrice:   opts.MinPrice,
		scanWindow: opts.ScanWindow,
		fields:     fields,
		valueSel:   valueSel,
	}, nil
}

// Locate runs the full cascade over a rendered document and returns
// whatever could be extracted. It never fails: an unparseable document
// yields empty fields.
func (l *Locator) Locate(rawHTML string) (models.MarketFields, models.PlayerMetadata) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		slog.Warn("rendered document did not parse", "error", err)
		return models.MarketFields{}, models.PlayerMetadata{}
	}

	return l.locatePrices(doc), l.locateMetadata(doc, rawHTML)
}

// strategy yields raw candidate texts for one field, best first.
type strategy struct {
	name string
	run  func(doc *goquery.Document, f *compiledField) []string
}

func (l *Locator) strategies() []strategy {
	return []strategy{
		{"structural", l.structural},
		{"label-adjacency", l.labelAdjacency},
		{"line-scan", l.lineScan},
	}
}

func (l *Locator) locatePrices(doc *goquery.Document) models.MarketFields {
	var fields models.MarketFields

	for i := range l.fields {
		f := &l.fields[i]

		value, strategyName, ok := l.resolveField(doc, f)
		if !ok {
			slog.Debug("price field unresolved", "field", f.Key)
			continue
		}
		slog.Debug("price field located",
			"field", f.Key,
			"strategy", strategyName,
			"value", value,
		)

		v := value
		switch f.Key {
		case KeyCheapestSale:
			fields.CheapestSale = &v
		case KeyAverageBIN:
			fields.AverageBIN = &v
		case KeyEAAverage:
			fields.EAAverage = &v
		}
	}

	return fields
}

// resolveField tries each strategy in priority order and stops at the first
// accepted candidate.
func (l *Locator) resolveField(doc *goquery.Document, f *compiledField) (int, string, bool) {
	for _, st := range l.strategies() {
		for _, candidate := range st.run(doc, f) {
			value, ok := normalize.ParsePrice(candidate)
			if !ok || value <= l.minPrice {
				continue
			}
			return value, st.name, true
		}
	}
	return 0, "", false
}
