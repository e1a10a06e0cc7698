package locator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/futmarket/models"
	"github.com/use-agent/futmarket/normalize"
)

var (
	// reCardKeyword pulls a coarse card-type phrase out of descriptive
	// metadata text.
	reCardKeyword = regexp.MustCompile(`(?i)(Gold|Silver|Bronze|Icon|Hero|Promo|Rare|Common|Special)[^.,;]*`)

	// reLeadingName grabs the leading name segment of a description.
	reLeadingName = regexp.MustCompile(`^([^,\-]+)`)

	reDigits = regexp.MustCompile(`[^0-9]`)
)

// metadataAliases maps each metadata field to the key spellings it appears
// under in the page's embedded serialized data.
var metadataAliases = map[string][]string{
	"card_type":      {"cardtype", "cardType", "version"},
	"card_rarity":    {"rarity"},
	"overall_rating": {"rating"},
	"position":       {"position"},
}

// metadataPatterns holds one compiled pattern per alias spelling, tolerating
// quoted and bare values: `"key": "value"` or `"key": value`.
var metadataPatterns = func() map[string][]*regexp.Regexp {
	patterns := make(map[string][]*regexp.Regexp, len(metadataAliases))
	for field, keys := range metadataAliases {
		for _, key := range keys {
			patterns[field] = append(patterns[field], regexp.MustCompile(
				`(?i)"`+regexp.QuoteMeta(key)+`"\s*:\s*"?([^"\n\r]+?)"?\s*[,}]`))
		}
	}
	return patterns
}()

// locateMetadata opportunistically extracts card metadata. Strategy order:
// page-level descriptive tags, then visible headings, then embedded
// serialized key/value pairs. A populated field is never overwritten by a
// later, lower-priority source, and nothing here affects extraction success.
func (l *Locator) locateMetadata(doc *goquery.Document, rawHTML string) models.PlayerMetadata {
	var md models.PlayerMetadata

	setName := func(v string) {
		if md.DisplayName == "" && v != "" {
			md.DisplayName = v
		}
	}

	// 1. Descriptive metadata tags.
	if title := metaContent(doc, `meta[property='og:title']`, `meta[name='title']`); title != "" {
		setName(normalize.CleanText(strings.SplitN(title, "|", 2)[0]))
	}

	description := normalize.CleanText(metaContent(doc,
		`meta[property='og:description']`, `meta[name='description']`))
	if description != "" {
		if m := reCardKeyword.FindString(description); m != "" {
			md.CardType = normalize.FormatCardLabel(m)
		}
		if md.DisplayName == "" {
			if m := reLeadingName.FindString(description); m != "" {
				setName(normalize.CleanText(m))
			}
		}
	}

	// 2. Visible headings.
	if md.DisplayName == "" {
		heading := doc.Find(".player-name, .pcdisplay-name, h1").First()
		setName(normalize.CleanText(heading.Text()))
	}

	// 3. Embedded serialized data in the raw markup.
	for field, patterns := range metadataPatterns {
		value, ok := embeddedValue(rawHTML, patterns)
		if !ok {
			continue
		}

		switch field {
		case "card_type":
			if md.CardType == "" {
				md.CardType = normalize.FormatCardLabel(value)
			}
		case "card_rarity":
			if md.CardRarity == "" {
				md.CardRarity = normalize.FormatCardLabel(value)
			}
		case "overall_rating":
			if md.OverallRating == 0 {
				if n, err := strconv.Atoi(reDigits.ReplaceAllString(value, "")); err == nil && n > 0 {
					md.OverallRating = n
				}
			}
		case "position":
			if md.Position == "" {
				md.Position = normalize.CleanText(value)
			}
		}
	}

	return md
}

// metaContent returns the content attribute of the first matching meta tag.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok && content != "" {
			return content
		}
	}
	return ""
}

// embeddedValue searches the raw markup for a serialized "key": value pair
// under any of the alias spellings.
func embeddedValue(rawHTML string, patterns []*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(rawHTML); m != nil {
			if v := normalize.CleanText(m[1]); v != "" {
				return v, true
			}
		}
	}
	return "", false
}
