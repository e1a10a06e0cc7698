package locator

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/use-agent/futmarket/normalize"
)

// reNumericRun matches price-looking runs: grouped digits with an optional
// decimal part and magnitude suffix ("54,500", "54.5K", "1.2M").
var reNumericRun = regexp.MustCompile(`[\d,]+(?:\.\d+)?\s*[KkMm]?`)

// structural looks the field up by the site's container class convention
// and returns the text of its numeric sub-elements. Most precise, first to
// break on a layout change.
func (l *Locator) structural(doc *goquery.Document, f *compiledField) []string {
	container := doc.FindMatcher(f.container).First()
	if container.Length() == 0 {
		return nil
	}

	var out []string
	container.FindMatcher(l.valueSel).Each(func(_ int, s *goquery.Selection) {
		if t := normalize.CleanText(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// labelAdjacency scans for elements whose own text carries one of the
// field's human-readable labels and mines the surrounding container for
// numeric-looking runs. Survives class renames as long as captions stay.
func (l *Locator) labelAdjacency(doc *goquery.Document, f *compiledField) []string {
	var out []string

	doc.Find("div, span, td, th, h2, h3").Each(func(_ int, s *goquery.Selection) {
		label := normalize.CleanText(ownText(s))
		if label == "" || !matchesAnyLabel(label, f.Labels) {
			return
		}

		parent := s.Parent()
		if parent.Length() == 0 {
			return
		}

		// Prefer a dedicated numeric sub-element next to the caption.
		parent.FindMatcher(l.valueSel).Each(func(_ int, v *goquery.Selection) {
			if t := normalize.CleanText(v.Text()); t != "" {
				out = append(out, t)
			}
		})

		// Then any numeric run in the labelled container's text.
		out = append(out, numericRuns(parent.Text())...)
	})

	return out
}

// lineScan is the last-resort fallback: flatten the document to text lines,
// find the label line, and scan a bounded window of following lines for the
// first one containing a digit.
func (l *Locator) lineScan(doc *goquery.Document, f *compiledField) []string {
	lines := strings.Split(doc.Text(), "\n")

	var out []string
	for i, line := range lines {
		line = normalize.CleanText(line)
		if line == "" || !matchesAnyLabel(line, f.Labels) {
			continue
		}

		end := i + 1 + l.scanWindow
		if end > len(lines) {
			end = len(lines)
		}
		for _, next := range lines[i+1 : end] {
			next = normalize.CleanText(next)
			if next == "" || !strings.ContainsAny(next, "0123456789") {
				continue
			}
			out = append(out, numericRuns(next)...)
			break
		}
	}

	return out
}

// matchesAnyLabel reports whether text contains one of the labels,
// case-insensitively.
func matchesAnyLabel(text string, labels []string) bool {
	lower := strings.ToLower(text)
	for _, label := range labels {
		if strings.Contains(lower, strings.ToLower(label)) {
			return true
		}
	}
	return false
}

// numericRuns extracts price-looking substrings from free-form text.
func numericRuns(text string) []string {
	runs := reNumericRun.FindAllString(text, -1)
	out := runs[:0]
	for _, r := range runs {
		if strings.ContainsAny(r, "0123456789") {
			out = append(out, strings.TrimSpace(r))
		}
	}
	return out
}

// ownText returns the text of the selection's direct text-node children,
// excluding descendants. Label captions are matched on their own text so a
// page-wide wrapper containing the label somewhere deep inside does not
// count as adjacent.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, node := range s.Nodes {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return b.String()
}
