// Package drift quantifies how much the target site's markup has changed
// between extractions. The locator's structural strategy depends on class
// naming conventions that the site reshuffles periodically; comparing a
// SimHash of the layout profile of the last successful extraction against a
// failing document tells an operator whether a failure looks like layout
// drift or a one-off bad load.
package drift

import (
	"hash/fnv"
	"math/bits"
	"strings"

	"golang.org/x/net/html"
)

// Fingerprint computes a 64-bit SimHash over whitespace-separated tokens.
func Fingerprint(text string) uint64 {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return 0
	}

	var vector [64]int

	for _, token := range tokens {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()

		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fingerprint uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fingerprint |= 1 << uint(i)
		}
	}

	return fingerprint
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// FingerprintLayout computes a SimHash of the document's layout profile:
// the sequence of tag names with their class attributes, shingled so local
// reorderings still count as similar. Text content and all other attributes
// are ignored; two renders of the same layout with different prices produce
// near-identical fingerprints.
func FingerprintLayout(rawHTML string) uint64 {
	tokens := layoutTokens(rawHTML)
	if len(tokens) == 0 {
		return 0
	}

	shingles := makeShingles(tokens, 3)
	if len(shingles) == 0 {
		return Fingerprint(strings.Join(tokens, " "))
	}

	return Fingerprint(strings.Join(shingles, " "))
}

// layoutTokens walks the markup and emits one token per opened element:
// the tag name, suffixed with its class list when present.
func layoutTokens(rawHTML string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	var tokens []string

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return tokens
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		name, hasAttr := tokenizer.TagName()
		token := string(name)

		for hasAttr {
			var key, val []byte
			key, val, hasAttr = tokenizer.TagAttr()
			if string(key) == "class" {
				classes := strings.Fields(string(val))
				if len(classes) > 0 {
					token += "." + strings.Join(classes, ".")
				}
				break
			}
		}

		tokens = append(tokens, token)
	}
}

// makeShingles creates n-gram shingles from a slice of tokens.
func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], "_"))
	}
	return shingles
}
