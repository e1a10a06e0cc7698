package drift

import "testing"

func TestFingerprint_Deterministic(t *testing.T) {
	text := "div.market span.price div.title"
	if Fingerprint(text) != Fingerprint(text) {
		t.Error("identical input produced different fingerprints")
	}
}

func TestFingerprint_Empty(t *testing.T) {
	if fp := Fingerprint(""); fp != 0 {
		t.Errorf("empty input should produce fingerprint 0, got %064b", fp)
	}
	if fp := Fingerprint("  \t\n "); fp != 0 {
		t.Errorf("whitespace input should produce fingerprint 0, got %064b", fp)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xFF, 0xFF, 0},
		{"all different", 0, ^uint64(0), 64},
		{"one bit", 0, 1, 1},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Distance = %d, want %d", tt.name, got, tt.want)
		}
	}
}

const layoutA = `<html><body>
<div class="market-grid-container">
  <div class="market-grid-cheapest-sale"><div class="standard-font">54,500</div></div>
  <div class="market-grid-average-bin"><div class="standard-font">56,000</div></div>
  <div class="market-grid-ea-avg"><div class="standard-font">57,500</div></div>
</div>
</body></html>`

// Same layout, different prices.
const layoutAPrime = `<html><body>
<div class="market-grid-container">
  <div class="market-grid-cheapest-sale"><div class="standard-font">12,300</div></div>
  <div class="market-grid-average-bin"><div class="standard-font">13,000</div></div>
  <div class="market-grid-ea-avg"><div class="standard-font">13,400</div></div>
</div>
</body></html>`

// Restructured markup: renamed classes, different nesting.
const layoutB = `<html><body>
<section class="mk-wrap">
  <table class="mk-table"><tr><td class="mk-label">Cheapest</td><td class="mk-val">54,500</td></tr></table>
</section>
</body></html>`

func TestFingerprintLayout_IgnoresTextContent(t *testing.T) {
	if FingerprintLayout(layoutA) != FingerprintLayout(layoutAPrime) {
		t.Error("price-only changes should not alter the layout fingerprint")
	}
}

func TestFingerprintLayout_DetectsRestructuring(t *testing.T) {
	a := FingerprintLayout(layoutA)
	b := FingerprintLayout(layoutB)
	if dist := Distance(a, b); dist < 5 {
		t.Errorf("restructured markup should be distant, got distance %d", dist)
	}
}

func TestFingerprintLayout_Empty(t *testing.T) {
	if fp := FingerprintLayout(""); fp != 0 {
		t.Errorf("empty document should produce fingerprint 0, got %064b", fp)
	}
}
