package locator

import (
	"testing"
)

func mustLocator(t *testing.T, opts Options) *Locator {
	t.Helper()
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

const marketPage = `<!DOCTYPE html>
<html>
<head>
<title>Melchie Dumornay FC 26 - 88 | FUTBIN</title>
<meta property="og:title" content="Melchie Dumornay FC 26 - 88 | FUTBIN">
<meta property="og:description" content="Melchie Dumornay - Gold Rare card with 88 rating.">
</head>
<body>
<h1 class="player-name">Melchie Dumornay</h1>
<div class="market-grid-container">
  <div class="market-grid-cheapest-sale">
    <div class="market-grid-container-title">Cheapest Sale</div>
    <div class="standard-font">54,500</div>
  </div>
  <div class="market-grid-average-bin">
    <div class="market-grid-container-title">Average BIN</div>
    <div class="standard-font">56.2K</div>
  </div>
  <div class="market-grid-ea-avg">
    <div class="market-grid-container-title">EA Avg. Price</div>
    <div class="standard-font">1.2M</div>
  </div>
</div>
<script>
var playerData = {"name":"Melchie Dumornay","rating":"88","position":"CAM","cardType":"totw_gold_rare","rarity":"rare"};
</script>
</body>
</html>`

func TestLocate_StructuralLayout(t *testing.T) {
	l := mustLocator(t, Options{})

	fields, md := l.Locate(marketPage)

	if fields.CheapestSale == nil || *fields.CheapestSale != 54500 {
		t.Errorf("CheapestSale = %v, want 54500", fields.CheapestSale)
	}
	if fields.AverageBIN == nil || *fields.AverageBIN != 56200 {
		t.Errorf("AverageBIN = %v, want 56200", fields.AverageBIN)
	}
	if fields.EAAverage == nil || *fields.EAAverage != 1200000 {
		t.Errorf("EAAverage = %v, want 1200000", fields.EAAverage)
	}

	// og:title outranks the heading; only the trailing site name is cut.
	if md.DisplayName != "Melchie Dumornay FC 26 - 88" {
		t.Errorf("DisplayName = %q", md.DisplayName)
	}
	if md.OverallRating != 88 {
		t.Errorf("OverallRating = %d, want 88", md.OverallRating)
	}
	if md.Position != "CAM" {
		t.Errorf("Position = %q, want CAM", md.Position)
	}
	if md.CardRarity != "Rare" {
		t.Errorf("CardRarity = %q, want Rare", md.CardRarity)
	}
}

func TestLocate_StructuralWinsOverLabelAdjacency(t *testing.T) {
	// Both a structural container and a labelled caption exist with
	// conflicting values; the structural lookup has priority.
	page := `<html><body>
<div class="market-grid-cheapest-sale">
  <div class="standard-font">10,000</div>
</div>
<div class="legacy-box">
  <div>Cheapest Sale</div>
  <div>99,999</div>
</div>
</body></html>`

	l := mustLocator(t, Options{})
	fields, _ := l.Locate(page)

	if fields.CheapestSale == nil || *fields.CheapestSale != 10000 {
		t.Errorf("CheapestSale = %v, want structural value 10000", fields.CheapestSale)
	}
}

func TestLocate_LabelAdjacencyFallback(t *testing.T) {
	// No structural container classes, just captioned values.
	page := `<html><body>
<div class="stats">
  <div class="row"><span>EA Avg. Price</span><span>54,500</span></div>
</div>
</body></html>`

	l := mustLocator(t, Options{})
	fields, _ := l.Locate(page)

	if fields.EAAverage == nil || *fields.EAAverage != 54500 {
		t.Errorf("EAAverage = %v, want 54500 via label adjacency", fields.EAAverage)
	}
	if fields.CheapestSale != nil {
		t.Errorf("CheapestSale = %v, want absent", fields.CheapestSale)
	}
}

func TestLocate_LineScanFallback(t *testing.T) {
	// Labels and values live in elements the adjacency scan ignores,
	// separated by blank lines. Only the text line scan can find them.
	page := `<html><body>
<p>Cheapest Sale</p>
<p></p>
<p>54,500</p>
</body></html>`

	l := mustLocator(t, Options{})
	fields, _ := l.Locate(page)

	if fields.CheapestSale == nil || *fields.CheapestSale != 54500 {
		t.Errorf("CheapestSale = %v, want 54500 via line scan", fields.CheapestSale)
	}
}

func TestLocate_PlausibilityThreshold(t *testing.T) {
	// The structural value is implausibly small and must be rejected in
	// favor of the labelled value found by the next strategy.
	page := `<html><body>
<div class="market-grid-cheapest-sale">
  <div class="standard-font">1</div>
</div>
<div class="box">
  <div>Cheapest Sale</div>
  <div>45,000</div>
</div>
</body></html>`

	l := mustLocator(t, Options{})
	fields, _ := l.Locate(page)

	if fields.CheapestSale == nil || *fields.CheapestSale != 45000 {
		t.Errorf("CheapestSale = %v, want 45000 after threshold rejection", fields.CheapestSale)
	}
}

func TestLocate_ThresholdConfigurable(t *testing.T) {
	page := `<html><body>
<div class="market-grid-cheapest-sale">
  <div class="standard-font">150</div>
</div>
</body></html>`

	strict := mustLocator(t, Options{MinPrice: 200})
	if fields, _ := strict.Locate(page); fields.CheapestSale != nil {
		t.Errorf("CheapestSale = %v, want absent under MinPrice 200", fields.CheapestSale)
	}

	lax := mustLocator(t, Options{MinPrice: 100})
	if fields, _ := lax.Locate(page); fields.CheapestSale == nil || *fields.CheapestSale != 150 {
		t.Errorf("CheapestSale = %v, want 150 under MinPrice 100", fields.CheapestSale)
	}
}

func TestLocate_EmptyPage(t *testing.T) {
	l := mustLocator(t, Options{})
	fields, md := l.Locate(`<html><body><p>nothing to see</p></body></html>`)

	if !fields.Empty() {
		t.Errorf("fields = %+v, want all absent", fields)
	}
	if md.DisplayName != "" || md.CardType != "" {
		t.Errorf("metadata = %+v, want empty", md)
	}
}

func TestLocate_MetadataHeadingFallback(t *testing.T) {
	page := `<html><body>
<h1>  Jude   Bellingham  </h1>
<div class="market-grid-average-bin"><div class="standard-font">120K</div></div>
</body></html>`

	l := mustLocator(t, Options{})
	_, md := l.Locate(page)

	if md.DisplayName != "Jude Bellingham" {
		t.Errorf("DisplayName = %q, want heading fallback", md.DisplayName)
	}
}

func TestLocate_MetadataNeverOverwritten(t *testing.T) {
	// og:title outranks both the heading and the embedded blob name.
	page := `<html><head>
<meta property="og:title" content="Primary Name | Site">
</head><body>
<h1>Secondary Name</h1>
<script>var d = {"cardtype":"gold_rare","version":"should_not_win"};</script>
</body></html>`

	l := mustLocator(t, Options{})
	_, md := l.Locate(page)

	if md.DisplayName != "Primary Name" {
		t.Errorf("DisplayName = %q, want og:title to win", md.DisplayName)
	}
	if md.CardType != "Gold Rare" {
		t.Errorf("CardType = %q, want first alias to win", md.CardType)
	}
}

func TestNew_BadSelector(t *testing.T) {
	_, err := New(Options{Fields: []PriceField{{Key: "x", Container: "div[["}}})
	if err == nil {
		t.Fatal("expected selector compile error")
	}
}
