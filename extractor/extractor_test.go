package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/use-agent/futmarket/config"
	"github.com/use-agent/futmarket/locator"
	"github.com/use-agent/futmarket/models"
)

// fakeRenderer returns canned markup (or a canned error) and records loads.
type fakeRenderer struct {
	html  string
	err   error
	loads int
}

func (f *fakeRenderer) Load(_ context.Context, _ string) (string, error) {
	f.loads++
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

func (f *fakeRenderer) Close() error { return nil }

func newExtractor(t *testing.T, r *fakeRenderer, sink FailureSink) *Extractor {
	t.Helper()
	loc, err := locator.New(locator.Options{})
	if err != nil {
		t.Fatalf("locator.New: %v", err)
	}
	return New(r, loc, sink, config.ExtractorConfig{AllowedHost: "futbin.com"})
}

const goodPage = `<html><body>
<div class="market-grid-cheapest-sale"><div class="standard-font">54,500</div></div>
</body></html>`

const emptyPage = `<html><body><p>maintenance</p></body></html>`

func TestExtract_Success(t *testing.T) {
	r := &fakeRenderer{html: goodPage}
	sink := &MemorySink{}
	e := newExtractor(t, r, sink)

	result := e.Extract(context.Background(), "https://www.futbin.com/26/player/257/market")

	if !result.Success {
		t.Fatalf("Success = false, error = %+v", result.Error)
	}
	if result.Fields.CheapestSale == nil || *result.Fields.CheapestSale != 54500 {
		t.Errorf("CheapestSale = %v, want 54500", result.Fields.CheapestSale)
	}
	if sink.Count() != 0 {
		t.Errorf("diagnostic artifact captured on success")
	}
}

func TestExtract_SuccessInvariant(t *testing.T) {
	// Metadata alone never makes an extraction successful.
	page := `<html><head>
<meta property="og:title" content="Some Player | Site">
</head><body><h1>Some Player</h1></body></html>`

	e := newExtractor(t, &fakeRenderer{html: page}, &MemorySink{})
	result := e.Extract(context.Background(), "https://futbin.com/p/1/market")

	if result.Success {
		t.Error("Success = true with no market fields present")
	}
	if result.Metadata.DisplayName == "" {
		t.Error("metadata should still be extracted on failure")
	}
}

func TestExtract_NoFieldsProducesArtifact(t *testing.T) {
	sink := &MemorySink{}
	e := newExtractor(t, &fakeRenderer{html: emptyPage}, sink)

	result := e.Extract(context.Background(), "https://futbin.com/p/1/market")

	if result.Success {
		t.Fatal("Success = true for a page with no locatable fields")
	}
	if !result.Fields.Empty() {
		t.Errorf("fields = %+v, want all absent", result.Fields)
	}
	if result.Error == nil || result.Error.Code != models.ErrCodeNoFieldsMatched {
		t.Errorf("error = %+v, want %s", result.Error, models.ErrCodeNoFieldsMatched)
	}
	if sink.Count() != 1 {
		t.Fatalf("artifact captures = %d, want 1", sink.Count())
	}
	if sink.Last() != emptyPage {
		t.Error("artifact should contain the rendered document")
	}
}

func TestExtract_InvalidURL(t *testing.T) {
	tests := []string{
		"https://example.com/player/1",
		"https://notfutbin.com/player/1",
		"https://futbin.com.evil.net/player/1",
		"ftp://futbin.com/player/1",
		"not a url",
		"",
	}

	for _, raw := range tests {
		r := &fakeRenderer{html: goodPage}
		sink := &MemorySink{}
		e := newExtractor(t, r, sink)

		result := e.Extract(context.Background(), raw)

		if result.Success {
			t.Errorf("Extract(%q): Success = true", raw)
		}
		if result.Error == nil || result.Error.Code != models.ErrCodeInvalidInput {
			t.Errorf("Extract(%q): error = %+v, want %s", raw, result.Error, models.ErrCodeInvalidInput)
		}
		if r.loads != 0 {
			t.Errorf("Extract(%q): renderer loaded %d times, want 0", raw, r.loads)
		}
		if sink.Count() != 0 {
			t.Errorf("Extract(%q): artifact produced for invalid URL", raw)
		}
	}
}

func TestExtract_SubdomainAllowed(t *testing.T) {
	e := newExtractor(t, &fakeRenderer{html: goodPage}, nil)
	result := e.Extract(context.Background(), "https://www.futbin.com/26/player/257/market")
	if !result.Success {
		t.Errorf("www subdomain rejected: %+v", result.Error)
	}
}

func TestExtract_RendererFailurePropagates(t *testing.T) {
	loadErr := models.NewExtractError(models.ErrCodeRenderTimeout, "body never appeared", errors.New("deadline"))
	sink := &MemorySink{}
	e := newExtractor(t, &fakeRenderer{err: loadErr}, sink)

	result := e.Extract(context.Background(), "https://futbin.com/p/1/market")

	if result.Success {
		t.Fatal("Success = true on renderer failure")
	}
	if result.Error == nil || result.Error.Code != models.ErrCodeRenderTimeout {
		t.Errorf("error = %+v, want %s", result.Error, models.ErrCodeRenderTimeout)
	}
	if sink.Count() != 0 {
		t.Errorf("artifact produced without a rendered document")
	}
}

func TestExtract_UntypedRendererError(t *testing.T) {
	e := newExtractor(t, &fakeRenderer{err: errors.New("boom")}, nil)
	result := e.Extract(context.Background(), "https://futbin.com/p/1/market")

	if result.Error == nil || result.Error.Code != models.ErrCodeSessionFailure {
		t.Errorf("error = %+v, want %s", result.Error, models.ErrCodeSessionFailure)
	}
}
