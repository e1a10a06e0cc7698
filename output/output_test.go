package output

import (
	"context"
	"crypto/hmac"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/futmarket/models"
)

func intp(n int) *int { return &n }

func sampleRecord() Record {
	return Record{
		Timestamp:      time.Date(2026, 4, 12, 9, 30, 0, 0, time.UTC),
		ConfiguredName: "Dumornay TOTW",
		Notes:          "watch for drop",
		Result: models.ExtractionResult{
			Success: true,
			URL:     "https://www.futbin.com/26/player/12345/melchie-dumornay/market",
			Fields: models.MarketFields{
				CheapestSale: intp(54500),
				AverageBIN:   intp(56200),
			},
			Metadata: models.PlayerMetadata{
				DisplayName:   "Melchie Dumornay",
				CardType:      "TOTW Gold Rare",
				CardRarity:    "Rare",
				OverallRating: 88,
				Position:      "CAM",
			},
		},
	}
}

func TestAppendCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")

	if err := AppendCSV(path, []Record{sampleRecord()}); err != nil {
		t.Fatalf("AppendCSV: %v", err)
	}
	// Second append must not repeat the header.
	if err := AppendCSV(path, []Record{sampleRecord()}); err != nil {
		t.Fatalf("AppendCSV (append): %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "timestamp" || rows[0][7] != "cheapest_sale" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	row := rows[1]
	if row[1] != "Melchie Dumornay" {
		t.Errorf("player_name = %q", row[1])
	}
	if row[7] != "54500" {
		t.Errorf("cheapest_sale = %q", row[7])
	}
	// EA average was absent, so the cell is empty rather than zero.
	if row[9] != "" {
		t.Errorf("ea_avg_price = %q, want empty", row[9])
	}
}

func TestAppendCSV_NoRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := AppendCSV(path, nil); err != nil {
		t.Fatalf("AppendCSV: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("empty batch should not create a file")
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")

	failed := Record{
		Timestamp: time.Now(),
		Result: *models.FailureResult(
			"https://www.futbin.com/26/player/999/gone/market",
			models.NewExtractError(models.ErrCodeNoFieldsMatched, "no market field matched", nil),
		),
	}

	if err := WriteJSON(path, []Record{sampleRecord(), failed}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out []map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0]["success"] != true || out[0]["cheapest_sale"].(float64) != 54500 {
		t.Errorf("unexpected first record: %v", out[0])
	}
	if out[1]["success"] != false || out[1]["error_code"] != models.ErrCodeNoFieldsMatched {
		t.Errorf("unexpected failure record: %v", out[1])
	}
}

func TestDeliver_SignsPayload(t *testing.T) {
	const secret = "test-secret"
	var gotSig string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Futmarket-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	event := &Event{Type: "cycle.completed", Timestamp: time.Now().Unix(), Data: map[string]int{"players": 3}}
	if err := Deliver(context.Background(), srv.URL, secret, event); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if !strings.HasPrefix(gotSig, "sha256=") {
		t.Fatalf("signature header = %q", gotSig)
	}
	want := Sign(gotBody, secret)
	if !hmac.Equal([]byte(strings.TrimPrefix(gotSig, "sha256=")), []byte(want)) {
		t.Errorf("signature mismatch: got %q want sha256=%s", gotSig, want)
	}
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := Deliver(context.Background(), srv.URL, "", &Event{Type: "cycle.completed"})
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
}
