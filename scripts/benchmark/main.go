// Benchmark drives a running futmarket server with repeated extraction
// requests and reports per-URL latency and field coverage. Run it against a
// local server:
//
//	futmarket serve &
//	go run ./scripts/benchmark -api-url http://localhost:8080 \
//	    "https://www.futbin.com/26/player/257/vivianne-miedema/market"
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "futmarket API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// --- Request / Response types (mirrors models package) ---

type extractRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	Success bool `json:"success"`
	Fields  struct {
		CheapestSale *int `json:"cheapest_sale"`
		AverageBIN   *int `json:"average_bin"`
		EAAverage    *int `json:"ea_avg_price"`
	} `json:"fields"`
	Metadata struct {
		DisplayName string `json:"display_name"`
	} `json:"metadata"`
	Error *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Benchmark result types ---

type runResult struct {
	Run         int    `json:"run"`
	TotalMs     int64  `json:"total_ms"`
	FieldsFound int    `json:"fields_found"`
	HasName     bool   `json:"has_name"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

type urlResult struct {
	URL         string      `json:"url"`
	Runs        []runResult `json:"runs"`
	AvgTotalMs  float64     `json:"avg_total_ms"`
	SuccessRate float64     `json:"success_rate"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()
	urls := flag.Args()
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: benchmark [flags] <market-url> [<market-url> ...]")
		os.Exit(2)
	}

	fmt.Println("=== Futmarket Benchmark ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure the server is running (futmarket serve)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	for _, u := range urls {
		fmt.Printf("Benchmarking %s ...\n", u)
		ur := urlResult{URL: u}

		succeeded := 0
		var totalMs int64
		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(u, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d fields\n", rr.TotalMs, rr.FieldsFound)
				succeeded++
				totalMs += rr.TotalMs
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}
		if succeeded > 0 {
			ur.AvgTotalMs = float64(totalMs) / float64(succeeded)
		}
		ur.SuccessRate = float64(succeeded) / float64(*runs)
		report.Results = append(report.Results, ur)
	}

	printSummary(report)

	data, err := json.MarshalIndent(report, "", "  ")
	if err == nil {
		err = os.WriteFile(*output, data, 0o644)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("\nReport written to %s\n", *output)
}

func checkAPI(base string) error {
	resp, err := http.Get(base + "/api/v1/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned %d", resp.StatusCode)
	}
	return nil
}

func benchmarkURL(u string, run int) runResult {
	rr := runResult{Run: run}

	body, _ := json.Marshal(extractRequest{URL: u})
	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/extract", bytes.NewReader(body))
	if err != nil {
		rr.Error = err.Error()
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("X-API-Key", *apiKey)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	start := time.Now()
	resp, err := client.Do(req)
	rr.TotalMs = time.Since(start).Milliseconds()
	if err != nil {
		rr.Error = err.Error()
		return rr
	}
	defer resp.Body.Close()

	var er extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		rr.Error = err.Error()
		return rr
	}

	rr.Success = er.Success
	rr.HasName = er.Metadata.DisplayName != ""
	for _, p := range []*int{er.Fields.CheapestSale, er.Fields.AverageBIN, er.Fields.EAAverage} {
		if p != nil {
			rr.FieldsFound++
		}
	}
	if er.Error != nil {
		rr.Error = fmt.Sprintf("%s: %s", er.Error.Code, er.Error.Message)
	}
	return rr
}

func printSummary(report benchmarkReport) {
	fmt.Println("\n=== Summary ===")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "URL\tAVG MS\tSUCCESS")
	for _, r := range report.Results {
		fmt.Fprintf(w, "%s\t%.0f\t%.0f%%\n", r.URL, r.AvgTotalMs, r.SuccessRate*100)
	}
	w.Flush()
}
