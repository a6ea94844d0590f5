// Benchmark drives a running ezscraped instance across a fixed URL
// sample and reports per-backend latency: wall time as the client sees
// it versus the engine time the daemon measured, plus page counts and
// content sizes. Results land in a tabwriter summary and a JSON file.
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

var (
	addr    = flag.String("addr", "http://localhost:8080", "base URL of the running ezscraped instance")
	key     = flag.String("key", "", "API key, if the instance requires one")
	backend = flag.String("backend", "http", "engine to benchmark: http, render or browser")
	runs    = flag.Int("runs", 3, "scrapes per URL")
	out     = flag.String("out", "benchmark.json", "path of the JSON report")
)

// sample covers the site shapes the engines behave differently on.
var sample = []struct {
	name string
	url  string
}{
	{"static", "https://example.com"},
	{"blog", "https://go.dev/blog/go1.21"},
	{"docs", "https://go.dev/doc/effective_go"},
	{"news", "https://www.bbc.com/news"},
	{"app", "https://github.com/go-rod/rod"},
}

type measurement struct {
	Run      int     `json:"run"`
	WallMs   int64   `json:"wall_ms"`
	EngineMs float64 `json:"engine_ms"`
	Pages    int     `json:"pages"`
	Bytes    int     `json:"bytes"`
	Status   string  `json:"status"`
	Err      string  `json:"error,omitempty"`
}

type siteReport struct {
	Name         string        `json:"name"`
	URL          string        `json:"url"`
	Measurements []measurement `json:"measurements"`
	AvgWallMs    float64       `json:"avg_wall_ms"`
	AvgEngineMs  float64       `json:"avg_engine_ms"`
}

type report struct {
	Timestamp string       `json:"timestamp"`
	Addr      string       `json:"addr"`
	Backend   string       `json:"backend"`
	Sites     []siteReport `json:"sites"`
}

func main() {
	flag.Parse()

	client := &http.Client{Timeout: 90 * time.Second}
	if _, err := client.Get(*addr + "/api/v1/health"); err != nil {
		fmt.Fprintf(os.Stderr, "ezscraped is not reachable at %s: %v\n", *addr, err)
		os.Exit(1)
	}

	rep := report{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Addr:      *addr,
		Backend:   *backend,
	}

	for _, site := range sample {
		fmt.Printf("%-8s %s\n", site.name, site.url)
		sr := siteReport{Name: site.name, URL: site.url}

		var okCount int
		for run := 1; run <= *runs; run++ {
			m := scrapeOnce(client, site.url, run)
			sr.Measurements = append(sr.Measurements, m)
			if m.Err != "" {
				fmt.Printf("  run %d: %s\n", run, m.Err)
				continue
			}
			fmt.Printf("  run %d: %dms wall / %.0fms engine, %d page(s), %d bytes\n",
				run, m.WallMs, m.EngineMs, m.Pages, m.Bytes)
			okCount++
			sr.AvgWallMs += float64(m.WallMs)
			sr.AvgEngineMs += m.EngineMs
		}
		if okCount > 0 {
			sr.AvgWallMs /= float64(okCount)
			sr.AvgEngineMs /= float64(okCount)
		}
		rep.Sites = append(rep.Sites, sr)
	}

	summarize(rep)

	data, err := json.MarshalIndent(rep, "", "  ")
	if err == nil {
		err = os.WriteFile(*out, data, 0o644)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("\nreport written to %s\n", *out)
}

func scrapeOnce(client *http.Client, target string, run int) measurement {
	m := measurement{Run: run}

	body, err := json.Marshal(map[string]any{
		"url":               target,
		"backend":           *backend,
		"request_timeout_s": 60,
	})
	if err != nil {
		m.Err = err.Error()
		return m
	}

	req, err := http.NewRequest(http.MethodPost, *addr+"/api/v1/scrape", bytes.NewReader(body))
	if err != nil {
		m.Err = err.Error()
		return m
	}
	req.Header.Set("Content-Type", "application/json")
	if *key != "" {
		req.Header.Set("X-API-Key", *key)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		m.Err = err.Error()
		return m
	}
	defer resp.Body.Close()
	m.WallMs = time.Since(start).Milliseconds()

	var sr struct {
		Success       bool    `json:"success"`
		Status        string  `json:"status"`
		ErrorMsg      string  `json:"error_msg"`
		RequestTimeMs float64 `json:"request_time_ms"`
		Pages         []struct {
			HTML string `json:"html"`
		} `json:"pages"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		m.Err = err.Error()
		return m
	}

	m.Status = sr.Status
	m.EngineMs = sr.RequestTimeMs
	m.Pages = len(sr.Pages)
	for _, p := range sr.Pages {
		m.Bytes += len(p.HTML)
	}
	switch {
	case sr.Error != nil:
		m.Err = sr.Error.Message
	case !sr.Success:
		m.Err = sr.ErrorMsg
	}
	return m
}

func summarize(rep report) {
	fmt.Printf("\nbackend %s against %s\n", rep.Backend, rep.Addr)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "site\tavg wall\tavg engine\toutcome")
	for _, s := range rep.Sites {
		outcome := "ok"
		for _, m := range s.Measurements {
			if m.Err != "" {
				outcome = m.Err
				break
			}
		}
		fmt.Fprintf(w, "%s\t%.0fms\t%.0fms\t%s\n", s.Name, s.AvgWallMs, s.AvgEngineMs, outcome)
	}
	w.Flush()
}
