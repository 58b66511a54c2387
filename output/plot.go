// Package output formats pipeline results for display: plain response
// lines are written directly by pipeline's sink, but this package covers
// the optional JSON line format and the optional latency histogram plot.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/ChristianF88/piper/pipeline"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// jsonLine is the shape emitted by WriteJSONLine: one object per response,
// mirroring ResponseContext with the request reduced to its ID (the request
// URL and method are not included).
type jsonLine struct {
	ID      uint64 `json:"id"`
	Status  uint16 `json:"status"`
	Body    string `json:"body"`
	ElapsedMS int64 `json:"elapsed_ms"`
}

// WriteJSONLine writes one JSON-encoded line per response, used when the
// CLI is invoked with --json instead of the bare response-body format §6
// mandates by default.
func WriteJSONLine(w io.Writer, resp pipeline.ResponseContext) error {
	line := jsonLine{
		ID:        resp.Request.ID,
		Status:    resp.Status,
		Body:      resp.Body,
		ElapsedMS: resp.Elapsed.Milliseconds(),
	}
	enc := json.NewEncoder(w)
	return enc.Encode(line)
}

// LatencyBucket is one bar of the histogram: the number of responses whose
// elapsed time fell in [LowMS, HighMS).
type LatencyBucket struct {
	LowMS, HighMS int64
	Count         int
}

// BucketLatencies groups elapsed durations into fixed-width millisecond
// buckets, the same fixed-grid bucketing PlotHeatmap applies to IP octets.
func BucketLatencies(elapsed []time.Duration, bucketWidthMS int64) []LatencyBucket {
	if bucketWidthMS <= 0 {
		bucketWidthMS = 50
	}
	counts := make(map[int64]int)
	for _, e := range elapsed {
		bucket := e.Milliseconds() / bucketWidthMS
		counts[bucket]++
	}

	keys := make([]int64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	buckets := make([]LatencyBucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, LatencyBucket{
			LowMS:  k * bucketWidthMS,
			HighMS: (k + 1) * bucketWidthMS,
			Count:  counts[k],
		})
	}
	return buckets
}

// PlotLatencyHistogram renders an interactive bar chart of elapsed per-request
// durations to filename, the pipeline's equivalent of the teacher's
// PlotHeatmap for IP distribution.
func PlotLatencyHistogram(elapsed []time.Duration, filename string) error {
	buckets := BucketLatencies(elapsed, 50)

	labels := make([]string, len(buckets))
	values := make([]opts.BarData, len(buckets))
	for i, b := range buckets {
		labels[i] = fmt.Sprintf("%d-%dms", b.LowMS, b.HighMS)
		values[i] = opts.BarData{Value: b.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       "piper response latency",
			Width:           "120vh",
			Height:          "60vh",
			Theme:           types.ThemeVintage,
			BackgroundColor: "transparent",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Response latency distribution",
			Left:  "center",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "elapsed"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "responses"}),
	)
	bar.SetXAxis(labels).AddSeries("responses", values)

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(bar)

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating latency plot %s: %w", filename, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("rendering latency plot: %w", err)
	}
	return nil
}
