package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	http "github.com/wesleyorama2/hc/internal/http"
	"github.com/wesleyorama2/hc/internal/stats"
)

// Formatter is responsible for formatting HTTP requests and responses in text format
type Formatter struct {
	Verbose bool
	NoColor bool
	colors  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	colors := DefaultColorScheme()
	if noColor {
		colors = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		colors:  colors,
	}
}

// FormatRequest formats an HTTP request for display
func (f *Formatter) FormatRequest(req *http.Request, target http.Target) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "▶ REQUEST: %s %s\n",
		f.colors.Method.Sprint(req.Method),
		f.colors.URL.Sprint(requestURL(target, req.Path)))

	if f.Verbose && req.Headers.Len() > 0 {
		buf.WriteString("  Headers:\n")
		for _, field := range req.Headers.Fields() {
			fmt.Fprintf(&buf, "    %s: %s\n", f.colors.HeaderKey.Sprint(field.Key), field.Value)
		}
	}

	if f.Verbose && len(req.Body) > 0 {
		buf.WriteString("  Body: ")
		buf.WriteString(formatJSONString(string(req.Body)))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats an HTTP response for display
func (f *Formatter) FormatResponse(resp *http.Response, extracted map[string]string) string {
	var buf strings.Builder

	if err := resp.Err(); err != nil {
		fmt.Fprintf(&buf, "%s ERROR: %s (%dms)\n",
			ErrorIcon(f.NoColor), err, resp.GetTotalTimeMillis())
		return buf.String()
	}

	fmt.Fprintf(&buf, "◀ RESPONSE: %s (%dms)\n",
		f.colors.Status(resp.Status()).Sprint(resp.StatusText()),
		resp.GetTotalTimeMillis())

	if f.Verbose {
		buf.WriteString("  Timing:\n")
		fmt.Fprintf(&buf, "    DNS Lookup:         %dms\n", resp.GetDNSLookupTimeMillis())
		fmt.Fprintf(&buf, "    TCP Connection:     %dms\n", resp.GetTCPConnectTimeMillis())
		fmt.Fprintf(&buf, "    Time to First Byte: %dms\n", resp.GetTimeToFirstByteMillis())
		fmt.Fprintf(&buf, "    Content Transfer:   %dms\n", resp.GetContentTransferTimeMillis())
		fmt.Fprintf(&buf, "    Total:              %dms\n", resp.GetTotalTimeMillis())

		if h := resp.Headers(); h.Len() > 0 {
			buf.WriteString("  Headers:\n")
			for _, field := range h.Fields() {
				fmt.Fprintf(&buf, "    %s: %s\n", f.colors.HeaderKey.Sprint(field.Key), field.Value)
			}
		}
	}

	if body := resp.BodyString(); body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(body))
		buf.WriteString("\n")
	}

	if !resp.Complete() {
		fmt.Fprintf(&buf, "%s body incomplete: %v\n", WarningIcon(f.NoColor), resp.BodyErr())
	}

	if len(extracted) > 0 {
		buf.WriteString(f.colors.Label.Sprint("  Extracted:") + "\n")
		names := make([]string, 0, len(extracted))
		for name := range extracted {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&buf, "    %s = %s\n", name, extracted[name])
		}
	}

	return buf.String()
}

// FormatSummary formats the statistics of a repeated fetch
func (f *Formatter) FormatSummary(s stats.Summary) string {
	var buf strings.Builder

	buf.WriteString(f.colors.Label.Sprint("SUMMARY") + "\n")
	fmt.Fprintf(&buf, "  Fetches:   %d (%d ok, %d failed, %.1f%% errors)\n",
		s.Count, s.OK, s.Failures, s.ErrorRate()*100)
	fmt.Fprintf(&buf, "  Bytes:     %d\n", s.Bytes)
	fmt.Fprintf(&buf, "  Rate:      %.2f/s over %s\n", s.RPS, s.Elapsed.Round(time.Millisecond))
	if s.Total.Count > 0 {
		fmt.Fprintf(&buf, "  Total:     min %s  p50 %s  p90 %s  p99 %s  max %s\n",
			s.Total.Min, s.Total.P50, s.Total.P90, s.Total.P99, s.Total.Max)
		fmt.Fprintf(&buf, "  TTFB:      min %s  p50 %s  p90 %s  p99 %s  max %s\n",
			s.TimeToFirstByte.Min, s.TimeToFirstByte.P50, s.TimeToFirstByte.P90,
			s.TimeToFirstByte.P99, s.TimeToFirstByte.Max)
	}
	return buf.String()
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return "  " + prettyJSON.String()
}
