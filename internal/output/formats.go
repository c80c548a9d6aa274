package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	http "github.com/wesleyorama2/hc/internal/http"
	"github.com/wesleyorama2/hc/internal/stats"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(req *http.Request, target http.Target) string
	FormatResponse(resp *http.Response, extracted map[string]string) string
	FormatSummary(summary stats.Summary) string
}

// GetFormatter returns the formatter for format. Unknown formats fall back
// to text.
func GetFormatter(format OutputFormat, verbose, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}

// RequestData represents the structured data of an HTTP request
type RequestData struct {
	Method    string            `json:"method" yaml:"method"`
	URL       string            `json:"url" yaml:"url"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body      string            `json:"body,omitempty" yaml:"body,omitempty"`
	Timestamp string            `json:"timestamp" yaml:"timestamp"`
}

// TimingData represents detailed timing information for an HTTP request
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs" yaml:"dnsLookupMs"`
	TCPConnection   int64 `json:"tcpConnectionMs" yaml:"tcpConnectionMs"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs" yaml:"timeToFirstByteMs"`
	ContentTransfer int64 `json:"contentTransferMs" yaml:"contentTransferMs"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData represents the structured data of an HTTP response
type ResponseData struct {
	OK         bool              `json:"ok" yaml:"ok"`
	StatusCode int               `json:"statusCode" yaml:"statusCode"`
	Status     string            `json:"status,omitempty" yaml:"status,omitempty"`
	Proto      string            `json:"proto,omitempty" yaml:"proto,omitempty"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	Complete   bool              `json:"complete" yaml:"complete"`
	BodyError  string            `json:"bodyError,omitempty" yaml:"bodyError,omitempty"`
	Extracted  map[string]string `json:"extracted,omitempty" yaml:"extracted,omitempty"`
	Timing     *TimingData       `json:"timing,omitempty" yaml:"timing,omitempty"`
	Timestamp  string            `json:"timestamp" yaml:"timestamp"`
}

// requestURL renders the address a request was sent to.
func requestURL(target http.Target, path string) string {
	if path == "" {
		path = "/"
	}
	return target.Scheme + "://" + target.HostHeader() + path
}

// NewRequestData converts a request into its serializable form.
func NewRequestData(req *http.Request, target http.Target) RequestData {
	data := RequestData{
		Method:    req.Method,
		URL:       requestURL(target, req.Path),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if req.Headers.Len() > 0 {
		data.Headers = req.Headers.Map()
	}
	if len(req.Body) > 0 {
		data.Body = string(req.Body)
	}
	return data
}

// NewResponseData converts a response into its serializable form. A JSON
// body is embedded as structured data, anything else as a string. Timing
// is included when verbose is set.
func NewResponseData(resp *http.Response, extracted map[string]string, verbose bool) ResponseData {
	data := ResponseData{
		OK:         resp.OK(),
		StatusCode: resp.Status(),
		Status:     resp.StatusText(),
		Proto:      resp.Proto(),
		Complete:   resp.Complete(),
		Extracted:  extracted,
		Timestamp:  time.Now().Format(time.RFC3339),
	}
	if err := resp.Err(); err != nil {
		data.Error = err.Error()
	}
	if err := resp.BodyErr(); err != nil {
		data.BodyError = err.Error()
	}
	if h := resp.Headers(); h.Len() > 0 {
		data.Headers = h.Map()
	}
	if body := resp.Body(); len(body) > 0 {
		var parsed interface{}
		if json.Unmarshal(body, &parsed) == nil {
			data.Body = parsed
		} else {
			data.Body = string(body)
		}
	}
	if verbose {
		data.Timing = &TimingData{
			DNSLookup:       resp.GetDNSLookupTimeMillis(),
			TCPConnection:   resp.GetTCPConnectTimeMillis(),
			TimeToFirstByte: resp.GetTimeToFirstByteMillis(),
			ContentTransfer: resp.GetContentTransferTimeMillis(),
			Total:           resp.GetTotalTimeMillis(),
		}
	}
	return data
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

func (f *JSONFormatter) marshal(what string, v interface{}) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal %s: %s"}`+"\n", what, err)
	}
	return string(output) + "\n"
}

// FormatRequest formats a request as JSON. Requests are only shown in
// verbose mode so that the default output is a single document per fetch.
func (f *JSONFormatter) FormatRequest(req *http.Request, target http.Target) string {
	if !f.Verbose {
		return ""
	}
	return f.marshal("request", NewRequestData(req, target))
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *http.Response, extracted map[string]string) string {
	return f.marshal("response", NewResponseData(resp, extracted, f.Verbose))
}

// FormatSummary formats repeat statistics as JSON
func (f *JSONFormatter) FormatSummary(summary stats.Summary) string {
	return f.marshal("summary", summary)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

func (f *YAMLFormatter) marshal(what string, v interface{}) string {
	output, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: Failed to marshal %s: %s\n", what, err)
	}
	return "---\n" + string(output)
}

// FormatRequest formats a request as YAML, in verbose mode only.
func (f *YAMLFormatter) FormatRequest(req *http.Request, target http.Target) string {
	if !f.Verbose {
		return ""
	}
	return f.marshal("request", NewRequestData(req, target))
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *http.Response, extracted map[string]string) string {
	return f.marshal("response", NewResponseData(resp, extracted, f.Verbose))
}

// FormatSummary formats repeat statistics as YAML
func (f *YAMLFormatter) FormatSummary(summary stats.Summary) string {
	return f.marshal("summary", summary)
}
