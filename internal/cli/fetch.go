package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/wesleyorama2/hc/internal/config"
	http "github.com/wesleyorama2/hc/internal/http"
	"github.com/wesleyorama2/hc/internal/output"
	"github.com/wesleyorama2/hc/internal/stats"
	"github.com/wesleyorama2/hc/pkg/jsonpath"
)

const requestIDHeader = "X-Request-Id"

// ErrFetchFailed is returned when at least one fetch produced no usable
// response: a connect, transport or parse failure, or a truncated body.
var ErrFetchFailed = errors.New("fetch failed")

// fetchOptions is the merged result of a profile and the command line.
type fetchOptions struct {
	target  string
	method  string
	path    string
	headers http.Header
	body    []byte
	timeout time.Duration
	format  output.OutputFormat
	extract map[string]string
	repeat  int
	rate    float64
	verbose bool
	noColor bool
}

func newFetchCmd() *cobra.Command {
	fetchCmd := &cobra.Command{
		Use:   "fetch [TARGET]",
		Short: "Fetch a path from a target and print the response",
		Long: `Fetch connects to TARGET (host, host:port or http://host[:port][/path]),
sends one request and prints the response. TARGET may come from a profile
given with --config instead.`,
		Example: `  hc fetch example.com
  hc fetch http://localhost:8080/health -H "Accept: application/json" --format json
  hc fetch api.local --path /items --extract id=$.items[0].id
  hc fetch --config profile.yaml --repeat 20 --rate 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: runFetch,
	}

	flags := fetchCmd.Flags()
	flags.StringP("path", "p", "", "Request path (defaults to the target's path, then /)")
	flags.StringP("method", "X", http.MethodGet, "Request method: GET, HEAD, DELETE, POST or PUT")
	flags.StringP("data", "d", "", "Request body for POST and PUT")
	flags.StringArrayP("header", "H", []string{}, "HTTP headers to include as 'Key: Value' (can be used multiple times)")
	flags.StringP("config", "c", "", "Fetch profile (YAML or JSON)")
	flags.StringP("format", "f", string(output.FormatText), "Output format: text, json or yaml")
	flags.StringArrayP("extract", "e", []string{}, "JSONPath to extract from the body, as [name=]$.path (can be used multiple times)")
	flags.IntP("repeat", "n", 1, "Number of fetches; more than one prints a latency summary")
	flags.Float64("rate", 0, "Maximum fetches per second when repeating (0 means unlimited)")
	flags.DurationP("timeout", "t", 30*time.Second, "Timeout for each fetch, including connect")

	return fetchCmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(cmd, args)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	colored := false
	if f, ok := stdout.(*os.File); ok {
		colored = output.ShouldColor(f, opts.noColor)
	}
	formatter := output.GetFormatter(opts.format, opts.verbose, !colored)
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose, !colored)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var limiter *rate.Limiter
	if opts.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.rate), 1)
	}
	recorder := stats.NewRecorder()

	failed := 0
	for i := 0; i < opts.repeat; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
		}
		resp := fetchOnce(ctx, stdout, formatter, logger, opts)
		recorder.Record(stats.Sample{
			Total:           resp.Timing().TotalTime,
			TimeToFirstByte: resp.Timing().TimeToFirstByte,
			Bytes:           int64(len(resp.Body())),
			OK:              resp.OK(),
			Failed:          resp.Err() != nil,
		})
		if resp.Err() != nil || !resp.Complete() {
			failed++
		}
	}

	if opts.repeat > 1 {
		fmt.Fprint(stdout, formatter.FormatSummary(recorder.Summary()))
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFetchFailed, failed, opts.repeat)
	}
	return nil
}

// fetchOnce runs one connect, request and response cycle on a fresh
// connection and prints it.
func fetchOnce(ctx context.Context, w io.Writer, formatter output.FormatProvider, logger zerolog.Logger, opts fetchOptions) *http.Response {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	headers := opts.headers.Clone()
	requestID, ok := headers.LookupFold(requestIDHeader)
	if !ok {
		requestID = uuid.NewString()
		headers.Set(requestIDHeader, requestID)
	}
	req := http.NewRequest(opts.method, opts.path).WithHeaders(headers).WithBody(opts.body)

	conn := http.NewConn(
		http.WithLogger(logger.With().Str("request_id", requestID).Logger()),
		http.WithHostHeader(),
	)
	defer conn.Close()

	start := time.Now()
	if err := conn.Connect(ctx, opts.target); err != nil {
		if target, perr := http.ParseTarget(opts.target); perr == nil {
			fmt.Fprint(w, formatter.FormatRequest(req, target))
		}
		resp := http.NewErrorResponse(err, http.TimingInfo{StartTime: start, TotalTime: time.Since(start)})
		fmt.Fprint(w, formatter.FormatResponse(resp, nil))
		return resp
	}

	fmt.Fprint(w, formatter.FormatRequest(req, conn.Target()))
	resp := conn.Do(ctx, req)

	var extracted map[string]string
	if len(opts.extract) > 0 && resp.Err() == nil && len(resp.Body()) > 0 {
		var err error
		extracted, err = jsonpath.ExtractMultiple(resp.Body(), opts.extract)
		if err != nil {
			logger.Warn().Err(err).Msg("extraction incomplete")
		}
	}
	fmt.Fprint(w, formatter.FormatResponse(resp, extracted))
	return resp
}

// resolveOptions merges the profile named by --config with the command
// line. Flags given explicitly win over the profile.
func resolveOptions(cmd *cobra.Command, args []string) (fetchOptions, error) {
	flags := cmd.Flags()
	var opts fetchOptions
	opts.verbose, _ = flags.GetBool("verbose")
	opts.noColor, _ = flags.GetBool("no-color")
	opts.method, _ = flags.GetString("method")
	opts.path, _ = flags.GetString("path")
	opts.timeout, _ = flags.GetDuration("timeout")
	opts.repeat, _ = flags.GetInt("repeat")
	opts.rate, _ = flags.GetFloat64("rate")
	data, _ := flags.GetString("data")
	opts.body = []byte(data)
	format, _ := flags.GetString("format")
	opts.extract = map[string]string{}

	if path, _ := flags.GetString("config"); path != "" {
		profile, err := config.LoadProfile(path)
		if err != nil {
			return opts, err
		}
		if err := applyProfile(&opts, &format, profile, cmd); err != nil {
			return opts, err
		}
	}

	if len(args) == 1 {
		opts.target = args[0]
	}
	if opts.target == "" {
		return opts, errors.New("no target given: pass TARGET or a profile with a target")
	}

	headerFlags, _ := flags.GetStringArray("header")
	for _, h := range headerFlags {
		key, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return opts, fmt.Errorf("invalid header %q: want 'Key: Value'", h)
		}
		opts.headers.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	extractFlags, _ := flags.GetStringArray("extract")
	for _, e := range extractFlags {
		name, path := splitExtract(e)
		opts.extract[name] = path
	}

	var err error
	if opts.format, err = output.ParseFormat(format); err != nil {
		return opts, err
	}
	opts.method = strings.ToUpper(opts.method)
	switch opts.method {
	case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodPost, http.MethodPut:
	default:
		return opts, fmt.Errorf("unsupported method %q", opts.method)
	}
	if opts.repeat < 1 {
		return opts, fmt.Errorf("--repeat must be at least 1, got %d", opts.repeat)
	}
	if opts.rate < 0 {
		return opts, fmt.Errorf("--rate must not be negative, got %v", opts.rate)
	}
	if opts.timeout <= 0 {
		return opts, fmt.Errorf("--timeout must be positive, got %s", opts.timeout)
	}

	if opts.path == "" {
		if t, err := http.ParseTarget(opts.target); err == nil {
			opts.path = t.Path
		}
	}
	return opts, nil
}

func applyProfile(opts *fetchOptions, format *string, p *config.Profile, cmd *cobra.Command) error {
	flags := cmd.Flags()
	opts.target = p.Target
	for _, key := range p.HeaderKeys() {
		opts.headers.Set(key, p.Headers[key])
	}
	for name, path := range p.Extract {
		opts.extract[name] = path
	}
	if p.Method != "" && !flags.Changed("method") {
		opts.method = p.Method
	}
	if p.Path != "" && !flags.Changed("path") {
		opts.path = p.Path
	}
	if p.Body != "" && !flags.Changed("data") {
		opts.body = []byte(p.Body)
	}
	if p.Format != "" && !flags.Changed("format") {
		*format = p.Format
	}
	if p.Repeat > 0 && !flags.Changed("repeat") {
		opts.repeat = p.Repeat
	}
	if p.Rate > 0 && !flags.Changed("rate") {
		opts.rate = p.Rate
	}
	if !flags.Changed("timeout") {
		timeout, err := p.TimeoutDuration(opts.timeout)
		if err != nil {
			return err
		}
		opts.timeout = timeout
	}
	return nil
}

// splitExtract reads "name=$.path"; a bare "$.path" is named after itself.
func splitExtract(s string) (name, path string) {
	if i := strings.Index(s, "=$"); i > 0 && !strings.HasPrefix(s, "$") {
		return s[:i], s[i+1:]
	}
	return s, s
}
