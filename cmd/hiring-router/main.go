// ABOUTME: Entry point for the hiring-router MCP server
// ABOUTME: Serves the hiring tools over HTTP or stdio and inspects the request log

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/2389/hiring-router/internal/analytics"
	"github.com/2389/hiring-router/internal/config"
	"github.com/2389/hiring-router/internal/gateway"
	"github.com/2389/hiring-router/internal/telemetry"
	"github.com/2389/hiring-router/internal/tools"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _     _      _                                    _
| |__ (_)_ __(_)_ __   __ _       _ __ ___  _   _| |_ ___ _ __
| '_ \| | '__| | '_ \ / _' |_____| '__/ _ \| | | | __/ _ \ '__|
| | | | | |  | | | | | (_| |_____| | | (_) | |_| | ||  __/ |
|_| |_|_|_|  |_|_| |_|\__, |     |_|  \___/ \__,_|\__\___|_|
                      |___/
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: hiring-router <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve              Start the hiring MCP server over HTTP")
		fmt.Println("  stdio              Serve the hiring tools over stdin/stdout")
		fmt.Println("  research [--stdio] Start the research (search/fetch) server")
		fmt.Println("  analytics          Summarize the request log")
		fmt.Println("  export             Bundle the request logs")
		fmt.Println("  health             Check server health")
		os.Exit(1)
	}

	gateway.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "stdio":
		err = runStdio(ctx)
	case "research":
		err = runResearch(ctx, slices.Contains(os.Args[2:], "--stdio"))
	case "analytics":
		err = runAnalytics()
	case "export":
		err = runExport()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration from HIRING_ROUTER_CONFIG or the default path.
func loadConfig() (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// app holds what the serving commands share. logger feeds both the
// console and the pipeline.
type app struct {
	cfg      *config.Config
	pipeline *telemetry.Pipeline
	logger   *slog.Logger
}

func setupApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	console := consoleHandler(cfg.Logging)
	pipeline, err := gateway.NewPipeline(cfg, slog.New(console))
	if err != nil {
		return nil, err
	}

	logger := setupLogger(console, pipeline, cfg.Logging)
	slog.SetDefault(logger)
	return &app{cfg: cfg, pipeline: pipeline, logger: logger}, nil
}

func printBanner(cfg *config.Config, serverName string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprint(os.Stderr, banner)

	gray := color.New(color.FgHiBlack)
	gray.Fprintf(os.Stderr, "    version: %s\n\n", version)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Fprint(os.Stderr, "    ▶ ")
	fmt.Fprintf(os.Stderr, "Server:    %s\n", serverName)
	green.Fprint(os.Stderr, "    ▶ ")
	fmt.Fprintf(os.Stderr, "HTTP:      %s\n", cfg.Server.Addr())
	green.Fprint(os.Stderr, "    ▶ ")
	fmt.Fprintf(os.Stderr, "Logs:      %s\n", cfg.Logging.Dir)
	green.Fprint(os.Stderr, "    ▶ ")
	fmt.Fprint(os.Stderr, "Privacy:   ")
	if cfg.Policy() == "raw" {
		yellow.Fprintln(os.Stderr, cfg.Policy())
	} else {
		fmt.Fprintln(os.Stderr, cfg.Policy())
	}
	if cfg.Logging.WebhookURL != "" {
		green.Fprint(os.Stderr, "    ▶ ")
		fmt.Fprintf(os.Stderr, "Relay:     %s\n", cfg.Logging.WebhookURL)
	}
	fmt.Fprintln(os.Stderr)
}

func runServe(ctx context.Context) error {
	a, err := setupApp()
	if err != nil {
		return err
	}
	defer a.pipeline.Close()

	printBanner(a.cfg, gateway.HiringServerName)

	a.logger.Info("starting hiring-router",
		"environment", a.cfg.Environment,
		"http_addr", a.cfg.Server.Addr(),
	)

	gw, err := gateway.New(a.cfg, a.pipeline, a.logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

func runStdio(ctx context.Context) error {
	a, err := setupApp()
	if err != nil {
		return err
	}
	defer a.pipeline.Close()

	gw, err := gateway.New(a.cfg, a.pipeline, a.logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	a.logger.Info("serving MCP over stdio", "tools", len(gw.Registry().List()))
	return gw.MCP().ServeStdio(ctx, os.Stdin, os.Stdout)
}

func runResearch(ctx context.Context, stdio bool) error {
	a, err := setupApp()
	if err != nil {
		return err
	}
	defer a.pipeline.Close()

	gw, err := gateway.NewResearch(a.cfg, a.pipeline, a.logger)
	if err != nil {
		return fmt.Errorf("creating research gateway: %w", err)
	}

	if stdio {
		return gw.MCP().ServeStdio(ctx, os.Stdin, os.Stdout)
	}
	printBanner(a.cfg, gateway.ResearchServerName)
	return gw.Run(ctx)
}

func runAnalytics() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	agg := analytics.NewAggregator(logPath(cfg))
	summary, err := agg.Summarize()
	if err != nil {
		return fmt.Errorf("summarizing request log: %w", err)
	}

	renderSummary(os.Stdout, agg.Path(), summary)
	return nil
}

// renderSummary prints the summary as two tables: by level and by event.
func renderSummary(w io.Writer, path string, s analytics.Summary) {
	fmt.Fprintf(w, "%s %s\n", color.HiBlackString("log:"), path)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Level", "Lines"})
	for _, k := range sortedKeys(s.ByLevel) {
		t.AppendRow(table.Row{k, s.ByLevel[k]})
	}
	t.AppendFooter(table.Row{"Total", s.Total})
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Event", "Lines"})
	for _, k := range sortedKeys(s.ByEvent) {
		t.AppendRow(table.Row{k, s.ByEvent[k]})
	}
	t.Render()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func runExport() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sink, err := telemetry.NewSink(telemetry.SinkConfig{Dir: cfg.Logging.Dir, Retention: cfg.Logging.Retention})
	if err != nil {
		return err
	}
	defer sink.Close()

	res, err := analytics.NewExporter(sink, nil).Export()
	if err != nil {
		return fmt.Errorf("exporting logs: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("exported %d file(s), %d bytes\n", len(res.Files), res.Bytes)
	fmt.Printf("  bundle: %s\n", res.BundlePath)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Make HTTP request to health endpoint with context
	url := fmt.Sprintf("http://%s/health", probeAddr(cfg.Server))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// probeAddr turns a wildcard bind address into one a client can dial.
func probeAddr(s config.ServerConfig) string {
	host := s.Bind
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}

func logPath(cfg *config.Config) string {
	return filepath.Join(cfg.Logging.Dir, telemetry.DefaultFileName)
}

// setupLogger fans application logs out to the console and the request log.
func setupLogger(console slog.Handler, pipeline *telemetry.Pipeline, cfg config.LoggingConfig) *slog.Logger {
	file := telemetry.NewHandler(pipeline, tools.LoggerName, consoleLevel(cfg))
	return slog.New(&fanoutHandler{handlers: []slog.Handler{console, file}})
}
