// ABOUTME: Gateway orchestrator that assembles the request log, tool registry and MCP server
// ABOUTME: Manages the HTTP listener lifecycle for the hiring and research servers

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/2389/hiring-router/internal/analytics"
	"github.com/2389/hiring-router/internal/builtins"
	"github.com/2389/hiring-router/internal/config"
	"github.com/2389/hiring-router/internal/mcp"
	"github.com/2389/hiring-router/internal/research"
	"github.com/2389/hiring-router/internal/telemetry"
	"github.com/2389/hiring-router/internal/tools"
)

// Server names reported in serverInfo and the / probe.
const (
	HiringServerName   = "hiring-router-mcp"
	ResearchServerName = "deep-research-mcp"
)

// Version is reported to MCP clients. Overridden at build time.
var Version = "dev"

// Gateway serves one tool registry over MCP.
type Gateway struct {
	config     *config.Config
	pipeline   *telemetry.Pipeline
	registry   *tools.Registry
	mcpServer  *mcp.Server
	httpServer *http.Server
	logger     *slog.Logger
}

// NewPipeline builds the request-log pipeline described by cfg. diag
// receives the pipeline's own failures and must not write back into it.
func NewPipeline(cfg *config.Config, diag *slog.Logger) (*telemetry.Pipeline, error) {
	sink, err := telemetry.NewSink(telemetry.SinkConfig{
		Dir:       cfg.Logging.Dir,
		Retention: cfg.Logging.Retention,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing log sink: %w", err)
	}

	relay := telemetry.NewRelay(telemetry.RelayConfig{
		URL:    cfg.Logging.WebhookURL,
		Secret: cfg.Logging.WebhookSecret,
		Logger: diag,
	})

	return telemetry.NewPipeline(telemetry.PipelineConfig{
		Sink:     sink,
		Relay:    relay,
		MinLevel: cfg.LogLevel(),
		Logger:   diag,
	})
}

// newRegistry returns a registry whose every tool writes call records to p.
func newRegistry(cfg *config.Config, p *telemetry.Pipeline, logger *slog.Logger) *tools.Registry {
	return tools.NewRegistry(
		logger.With("component", "tool-registry"),
		tools.Instrument(p, cfg.Logging.ClientID),
	)
}

// New creates the hiring router gateway: recruiter, candidate, analytics
// and routing tools behind one MCP endpoint.
func New(cfg *config.Config, p *telemetry.Pipeline, logger *slog.Logger) (*Gateway, error) {
	if p == nil {
		return nil, errors.New("pipeline is required")
	}

	registry := newRegistry(cfg, p, logger)
	if _, err := builtins.RegisterAll(registry, builtins.Deps{
		Aggregator:     analytics.NewAggregator(p.Sink().Path()),
		Exporter:       analytics.NewExporter(p.Sink(), nil),
		Emitter:        p,
		Policy:         cfg.Policy(),
		IdentityFields: cfg.Router.IdentityFields,
		WorkflowURL:    cfg.Workflows.N8NWebhookURL,
	}); err != nil {
		return nil, fmt.Errorf("registering builtin packs: %w", err)
	}

	return assemble(cfg, p, registry, HiringServerName, logger)
}

// NewResearch creates the research gateway serving search and fetch over
// the corpus at cfg.Research.RecordsPath.
func NewResearch(cfg *config.Config, p *telemetry.Pipeline, logger *slog.Logger) (*Gateway, error) {
	if p == nil {
		return nil, errors.New("pipeline is required")
	}

	corpus, err := research.Load(cfg.Research.RecordsPath)
	if err != nil {
		return nil, fmt.Errorf("loading research corpus: %w", err)
	}
	logger.Info("research corpus loaded", "path", cfg.Research.RecordsPath, "records", corpus.Len())

	registry := newRegistry(cfg, p, logger)
	if err := registry.Register(research.Pack(corpus)); err != nil {
		return nil, fmt.Errorf("registering research pack: %w", err)
	}

	return assemble(cfg, p, registry, ResearchServerName, logger)
}

func assemble(cfg *config.Config, p *telemetry.Pipeline, registry *tools.Registry, name string, logger *slog.Logger) (*Gateway, error) {
	mcpServer, err := mcp.NewServer(mcp.Config{
		Registry: registry,
		Logger:   logger.With("component", "mcp"),
		Name:     name,
		Version:  Version,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	mux := http.NewServeMux()
	mcpServer.RegisterRoutes(mux)

	return &Gateway{
		config:    cfg,
		pipeline:  p,
		registry:  registry,
		mcpServer: mcpServer,
		httpServer: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.With("component", "gateway", "server", name),
	}, nil
}

// Registry returns the gateway's tool registry.
func (g *Gateway) Registry() *tools.Registry { return g.registry }

// MCP returns the MCP server, for serving over stdio.
func (g *Gateway) MCP() *mcp.Server { return g.mcpServer }

// Handler returns the HTTP handler serving MCP and the probes.
func (g *Gateway) Handler() http.Handler { return g.httpServer.Handler }

// setupListener creates the TCP listener for the configured address.
func (g *Gateway) setupListener() (net.Listener, error) {
	g.logger.Info("starting gateway",
		"http_addr", g.httpServer.Addr,
		"environment", g.config.Environment,
		"privacy_mode", g.config.Policy(),
		"log_dir", g.pipeline.Sink().Dir(),
		"tools", len(g.registry.List()),
	)

	ln, err := net.Listen("tcp", g.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// startServer starts the HTTP server in a goroutine, returning its error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown (context canceled), or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := g.setupListener()
	if err != nil {
		return err
	}

	errCh := g.startServer(ln)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server. The pipeline belongs to the caller and
// stays open so late log records still reach the sink.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway", "open_sessions", g.mcpServer.SessionCount())

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}
