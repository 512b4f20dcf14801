package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tickerscope/internal/config"
	mcpserver "tickerscope/internal/mcp"
	"tickerscope/internal/upstream"
	"tickerscope/pkg/tracing"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Injection points for main_test.go.
var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initTracerFunc = tracing.InitTracer
	runStdioFunc   = func(ctx context.Context, server *sdkmcp.Server) error {
		return server.Run(ctx, &sdkmcp.StdioTransport{})
	}
	startHTTPServerFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFn = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify    = signal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
	fatalf               = log.Fatalf
)

func main() {
	loadEnvFunc()

	cfg, err := loadConfigFunc()
	if err != nil {
		fatalf("invalid configuration: %v", err)
		return
	}

	// stdout belongs to the stdio transport; all logging goes to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		fatalf("failed to initialize tracer: %v", err)
		return
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			slog.Error("error shutting down tracer provider", "err", err)
		}
	}()

	client := upstream.NewClient(upstream.ClientConfig{
		BaseURL: cfg.UpstreamURL,
		APIKey:  cfg.UpstreamAPIKey,
		Tracer:  tracer,
	})

	srv := mcpserver.NewServer(tracer, client, mcpserver.ServerConfig{
		RequestTimeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second,
	})

	switch transport := transportArg(os.Args); transport {
	case "stdio":
		slog.Info("starting mcp server", "transport", "stdio", "upstream", cfg.UpstreamURL)
		if err := runStdioFunc(ctx, srv); err != nil {
			fatalf("mcp stdio server failed: %v", err)
		}
	case "http":
		if err := runHTTPMode(ctx, cancel, cfg, srv); err != nil {
			fatalf("mcp http server failed: %v", err)
		}
	default:
		fatalf("unsupported transport %q (want stdio or http)", transport)
	}
}

// transportArg reads the transport from the first process argument,
// defaulting to stdio.
func transportArg(args []string) string {
	if len(args) < 2 {
		return "stdio"
	}
	return strings.ToLower(strings.TrimSpace(args[1]))
}

func runHTTPMode(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, srv *sdkmcp.Server) error {
	sessions := mcpserver.NewSessionRegistry(time.Duration(cfg.SessionIdleSecs) * time.Second)
	go sessions.Start(ctx)

	engine := mcpserver.NewHTTPEngine(srv, mcpserver.HTTPServerConfig{
		Sessions:    sessions,
		UpstreamURL: cfg.UpstreamURL,
	})

	addr := net.JoinHostPort(cfg.HTTPBind, fmt.Sprintf("%d", cfg.HTTPPort))
	httpSrv := &http.Server{Addr: addr, Handler: engine}

	go func() {
		slog.Info("starting mcp server", "transport", "http", "addr", addr, "upstream", cfg.UpstreamURL)
		if err := startHTTPServerFunc(httpSrv); err != nil && err != http.ErrServerClosed {
			slog.Error("mcp http server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFn(httpSrv, shutdownCtx); err != nil {
		return fmt.Errorf("mcp server forced to shutdown: %w", err)
	}
	return nil
}
