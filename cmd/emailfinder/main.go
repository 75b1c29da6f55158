package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/email-finder/internal/api"
	"github.com/user/email-finder/internal/config"
	"github.com/user/email-finder/internal/fetcher"
	"github.com/user/email-finder/internal/monitoring"
	"github.com/user/email-finder/internal/pipeline"
	"github.com/user/email-finder/internal/proxy"
	"github.com/user/email-finder/internal/report"
	"github.com/user/email-finder/internal/search"
	"github.com/user/email-finder/internal/storage"
)

func main() {
	serve := flag.Bool("serve", false, "run the HTTP API server instead of a one-shot batch")
	keyword := flag.String("keyword", "", "search keyword for batch mode (prompted when empty)")
	locale := flag.String("locale", "us-en", "search locale region code")
	limit := flag.Int("limit", 0, "maximum number of search results to process")
	out := flag.String("out", "", "report output path (overrides OUTPUT_PATH)")
	format := flag.String("format", "", "report format, csv or xlsx (overrides OUTPUT_FORMAT)")
	flag.Parse()

	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// Initialize Monitoring, Proxies
	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	proxyManager := proxy.NewManager(cfg.UserAgent, cfg.ProxyList())

	// Initialize Core Pipeline
	pageFetcher := fetcher.New(cfg, proxyManager, metrics, logger)
	processor := pipeline.NewProcessor(pageFetcher, metrics, logger)
	coordinator := pipeline.NewCoordinator(processor, cfg.Workers, logger)
	searcher := search.NewHTMLProvider(pageFetcher, logger)

	if *serve {
		runServer(cfg, coordinator, searcher, logger)
		return
	}

	runBatch(cfg, coordinator, searcher, logger, *keyword, *locale, *limit, *out, *format)
}

func runBatch(
	cfg *config.Config,
	coordinator *pipeline.Coordinator,
	searcher search.Provider,
	logger *zap.Logger,
	keyword, locale string,
	limit int,
	outPath, format string,
) {
	if keyword == "" {
		fmt.Print("Enter a keyword: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			logger.Fatal("could not read keyword", zap.Error(err))
		}
		keyword = strings.TrimSpace(line)
	}
	if keyword == "" {
		logger.Fatal("a keyword is required in batch mode")
	}
	if limit <= 0 {
		limit = cfg.SearchLimit
	}
	if outPath == "" {
		outPath = cfg.OutputPath
	}
	if format == "" {
		format = cfg.OutputFormat
	}

	ctx := context.Background()

	urls, err := searcher.Search(ctx, search.Query{Keyword: keyword, Locale: locale, Limit: limit})
	if err != nil {
		// An unreachable search engine still yields a well-formed, if
		// empty, report.
		logger.Warn("search failed", zap.String("keyword", keyword), zap.Error(err))
	}
	logger.Info("search complete",
		zap.String("keyword", keyword),
		zap.Int("results", len(urls)),
	)

	results := coordinator.Run(ctx, urls)

	writer, err := report.ForFormat(format, outPath)
	if err != nil {
		logger.Fatal("could not create report writer", zap.Error(err))
	}
	if err := writer.Write(results); err != nil {
		logger.Fatal("could not write report", zap.Error(err))
	}

	found := 0
	for _, r := range results {
		if r.HasEmail() {
			found++
		}
	}
	logger.Info("report written",
		zap.String("path", outPath),
		zap.Int("sites", len(results)),
		zap.Int("emails", found),
	)
}

func runServer(
	cfg *config.Config,
	coordinator *pipeline.Coordinator,
	searcher search.Provider,
	logger *zap.Logger,
) {
	ctx := context.Background()

	// Optional Storage Layer
	var pgStore *storage.PostgresStore
	if cfg.PostgresURL != "" {
		var err error
		pgStore, err = storage.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pgStore.Close()
	}

	var visited pipeline.Visited
	if cfg.RedisAddr != "" {
		redisVisited := storage.NewRedisVisited(cfg.RedisAddr, cfg.DedupTTL())
		if err := redisVisited.Ping(ctx); err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisVisited.Close()
		visited = redisVisited
	}

	// Initialize API Server
	server := api.NewServer(cfg, coordinator, searcher, pgStore, visited, logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
