package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/John-Robertt/lircd2toml-go/internal/config"
	"github.com/John-Robertt/lircd2toml-go/internal/httpapi"
	"github.com/John-Robertt/lircd2toml-go/internal/logging"
)

func main() {
	defaults := config.Default()

	configPath := flag.String("config", "", "TOML 配置文件路径（命令行参数优先）")
	listen := flag.String("listen", defaults.Listen, "HTTP 监听地址")
	readHeaderTimeout := flag.Duration("read-header-timeout", defaults.ReadHeaderTimeout, "HTTP ReadHeaderTimeout（请求头读取超时）")
	convertTimeout := flag.Duration("convert-timeout", defaults.ConvertTimeout, "单次转换的总超时（包含远程拉取）")
	fetchTimeout := flag.Duration("fetch-timeout", defaults.FetchTimeout, "单次远程拉取的超时（每个 URL 一次请求）")
	shutdownTimeout := flag.Duration("shutdown-timeout", defaults.ShutdownTimeout, "收到退出信号后的优雅退出等待时间")
	maxBodyBytes := flag.Int64("max-body-bytes", defaults.MaxBodyBytes, "POST /api/convert 请求体上限（字节）")
	workers := flag.Int("workers", defaults.Workers, "单次请求内的并发转换数（0 表示 CPU 数）")
	logLevel := flag.String("log-level", "", "日志级别：debug/info/warn/error/off")
	logJSON := flag.Bool("log-json", defaults.LogJSON, "以 JSON 行输出日志")
	healthcheck := flag.Bool("healthcheck", false, "探测本地 /healthz 后退出（用于容器健康检查）")
	flag.Parse()

	cfg := defaults
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		cfg = loaded
	}

	// Flags given on the command line win over the config file.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["listen"] {
		cfg.Listen = *listen
	}
	if set["read-header-timeout"] {
		cfg.ReadHeaderTimeout = *readHeaderTimeout
	}
	if set["convert-timeout"] {
		cfg.ConvertTimeout = *convertTimeout
	}
	if set["fetch-timeout"] {
		cfg.FetchTimeout = *fetchTimeout
	}
	if set["shutdown-timeout"] {
		cfg.ShutdownTimeout = *shutdownTimeout
	}
	if set["max-body-bytes"] {
		cfg.MaxBodyBytes = *maxBodyBytes
	}
	if set["workers"] {
		cfg.Workers = *workers
	}
	if set["log-level"] {
		lvl, ok := logging.ParseLevel(*logLevel)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown log level %q\n", *logLevel)
			os.Exit(2)
		}
		cfg.LogLevel = lvl
	}
	if set["log-json"] {
		cfg.LogJSON = *logJSON
	}

	if *healthcheck {
		u, err := deriveHealthzURL(cfg.Listen)
		if err == nil {
			err = runHealthcheck(u, 2*time.Second)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	logger := logging.New("lircd2tomld", os.Stderr, logging.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: httpapi.NewHandlerWithOptions(httpapi.Options{
			ConvertTimeout: cfg.ConvertTimeout,
			FetchTimeout:   cfg.FetchTimeout,
			MaxBodyBytes:   cfg.MaxBodyBytes,
			Workers:        cfg.Workers,
			Logger:         &logger,
		}),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	logger.Info().Msgf("listening on http://%s", cfg.Listen)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")

		shCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
			_ = srv.Close()
		}

		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}
}
