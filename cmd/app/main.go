package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Trizly-xyz/trizlySite/internal/adapter/filter"
	"github.com/Trizly-xyz/trizlySite/internal/adapter/github"
	"github.com/Trizly-xyz/trizlySite/internal/adapter/repository"
	"github.com/Trizly-xyz/trizlySite/internal/api"
	"github.com/Trizly-xyz/trizlySite/internal/config"
	"github.com/Trizly-xyz/trizlySite/internal/logger"
	"github.com/Trizly-xyz/trizlySite/internal/port"
	"github.com/Trizly-xyz/trizlySite/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. 命令行参数，优先于环境变量
	addr := flag.String("addr", "", "监听地址，默认读取 HTTP_ADDR")
	warm := flag.Bool("warm", true, "启动时预热缓存")
	flag.Parse()

	logger.SetupLogger()

	// 2. 配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}
	logger.SetDebug(cfg.Debug)
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}

	// 3. 可选的刷新历史存储
	var refreshLog port.RefreshLog
	if cfg.PostgresDSN != "" {
		store, err := repository.NewPostgresRepo(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("❌ DB 初始化失败: %v", err)
		}
		defer store.Close()
		refreshLog = store
	}

	svc, err := buildService(cfg, github.NewProvider(cfg.Token), refreshLog)
	if err != nil {
		log.Fatalf("❌ 服务初始化失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *warm {
		go func() {
			entries := svc.GetAllPortfolios(ctx)
			slog.Info("🔥 缓存预热完成", "count", len(entries))
		}()
	}

	if err := serve(ctx, newServer(cfg.HTTPAddr, api.NewRouter(svc))); err != nil {
		slog.Error("❌ HTTP 服务异常退出", "error", err)
		os.Exit(1)
	}
}

// buildService 按配置组装作品集服务
func buildService(cfg config.Config, provider port.RepoProvider, refreshLog port.RefreshLog) (*service.PortfolioService, error) {
	names, err := filter.NewNameFilter(cfg.MatchPattern)
	if err != nil {
		return nil, err
	}
	static, err := config.LoadStaticEntries(cfg.StaticFile)
	if err != nil {
		return nil, err
	}

	return service.NewPortfolioService(provider, names, refreshLog, service.Options{
		Owner:         cfg.Owner,
		StaticEntries: static,
		CacheTTL:      cfg.CacheTTL,
		FetchTimeout:  cfg.FetchTimeout,
		Concurrency:   cfg.Concurrency,
		Files: service.FileNames{
			Readme:    cfg.ReadmeFile,
			Config:    cfg.ConfigFile,
			Thumbnail: cfg.ThumbnailFile,
		},
	}), nil
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// serve 运行直到 ctx 结束，然后优雅关闭
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("🚀 HTTP 服务已启动", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("👋 收到停止信号，正在退出...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
