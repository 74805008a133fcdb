package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Trizly-xyz/trizlySite/internal/adapter/filter"
	"github.com/Trizly-xyz/trizlySite/internal/adapter/github"
	"github.com/Trizly-xyz/trizlySite/internal/config"
	"github.com/Trizly-xyz/trizlySite/internal/logger"
	"github.com/Trizly-xyz/trizlySite/internal/service"
)

func main() {
	slug := flag.String("slug", "", "同时输出该条目的 README 和文件树")
	flag.Parse()

	logger.SetupLoggerTo(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}
	logger.SetDebug(cfg.Debug)

	names, err := filter.NewNameFilter(cfg.MatchPattern)
	if err != nil {
		log.Fatalf("❌ 命名规则无效: %v", err)
	}
	static, err := config.LoadStaticEntries(cfg.StaticFile)
	if err != nil {
		log.Fatalf("❌ 静态条目加载失败: %v", err)
	}

	svc := service.NewPortfolioService(github.NewProvider(cfg.Token), names, nil, service.Options{
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
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Fprintf(os.Stderr, "🔍 调试模式：聚合 %s 的作品集\n", cfg.Owner)
	start := time.Now()
	entries := svc.GetAllPortfolios(ctx)
	fmt.Fprintf(os.Stderr, "✅ 共 %d 个条目，用时 %s\n", len(entries), time.Since(start).Round(time.Millisecond))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if *slug == "" {
		if err := enc.Encode(entries); err != nil {
			log.Fatalf("❌ 输出失败: %v", err)
		}
		return
	}

	content, ok := svc.GetPortfolioContent(ctx, *slug)
	if !ok {
		fmt.Fprintf(os.Stderr, "❌ 没有找到 %q 的仓库内容 (不存在或是静态条目)\n", *slug)
		os.Exit(1)
	}
	if err := enc.Encode(content); err != nil {
		log.Fatalf("❌ 输出失败: %v", err)
	}
}
