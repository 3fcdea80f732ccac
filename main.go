// @title ExamHub 后端 API
// @version 1.0
// @description 考试发布与学员分配服务：试卷生命周期、课程报名及分配同步。

// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"examhub_backend/internal/app"
	"examhub_backend/internal/config"
	"examhub_backend/pkg/configwatcher"
	"examhub_backend/pkg/logger"
	"flag"
	"log"
	"path/filepath"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	watch := flag.Bool("watch-config", true, "监听配置文件变更并热更新调度间隔与日志级别")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	if *watch {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			file := filepath.Join(*configDir, "config.yaml")
			if err := configwatcher.WatchConfig(ctx, file, configwatcher.DefaultDebounce, application.ApplyConfig); err != nil {
				logger.Log.Warn("config watcher not started", zap.Error(err))
			}
		}()
	}

	application.Run()
}
