package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	_ "sandbox-hooks/internal/builtin"
	"sandbox-hooks/internal/config"
	"sandbox-hooks/internal/sandbox"
	"sandbox-hooks/pkg/hooks"
	"sandbox-hooks/pkg/logger"
)

// main 是钩子守护进程的入口：加载钩子、等待会话结束、清理钩子。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("seehooksd 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.Outputs,
		Audit: logger.AuditConfig{
			Enabled:    cfg.Logging.Audit.Enabled,
			Path:       cfg.Logging.Audit.Path,
			MaxSizeMB:  cfg.Logging.Audit.MaxSizeMB,
			MaxBackups: cfg.Logging.Audit.MaxBackups,
			MaxAgeDays: cfg.Logging.Audit.MaxAgeDays,
		},
	}); err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer logger.Sync()

	doc, err := hooks.LoadDocument(cfg.Hooks.Document)
	if err != nil {
		return err
	}
	if cfg.Hooks.PluginDir != "" {
		hooks.Default.SetLoader(hooks.GoPluginLoader{Dir: cfg.Hooks.PluginDir})
	}

	identifier := cfg.Session.Identifier
	if identifier == "" {
		identifier = uuid.NewString()
	}
	if err := os.MkdirAll(cfg.Session.WorkDir, 0o755); err != nil {
		return fmt.Errorf("创建会话目录失败: %w", err)
	}
	env := sandbox.NewEnvironment(identifier, cfg.Session.WorkDir)

	l := logger.Named("seehooksd")
	manager := hooks.Create(identifier, doc, env)
	l.Info("sandbox session started",
		"session", identifier,
		"configured", len(doc.Hooks),
		"loaded", len(manager.Hooks()))

	<-ctx.Done()

	manager.Cleanup()
	l.Info("sandbox session ended", "session", identifier)
	return nil
}
