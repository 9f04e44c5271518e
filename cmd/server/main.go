package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/handler"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/hateoas"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/mapper"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-company-employees/internal/platform/config"
	pg "github.com/ogurasousui/codex-company-employees/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-company-employees/internal/platform/logger"
	"github.com/ogurasousui/codex-company-employees/internal/platform/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env は任意
	_ = godotenv.Load()

	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		zl.Fatal("failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := server.New(cfg, zl, reg)
	if err != nil {
		zl.Fatal("failed to initialize server", zap.Error(err))
	}

	managers := postgres.NewManagerFactory(dbPool)
	m := mapper.New()
	v := handler.NewValidator()

	srv.Mount("/api/companies",
		handler.NewCompanyHandler(managers, m, v, zl),
		handler.NewEmployeeHandler(managers, m, hateoas.NewEmployeeLinks(), v, zl),
	)

	if err := srv.Run(ctx); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}
}
