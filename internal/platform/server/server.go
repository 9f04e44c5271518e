package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/ogurasousui/codex-company-employees/internal/adapters/http/handler"
	"github.com/ogurasousui/codex-company-employees/internal/platform/config"
	"github.com/ogurasousui/codex-company-employees/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Version はビルド時に -ldflags で埋め込まれるバージョンです。
var Version = "dev"

// Mounter はルーターにルートを登録するハンドラーです。
type Mounter interface {
	Mount(r fiber.Router)
}

// Server は HTTP サーバーのライフサイクルを管理します。
type Server struct {
	app             *fiber.App
	listenAddr      string
	shutdownTimeout time.Duration
	logger          *zap.Logger
	startedAt       time.Time
}

// New はミドルウェアと運用エンドポイント (/ping, /metrics) を設定したサーバーを構築します。
// Sentry が有効な場合はクライアントを初期化し、リクエストごとの Hub を設定します。
func New(cfg *config.Config, logger *zap.Logger, reg *prometheus.Registry) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Log.Service,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          handler.ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	httpMetrics := metrics.NewHTTPMetrics(reg)

	app.Use(
		recover.New(recover.Config{
			EnableStackTrace: true,
		}),
		requestid.New(),
		fiberzap.New(fiberzap.Config{
			Logger: logger,
		}),
		httpMetrics.Middleware(),
		compress.New(),
		cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.Server.CORSAllowOrigins, ","),
			AllowMethods: "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS",
			AllowHeaders: "*",
		}),
	)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			Release:          Version,
			AttachStacktrace: true,
		}); err != nil {
			return nil, fmt.Errorf("server: init sentry: %w", err)
		}
		app.Use(fibersentry.New(fibersentry.Config{
			Repanic: true,
		}))
	}

	s := &Server{
		app:             app,
		listenAddr:      cfg.Server.ListenAddr,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
		logger:          logger,
		startedAt:       time.Now(),
	}

	app.Get("/ping", s.ping)
	app.Get("/metrics", metrics.Handler(reg))

	return s, nil
}

// App は内部の fiber.App を返します。
func (s *Server) App() *fiber.App {
	return s.app
}

// Mount は prefix のグループに handlers のルートを登録します。
func (s *Server) Mount(prefix string, handlers ...Mounter) {
	r := s.app.Group(prefix)
	for _, h := range handlers {
		h.Mount(r)
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされるとシャットダウンします。
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.listenAddr)
	}()

	s.logger.Info("http server listening", zap.String("addr", s.listenAddr))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen on %s: %w", s.listenAddr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	sentry.Flush(2 * time.Second)

	return <-errCh
}

func (s *Server) ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": Version,
		"upsince": s.startedAt.Format(time.RFC3339),
		"uptime":  time.Since(s.startedAt).String(),
	})
}
