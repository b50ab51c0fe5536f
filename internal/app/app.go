// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/kohei/umami/internal/auth"
	"github.com/kohei/umami/internal/catalog"
	"github.com/kohei/umami/internal/config"
	"github.com/kohei/umami/internal/database"
	"github.com/kohei/umami/internal/handler"
	"github.com/kohei/umami/internal/imageproxy"
	"github.com/kohei/umami/internal/logger"
	"github.com/kohei/umami/internal/metrics"
	"github.com/kohei/umami/internal/middleware"
	"github.com/kohei/umami/internal/repository"
	"github.com/kohei/umami/internal/review"
	"github.com/kohei/umami/internal/security"
	"github.com/kohei/umami/internal/view"
	"github.com/kohei/umami/internal/worker/cleanup"
	"github.com/kohei/umami/internal/worker/refresh"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// newRedisClient はREDIS_URLからRedisクライアントを生成する。
// REDIS_URLが未設定の場合はnilを返す（キャッシュ無効で動作する）。
func newRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// newCatalogCache はRedisクライアントからカタログキャッシュを生成する。
// クライアントがnilの場合はnilキャッシュを返す。
func newCatalogCache(client *redis.Client, ttl time.Duration) catalog.Cache {
	if client == nil {
		return nil
	}
	return catalog.NewRedisCache(client, ttl)
}

// runServe はWebサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	identRepo := repository.NewPostgresIdentityRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)

	// 3. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewCommentSanitizer()

	// 4. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. 認証サービスの初期化
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	authService := auth.NewService(
		oauthProvider, userRepo, identRepo, sessionRepo,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	// 6. バックエンドAPIクライアントの初期化
	backendClient := &http.Client{Timeout: cfg.BackendTimeout}
	catalogClient := catalog.NewClient(backendClient, cfg.BackendBaseURL, slog.Default(), collector)
	reviewClient := review.NewClient(backendClient, cfg.BackendBaseURL, slog.Default(), collector)

	// 7. カタログキャッシュの初期化（REDIS_URL未設定ならキャッシュなし）
	redisClient, err := newRedisClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		slog.Info("catalog cache enabled", slog.Duration("ttl", cfg.CatalogCacheTTL))
	}
	catalogService := catalog.NewService(
		catalogClient,
		newCatalogCache(redisClient, cfg.CatalogCacheTTL),
		slog.Default(),
		collector,
	)

	// 8. ビューの初期化
	renderer, err := view.NewRenderer(slog.Default())
	if err != nil {
		return fmt.Errorf("failed to initialize templates: %w", err)
	}
	stateStore := handler.NewStateStore(sessionRepo, slog.Default())

	// 9. ルーターの構築
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	// configのレート制限はreq/min単位なのでreq/secに変換する
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.ReviewRate = rate.Limit(float64(cfg.RateLimitReview) / 60.0)
	rateLimiterCfg.ReviewBurst = cfg.RateLimitReview

	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		SessionFinder: sessionRepo,
		UserFinder:    userRepo,
		RateLimiter:   rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		Logger: slog.Default(),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		CatalogService:  catalogService,
		ReviewService:   reviewClient,
		ReviewLister:    reviewClient,
		Sanitizer:       sanitizer,
		CatalogLocation: cfg.CatalogLocation,

		Renderer:   renderer,
		StateStore: stateStore,
		Metrics:    collector,

		ImageProxy:     imageproxy.NewHandler(ssrfGuard, cfg.ImageMaxSize, slog.Default()),
		MetricsHandler: metrics.Handler(registry),
	}

	router := handler.NewRouter(deps)

	// 10. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("web server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down web server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 期限切れセッションの日次クリーンアップと、Redisが有効な場合は
// カタログキャッシュの定期更新を実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. クリーンアップジョブの初期化
	cleanupJob := cleanup.NewCleanupJob(db, slog.Default())

	// 3. カタログ更新スケジューラの初期化（Redisが有効な場合のみ）
	redisClient, err := newRedisClient(cfg.RedisURL)
	if err != nil {
		return err
	}

	var refreshScheduler *refresh.Scheduler
	if redisClient != nil {
		defer redisClient.Close()

		backendClient := &http.Client{Timeout: cfg.BackendTimeout}
		catalogClient := catalog.NewClient(backendClient, cfg.BackendBaseURL, slog.Default(), metrics.Nop{})
		catalogService := catalog.NewService(
			catalogClient,
			newCatalogCache(redisClient, cfg.CatalogCacheTTL),
			slog.Default(),
			metrics.Nop{},
		)
		refreshScheduler = refresh.NewScheduler(catalogService, slog.Default(), cfg.CatalogLocation)
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("cache_refresh_interval", cfg.CacheRefreshInterval),
		slog.Bool("cache_refresh_enabled", refreshScheduler != nil),
	)

	// カタログ更新スケジューラをバックグラウンドで起動
	if refreshScheduler != nil {
		go refreshScheduler.Start(ctx, cfg.CacheRefreshInterval)
	}

	// クリーンアップジョブを日次でメインgoroutineで実行（ブロッキング）
	if err := cleanupJob.Run(ctx); err != nil {
		slog.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped gracefully")
			return nil
		case <-ticker.C:
			if err := cleanupJob.Run(ctx); err != nil {
				slog.Error("cleanup job failed", slog.String("error", err.Error()))
			}
		}
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
