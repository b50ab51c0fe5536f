package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kohei/umami/internal/metrics"
	"github.com/kohei/umami/internal/middleware"
	"github.com/kohei/umami/internal/security"
	"github.com/kohei/umami/internal/view"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder middleware.SessionFinder
	UserFinder    middleware.UserFinder
	RateLimiter   *middleware.RateLimiter
	CSRFConfig    middleware.CSRFConfig
	Logger        *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// カタログ・レビュー
	CatalogService  CatalogServiceInterface
	ReviewService   ReviewServiceInterface
	ReviewLister    ReviewListerInterface
	Sanitizer       security.CommentSanitizerService
	CatalogLocation string

	// 描画・状態
	Renderer   *view.Renderer
	StateStore *StateStore
	Metrics    metrics.MetricsCollector

	// 補助エンドポイント
	ImageProxy     http.Handler
	MetricsHandler http.Handler
}

// NewRouter は全ページ・エンドポイントのルーティングとミドルウェアチェーンを
// 構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Session → Logging → CSRF → RateLimit(General)
//
// ヘルスチェックとメトリクスはセッションスタックの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())

	// --- 運用エンドポイント ---
	r.Get("/health", healthCheck)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	pageHandler := NewPageHandler(deps.CatalogService, deps.ReviewLister, deps.Renderer, deps.StateStore, deps.Metrics, deps.CatalogLocation)
	reviewHandler := NewReviewHandler(deps.ReviewService, deps.Sanitizer, deps.Renderer, deps.StateStore, deps.Metrics)
	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.UserFinder))
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// --- 認証不要のページ ---
		r.Get("/", pageHandler.Home)
		r.Get("/restaurant/{id}", pageHandler.Detail)

		// 画像プロキシ
		if deps.ImageProxy != nil {
			r.Handle("/img", deps.ImageProxy)
		}

		// ログイン・サインアップ（認証済みならトップへ）
		r.Group(func(r chi.Router) {
			r.Use(middleware.RedirectIfAuthenticated)
			r.Get("/login", pageHandler.LoginPage)
			r.Get("/signup", pageHandler.SignupPage)
		})

		// OAuthフロー
		r.Get("/auth/google/login", authHandler.Login)
		r.Get("/auth/google/callback", authHandler.Callback)
		r.Post("/auth/logout", authHandler.Logout)

		// --- 認証が必要なページ ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/dashboard", reviewHandler.Dashboard)

			r.Get("/add-review/{restaurantId}", reviewHandler.NewForm)
			r.Get("/edit-review/{reviewId}", reviewHandler.EditForm)

			// レビュー書き込みは専用レート制限を追加
			writeLimit := deps.RateLimiter.ReviewWriteMiddleware()
			r.With(writeLimit).Post("/add-review/{restaurantId}", reviewHandler.Create)
			r.With(writeLimit).Post("/edit-review/{reviewId}", reviewHandler.Update)
			r.With(writeLimit).Post("/reviews/{reviewId}/delete", reviewHandler.Delete)
		})
	})

	return r
}

// healthCheck はヘルスチェックエンドポイント。
// GET /health
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
