package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/kohei/umami/internal/metrics"
	"github.com/kohei/umami/internal/middleware"
	"github.com/kohei/umami/internal/model"
	"github.com/kohei/umami/internal/review"
	"github.com/kohei/umami/internal/view"
)

// CatalogServiceInterface はページハンドラーが必要とするカタログサービス。
type CatalogServiceInterface interface {
	Search(ctx context.Context, location string) ([]model.Restaurant, error)
	Get(ctx context.Context, id string) (*model.Restaurant, error)
}

// ReviewListerInterface はレストラン詳細ページが必要とするレビュー取得機能。
type ReviewListerInterface interface {
	ListByRestaurant(ctx context.Context, restaurantID string) ([]model.Review, error)
}

// PageHandler はカタログ一覧・詳細・ログイン・サインアップページのハンドラー。
type PageHandler struct {
	catalog  CatalogServiceInterface
	reviews  ReviewListerInterface
	renderer *view.Renderer
	states   *StateStore
	metrics  metrics.MetricsCollector
	location string
}

// NewPageHandler はPageHandlerを生成する。
// locationはカタログ検索に使う固定ロケーション。
func NewPageHandler(
	catalog CatalogServiceInterface,
	reviews ReviewListerInterface,
	renderer *view.Renderer,
	states *StateStore,
	collector metrics.MetricsCollector,
	location string,
) *PageHandler {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &PageHandler{
		catalog:  catalog,
		reviews:  reviews,
		renderer: renderer,
		states:   states,
		metrics:  collector,
		location: location,
	}
}

// Home はレストラン一覧ページを表示する。
// GET /
// カタログ取得に失敗した場合は空の一覧として表示する（エラーページにしない）。
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordPageView("home")

	restaurants, err := h.catalog.Search(r.Context(), h.location)
	if err != nil {
		slog.Error("failed to fetch restaurants for home page",
			slog.String("location", h.location),
			slog.String("error", err.Error()),
		)
		restaurants = []model.Restaurant{}
	}

	h.renderer.Render(w, http.StatusOK, "home", view.HomeData{
		Base:        newBase(r, "Home", h.states),
		Location:    h.location,
		Restaurants: restaurants,
	})
}

// Detail はレストラン詳細ページを表示する。
// GET /restaurant/{id}
// レストラン情報とレビュー一覧は並行に取得する。
// レストランが見つからない場合は404ページ、レビュー取得の失敗は
// 空のレビュー一覧として表示する。
func (h *PageHandler) Detail(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordPageView("detail")

	id := chi.URLParam(r, "id")

	var (
		wg            sync.WaitGroup
		restaurant    *model.Restaurant
		restaurantErr error
		reviews       []model.Review
		reviewsErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		restaurant, restaurantErr = h.catalog.Get(r.Context(), id)
	}()
	go func() {
		defer wg.Done()
		reviews, reviewsErr = h.reviews.ListByRestaurant(r.Context(), id)
	}()
	wg.Wait()

	if restaurantErr != nil {
		slog.Error("failed to fetch restaurant",
			slog.String("restaurant_id", id),
			slog.String("error", restaurantErr.Error()),
		)
	}
	if restaurantErr != nil || restaurant == nil {
		renderNotFound(w, r, h.renderer, h.states, "Restaurant not found")
		return
	}

	if reviewsErr != nil {
		slog.Error("failed to fetch reviews",
			slog.String("restaurant_id", id),
			slog.String("error", reviewsErr.Error()),
		)
		reviews = []model.Review{}
	}

	mean, hasReviews := review.MeanRating(reviews)

	// Write a Reviewへ遷移したときにレストラン名と画像を引き継げるよう、
	// ナビゲーション状態をセッションに退避する
	session := middleware.SessionFromContext(r.Context())
	if session != nil {
		state := h.states.Load(session)
		state.Editor = &EditorContext{
			RestaurantID:    restaurant.ID,
			RestaurantName:  restaurant.Name,
			RestaurantImage: restaurant.ImageURL,
		}
		h.states.Save(r.Context(), session, state)
	}

	h.renderer.Render(w, http.StatusOK, "detail", view.DetailData{
		Base:       newBase(r, restaurant.Name, h.states),
		Restaurant: restaurant,
		Reviews:    reviews,
		MeanRating: mean,
		HasReviews: hasReviews,
	})
}

// LoginPage はログインページを表示する。
// GET /login
func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordPageView("login")
	h.renderer.Render(w, http.StatusOK, "login", view.AuthPageData{
		Base: newBase(r, "Login", h.states),
	})
}

// SignupPage はサインアップページを表示する。
// GET /signup
func (h *PageHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordPageView("signup")
	h.renderer.Render(w, http.StatusOK, "signup", view.AuthPageData{
		Base: newBase(r, "Sign Up", h.states),
	})
}
