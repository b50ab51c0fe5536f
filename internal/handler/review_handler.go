package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kohei/umami/internal/metrics"
	"github.com/kohei/umami/internal/middleware"
	"github.com/kohei/umami/internal/model"
	"github.com/kohei/umami/internal/review"
	"github.com/kohei/umami/internal/security"
	"github.com/kohei/umami/internal/view"
)

// ReviewServiceInterface はレビューハンドラーが必要とするレビューAPI機能。
type ReviewServiceInterface interface {
	ListByUser(ctx context.Context, userID string) ([]model.Review, error)
	Create(ctx context.Context, req review.CreateRequest) (*model.Review, error)
	Update(ctx context.Context, reviewID string, req review.UpdateRequest) (*model.Review, error)
	Delete(ctx context.Context, reviewID, userID string) error
}

// ReviewHandler はレビューの作成・編集・削除とマイレビューページのハンドラー。
// すべてのエンドポイントは認証必須（RequireAuthの内側に配置すること）。
type ReviewHandler struct {
	reviews   ReviewServiceInterface
	sanitizer security.CommentSanitizerService
	renderer  *view.Renderer
	states    *StateStore
	metrics   metrics.MetricsCollector
}

// NewReviewHandler はReviewHandlerを生成する。
func NewReviewHandler(
	reviews ReviewServiceInterface,
	sanitizer security.CommentSanitizerService,
	renderer *view.Renderer,
	states *StateStore,
	collector metrics.MetricsCollector,
) *ReviewHandler {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &ReviewHandler{
		reviews:   reviews,
		sanitizer: sanitizer,
		renderer:  renderer,
		states:    states,
		metrics:   collector,
	}
}

// Dashboard はマイレビューページを表示する。
// GET /dashboard
// 表示のたびに最新の一覧を取得し、セッションにも退避して
// 編集フォームのプリフィルを再取得なしで行えるようにする。
func (h *ReviewHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordPageView("dashboard")

	user := middleware.UserFromContext(r.Context())
	session := middleware.SessionFromContext(r.Context())

	reviews, err := h.reviews.ListByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to fetch user reviews",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		reviews = []model.Review{}
	}

	if session != nil {
		state := h.states.Load(session)
		state.Reviews = reviews
		h.states.Save(r.Context(), session, state)
	}

	h.renderer.Render(w, http.StatusOK, "dashboard", view.DashboardData{
		Base:    newBase(r, "My Reviews", h.states),
		Reviews: reviews,
	})
}

// NewForm はレビュー新規作成フォームを表示する。
// GET /add-review/{restaurantId}
// レストラン名と画像は詳細ページで退避したナビゲーション状態から引き継ぐ。
func (h *ReviewHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordPageView("add_review")

	restaurantID := chi.URLParam(r, "restaurantId")
	name, _ := h.editorRestaurant(r, restaurantID)

	h.renderer.Render(w, http.StatusOK, "review_form", view.ReviewFormData{
		Base:           newBase(r, "Write a Review", h.states),
		Mode:           "create",
		ActionPath:     "/add-review/" + restaurantID,
		RestaurantName: name,
		Rating:         review.RatingDefault,
	})
}

// Create はレビューを作成する。
// POST /add-review/{restaurantId}
// コメントが空白のみの場合はバックエンドを呼ばずにフォームを再表示する。
// 成功時はレストラン詳細ページへリダイレクトする。
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	session := middleware.SessionFromContext(r.Context())
	restaurantID := chi.URLParam(r, "restaurantId")

	rating, comment := parseReviewForm(r)
	name, image := h.editorRestaurant(r, restaurantID)

	renderForm := func(errorMessage string) {
		h.renderer.Render(w, http.StatusUnprocessableEntity, "review_form", view.ReviewFormData{
			Base:           newBase(r, "Write a Review", h.states),
			Mode:           "create",
			ActionPath:     "/add-review/" + restaurantID,
			RestaurantName: name,
			Rating:         rating,
			Comment:        comment,
			ErrorMessage:   errorMessage,
		})
	}

	if err := review.ValidateComment(comment); err != nil {
		renderForm(errorMessageFor(err))
		return
	}
	if err := review.ValidateRating(rating); err != nil {
		renderForm(errorMessageFor(err))
		return
	}

	// レストラン名はスナップショットとして保存されるため、
	// ナビゲーション状態が失われている場合はプレースホルダを使う
	if name == "" {
		name = "Restaurant"
	}

	req := review.CreateRequest{
		RestaurantID:    restaurantID,
		RestaurantName:  name,
		RestaurantImage: image,
		UserID:          user.ID,
		UserName:        user.DisplayName(),
		Rating:          rating,
		Comment:         h.sanitizer.Sanitize(comment),
	}

	if _, err := h.reviews.Create(r.Context(), req); err != nil {
		slog.Error("failed to create review",
			slog.String("restaurant_id", restaurantID),
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		renderForm("Failed to submit review. Please try again.")
		return
	}

	if session != nil {
		state := h.states.Load(session)
		state.Flash = "Review submitted successfully!"
		state.Editor = nil
		h.states.Save(r.Context(), session, state)
	}

	http.Redirect(w, r, "/restaurant/"+restaurantID, http.StatusSeeOther)
}

// EditForm はレビュー編集フォームを表示する。
// GET /edit-review/{reviewId}
// 編集対象はマイレビューページで退避した一覧から探し、
// 見つからない場合のみバックエンドに問い合わせる。
func (h *ReviewHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordPageView("edit_review")

	user := middleware.UserFromContext(r.Context())
	reviewID := chi.URLParam(r, "reviewId")

	target := h.findOwnedReview(r, user, reviewID)
	if target == nil {
		renderNotFound(w, r, h.renderer, h.states, "Review not found")
		return
	}

	h.renderer.Render(w, http.StatusOK, "review_form", view.ReviewFormData{
		Base:           newBase(r, "Edit Your Review", h.states),
		Mode:           "edit",
		ActionPath:     "/edit-review/" + reviewID,
		RestaurantName: target.RestaurantName,
		Rating:         target.Rating,
		Comment:        target.Comment,
	})
}

// Update はレビューの評価とコメントを更新する。
// POST /edit-review/{reviewId}
// 成功時はマイレビューページへリダイレクトする。
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	session := middleware.SessionFromContext(r.Context())
	reviewID := chi.URLParam(r, "reviewId")

	rating, comment := parseReviewForm(r)

	renderForm := func(errorMessage string) {
		h.renderer.Render(w, http.StatusUnprocessableEntity, "review_form", view.ReviewFormData{
			Base:         newBase(r, "Edit Your Review", h.states),
			Mode:         "edit",
			ActionPath:   "/edit-review/" + reviewID,
			Rating:       rating,
			Comment:      comment,
			ErrorMessage: errorMessage,
		})
	}

	if err := review.ValidateComment(comment); err != nil {
		renderForm(errorMessageFor(err))
		return
	}
	if err := review.ValidateRating(rating); err != nil {
		renderForm(errorMessageFor(err))
		return
	}

	req := review.UpdateRequest{
		Rating:  rating,
		Comment: h.sanitizer.Sanitize(comment),
		UserID:  user.ID,
	}

	if _, err := h.reviews.Update(r.Context(), reviewID, req); err != nil {
		slog.Error("failed to update review",
			slog.String("review_id", reviewID),
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		renderForm("Failed to submit review. Please try again.")
		return
	}

	if session != nil {
		state := h.states.Load(session)
		state.Flash = "Review updated successfully!"
		state.Editor = nil
		// スタッシュ上のレビューも更新しておく（次のダッシュボード表示前の整合性）
		for i := range state.Reviews {
			if state.Reviews[i].ID == reviewID {
				state.Reviews[i].Rating = req.Rating
				state.Reviews[i].Comment = req.Comment
				break
			}
		}
		h.states.Save(r.Context(), session, state)
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Delete はレビューを削除する。
// POST /reviews/{reviewId}/delete
// 成功時はセッションに退避した一覧からも該当IDのレビューを取り除いて
// スタッシュの整合を保ち、マイレビューページへリダイレクトする。
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	session := middleware.SessionFromContext(r.Context())
	reviewID := chi.URLParam(r, "reviewId")

	if err := h.reviews.Delete(r.Context(), reviewID, user.ID); err != nil {
		slog.Error("failed to delete review",
			slog.String("review_id", reviewID),
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		if session != nil {
			h.states.SetFlash(r.Context(), session, "Failed to delete review")
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	if session != nil {
		state := h.states.Load(session)
		state.Reviews = removeReview(state.Reviews, reviewID)
		state.Flash = "Review deleted successfully!"
		h.states.Save(r.Context(), session, state)
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// editorRestaurant はナビゲーション状態からレストラン名と画像を取り出す。
// 退避されたスナップショットが別のレストランのもの（別タブで他の詳細ページを
// 開いた場合など）は引き継がず、空を返す。
func (h *ReviewHandler) editorRestaurant(r *http.Request, restaurantID string) (name, image string) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		return "", ""
	}
	state := h.states.Load(session)
	if state.Editor == nil || state.Editor.RestaurantID != restaurantID {
		return "", ""
	}
	return state.Editor.RestaurantName, state.Editor.RestaurantImage
}

// findOwnedReview は編集対象のレビューを特定する。
// セッションのスタッシュを優先し、なければユーザーのレビュー一覧を取得して探す。
// 本人のレビューでない場合はnilを返す。
func (h *ReviewHandler) findOwnedReview(r *http.Request, user *model.User, reviewID string) *model.Review {
	session := middleware.SessionFromContext(r.Context())
	if session != nil {
		state := h.states.Load(session)
		for i := range state.Reviews {
			if state.Reviews[i].ID == reviewID && state.Reviews[i].UserID == user.ID {
				return &state.Reviews[i]
			}
		}
	}

	reviews, err := h.reviews.ListByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to fetch user reviews for edit",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	for i := range reviews {
		if reviews[i].ID == reviewID {
			return &reviews[i]
		}
	}
	return nil
}

// parseReviewForm はレビューフォームの評価とコメントを読み取る。
func parseReviewForm(r *http.Request) (rating int, comment string) {
	rating, err := strconv.Atoi(r.PostFormValue("rating"))
	if err != nil {
		rating = 0
	}
	return rating, r.PostFormValue("comment")
}

// removeReview は一覧から指定IDのレビューを取り除く。
func removeReview(reviews []model.Review, reviewID string) []model.Review {
	remaining := make([]model.Review, 0, len(reviews))
	for _, rv := range reviews {
		if rv.ID != reviewID {
			remaining = append(remaining, rv)
		}
	}
	return remaining
}

// errorMessageFor はバリデーションエラーからユーザー向けメッセージを取り出す。
func errorMessageFor(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
