// Package review はレビューの取得・作成・更新・削除を提供する。
// レビューデータは外部REST APIに永続化されており、このパッケージは
// そのクライアントと、送信前のバリデーション・表示用の統計計算を持つ。
package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/kohei/umami/internal/metrics"
	"github.com/kohei/umami/internal/model"
)

// CreateRequest はPOST /reviewsのリクエストボディ。
// レストラン名と画像は作成時点のスナップショットとして送信する。
type CreateRequest struct {
	RestaurantID    string `json:"restaurantId"`
	RestaurantName  string `json:"restaurantName"`
	RestaurantImage string `json:"restaurantImage"`
	UserID          string `json:"userId"`
	UserName        string `json:"userName"`
	Rating          int    `json:"rating"`
	Comment         string `json:"comment"`
}

// UpdateRequest はPUT /reviews/{reviewId}のリクエストボディ。
// 所有権の最終判断はバックエンドが行うため、userIdをそのまま渡す。
type UpdateRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	UserID  string `json:"userId"`
}

// Client はレビューAPIのRESTクライアント。
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, baseURL string, logger *slog.Logger, collector metrics.MetricsCollector) *Client {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
		metrics:    collector,
	}
}

// ListByRestaurant は指定レストランのレビュー一覧を取得する。
// GET /reviews/{restaurantId}
// バックエンドが返した順序をそのまま保持する。
func (c *Client) ListByRestaurant(ctx context.Context, restaurantID string) ([]model.Review, error) {
	reqURL := c.baseURL + "/reviews/" + url.PathEscape(restaurantID)
	return c.list(ctx, "reviews_by_restaurant", reqURL)
}

// ListByUser は指定ユーザーが所有するレビュー一覧を取得する。
// GET /user-reviews/{userId}
func (c *Client) ListByUser(ctx context.Context, userID string) ([]model.Review, error) {
	reqURL := c.baseURL + "/user-reviews/" + url.PathEscape(userID)
	return c.list(ctx, "reviews_by_user", reqURL)
}

// Create はレビューを作成する。
// POST /reviews
func (c *Client) Create(ctx context.Context, req CreateRequest) (*model.Review, error) {
	created := &model.Review{}
	err := c.write(ctx, "review_create", http.MethodPost, c.baseURL+"/reviews", req, created)
	c.metrics.RecordReviewSubmission("create", err == nil)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update は既存レビューの評価とコメントを更新する。
// PUT /reviews/{reviewId}
func (c *Client) Update(ctx context.Context, reviewID string, req UpdateRequest) (*model.Review, error) {
	updated := &model.Review{}
	reqURL := c.baseURL + "/reviews/" + url.PathEscape(reviewID)
	err := c.write(ctx, "review_update", http.MethodPut, reqURL, req, updated)
	c.metrics.RecordReviewSubmission("update", err == nil)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete はレビューを削除する。
// DELETE /reviews/{reviewId}?userId=<id>
func (c *Client) Delete(ctx context.Context, reviewID, userID string) error {
	reqURL := c.baseURL + "/reviews/" + url.PathEscape(reviewID) + "?userId=" + url.QueryEscape(userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, nil)
	if err != nil {
		c.metrics.RecordReviewSubmission("delete", false)
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordBackendLatency("review_delete", time.Since(start))
	if err != nil {
		c.metrics.RecordBackendRequest("review_delete", 0)
		c.metrics.RecordReviewSubmission("delete", false)
		c.logger.Error("review delete request failed",
			slog.String("review_id", reviewID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("review delete failed: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordBackendRequest("review_delete", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordReviewSubmission("delete", false)
		c.logger.Warn("review delete returned non-OK status",
			slog.String("review_id", reviewID),
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("review API returned status %d", resp.StatusCode)
	}

	c.metrics.RecordReviewSubmission("delete", true)
	return nil
}

// list はレビュー一覧取得のGETリクエストを実行する。
func (c *Client) list(ctx context.Context, endpoint, reqURL string) ([]model.Review, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordBackendLatency(endpoint, time.Since(start))
	if err != nil {
		c.metrics.RecordBackendRequest(endpoint, 0)
		c.logger.Error("review API request failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("review request failed: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordBackendRequest(endpoint, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read review response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("review API returned status %d", resp.StatusCode)
	}

	var reviews []model.Review
	if err := json.Unmarshal(body, &reviews); err != nil {
		return nil, fmt.Errorf("failed to parse review list response: %w", err)
	}

	if reviews == nil {
		reviews = []model.Review{}
	}
	return reviews, nil
}

// write はレビューの作成・更新リクエストを実行し、レスポンスをoutにデコードする。
func (c *Client) write(ctx context.Context, endpoint, method, reqURL string, payload any, out *model.Review) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordBackendLatency(endpoint, time.Since(start))
	if err != nil {
		c.metrics.RecordBackendRequest(endpoint, 0)
		c.logger.Error("review write request failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("review request failed: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordBackendRequest(endpoint, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read review response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("review write returned non-OK status",
			slog.String("endpoint", endpoint),
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("review API returned status %d", resp.StatusCode)
	}

	if len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			// 作成・更新自体は成功している。レスポンス形式の差異は致命ではない。
			c.logger.Warn("failed to parse review write response",
				slog.String("endpoint", endpoint),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}
