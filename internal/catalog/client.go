// Package catalog は外部カタログAPIからのレストラン情報取得を提供する。
// カタログはアプリケーションから見て読み取り専用の外部サービスであり、
// このパッケージはRESTクライアントとオプションの読み取りキャッシュを持つ。
package catalog

import (
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

// searchResponse はGET /restaurantsのレスポンス。
type searchResponse struct {
	Businesses []model.Restaurant `json:"businesses"`
}

// Client はカタログAPIのRESTクライアント。
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
}

// NewClient はClientの新しいインスタンスを生成する。
// baseURLは末尾スラッシュなしのベースURL（例: "http://localhost:5000/api"）。
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

// Search は指定ロケーションのレストラン一覧を取得する。
// GET /restaurants?location=<location>
// レスポンスのbusinessesが空の場合は空スライスを返す。
func (c *Client) Search(ctx context.Context, location string) ([]model.Restaurant, error) {
	reqURL := c.baseURL + "/restaurants?location=" + url.QueryEscape(location)

	body, _, err := c.get(ctx, "restaurants_search", reqURL)
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse restaurant list response: %w", err)
	}

	if result.Businesses == nil {
		return []model.Restaurant{}, nil
	}
	return result.Businesses, nil
}

// Get は指定IDのレストランを取得する。
// GET /restaurants/{id}
// 404の場合はnilを返す（エラーにはしない）。
func (c *Client) Get(ctx context.Context, id string) (*model.Restaurant, error) {
	reqURL := c.baseURL + "/restaurants/" + url.PathEscape(id)

	body, status, err := c.get(ctx, "restaurant_get", reqURL)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	var restaurant model.Restaurant
	if err := json.Unmarshal(body, &restaurant); err != nil {
		return nil, fmt.Errorf("failed to parse restaurant response: %w", err)
	}

	return &restaurant, nil
}

// get はGETリクエストを実行し、レスポンスボディを返す。
// 2xx以外のステータスはエラーとして返す（ステータスコードも合わせて返す）。
func (c *Client) get(ctx context.Context, endpoint, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordBackendLatency(endpoint, time.Since(start))
	if err != nil {
		c.metrics.RecordBackendRequest(endpoint, 0)
		c.logger.Error("catalog API request failed",
			slog.String("endpoint", endpoint),
			slog.String("url", reqURL),
			slog.String("error", err.Error()),
		)
		return nil, 0, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordBackendRequest(endpoint, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read catalog response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("catalog API returned non-OK status",
			slog.String("endpoint", endpoint),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, resp.StatusCode, fmt.Errorf("catalog API returned status %d", resp.StatusCode)
	}

	return body, resp.StatusCode, nil
}
