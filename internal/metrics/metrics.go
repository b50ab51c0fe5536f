// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// バックエンドAPIクライアントとハンドラー層から利用する。
type MetricsCollector interface {
	RecordPageView(page string)
	RecordBackendRequest(endpoint string, statusCode int)
	RecordBackendLatency(endpoint string, duration time.Duration)
	RecordReviewSubmission(operation string, success bool)
	RecordCacheHit()
	RecordCacheMiss()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	pageViews         *prometheus.CounterVec
	backendRequests   *prometheus.CounterVec
	backendLatency    *prometheus.HistogramVec
	reviewSubmissions *prometheus.CounterVec
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		pageViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "umami_page_views_total",
			Help: "ページ表示の合計数（ページ別）",
		}, []string{"page"}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "umami_backend_requests_total",
			Help: "バックエンドREST APIへのリクエスト数（エンドポイント・ステータス別）",
		}, []string{"endpoint", "status_code"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "umami_backend_latency_seconds",
			Help:    "バックエンドREST APIのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		reviewSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "umami_review_submissions_total",
			Help: "レビューの作成・更新・削除リクエスト数（操作・結果別）",
		}, []string{"operation", "outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "umami_catalog_cache_hits_total",
			Help: "カタログキャッシュのヒット数",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "umami_catalog_cache_misses_total",
			Help: "カタログキャッシュのミス数",
		}),
	}

	reg.MustRegister(
		c.pageViews,
		c.backendRequests,
		c.backendLatency,
		c.reviewSubmissions,
		c.cacheHits,
		c.cacheMisses,
	)

	return c
}

// RecordPageView はページ表示を記録する。
func (c *Collector) RecordPageView(page string) {
	c.pageViews.WithLabelValues(page).Inc()
}

// RecordBackendRequest はバックエンドAPIリクエストの結果を記録する。
func (c *Collector) RecordBackendRequest(endpoint string, statusCode int) {
	c.backendRequests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
}

// RecordBackendLatency はバックエンドAPIのレイテンシを記録する。
func (c *Collector) RecordBackendLatency(endpoint string, duration time.Duration) {
	c.backendLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordReviewSubmission はレビューの書き込み操作の結果を記録する。
func (c *Collector) RecordReviewSubmission(operation string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.reviewSubmissions.WithLabelValues(operation, outcome).Inc()
}

// RecordCacheHit はカタログキャッシュのヒットを記録する。
func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}

// RecordCacheMiss はカタログキャッシュのミスを記録する。
func (c *Collector) RecordCacheMiss() {
	c.cacheMisses.Inc()
}

// Nop は何も記録しないMetricsCollector。テストおよびワーカーで使用する。
type Nop struct{}

func (Nop) RecordPageView(page string)                                     {}
func (Nop) RecordBackendRequest(endpoint string, statusCode int)           {}
func (Nop) RecordBackendLatency(endpoint string, duration time.Duration)   {}
func (Nop) RecordReviewSubmission(operation string, success bool)          {}
func (Nop) RecordCacheHit()                                                {}
func (Nop) RecordCacheMiss()                                               {}

// compile-time interface check
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
