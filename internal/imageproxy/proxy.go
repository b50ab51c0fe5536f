// Package imageproxy は外部画像URLのプロキシ配信を提供する。
// カタログ・レビュー由来の画像URLをサーバー側で取得して返すことで、
// ブラウザから外部ホストへ直接アクセスさせない。
package imageproxy

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kohei/umami/internal/security"
)

// fetchTimeout は画像取得のタイムアウト。
const fetchTimeout = 10 * time.Second

// cacheMaxAge はプロキシレスポンスのCache-Control max-age（秒）。
const cacheMaxAge = "public, max-age=3600"

// Handler は画像プロキシのHTTPハンドラー。
// GET /img?url=<external-url> で外部画像を取得して返す。
type Handler struct {
	ssrfGuard security.SSRFGuardService
	maxSize   int64
	logger    *slog.Logger
}

// NewHandler はHandlerの新しいインスタンスを生成する。
func NewHandler(ssrfGuard security.SSRFGuardService, maxSize int64, logger *slog.Logger) *Handler {
	return &Handler{
		ssrfGuard: ssrfGuard,
		maxSize:   maxSize,
		logger:    logger,
	}
}

// ServeHTTP は画像プロキシリクエストを処理する。
// 取得失敗・検証失敗・画像以外のContent-Typeはすべて404として扱い、
// 失敗理由を外部に漏らさない。
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		http.NotFound(w, r)
		return
	}

	if err := h.ssrfGuard.ValidateURL(rawURL); err != nil {
		h.logger.Warn("image proxy blocked URL",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		http.NotFound(w, r)
		return
	}

	client := h.ssrfGuard.NewSafeClient(fetchTimeout)

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	req.Header.Set("User-Agent", "RestaurantDB/1.0 Image Proxy")

	resp, err := client.Do(req)
	if err != nil {
		h.logger.Warn("image proxy fetch failed",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		http.NotFound(w, r)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		http.NotFound(w, r)
		return
	}

	contentType := extractMimeType(resp.Header.Get("Content-Type"))
	if !isImageMime(contentType) {
		h.logger.Warn("image proxy rejected non-image content",
			slog.String("url", rawURL),
			slog.String("content_type", contentType),
		)
		http.NotFound(w, r)
		return
	}

	// サイズ超過チェックのため上限+1バイトまで読む
	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxSize+1))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if int64(len(body)) > h.maxSize {
		h.logger.Warn("image proxy rejected oversized image",
			slog.String("url", rawURL),
			slog.Int("size", len(body)),
		)
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", cacheMaxAge)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// extractMimeType はContent-Typeヘッダーからメディアタイプを抽出する。
func extractMimeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	parts := strings.SplitN(contentType, ";", 2)
	return strings.TrimSpace(strings.ToLower(parts[0]))
}

// isImageMime はMIMEタイプが画像かどうかを判定する。
// SVGはスクリプトを含み得るため許可しない。
func isImageMime(mimeType string) bool {
	if mimeType == "" || mimeType == "image/svg+xml" {
		return false
	}
	return strings.HasPrefix(mimeType, "image/")
}
