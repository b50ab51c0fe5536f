// Package refresh はカタログキャッシュのバックグラウンド更新処理を提供する。
// 定期的にカタログAPIから検索結果を取得し直し、キャッシュのTTL切れによる
// レイテンシスパイクを抑える。
package refresh

import (
	"context"
	"log/slog"
	"time"
)

// CatalogRefresher はカタログキャッシュの更新インターフェース。
// catalog.Serviceの部分集合として定義する。
type CatalogRefresher interface {
	Refresh(ctx context.Context, location string) error
}

// Scheduler はカタログキャッシュ更新のスケジューリングを行う。
type Scheduler struct {
	catalog  CatalogRefresher
	logger   *slog.Logger
	location string
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
func NewScheduler(catalog CatalogRefresher, logger *slog.Logger, location string) *Scheduler {
	return &Scheduler{
		catalog:  catalog,
		logger:   logger,
		location: location,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("カタログ更新スケジューラを開始しました",
		slog.Duration("interval", interval),
		slog.String("location", s.location),
	)

	// 起動直後に1回実行
	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("カタログ更新スケジューラを停止しました")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce はカタログキャッシュを1回更新する。
// 失敗しても次のティックで再試行するだけなのでエラーは返さない。
func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()

	if err := s.catalog.Refresh(ctx, s.location); err != nil {
		s.logger.Error("カタログキャッシュの更新に失敗しました",
			slog.String("location", s.location),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Info("カタログキャッシュの更新が完了しました",
		slog.String("location", s.location),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
}
