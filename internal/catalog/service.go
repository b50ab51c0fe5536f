package catalog

import (
	"context"
	"log/slog"

	"github.com/kohei/umami/internal/metrics"
	"github.com/kohei/umami/internal/model"
)

// Fetcher はカタログAPIからの取得機能のインターフェース。
// Clientの部分集合として定義する。
type Fetcher interface {
	Search(ctx context.Context, location string) ([]model.Restaurant, error)
	Get(ctx context.Context, id string) (*model.Restaurant, error)
}

// Service はキャッシュ付きのカタログ取得サービス。
// キャッシュが設定されていない場合はバックエンドに直行する。
type Service struct {
	fetcher Fetcher
	cache   Cache // nilの場合はキャッシュ無効
	logger  *slog.Logger
	metrics metrics.MetricsCollector
}

// NewService はServiceを生成する。cacheはnilを許容する。
func NewService(fetcher Fetcher, cache Cache, logger *slog.Logger, collector metrics.MetricsCollector) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
		metrics: collector,
	}
}

// Search は指定ロケーションのレストラン一覧を返す。
// キャッシュヒット時はバックエンドを呼ばない。
// キャッシュミス時はバックエンドから取得し、結果をキャッシュに書き戻す。
func (s *Service) Search(ctx context.Context, location string) ([]model.Restaurant, error) {
	if s.cache != nil {
		if restaurants, ok := s.cache.GetSearch(ctx, location); ok {
			s.metrics.RecordCacheHit()
			return restaurants, nil
		}
		s.metrics.RecordCacheMiss()
	}

	restaurants, err := s.fetcher.Search(ctx, location)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetSearch(ctx, location, restaurants)
	}
	return restaurants, nil
}

// Get は指定IDのレストランを返す。見つからない場合はnilを返す。
// 見つからなかった結果はキャッシュしない。
func (s *Service) Get(ctx context.Context, id string) (*model.Restaurant, error) {
	if s.cache != nil {
		if restaurant, ok := s.cache.GetRestaurant(ctx, id); ok {
			s.metrics.RecordCacheHit()
			return restaurant, nil
		}
		s.metrics.RecordCacheMiss()
	}

	restaurant, err := s.fetcher.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && restaurant != nil {
		s.cache.SetRestaurant(ctx, restaurant)
	}
	return restaurant, nil
}

// Refresh は指定ロケーションの検索結果をバックエンドから取得し直し、
// キャッシュを上書きする。キャッシュ更新ワーカーから呼ばれる。
func (s *Service) Refresh(ctx context.Context, location string) error {
	restaurants, err := s.fetcher.Search(ctx, location)
	if err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.SetSearch(ctx, location, restaurants)
		for i := range restaurants {
			s.cache.SetRestaurant(ctx, &restaurants[i])
		}
	}

	s.logger.Info("catalog cache refreshed",
		slog.String("location", location),
		slog.Int("restaurant_count", len(restaurants)),
	)
	return nil
}
