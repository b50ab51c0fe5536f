package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kohei/umami/internal/model"
)

// Cache はカタログレスポンスの読み取りキャッシュのインターフェース。
// キャッシュ障害は呼び出し元でバックエンド直行にフォールバックするため、
// 取得系はエラーを返さずヒット有無のみを返す。
type Cache interface {
	// GetSearch はロケーション検索結果のキャッシュを取得する。
	GetSearch(ctx context.Context, location string) ([]model.Restaurant, bool)
	// SetSearch はロケーション検索結果をキャッシュに保存する。
	SetSearch(ctx context.Context, location string, restaurants []model.Restaurant)
	// GetRestaurant はレストラン単体のキャッシュを取得する。
	GetRestaurant(ctx context.Context, id string) (*model.Restaurant, bool)
	// SetRestaurant はレストラン単体をキャッシュに保存する。
	SetRestaurant(ctx context.Context, restaurant *model.Restaurant)
}

// RedisCache はRedisを使用したカタログキャッシュ。
// 同時に表示される複数ビューからの重複リクエストをTTL付きで吸収する。
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache はRedisCacheを生成する。
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// searchKey はロケーション検索のキャッシュキーを返す。
func (c *RedisCache) searchKey(location string) string {
	return "catalog:search:" + location
}

// restaurantKey はレストラン単体のキャッシュキーを返す。
func (c *RedisCache) restaurantKey(id string) string {
	return "catalog:restaurant:" + id
}

// GetSearch はロケーション検索結果のキャッシュを取得する。
func (c *RedisCache) GetSearch(ctx context.Context, location string) ([]model.Restaurant, bool) {
	raw, err := c.client.Get(ctx, c.searchKey(location)).Bytes()
	if err != nil {
		return nil, false
	}

	var restaurants []model.Restaurant
	if err := json.Unmarshal(raw, &restaurants); err != nil {
		return nil, false
	}
	return restaurants, true
}

// SetSearch はロケーション検索結果をキャッシュに保存する。
// 保存失敗は無視する（次回リクエストがバックエンドに直行するだけ）。
func (c *RedisCache) SetSearch(ctx context.Context, location string, restaurants []model.Restaurant) {
	raw, err := json.Marshal(restaurants)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.searchKey(location), raw, c.ttl).Err()
}

// GetRestaurant はレストラン単体のキャッシュを取得する。
func (c *RedisCache) GetRestaurant(ctx context.Context, id string) (*model.Restaurant, bool) {
	raw, err := c.client.Get(ctx, c.restaurantKey(id)).Bytes()
	if err != nil {
		return nil, false
	}

	var restaurant model.Restaurant
	if err := json.Unmarshal(raw, &restaurant); err != nil {
		return nil, false
	}
	return &restaurant, true
}

// SetRestaurant はレストラン単体をキャッシュに保存する。
func (c *RedisCache) SetRestaurant(ctx context.Context, restaurant *model.Restaurant) {
	if restaurant == nil {
		return
	}
	raw, err := json.Marshal(restaurant)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.restaurantKey(restaurant.ID), raw, c.ttl).Err()
}

// compile-time interface check
var _ Cache = (*RedisCache)(nil)
