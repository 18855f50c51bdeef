package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// キャッシュミス
var ErrCacheMiss = errors.New("cache miss")

// NewClient はRedisクライアントを作ってPINGで疎通確認する。
func NewClient(ctx context.Context, addr string, db int) (*rd.Client, error) {
	client := rd.NewClient(&rd.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// キー設計は1ファイルに集約する。
func settingKey(key string) string {
	return "solar:setting:" + key
}

func webhookOnceKey(gateway string, reference string) string {
	return "solar:webhook:" + gateway + ":" + reference
}

// SettingCache は設定のキー別キャッシュ。
// 更新時は該当キーだけ無効化する（全flushはしない）。
type SettingCache struct {
	rdb *rd.Client
	ttl time.Duration
}

func NewSettingCache(rdb *rd.Client, ttl time.Duration) *SettingCache {
	return &SettingCache{rdb: rdb, ttl: ttl}
}

func (c *SettingCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.Get(ctx, settingKey(key)).Result()
	if errors.Is(err, rd.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (c *SettingCache) Set(ctx context.Context, key string, value string) error {
	return c.rdb.Set(ctx, settingKey(key), value, c.ttl).Err()
}

// Invalidate は該当キーだけ消す。
func (c *SettingCache) Invalidate(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, settingKey(key)).Err()
}

// WebhookGuard はWebhookリプレイの一回限りガード。
// SET NX が取れた配信だけ処理し、再送は何もせず200で返す。
type WebhookGuard struct {
	rdb *rd.Client
	ttl time.Duration
}

func NewWebhookGuard(rdb *rd.Client, ttl time.Duration) *WebhookGuard {
	return &WebhookGuard{rdb: rdb, ttl: ttl}
}

// FirstDelivery は初回配信のときだけtrue。
func (g *WebhookGuard) FirstDelivery(ctx context.Context, gateway string, reference string) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, webhookOnceKey(gateway, reference), "1", g.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Release は取得済みガードを解放する。消し込みトランザクションが
// 失敗したときに呼び、ゲートウェイの再送をもう一度通す。
func (g *WebhookGuard) Release(ctx context.Context, gateway string, reference string) error {
	return g.rdb.Del(ctx, webhookOnceKey(gateway, reference)).Err()
}
