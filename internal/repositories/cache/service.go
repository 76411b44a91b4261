package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vendora/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// CacheService wraps redis for the read path. The ledger and escrow services
// only ever read through it; every mutation invalidates the affected keys.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Balance caching

func balanceKey(userID uint) string {
	return fmt.Sprintf("points:balance:%d", userID)
}

func (s *CacheService) GetBalance(ctx context.Context, userID uint) (int64, bool, error) {
	var balance int64
	found, err := s.Get(ctx, balanceKey(userID), &balance)
	return balance, found, err
}

func (s *CacheService) SetBalance(ctx context.Context, userID uint, balance int64) error {
	return s.Set(ctx, balanceKey(userID), balance)
}

func (s *CacheService) InvalidateBalance(ctx context.Context, userID uint) error {
	return s.Delete(ctx, balanceKey(userID))
}

// Merchant caching

func merchantKey(id uint) string {
	return fmt.Sprintf("merchant:id:%d", id)
}

func (s *CacheService) GetMerchant(ctx context.Context, id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	found, err := s.Get(ctx, merchantKey(id), &merchant)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, redis.Nil
	}
	return &merchant, nil
}

func (s *CacheService) SetMerchant(ctx context.Context, merchant *models.Merchant) error {
	if merchant == nil {
		return fmt.Errorf("cannot cache nil merchant")
	}
	return s.Set(ctx, merchantKey(merchant.ID), merchant)
}

func (s *CacheService) InvalidateMerchant(ctx context.Context, id uint) error {
	return s.Delete(ctx, merchantKey(id))
}

// Maintenance

func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}
