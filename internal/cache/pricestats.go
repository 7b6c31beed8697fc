package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/aclauto/internal/models"
)

// Connect opens a Redis client and verifies it with a ping. An empty addr
// means caching is disabled and nil is returned without error.
func Connect(addr, password string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

const (
	statsAllKey    = "price-stats:all"
	statsModelKey  = "price-stats:model:%s"
	notFoundMarker = "notfound"
)

// PriceStatsCache is a read-through cache over the CarPriceStats table. Any
// Redis failure degrades to a plain DB read; a nil client disables caching
// entirely.
type PriceStatsCache struct {
	db    *gorm.DB
	redis *redis.Client
	ttl   time.Duration
}

// NewPriceStatsCache constructs a PriceStatsCache.
func NewPriceStatsCache(db *gorm.DB, rdb *redis.Client) *PriceStatsCache {
	return &PriceStatsCache{
		db:    db,
		redis: rdb,
		ttl:   5 * time.Minute,
	}
}

// GetAll returns every market aggregate, cache first.
func (c *PriceStatsCache) GetAll(ctx context.Context) ([]models.CarPriceStats, error) {
	if c.redis != nil {
		data, err := c.redis.Get(ctx, statsAllKey).Bytes()
		switch {
		case err == nil:
			var stats []models.CarPriceStats
			if jsonErr := json.Unmarshal(data, &stats); jsonErr == nil {
				return stats, nil
			}
			log.Printf("[Cache] Corrupt price-stats entry, falling back to DB")
		case err == redis.Nil:
		default:
			log.Printf("[Cache] Redis error (continuing with DB): %v", err)
		}
	}

	var stats []models.CarPriceStats
	if err := c.db.Order("car_model asc").Find(&stats).Error; err != nil {
		return nil, err
	}

	if c.redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := c.redis.Set(ctx, statsAllKey, data, c.ttl).Err(); err != nil {
				log.Printf("[Cache] Failed to cache price stats: %v", err)
			}
		}
	}
	return stats, nil
}

// GetByModel returns the aggregate for one car model, with negative caching
// so repeated lookups for unknown models skip the DB.
func (c *PriceStatsCache) GetByModel(ctx context.Context, carModel string) (*models.CarPriceStats, error) {
	key := fmt.Sprintf(statsModelKey, carModel)

	if c.redis != nil {
		data, err := c.redis.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if string(data) == notFoundMarker {
				return nil, gorm.ErrRecordNotFound
			}
			var stat models.CarPriceStats
			if jsonErr := json.Unmarshal(data, &stat); jsonErr == nil {
				return &stat, nil
			}
		case err == redis.Nil:
		default:
			log.Printf("[Cache] Redis error (continuing with DB): %v", err)
		}
	}

	var stat models.CarPriceStats
	if err := c.db.First(&stat, "car_model = ?", carModel).Error; err != nil {
		if err == gorm.ErrRecordNotFound && c.redis != nil {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, time.Minute).Err(); setErr != nil {
				log.Printf("[Cache] Failed to cache notfound: %v", setErr)
			}
		}
		return nil, err
	}

	if c.redis != nil {
		if data, err := json.Marshal(&stat); err == nil {
			if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
				log.Printf("[Cache] Failed to cache price stats for %s: %v", carModel, err)
			}
		}
	}
	return &stat, nil
}

// Invalidate drops cached entries after an upsert from the scraper feed.
func (c *PriceStatsCache) Invalidate(ctx context.Context, carModel string) {
	if c.redis == nil {
		return
	}
	keys := []string{statsAllKey, fmt.Sprintf(statsModelKey, carModel)}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[Cache] Failed to invalidate price stats: %v", err)
	}
}
