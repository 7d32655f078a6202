package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Service serves daily summaries with a redis read-through cache. Concurrent
// requests for the same shop/day are collapsed via singleflight so a cold key
// triggers at most one database aggregate.
type Service struct {
	repo   RepositoryPort
	cache  *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

func NewService(repo RepositoryPort, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Daily returns the summary for shopID on the given day (local to the stored
// timestamps). date must be in 2006-01-02 form.
func (s *Service) Daily(ctx context.Context, shopID int64, date string) (DailySummary, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return DailySummary{}, ErrInvalidPeriod
	}

	key := fmt.Sprintf("report:daily:%d:%s", shopID, date)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var cached DailySummary
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		summary, err := s.repo.DailySummary(ctx, shopID, day, day.AddDate(0, 0, 1))
		if err != nil {
			return DailySummary{}, err
		}
		summary.Date = date
		if s.cache != nil {
			if raw, err := json.Marshal(summary); err == nil {
				if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
					s.logger.Warn("report cache write failed", "key", key, "error", err)
				}
			}
		}
		return summary, nil
	})
	if err != nil {
		return DailySummary{}, err
	}
	return v.(DailySummary), nil
}

// Invalidate drops the cached summary for a shop/day, used after manual
// corrections to historical transactions.
func (s *Service) Invalidate(ctx context.Context, shopID int64, date string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, fmt.Sprintf("report:daily:%d:%s", shopID, date)).Err()
}
