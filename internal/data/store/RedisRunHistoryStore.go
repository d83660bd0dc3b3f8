package store

import (
	"context"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/data/redisStore"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

// RedisRunHistoryStore keeps, per document, the list of report paths
// produced over time. One redis list per document key.
type RedisRunHistoryStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisRunHistoryStore(ctx context.Context) *RedisRunHistoryStore {
	backing := redisStore.GetRedisStore(ctx, config.RedisRunHistoryStore)
	if backing == nil {
		return nil
	}
	return &RedisRunHistoryStore{
		store:  backing,
		logger: logger_i.NewLogger("RunHistoryStore"),
	}
}

func (s *RedisRunHistoryStore) AppendRun(ctx context.Context, documentKey string, reportPath string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "document", documentKey)
	if err := s.store.ListPush(ctx, documentKey, reportPath); err != nil {
		log.Error("error saving run history", "error:", err)
		return err
	}
	// refresh the TTL so active documents keep their trail
	if err := s.store.ListExpire(ctx, documentKey, config.RedisRunHistoryStoreTTL); err != nil {
		log.Warn("error setting run history TTL", "error:", err)
	}
	log.Debug("Saved run history entry")
	return nil
}

func (s *RedisRunHistoryStore) GetRuns(ctx context.Context, documentKey string) ([]string, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "document", documentKey)
	log.Debug("Getting run history")

	res, err := s.store.ListGetAll(ctx, documentKey)
	if err != nil {
		log.Error("Error getting run history", "error:", err)
		return nil, err
	}
	return res, nil
}

func TestRunHistoryStore(store *redisStore.Store) *RedisRunHistoryStore {
	return &RedisRunHistoryStore{
		store:  store,
		logger: logger_i.NewLogger("test run history"),
	}
}
