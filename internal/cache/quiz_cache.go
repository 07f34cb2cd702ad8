package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/classpulse/quiz-service/internal/models"
	"github.com/redis/go-redis/v9"
)

// QuizCache caches quiz definitions. Quiz content is immutable after
// creation, so cached entries never go stale; the TTL only bounds memory.
type QuizCache interface {
	Get(ctx context.Context, quizID uint) (*models.Quiz, bool)
	Set(ctx context.Context, quiz *models.Quiz)
}

type redisQuizCache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

func NewRedisQuizCache(client *redis.Client, logger *slog.Logger, ttl time.Duration) QuizCache {
	return &redisQuizCache{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

func quizKey(quizID uint) string {
	return fmt.Sprintf("quiz:def:%d", quizID)
}

// Get returns the cached quiz when present. Cache errors are logged and
// reported as misses; the caller falls through to the store.
func (c *redisQuizCache) Get(ctx context.Context, quizID uint) (*models.Quiz, bool) {
	data, err := c.client.Get(ctx, quizKey(quizID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("quiz cache read failed", "quiz_id", quizID, "error", err)
		}
		return nil, false
	}

	var quiz models.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		c.logger.Warn("quiz cache entry corrupt", "quiz_id", quizID, "error", err)
		return nil, false
	}
	return &quiz, true
}

func (c *redisQuizCache) Set(ctx context.Context, quiz *models.Quiz) {
	data, err := json.Marshal(quiz)
	if err != nil {
		c.logger.Warn("quiz cache marshal failed", "quiz_id", quiz.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, quizKey(quiz.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("quiz cache write failed", "quiz_id", quiz.ID, "error", err)
	}
}

// NoopQuizCache satisfies QuizCache without a backing store; used when Redis
// is not configured and in tests.
type NoopQuizCache struct{}

func (NoopQuizCache) Get(ctx context.Context, quizID uint) (*models.Quiz, bool) { return nil, false }
func (NoopQuizCache) Set(ctx context.Context, quiz *models.Quiz)                {}
