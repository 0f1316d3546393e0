package cache

import (
	"errors"
	"fmt"
	"log"
	"time"

	"tareas-api/internal/models"
)

const taskListTTL = 5 * time.Minute

// TaskListCache keeps each user's visible task list in Redis. Failures
// are absorbed: a broken cache degrades to database reads, it never
// fails a request.
type TaskListCache struct {
	redis   *RedisCache
	breaker *CircuitBreaker
}

func NewTaskListCache(redis *RedisCache) *TaskListCache {
	return &TaskListCache{
		redis:   redis,
		breaker: NewCircuitBreaker(5, 30*time.Second),
	}
}

func taskListKey(userID uint) string {
	return fmt.Sprintf("tasklist:user:%d", userID)
}

func (c *TaskListCache) GetList(userID uint) ([]models.Task, bool) {
	if !c.breaker.Ready() {
		return nil, false
	}

	var tasks []models.Task
	err := c.redis.Get(taskListKey(userID), &tasks)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.breaker.RecordFailure()
		}
		return nil, false
	}
	c.breaker.RecordSuccess()
	return tasks, true
}

func (c *TaskListCache) SetList(userID uint, tasks []models.Task) {
	if !c.breaker.Ready() {
		return
	}
	if err := c.redis.Set(taskListKey(userID), tasks, taskListTTL); err != nil {
		c.breaker.RecordFailure()
		log.Printf("task list cache set failed for user %d: %v", userID, err)
		return
	}
	c.breaker.RecordSuccess()
}

func (c *TaskListCache) Invalidate(userIDs ...uint) {
	if len(userIDs) == 0 || !c.breaker.Ready() {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, taskListKey(id))
	}
	if err := c.redis.Delete(keys...); err != nil {
		c.breaker.RecordFailure()
		log.Printf("task list cache invalidation failed: %v", err)
		return
	}
	c.breaker.RecordSuccess()
}
