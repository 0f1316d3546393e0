package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"tareas-api/internal/models"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
)

type JobType string

const (
	JobTypeTaskAssigned   JobType = "task_assigned"
	JobTypeTaskUnassigned JobType = "task_unassigned"
)

const notificationQueue = "notifications"

type Job struct {
	ID        string    `json:"id"`
	Type      JobType   `json:"type"`
	TaskID    uint      `json:"task_id"`
	TaskTitle string    `json:"task_title"`
	ActorID   uint      `json:"actor_id"`
	TargetID  uint      `json:"target_id"`
	Email     string    `json:"email"`
	Attempts  int       `json:"attempts"`
	MaxTries  int       `json:"max_tries"`
	CreatedAt time.Time `json:"created_at"`
}

type JobHandler func(ctx context.Context, job *Job) error

// Queue enqueues assignment notifications. It satisfies the task
// service's Notifier so assignment changes fan out off the request path.
type Queue struct {
	client *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) TaskAssigned(task *models.Task, actorID uint, target *models.User) {
	q.enqueue(JobTypeTaskAssigned, task, actorID, target)
}

func (q *Queue) TaskUnassigned(task *models.Task, actorID uint, target *models.User) {
	q.enqueue(JobTypeTaskUnassigned, task, actorID, target)
}

func (q *Queue) enqueue(jobType JobType, task *models.Task, actorID uint, target *models.User) {
	jobID, err := uuid.NewV4()
	if err != nil {
		log.Printf("failed to generate job id: %v", err)
		return
	}
	job := Job{
		ID:        jobID.String(),
		Type:      jobType,
		TaskID:    task.ID,
		TaskTitle: task.Titulo,
		ActorID:   actorID,
		TargetID:  target.ID,
		Email:     target.Email,
		MaxTries:  3,
		CreatedAt: time.Now(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		log.Printf("failed to marshal job %s: %v", job.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := q.client.LPush(ctx, notificationQueue, data).Err(); err != nil {
		// Notifications are best effort; the assignment itself already
		// committed.
		log.Printf("failed to enqueue %s job for task %d: %v", jobType, task.ID, err)
	}
}

// Worker drains the notification queue with a fixed pool of goroutines.
type Worker struct {
	client       *redis.Client
	handlers     map[JobType]JobHandler
	pollInterval time.Duration
	mu           sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

func NewWorker(client *redis.Client, pollInterval time.Duration) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Worker{
		client:       client,
		handlers:     make(map[JobType]JobHandler),
		pollInterval: pollInterval,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (w *Worker) RegisterHandler(jobType JobType, handler JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = handler
}

// RegisterDefaultHandlers wires the log-only delivery handlers. A mail
// or push integration would replace these.
func (w *Worker) RegisterDefaultHandlers() {
	w.RegisterHandler(JobTypeTaskAssigned, func(ctx context.Context, job *Job) error {
		log.Printf("notify %s: assigned to task %d (%q) by user %d", job.Email, job.TaskID, job.TaskTitle, job.ActorID)
		return nil
	})
	w.RegisterHandler(JobTypeTaskUnassigned, func(ctx context.Context, job *Job) error {
		log.Printf("notify %s: removed from task %d (%q) by user %d", job.Email, job.TaskID, job.TaskTitle, job.ActorID)
		return nil
	})
}

func (w *Worker) Start(concurrency int) {
	if concurrency <= 0 {
		concurrency = 1
	}
	log.Printf("Starting notification worker with %d goroutines", concurrency)

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop()
	}
}

func (w *Worker) Stop() {
	log.Println("Stopping notification worker...")
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) workerLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		data, err := w.client.BRPop(w.ctx, w.pollInterval, notificationQueue).Result()
		if err != nil {
			if err == redis.Nil || w.ctx.Err() != nil {
				continue
			}
			log.Printf("failed to pop job: %v", err)
			select {
			case <-w.ctx.Done():
				return
			case <-time.After(w.pollInterval):
			}
			continue
		}
		if len(data) < 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(data[1]), &job); err != nil {
			log.Printf("failed to decode job: %v", err)
			continue
		}
		w.process(&job)
	}
}

func (w *Worker) process(job *Job) {
	w.mu.RLock()
	handler, ok := w.handlers[job.Type]
	w.mu.RUnlock()
	if !ok {
		log.Printf("no handler registered for job type %s", job.Type)
		return
	}

	job.Attempts++
	if err := handler(w.ctx, job); err != nil {
		log.Printf("job %s failed (attempt %d/%d): %v", job.ID, job.Attempts, job.MaxTries, err)
		if job.Attempts < job.MaxTries {
			w.requeue(job)
		}
	}
}

func (w *Worker) requeue(job *Job) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Printf("failed to marshal job %s for retry: %v", job.ID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := w.client.LPush(ctx, notificationQueue, data).Err(); err != nil {
		log.Printf("failed to requeue job %s: %v", job.ID, err)
	}
}

// QueueDepth reports pending notification jobs; the readiness probe
// surfaces it.
func QueueDepth(client *redis.Client) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	depth, err := client.LLen(ctx, notificationQueue).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read queue depth: %w", err)
	}
	return depth, nil
}
