// Package worker runs background export jobs. Owners request a bookings
// spreadsheet over the API and pick the file up once the worker is done.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"zaimka/internal/database"
	"zaimka/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Task states reported by TaskStatus.
const (
	StateQueued     = "queued"
	StateProcessing = "processing"
	StateDone       = "done"
	StateFailed     = "failed"
)

// ExportTask is one spreadsheet request.
type ExportTask struct {
	ID          string    `json:"id"`
	CompanySlug string    `json:"company_slug"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskState is the observable progress of a task.
type TaskState struct {
	State    string `json:"state"`
	FilePath string `json:"file_path,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ExportWorker consumes export tasks from redis, falling back to an
// in-memory queue when redis is unreachable.
type ExportWorker struct {
	db          *database.DB
	redis       *redis.Client
	retryPolicy RetryPolicy
	exportPath  string
	logger      *zerolog.Logger

	queue         chan ExportTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration

	states sync.Map // map[string]TaskState
}

func NewExportWorker(db *database.DB, redisClient *redis.Client, exportPath string, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
	def := DefaultExportRetry()
	if retry.MaxRetries == 0 {
		retry.MaxRetries = def.MaxRetries
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = def.InitialDelay
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = def.MaxDelay
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = def.BackoffFactor
	}

	return &ExportWorker{
		db:            db,
		redis:         redisClient,
		retryPolicy:   retry,
		exportPath:    exportPath,
		logger:        logger,
		queue:         make(chan ExportTask, models.ExportQueueSize),
		redisQueueKey: "exports:queue",
		deadLetterKey: "exports:deadletter",
		pollInterval:  time.Second,
	}
}

// EnqueueExport schedules a spreadsheet of a company's bookings in the
// given window and returns the task id to poll.
func (w *ExportWorker) EnqueueExport(companySlug string, from, to time.Time) (string, error) {
	if companySlug == "" {
		return "", errors.New("company slug is required")
	}
	if to.Before(from) {
		return "", errors.New("export window is inverted")
	}

	task := ExportTask{
		ID:          uuid.NewString(),
		CompanySlug: companySlug,
		From:        from,
		To:          to,
		CreatedAt:   time.Now(),
	}
	w.states.Store(task.ID, TaskState{State: StateQueued})

	// Redis first for durability, the channel when it is down.
	if w.redis != nil {
		err := w.pushRedis(context.Background(), task)
		if err == nil {
			return task.ID, nil
		}
		w.logger.Warn().Err(err).Msg("redis push failed, falling back to memory queue")
	}

	select {
	case w.queue <- task:
		return task.ID, nil
	default:
		w.states.Delete(task.ID)
		return "", errors.New("export queue is full")
	}
}

// TaskStatus reports the progress of an enqueued task.
func (w *ExportWorker) TaskStatus(id string) (TaskState, bool) {
	v, ok := w.states.Load(id)
	if !ok {
		return TaskState{}, false
	}
	return v.(TaskState), true
}

// Start runs the consume loop until ctx is done.
func (w *ExportWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("Export worker started")
	defer w.logger.Info().Msg("Export worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if task, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, task)
			continue
		}
		if task, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, task)
			continue
		}
		if w.redis == nil {
			// Nothing to poll, wait for local work.
			select {
			case <-ctx.Done():
				return
			case task := <-w.queue:
				w.processTask(ctx, task)
			case <-time.After(w.pollInterval):
			}
		}
	}
}

func (w *ExportWorker) tryLocalQueue() (ExportTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return ExportTask{}, false
	}
}

func (w *ExportWorker) tryRedis(ctx context.Context) (ExportTask, bool) {
	if w.redis == nil {
		return ExportTask{}, false
	}
	res, err := w.redis.BRPop(ctx, w.pollInterval, w.redisQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled) {
			w.logger.Error().Err(err).Msg("redis BRPOP failed")
		}
		return ExportTask{}, false
	}
	if len(res) != 2 {
		return ExportTask{}, false
	}
	var task ExportTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("failed to decode export task")
		return ExportTask{}, false
	}
	return task, true
}

func (w *ExportWorker) pushRedis(ctx context.Context, task ExportTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *ExportWorker) processTask(ctx context.Context, task ExportTask) {
	w.states.Store(task.ID, TaskState{State: StateProcessing})

	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		path, err := w.buildWorkbook(ctx, task)
		if err == nil {
			w.states.Store(task.ID, TaskState{State: StateDone, FilePath: path})
			w.logger.Info().
				Str("task_id", task.ID).
				Str("company", task.CompanySlug).
				Str("file_path", path).
				Msg("Export completed")
			return
		}

		lastErr = err
		w.logger.Warn().Err(err).Str("task_id", task.ID).Int("attempt", attempt).Msg("export attempt failed")

		if attempt < w.retryPolicy.MaxRetries {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = w.retryPolicy.MaxRetries
			case <-time.After(w.retryPolicy.NextDelay(attempt)):
			}
		}
	}

	w.states.Store(task.ID, TaskState{State: StateFailed, Error: lastErr.Error()})
	w.pushDeadLetter(ctx, task)
	w.logger.Error().Err(lastErr).Str("task_id", task.ID).Msg("Export failed permanently")
}

func (w *ExportWorker) pushDeadLetter(ctx context.Context, task ExportTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Str("task_id", task.ID).Msg("dead letter push failed")
	}
}
