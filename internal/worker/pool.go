package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipts = "jobs:receipts"

	JobTypeReceipt = "receipt_email"
)

// ErrUnknownJob is returned for a job type with no registered handler.
var ErrUnknownJob = errors.New("worker: no handler for job type")

// Job is the generic envelope for all async tasks.
type Job struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt string          `json:"enqueued_at"` // RFC 3339
}

// ReceiptPayload is the body of a JobTypeReceipt job.
type ReceiptPayload struct {
	SaleID string `json:"sale_id"`
	Email  string `json:"email"`
}

// Handler processes one job payload. A returned error sends the job to the DLQ.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReceipt schedules the receipt e-mail for a committed sale.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, saleID uuid.UUID, email string) error {
	return d.enqueue(ctx, QueueReceipts, JobTypeReceipt, ReceiptPayload{SaleID: saleID.String(), Email: email})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data, EnqueuedAt: time.Now().UTC().Format(time.RFC3339)})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	queues   []string
	wg       sync.WaitGroup
}

// NewPool registers handlers by job type. Every handler's queue is consumed.
func NewPool(rdb *redis.Client, handlers map[string]Handler) *Pool {
	return &Pool{rdb: rdb, handlers: handlers, queues: []string{QueueReceipts}}
}

// Start launches numWorkers goroutines. Each blocks on BRPOP, so idle workers
// cost nothing. They exit when ctx is cancelled; Wait blocks until they have.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop; waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if err != nil {
				if d := popBackoff(err); d > 0 {
					log.Warn().Err(err).Int("worker", id).Dur("backoff", d).Msg("queue pop failed")
					sleepCtx(ctx, d)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

// pollErrorBackoff is how long a worker waits after Redis itself failed.
var pollErrorBackoff = 2 * time.Second

// popBackoff is zero for an empty poll or a cancelled context, which loop
// immediately, and pollErrorBackoff for anything else.
func popBackoff(err error) time.Duration {
	if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0
	}
	return pollErrorBackoff
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, Job{Type: "unknown", Payload: json.RawMessage(`null`)}, "malformed job: "+err.Error())
		return
	}
	if err := dispatch(ctx, p.handlers, job); err != nil {
		log.Error().Err(err).Str("type", job.Type).Str("queue", queue).Msg("job failed")
		SendToDLQ(ctx, p.rdb, queue, job, err.Error())
		return
	}
	log.Info().Str("type", job.Type).Str("queue", queue).Msg("job processed")
}

func dispatch(ctx context.Context, handlers map[string]Handler, job Job) error {
	h, ok := handlers[job.Type]
	if !ok {
		return ErrUnknownJob
	}
	return h.Process(ctx, job.Payload)
}
