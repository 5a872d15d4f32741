package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueProductImport = "jobs:product_import"
	QueueEmail         = "jobs:email"
)

const (
	JobTypeProductImport = "product_import"
	JobTypeEmail         = "email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes the payload of one job type. A returned error moves the
// job to the dead letter queue.
type Handler interface {
	Handle(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueProductImport pushes a spreadsheet import job to Redis.
func (d *Dispatcher) EnqueueProductImport(ctx context.Context, payload ImportJobPayload) error {
	return d.enqueue(ctx, QueueProductImport, JobTypeProductImport, payload)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobTypeEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes every queue with a registered handler.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler // by job type
	queues   []string
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb, handlers: map[string]Handler{}}
}

// Register binds a job type to its handler and queue.
func (p *Pool) Register(queue, jobType string, h Handler) {
	p.handlers[jobType] = h
	for _, q := range p.queues {
		if q == queue {
			return
		}
	}
	p.queues = append(p.queues, queue)
}

// Start launches numWorkers goroutines consuming all registered queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(ctx, i)
	}
	log.Info().Strs("queues", p.queues).Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		PushDeadLetter(ctx, p.rdb, DeadLetter{Queue: queue, Type: "unknown", Payload: quoted, Reason: "malformed envelope: " + err.Error()})
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		PushDeadLetter(ctx, p.rdb, DeadLetter{Queue: queue, Type: job.Type, Payload: job.Payload, Reason: "no handler registered"})
		return
	}

	log.Info().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	if err := h.Handle(ctx, job.Payload); err != nil {
		// a shutdown cancels ctx mid-job; the failure must still be recorded
		PushDeadLetter(context.WithoutCancel(ctx), p.rdb, DeadLetter{Queue: queue, Type: job.Type, Payload: job.Payload, Reason: err.Error()})
	}
}
