package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/customs-tracking/internal/api/metrics"
	"github.com/99minutos/customs-tracking/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrQueueFull is returned by TryEnqueue when the target worker is saturated.
var ErrQueueFull = errors.New("dispatcher queue full")

// Ingester is the part of the tracking service the dispatcher drives.
type Ingester interface {
	Ingest(ctx context.Context, in ports.IngestInput) (*ports.IngestResult, error)
}

// Dispatcher routes deliveries to a fixed set of workers using consistent
// hashing on the tracking number, so deliveries of one shipment are merged
// one at a time and in arrival order.
type Dispatcher struct {
	workers []chan ports.IngestInput
	service Ingester
	log     zerolog.Logger
	wg      sync.WaitGroup
	closing sync.Once
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service Ingester, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.IngestInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.IngestInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runWorker(ctx, i, ch)
		}()
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops intake: workers finish what is already buffered and return.
// Nothing may be enqueued after Close.
func (d *Dispatcher) Close() {
	d.closing.Do(func() {
		for _, ch := range d.workers {
			close(ch)
		}
	})
}

// Enqueue sends a delivery to the worker responsible for its tracking number,
// blocking while that worker's buffer is full.
func (d *Dispatcher) Enqueue(in ports.IngestInput) {
	idx := d.shardIndex(in.TrackingNumber)
	d.workers[idx] <- in
	metrics.QueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// TryEnqueue is the non-blocking variant used by request handlers.
func (d *Dispatcher) TryEnqueue(in ports.IngestInput) error {
	idx := d.shardIndex(in.TrackingNumber)
	select {
	case d.workers[idx] <- in:
		metrics.QueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.DeliveriesErrorsTotal.WithLabelValues("queue_full").Inc()
		return ErrQueueFull
	}
}

// EnqueueBatch enqueues multiple deliveries preserving per-shipment ordering.
func (d *Dispatcher) EnqueueBatch(batch []ports.IngestInput) {
	for _, in := range batch {
		d.Enqueue(in)
	}
}

// shardIndex maps a tracking number deterministically to a worker index.
func (d *Dispatcher) shardIndex(trackingNumber string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(trackingNumber))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.IngestInput) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			metrics.QueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, in)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, in ports.IngestInput) {
	start := time.Now()
	res, err := d.service.Ingest(ctx, in)
	if err != nil {
		metrics.IngestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		metrics.DeliveriesErrorsTotal.WithLabelValues("ingest_failed").Inc()
		d.log.Error().Err(err).
			Str("tracking_number", in.TrackingNumber).
			Int("worker_id", id).
			Msg("delivery processing failed")
		return
	}

	if res.Duplicate {
		metrics.DeliveriesDedupTotal.WithLabelValues("hit").Inc()
		return
	}
	metrics.DeliveriesDedupTotal.WithLabelValues("miss").Inc()

	status := string(res.Summary.Status)
	metrics.IngestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	metrics.DeliveriesProcessedTotal.WithLabelValues(status, in.Source).Inc()
	metrics.MilestonesTotal.WithLabelValues("classified").Add(float64(res.Stats.Classified))
	metrics.MilestonesTotal.WithLabelValues("dropped").Add(float64(res.Stats.Dropped))
	if res.Stats.Regressed {
		metrics.RegressedTimelinesTotal.Inc()
	}
	if res.StatusChanged {
		metrics.StatusTransitionsTotal.WithLabelValues(status).Inc()
	}
}
