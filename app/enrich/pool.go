package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"newsdigest/app/database"
	"newsdigest/app/feed"
	"newsdigest/app/summary"
)

type Extractor interface {
	Extract(ctx context.Context, pageURL string) (*feed.Extraction, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string, level summary.Level) summary.Result
	ExtractKeywords(ctx context.Context, text string, maxCount int) []string
}

type Task struct {
	ItemID int64
	URL    string
}

const (
	taskTimeout  = 2 * time.Minute
	keywordCount = 5
)

// Pool enriches newly ingested items in the background: extract the article
// body, summarize it, and flip the item's processed flag. Ingestion hands
// tasks over and never waits; completion is observed only through the
// processed flag in the store.
type Pool struct {
	items      database.ItemRepository
	extractor  Extractor
	summarizer Summarizer

	workerCount int
	queue       chan Task
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewPool(items database.ItemRepository, extractor Extractor, summarizer Summarizer, workerCount, queueSize int) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		items:       items,
		extractor:   extractor,
		summarizer:  summarizer,
		workerCount: workerCount,
		queue:       make(chan Task, queueSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop cancels the workers and waits for in-flight tasks to finish.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
	close(p.queue)
}

// Enqueue hands an item to the pool without blocking. A full queue is
// reported to the caller; the item stays unprocessed and is retried on a
// later ingestion pass.
func (p *Pool) Enqueue(task Task) error {
	select {
	case p.queue <- task:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	default:
		return fmt.Errorf("enrichment queue is full")
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case task, ok := <-p.queue:
			if !ok {
				return
			}
			p.process(id, task)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) process(workerID int, task Task) {
	taskCtx, cancel := context.WithTimeout(p.ctx, taskTimeout)
	defer cancel()

	started := time.Now()

	extraction, err := p.extractor.Extract(taskCtx, task.URL)
	if err != nil {
		// The item stays unprocessed; a later pass re-enqueues it until the
		// processing-timeout purge gives up on it.
		slog.Warn("Content extraction failed",
			"worker_id", workerID, "item_id", task.ItemID, "url", task.URL, "error", err)
		return
	}

	result := p.summarizer.Summarize(taskCtx, extraction.Body, summary.LevelStandard)
	keywords := p.summarizer.ExtractKeywords(taskCtx, extraction.Body, keywordCount)

	if err := p.items.MarkItemEnriched(taskCtx, task.ItemID, result.Text, keywords); err != nil {
		slog.Error("Failed to mark item enriched",
			"worker_id", workerID, "item_id", task.ItemID, "error", err)
		return
	}

	slog.Info("Item enriched",
		"worker_id", workerID,
		"item_id", task.ItemID,
		"method", result.Method,
		"summary_words", result.WordCount,
		"keywords", len(keywords),
		"duration", time.Since(started))
}
