package strategy

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"subdub/internal/logging"
	"subdub/internal/subtitles"
)

// Produce renders every entry through a bounded worker pool and returns the
// results in entry order with placement offsets filled in. Progress, if
// non-nil, is called once per completed entry from worker goroutines.
func Produce(ctx context.Context, strat Strategy, entries subtitles.List, workers int, logger *slog.Logger, progress func()) ([]Rendered, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(entries) {
		workers = len(entries)
	}
	logger = logging.NewComponentLogger(logger, "renderer")

	results := make([]Rendered, len(entries))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rendered, err := strat.Render(workCtx, entries[i])
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				results[i] = rendered
				if progress != nil {
					progress()
				}
			}
		}()
	}

feed:
	for i := range entries {
		select {
		case jobs <- i:
		case <-workCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	place(strat, results)
	logger.Debug("rendering complete",
		logging.String(logging.FieldStrategy, strat.Name()),
		logging.Int("entries", len(results)),
		logging.Int("workers", workers))
	return results, nil
}

// place assigns output-track offsets. Sequential policies concatenate; the
// rest anchor each clip at its cue start.
func place(strat Strategy, results []Rendered) {
	if strat.SequentialPlacement() {
		var cursor time.Duration
		for i := range results {
			results[i].Start = cursor
			cursor += results[i].Clip.Duration()
		}
		return
	}
	for i := range results {
		results[i].Start = results[i].Entry.Start
	}
}
