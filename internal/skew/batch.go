package skew

import (
	"context"

	"optionskew/internal/chain"
	"optionskew/internal/models"
)

// ComputeBatch runs the pipeline for each symbol sequentially, in request
// order, over the shared feed session. A failing symbol is recorded and the
// batch moves on; only context cancellation stops the run. The stream ends
// with a complete event carrying the summary and per-symbol errors, then the
// channel is closed. On cancellation the feed is torn down and the channel
// closes without a complete event.
func (e *Engine) ComputeBatch(ctx context.Context, symbols []string) <-chan BatchEvent {
	out := make(chan BatchEvent, 2*len(symbols)+8)

	go func() {
		defer close(out)

		emit := func(ev BatchEvent) {
			select {
			case out <- ev:
			case <-ctx.Done():
			}
		}
		abort := func() {
			if err := e.session.Disconnect(); err != nil {
				e.log.Warn().Err(err).Msg("Feed teardown after batch abort failed")
			}
		}

		emit(BatchEvent{Type: BatchConnected})
		for _, raw := range symbols {
			emit(BatchEvent{Type: BatchProgress, Symbol: chain.Normalize(raw), Status: StatusPending})
		}

		summary := models.BatchSummary{Total: len(symbols)}
		failures := make(map[string]string)

		for _, raw := range symbols {
			if ctx.Err() != nil {
				abort()
				return
			}

			symbol := chain.Normalize(raw)
			emit(BatchEvent{Type: BatchProgress, Symbol: symbol, Status: StatusCalculating})

			result, cached, err := e.compute(ctx, raw, func(stage EventType, _ *models.ChainResult) {
				switch stage {
				case EventPhase1:
					emit(BatchEvent{Type: BatchProgress, Symbol: symbol, Status: StatusPhase1})
				case EventPhase2:
					emit(BatchEvent{Type: BatchProgress, Symbol: symbol, Status: StatusPhase2})
				}
			})
			if err != nil {
				if ctx.Err() != nil {
					abort()
					return
				}
				summary.Failed++
				failures[symbol] = err.Error()
				emit(BatchEvent{Type: BatchProgress, Symbol: symbol, Status: StatusError, Error: err.Error()})
				continue
			}

			summary.Successful++
			status := StatusComplete
			if cached {
				status = StatusCached
			}
			emit(BatchEvent{Type: BatchProgress, Symbol: symbol, Status: status, Data: result})
		}

		if ctx.Err() != nil {
			abort()
			return
		}
		emit(BatchEvent{Type: BatchComplete, Summary: &summary, Errors: failures})
	}()

	return out
}
