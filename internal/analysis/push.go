package analysis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rtm0/ctacid/internal/scenario"
	"github.com/rtm0/ctacid/internal/temporal"
	"github.com/rtm0/ctacid/internal/vm"
)

// tableRecords converts a temporal table into records. Victoria Metrics
// rejects timestamps before the Unix epoch, so earlier rows are skipped
// and counted.
func tableRecords(sc scenario.Scenario, t *temporal.Table, columns []string) ([]vm.Record, int, error) {
	cols := make([][]float64, len(columns))
	for i, c := range columns {
		vals, err := t.Column(c)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", sc, err)
		}
		cols[i] = vals
	}
	recs := make([]vm.Record, 0, t.Len())
	skipped := 0
	for k, ts := range t.Time {
		if ts.Before(time.Unix(0, 0)) {
			skipped++
			continue
		}
		vals := make([]float64, len(columns))
		for i := range cols {
			vals[i] = cols[i][k]
		}
		recs = append(recs, vm.Record{Scenario: string(sc), Timestamp: ts.UnixMilli(), Values: vals})
	}
	return recs, skipped, nil
}

// Push streams the temporal tables of the selected scenarios into
// Victoria Metrics, RecsPerInsert records per request with Concurrency
// parallel workers.
func (r *Runner) Push(ctx context.Context) error {
	selected, err := r.cfg.SelectedScenarios()
	if err != nil {
		return err
	}
	tables := make([]*temporal.Table, len(selected))
	for i, sc := range selected {
		tables[i], err = temporal.Load(scenario.TemporalPath(r.cfg.TemporalDir, sc))
		if err != nil {
			return err
		}
	}
	columns := tables[0].Names()
	insertURL := r.cfg.InsertURL
	vmCli, err := vm.NewClient(r.logger, insertURL, r.cfg.Concurrency, r.cfg.MetricPrefix, columns)
	if err != nil {
		return fmt.Errorf("could not create VM client: %w", err)
	}
	batches := make([][]vm.Record, len(tables))
	total := 0
	for i, t := range tables {
		var skipped int
		batches[i], skipped, err = tableRecords(selected[i], t, columns)
		if err != nil {
			return err
		}
		if skipped > 0 {
			r.logger.Warn("Skipping rows before 1970", "scenario", selected[i], "rows", skipped)
		}
		total += len(batches[i])
	}
	r.logger.Info("Push summary", "url", insertURL, "scenarios", len(batches), "recCnt", total, "colCnt", len(columns))

	recsCh := make(chan []vm.Record)
	progressCh := make(chan int)
	var failed atomic.Int64
	var wg sync.WaitGroup
	for range r.cfg.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for recs := range recsCh {
				n := len(recs)
				for begin := 0; begin < n; begin += r.cfg.RecsPerInsert {
					limit := min(begin+r.cfg.RecsPerInsert, n)
					if err := vmCli.Insert(ctx, recs[begin:limit]); err != nil {
						r.logger.Error("Could not insert records", "err", err)
						failed.Add(1)
					}
				}
				progressCh <- n
			}
		}()
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		var inserted float64
		start := time.Now()
		for n := range progressCh {
			inserted += float64(n)
			percent := fmt.Sprintf("%.2f%%", 100*inserted/float64(max(total, 1)))
			duration := time.Since(start).Round(1 * time.Second)
			r.logger.Info("progress", "inserted", percent, "in", duration)
		}
	}()

feed:
	for _, recs := range batches {
		select {
		case recsCh <- recs:
		case <-ctx.Done():
			break feed
		}
	}
	close(recsCh)
	wg.Wait()
	close(progressCh)
	<-done

	if err := ctx.Err(); err != nil {
		return err
	}
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d insert requests failed", n)
	}
	return nil
}
