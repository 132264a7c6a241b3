package stage

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// progressReporter prints a heartbeat line while a unit runs. A nil
// reporter runs the unit without output.
type progressReporter struct {
	interval time.Duration
	w        io.Writer

	mu        sync.Mutex
	stageName string
	unit      string
	started   time.Time
}

func newProgressReporter(interval time.Duration, w io.Writer) *progressReporter {
	if interval <= 0 || w == nil {
		return nil
	}
	return &progressReporter{interval: interval, w: w}
}

func (p *progressReporter) track(stageName, unit string, fn func() Result) Result {
	if p == nil {
		return fn()
	}
	p.setSnapshot(stageName, unit, time.Now())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ticker.C:
				p.emit()
			case <-done:
				return
			}
		}
	}()

	res := fn()
	close(done)
	wg.Wait()
	return res
}

func (p *progressReporter) setSnapshot(stageName, unit string, started time.Time) {
	p.mu.Lock()
	p.stageName = stageName
	p.unit = unit
	p.started = started
	p.mu.Unlock()
}

func (p *progressReporter) emit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	elapsed := time.Since(p.started).Round(time.Second)
	_, _ = fmt.Fprintf(p.w, "progress stage=%s unit=%s elapsed=%s\n", p.stageName, p.unit, elapsed)
}
