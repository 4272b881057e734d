package cmd

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// stageProgress renders pipeline stage progress on one terminal line. The
// pipeline's progress callback is advisory, so everything here is
// best-effort display state.
type stageProgress struct {
	mu      sync.Mutex
	total   int
	done    int
	current string
	enabled bool
}

func newStageProgress(total int, enabled bool) *stageProgress {
	if total <= 0 {
		total = 1
	}
	return &stageProgress{total: total, enabled: enabled}
}

// Update is the checker.ProgressFunc the pipeline calls at stage start (0)
// and stage completion (100).
func (p *stageProgress) Update(stage string, percent int, message string) {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	if percent >= 100 {
		p.done++
	} else {
		p.current = stage
	}
	done := p.done
	current := p.current
	p.mu.Unlock()

	if done > p.total {
		done = p.total
	}
	pct := float64(done) / float64(p.total) * 100
	fmt.Fprintf(os.Stderr, "\r[%-16s] %d/%d stages (%.0f%%)", current, done, p.total, pct)
}

// Finish clears the progress line.
func (p *stageProgress) Finish() {
	if !p.enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", 60))
}
