package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gradescan/gradescan/internal/shared/constants"
)

// Checker is the interface every analyzer stage implements. A stage issues
// its own probes, owns its probe results, and always returns findings; an
// internal failure becomes an error-status finding, never a panic or an
// error crossing the stage boundary.
type Checker interface {
	// Check runs the stage's probes against the target.
	Check(ctx context.Context, target *Target) []Finding

	// Name returns the stage name (e.g. "ssl", "headers").
	Name() string
}

// PostChecker is a stage that runs after all feeder stages complete. The
// risk analyzer is the one stage permitted a data dependency, so it reads
// finished outputs behind the concurrency barrier.
type PostChecker interface {
	Analyze(target *Target, findings []Finding) []Finding
	Name() string
}

// ProgressFunc receives advisory stage progress: 0 at stage start, 100 at
// stage completion. The final report never depends on it being observed.
type ProgressFunc func(stage string, percent int, message string)

// Config carries pipeline-level settings.
type Config struct {
	// StageTimeout is the hard per-stage ceiling, independent of siblings.
	StageTimeout time.Duration
	Progress     ProgressFunc
	Logger       *zap.SugaredLogger
}

// Pipeline fans out analyzer stages against one target, collects their
// findings in declaration order, and assembles the final report.
type Pipeline struct {
	cfg    Config
	stages []Checker
	post   []PostChecker

	// Injection points so tests can pin report identity and time.
	now   func() time.Time
	newID func() string
}

// NewPipeline builds a pipeline over the given stages. Stage order is the
// declaration order findings are emitted in, regardless of completion order.
func NewPipeline(cfg Config, stages []Checker, post ...PostChecker) *Pipeline {
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = constants.DefaultStageTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &Pipeline{
		cfg:    cfg,
		stages: stages,
		post:   post,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Run executes the scan. The only error it returns is target validation
// failure; every probe-level failure is converted to a finding and the
// report is always a complete best-effort result.
func (p *Pipeline) Run(ctx context.Context, rawTarget string) (*Report, error) {
	target, err := ParseTarget(rawTarget)
	if err != nil {
		return nil, err
	}

	started := p.now()

	// Buffer findings per stage so output order stays fixed by declaration
	// order even though stages complete in any order.
	buffered := make([][]Finding, len(p.stages))

	g, groupCtx := errgroup.WithContext(ctx)
	for i, stage := range p.stages {
		g.Go(func() error {
			p.report(stage.Name(), 0, "started")
			stageStart := time.Now()
			buffered[i] = p.runStage(groupCtx, stage, target)
			p.cfg.Logger.Debugw("stage complete",
				"stage", stage.Name(),
				"findings", len(buffered[i]),
				"duration", time.Since(stageStart),
			)
			p.report(stage.Name(), 100, "complete")
			return nil
		})
	}
	// Stage goroutines never return errors; the wait is the barrier.
	_ = g.Wait()

	findings := make([]Finding, 0, len(p.stages)*4)
	for _, fs := range buffered {
		findings = append(findings, fs...)
	}

	// Post-barrier stages (risk analysis) read the combined output.
	for _, post := range p.post {
		p.report(post.Name(), 0, "started")
		findings = append(findings, post.Analyze(target, findings)...)
		p.report(post.Name(), 100, "complete")
	}

	score, grade := Score(findings)
	report := &Report{
		ID:              p.newID(),
		Target:          target.URL,
		Timestamp:       started.UTC(),
		DurationMs:      p.now().Sub(started).Milliseconds(),
		Score:           score,
		Grade:           grade,
		Findings:        findings,
		Summary:         summarize(findings),
		Recommendations: Recommend(findings),
	}
	return report, nil
}

// runStage executes one stage under its own timeout with failure isolation:
// a panic or an empty result after timeout collapses to a single
// error-status finding for that stage only.
func (p *Pipeline) runStage(ctx context.Context, stage Checker, target *Target) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			p.cfg.Logger.Errorw("stage panic recovered", "stage", stage.Name(), "panic", r)
			findings = []Finding{stageErrorFinding(stage.Name(), fmt.Sprintf("stage panicked: %v", r))}
		}
	}()

	stageCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	defer cancel()

	findings = stage.Check(stageCtx, target)
	if len(findings) == 0 {
		if err := stageCtx.Err(); err != nil {
			findings = []Finding{stageErrorFinding(stage.Name(), fmt.Sprintf("stage timed out: %v", err))}
		}
	}
	return findings
}

func (p *Pipeline) report(stage string, percent int, message string) {
	if p.cfg.Progress != nil {
		p.cfg.Progress(stage, percent, message)
	}
}

// stageErrorFinding is the single finding a failed stage degrades to.
func stageErrorFinding(stage, message string) Finding {
	return errorFinding(stage+"-error", stageTitle(stage)+" check failed", stageTitle(stage), message)
}

func stageTitle(stage string) string {
	switch stage {
	case "ssl":
		return "SSL/TLS"
	case "headers":
		return "Headers"
	case "dns":
		return "DNS"
	case "vulnerabilities":
		return "Vulnerabilities"
	case "surface":
		return "Attack Surface"
	case "risk":
		return "Risk"
	default:
		return stage
	}
}
