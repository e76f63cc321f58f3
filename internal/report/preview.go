package report

import (
	"context"
	"sync"

	"moneytracker/internal/core"
)

type PreviewState string

const (
	PreviewEmpty PreviewState = "EMPTY"
	PreviewShown PreviewState = "PREVIEW_SHOWN"
)

// Preview tracks what the report view is showing. Generating shows a
// report; choosing a different period hides it again.
type Preview struct {
	mu      sync.Mutex
	builder *Builder
	period  core.Period
	state   PreviewState
	current Report
}

func NewPreview(b *Builder, initial core.Period) *Preview {
	return &Preview{builder: b, period: initial, state: PreviewEmpty}
}

// Select changes the selected period. Selecting the period already shown
// keeps the preview.
func (p *Preview) Select(period core.Period) error {
	if err := period.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if period == p.period {
		return nil
	}
	p.period = period
	p.state = PreviewEmpty
	p.current = Report{}
	return nil
}

// Hide returns the view to EMPTY without changing the selected period.
func (p *Preview) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = PreviewEmpty
	p.current = Report{}
}

// Generate builds the report for the selected period and shows it.
func (p *Preview) Generate(ctx context.Context) (Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.builder.Build(ctx, p.period)
	if err != nil {
		return Report{}, err
	}
	p.current = r
	p.state = PreviewShown
	return r, nil
}

// Current returns the selected period, the state and, when shown, the report.
func (p *Preview) Current() (core.Period, PreviewState, Report) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.period, p.state, p.current
}
