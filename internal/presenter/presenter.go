package presenter

import (
	"github.com/darisadam/cardbrand/internal/domain/brand"
	"github.com/darisadam/cardbrand/internal/pkg/metrics"
)

type State string

const (
	StateAllVisible      State = "all_visible"
	StateFilteredVisible State = "filtered_visible"
)

// Indicator is the visibility of one supported brand's logo.
type Indicator struct {
	Brand   brand.Brand `json:"brand"`
	Visible bool        `json:"visible"`
}

// Renderer draws indicators. It is supplied by the host view.
type Renderer interface {
	Render(indicators []Indicator)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(indicators []Indicator)

func (f RendererFunc) Render(indicators []Indicator) {
	f(indicators)
}

// Presenter derives indicator visibility from detection results. It is not
// safe for concurrent use; a single owner must serialize calls.
type Presenter struct {
	supported []brand.Brand
	visible   []bool
	prefix    string
	state     State
	renderer  Renderer
}

func New(supported []brand.Brand, renderer Renderer) *Presenter {
	p := &Presenter{
		supported: append([]brand.Brand(nil), supported...),
		visible:   make([]bool, len(supported)),
		renderer:  renderer,
	}
	p.Apply(nil, true)
	return p
}

// Apply shows every indicator when prefixIsEmpty, otherwise exactly those
// whose brand is in detected.
func (p *Presenter) Apply(detected brand.Set, prefixIsEmpty bool) {
	for i, b := range p.supported {
		p.visible[i] = prefixIsEmpty || detected.Has(b)
	}

	if prefixIsEmpty {
		p.state = StateAllVisible
	} else {
		p.state = StateFilteredVisible
	}

	if p.renderer != nil {
		p.renderer.Render(p.Indicators())
	}
}

// OnPrefixChanged records the live prefix. An empty prefix shows everything.
func (p *Presenter) OnPrefixChanged(prefix string) {
	p.prefix = prefix
	if prefix == "" {
		p.Apply(nil, true)
	}
}

// OnDetectionResult applies detected if it was computed for the live prefix
// and reports whether it was applied.
func (p *Presenter) OnDetectionResult(detected brand.Set, forPrefix string) bool {
	if forPrefix != p.prefix {
		metrics.RecordStaleResult()
		return false
	}
	p.Apply(detected, forPrefix == "")
	return true
}

func (p *Presenter) Prefix() string {
	return p.prefix
}

func (p *Presenter) State() State {
	return p.state
}

// Indicators returns a snapshot in supported-brand order.
func (p *Presenter) Indicators() []Indicator {
	out := make([]Indicator, len(p.supported))
	for i, b := range p.supported {
		out[i] = Indicator{Brand: b, Visible: p.visible[i]}
	}
	return out
}

// Visible returns the brands currently shown, in supported-brand order.
func (p *Presenter) Visible() []brand.Brand {
	out := make([]brand.Brand, 0, len(p.supported))
	for i, b := range p.supported {
		if p.visible[i] {
			out = append(out, b)
		}
	}
	return out
}
