package cardnumber

import (
	"context"
	"strings"
	"sync"

	"github.com/darisadam/cardbrand/internal/domain/brand"
	"github.com/darisadam/cardbrand/internal/matcher"
	"github.com/darisadam/cardbrand/internal/presenter"
	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"go.uber.org/zap"
)

// Item is the card number field of a payment form: it owns the typed
// prefix and keeps the brand indicators in step with it.
//
// The renderer is called after mu is released, so it may read the item back.
// Renders are sequenced; one that loses the race to a newer one is skipped.
type Item struct {
	mu        sync.Mutex
	value     string
	matcher   matcher.Matcher
	presenter *presenter.Presenter
	renderer  presenter.Renderer
	seq       uint64

	renderMu     sync.Mutex
	lastRendered uint64
}

func NewItem(supported []brand.Brand, m matcher.Matcher, renderer presenter.Renderer) *Item {
	i := &Item{
		matcher:   m,
		presenter: presenter.New(supported, nil),
		renderer:  renderer,
	}

	i.mu.Lock()
	seq, snapshot := i.snapshotLocked()
	i.mu.Unlock()
	i.render(seq, snapshot)

	return i
}

// SetValue replaces the field content. Formatting characters are dropped.
func (i *Item) SetValue(ctx context.Context, raw string) {
	digits := Sanitize(raw)

	i.mu.Lock()
	i.value = digits
	i.presenter.OnPrefixChanged(digits)
	if digits != "" {
		// Local classification applies at once; a remote answer may refine it.
		i.presenter.OnDetectionResult(i.matcher.Match(digits), digits)
	}
	seq, snapshot := i.snapshotLocked()
	i.mu.Unlock()

	i.render(seq, snapshot)

	if digits == "" {
		return
	}

	i.matcher.Request(ctx, digits, i.detectionDidComplete)
}

func (i *Item) detectionDidComplete(result matcher.Result) {
	i.mu.Lock()
	applied := i.presenter.OnDetectionResult(result.Brands, result.Prefix)
	seq, snapshot := i.snapshotLocked()
	i.mu.Unlock()

	if !applied {
		logger.Debug("Discarded stale brand detection",
			zap.Int("prefix_length", len(result.Prefix)),
			zap.String("source", string(result.Source)),
		)
		return
	}
	i.render(seq, snapshot)
}

// snapshotLocked must be called with mu held.
func (i *Item) snapshotLocked() (uint64, []presenter.Indicator) {
	i.seq++
	return i.seq, i.presenter.Indicators()
}

func (i *Item) render(seq uint64, indicators []presenter.Indicator) {
	if i.renderer == nil {
		return
	}

	i.renderMu.Lock()
	defer i.renderMu.Unlock()

	if seq <= i.lastRendered {
		return
	}
	i.lastRendered = seq
	i.renderer.Render(indicators)
}

func (i *Item) Value() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.value
}

func (i *Item) Indicators() []presenter.Indicator {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.presenter.Indicators()
}

func (i *Item) VisibleBrands() []brand.Brand {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.presenter.Visible()
}

func (i *Item) State() presenter.State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.presenter.State()
}

// FormattedValue groups the digits for display: 4-6-5 when the only visible
// brand is amex, blocks of four otherwise.
func (i *Item) FormattedValue() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	visible := i.presenter.Visible()
	if len(visible) == 1 && visible[0] == brand.AmericanExp {
		return Format(i.value, []int{4, 6, 5})
	}
	return Format(i.value, nil)
}

// Sanitize keeps only ASCII digits.
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format splits digits into the given group sizes separated by spaces.
// Digits past the last group continue in groups of four.
func Format(digits string, groups []int) string {
	var parts []string
	rest := digits
	for idx := 0; rest != ""; idx++ {
		size := 4
		if idx < len(groups) {
			size = groups[idx]
		}
		if size > len(rest) {
			size = len(rest)
		}
		parts = append(parts, rest[:size])
		rest = rest[size:]
	}
	return strings.Join(parts, " ")
}
