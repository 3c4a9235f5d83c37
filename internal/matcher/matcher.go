package matcher

import (
	"context"
	"time"

	"github.com/darisadam/cardbrand/internal/domain/binlookup"
	"github.com/darisadam/cardbrand/internal/domain/brand"
	"github.com/darisadam/cardbrand/internal/pkg/bintable"
	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/pkg/metrics"
	"go.uber.org/zap"
)

type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// Result is one detection outcome, tagged with the prefix it was computed for.
type Result struct {
	Prefix string
	Brands brand.Set
	Source Source
}

// Remote classifies a BIN against a lookup service.
type Remote interface {
	LookupBrands(ctx context.Context, bin string, supported []brand.Brand) ([]brand.Brand, error)
}

type Matcher interface {
	// Match classifies prefix against the local table only.
	Match(prefix string) brand.Set
	// Request delivers exactly one Result for prefix to done. The call returns
	// before done runs when the remote tier is consulted.
	Request(ctx context.Context, prefix string, done func(Result))
}

type Option func(*matcher)

// WithRemote enables the remote tier for prefixes of at least MinBINLength digits.
func WithRemote(remote Remote) Option {
	return func(m *matcher) {
		m.remote = remote
	}
}

// WithTable replaces the built-in brand table.
func WithTable(table *bintable.Table) Option {
	return func(m *matcher) {
		m.table = table
	}
}

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) Option {
	return func(m *matcher) {
		m.timeout = d
	}
}

type matcher struct {
	table     *bintable.Table
	remote    Remote
	supported []brand.Brand
	timeout   time.Duration
}

func New(supported []brand.Brand, opts ...Option) Matcher {
	m := &matcher{
		table:     bintable.Default(),
		supported: append([]brand.Brand(nil), supported...),
		timeout:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *matcher) Match(prefix string) brand.Set {
	return m.table.Match(prefix)
}

func (m *matcher) Request(ctx context.Context, prefix string, done func(Result)) {
	if m.remote == nil || len(prefix) < binlookup.MinBINLength {
		start := time.Now()
		brands := m.Match(prefix)
		metrics.RecordLookup(string(SourceLocal), brands.Len(), time.Since(start).Seconds())
		done(Result{Prefix: prefix, Brands: brands, Source: SourceLocal})
		return
	}

	go func() {
		done(m.lookupRemote(ctx, prefix))
	}()
}

func (m *matcher) lookupRemote(ctx context.Context, prefix string) Result {
	start := time.Now()
	local := Result{Prefix: prefix, Brands: m.Match(prefix), Source: SourceLocal}

	bin := prefix
	if len(bin) > binlookup.MaxBINLength {
		bin = bin[:binlookup.MaxBINLength]
	}

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	brands, err := m.remote.LookupBrands(callCtx, bin, m.supported)
	if err != nil {
		logger.Warn("Remote brand lookup failed, using local table",
			zap.Int("prefix_length", len(prefix)),
			zap.Error(err),
		)
		metrics.RecordRemoteFallback("error")
		metrics.RecordLookup(string(SourceLocal), local.Brands.Len(), time.Since(start).Seconds())
		return local
	}

	// Remote brands must still be consistent with how many digits were typed.
	resolved := brand.NewSet()
	for _, b := range brands {
		if m.table.AdmitsLength(b, len(prefix)) {
			resolved.Add(b)
		}
	}

	if resolved.Len() == 0 {
		metrics.RecordRemoteFallback("empty")
		metrics.RecordLookup(string(SourceLocal), local.Brands.Len(), time.Since(start).Seconds())
		return local
	}

	metrics.RecordLookup(string(SourceRemote), resolved.Len(), time.Since(start).Seconds())
	return Result{Prefix: prefix, Brands: resolved, Source: SourceRemote}
}
