package bintable

import (
	"github.com/darisadam/cardbrand/internal/domain/brand"
)

// Range is an inclusive interval of leading digits. Low and High have equal length.
type Range struct {
	Low  string
	High string
}

type Pattern struct {
	Brand     brand.Brand
	Ranges    []Range
	MaxLength int
}

type Table struct {
	patterns []Pattern
}

func New(patterns []Pattern) *Table {
	return &Table{patterns: patterns}
}

// r is shorthand for a single-value range.
func r(p string) Range {
	return Range{Low: p, High: p}
}

var defaultPatterns = []Pattern{
	{Brand: brand.Visa, Ranges: []Range{r("4")}, MaxLength: 19},
	{Brand: brand.MasterCard, Ranges: []Range{{"51", "55"}, {"2221", "2720"}}, MaxLength: 16},
	{Brand: brand.AmericanExp, Ranges: []Range{r("34"), r("37")}, MaxLength: 15},
	{Brand: brand.DinersClub, Ranges: []Range{{"300", "305"}, r("36"), {"38", "39"}}, MaxLength: 19},
	{Brand: brand.Discover, Ranges: []Range{r("6011"), {"644", "649"}, r("65"), {"622126", "622925"}}, MaxLength: 19},
	{Brand: brand.JCB, Ranges: []Range{{"3528", "3589"}}, MaxLength: 19},
	{Brand: brand.ChinaUnionPay, Ranges: []Range{r("62"), r("81")}, MaxLength: 19},
	{Brand: brand.Maestro, Ranges: []Range{r("50"), {"56", "58"}, r("6")}, MaxLength: 19},
	{Brand: brand.Elo, Ranges: []Range{r("4011"), r("4312"), r("4389"), r("4514"), r("4576"), r("5041"), r("5066"), r("5067"), r("509"), r("6277"), r("6362"), r("6363"), r("650"), r("6516"), r("6550")}, MaxLength: 16},
	{Brand: brand.Hipercard, Ranges: []Range{r("606282"), r("3841")}, MaxLength: 19},
	{Brand: brand.Dankort, Ranges: []Range{r("5019")}, MaxLength: 16},
	{Brand: brand.Mir, Ranges: []Range{{"2200", "2204"}}, MaxLength: 19},
	{Brand: brand.UATP, Ranges: []Range{r("1")}, MaxLength: 15},
	{Brand: brand.Bancontact, Ranges: []Range{r("6703"), r("479658"), r("606005")}, MaxLength: 19},
}

var defaultTable = New(defaultPatterns)

// Default returns the built-in brand table.
func Default() *Table {
	return defaultTable
}

// Match returns every brand with a range whose full width is covered by prefix
// and whose maximum number length has not been exceeded.
func (t *Table) Match(prefix string) brand.Set {
	matched := brand.NewSet()
	if prefix == "" {
		return matched
	}

	for _, p := range t.patterns {
		if len(prefix) > p.MaxLength {
			continue
		}
		for _, rg := range p.Ranges {
			if rg.contains(prefix) {
				matched.Add(p.Brand)
				break
			}
		}
	}

	return matched
}

// AdmitsLength reports whether a number of n digits can still belong to b.
func (t *Table) AdmitsLength(b brand.Brand, n int) bool {
	for _, p := range t.patterns {
		if p.Brand == b {
			return n <= p.MaxLength
		}
	}
	return false
}

// MaxLength returns the longest number length any registered brand accepts.
func (t *Table) MaxLength() int {
	longest := 0
	for _, p := range t.patterns {
		if p.MaxLength > longest {
			longest = p.MaxLength
		}
	}
	return longest
}

// Equal-length digit strings compare the same lexically and numerically.
func (rg Range) contains(prefix string) bool {
	width := len(rg.Low)
	if width == 0 || len(prefix) < width {
		return false
	}
	head := prefix[:width]
	return head >= rg.Low && head <= rg.High
}
