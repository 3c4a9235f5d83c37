package brand

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type Brand string

const (
	Visa          Brand = "visa"
	MasterCard    Brand = "mc"
	AmericanExp   Brand = "amex"
	DinersClub    Brand = "diners"
	Discover      Brand = "discover"
	JCB           Brand = "jcb"
	ChinaUnionPay Brand = "cup"
	Maestro       Brand = "maestro"
	Elo           Brand = "elo"
	Hipercard     Brand = "hipercard"
	Dankort       Brand = "dankort"
	Mir           Brand = "mir"
	UATP          Brand = "uatp"
	Bancontact    Brand = "bcmc"
)

var catalog = []Brand{
	Visa, MasterCard, AmericanExp, DinersClub, Discover, JCB, ChinaUnionPay,
	Maestro, Elo, Hipercard, Dankort, Mir, UATP, Bancontact,
}

// All returns every known brand in catalog order.
func All() []Brand {
	out := make([]Brand, len(catalog))
	copy(out, catalog)
	return out
}

func (b Brand) Valid() bool {
	for _, c := range catalog {
		if c == b {
			return true
		}
	}
	return false
}

func (b Brand) String() string {
	return string(b)
}

// Parse resolves a brand identifier, case-insensitively.
func Parse(s string) (Brand, error) {
	b := Brand(strings.ToLower(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", fmt.Errorf("unknown brand %q", s)
	}
	return b, nil
}

// ParseList parses identifiers and silently skips unknown ones.
func ParseList(ids []string) []Brand {
	out := make([]Brand, 0, len(ids))
	for _, id := range ids {
		if b, err := Parse(id); err == nil {
			out = append(out, b)
		}
	}
	return out
}

// Set is an unordered collection of brands.
type Set map[Brand]struct{}

func NewSet(brands ...Brand) Set {
	s := make(Set, len(brands))
	for _, b := range brands {
		s[b] = struct{}{}
	}
	return s
}

func (s Set) Add(b Brand) {
	s[b] = struct{}{}
}

func (s Set) Has(b Brand) bool {
	_, ok := s[b]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Sorted returns the members ordered by identifier.
func (s Set) Sorted() []Brand {
	out := make([]Brand, 0, len(s))
	for b := range s {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Intersect keeps the members of s that appear in allowed.
func (s Set) Intersect(allowed []Brand) Set {
	out := NewSet()
	for _, b := range allowed {
		if s.Has(b) {
			out.Add(b)
		}
	}
	return out
}

func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for b := range s {
		if !other.Has(b) {
			return false
		}
	}
	return true
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSet(ParseList(ids)...)
	return nil
}
