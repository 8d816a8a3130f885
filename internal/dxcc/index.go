// Package dxcc resolves callsigns to their DXCC entity using the records of a
// parsed country file.
package dxcc

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/armon/go-radix"

	"github.com/user00265/ctydatapi/internal/cty"
	"github.com/user00265/ctydatapi/internal/logging"
)

// entry is the value stored in both trees: a shared country template and the
// override chain of the alias that produced the key.
type entry struct {
	country   *cty.Country
	overrides []cty.Override
}

// Index answers callsign lookups. It is immutable once NewIndex returns and
// safe for concurrent use without locking.
type Index struct {
	callsigns *radix.Tree
	prefixes  *radix.Tree
	countries []*cty.Country
	primary   map[string]*cty.Country
	version   string
}

// Match is the result of a lookup.
type Match struct {
	// Country is a private copy of the entity with the alias overrides applied.
	Country cty.Country
	// Key is the lower-case callsign or prefix that matched.
	Key string
	// Exact is true when the callsign matched an exact callsign alias.
	Exact bool
}

// Stats summarizes the contents of an index.
type Stats struct {
	Countries int    `json:"countries"`
	Callsigns int    `json:"callsigns"`
	Prefixes  int    `json:"prefixes"`
	Version   string `json:"version,omitempty"`
}

// NewIndex builds an index from parsed country records.
//
// Every alias becomes a key, lower-cased: exact callsign aliases go into the
// callsign tree and prefix aliases into the prefix tree. When the same key
// occurs more than once, the alias inserted last wins.
func NewIndex(countries []cty.Country) *Index {
	idx := &Index{
		callsigns: radix.New(),
		prefixes:  radix.New(),
		countries: make([]*cty.Country, 0, len(countries)),
		primary:   make(map[string]*cty.Country, len(countries)),
	}

	for i := range countries {
		aliases := countries[i].Aliases
		tmpl := countries[i]
		tmpl.Aliases = nil
		country := &tmpl

		idx.countries = append(idx.countries, country)
		idx.primary[strings.ToUpper(country.PrimaryPrefix)] = country

		for _, a := range aliases {
			e := entry{country: country, overrides: a.Overrides}
			key := strings.ToLower(a.Token)
			if a.Kind == cty.ExactCallsign {
				idx.callsigns.Insert(key, e)
			} else {
				idx.prefixes.Insert(key, e)
			}
		}
	}
	return idx
}

// Build parses raw country file text and indexes it. A parse failure is
// returned unchanged as a *cty.ParseError.
func Build(raw string) (*Index, error) {
	start := time.Now()
	countries, err := cty.Parse(raw)
	if err != nil {
		return nil, err
	}
	idx := NewIndex(countries)
	sum := sha256.Sum256([]byte(raw))
	idx.version = hex.EncodeToString(sum[:6])

	st := idx.Stats()
	logging.Debug("Built DXCC index %s: %d countries, %d callsigns, %d prefixes in %s",
		st.Version, st.Countries, st.Callsigns, st.Prefixes, time.Since(start).Round(time.Microsecond))
	return idx, nil
}

// Lookup resolves a callsign. An exact callsign alias takes precedence over
// any prefix; otherwise the longest matching prefix is used. The second return
// value is false when nothing matches.
func (idx *Index) Lookup(callsign string) (Match, bool) {
	if idx == nil || callsign == "" {
		return Match{}, false
	}
	key := strings.ToLower(callsign)

	if v, ok := idx.callsigns.Get(key); ok {
		return resolve(v.(entry), key, true), true
	}
	if prefix, v, ok := idx.prefixes.LongestPrefix(key); ok {
		return resolve(v.(entry), prefix, false), true
	}
	return Match{}, false
}

// Resolve is Lookup without match details.
func (idx *Index) Resolve(callsign string) (*cty.Country, bool) {
	m, ok := idx.Lookup(callsign)
	if !ok {
		return nil, false
	}
	return &m.Country, true
}

func resolve(e entry, key string, exact bool) Match {
	c := *e.country
	for _, o := range e.overrides {
		o.Apply(&c)
	}
	return Match{Country: c, Key: key, Exact: exact}
}

// Countries returns copies of all country records in file order.
func (idx *Index) Countries() []cty.Country {
	if idx == nil {
		return nil
	}
	out := make([]cty.Country, len(idx.countries))
	for i, c := range idx.countries {
		out[i] = *c
	}
	return out
}

// Country returns the record with the given primary prefix, ignoring case.
func (idx *Index) Country(primaryPrefix string) (cty.Country, bool) {
	if idx == nil {
		return cty.Country{}, false
	}
	c, ok := idx.primary[strings.ToUpper(primaryPrefix)]
	if !ok {
		return cty.Country{}, false
	}
	return *c, true
}

// Version identifies the source text the index was built from. It is empty
// for indexes created directly with NewIndex.
func (idx *Index) Version() string {
	if idx == nil {
		return ""
	}
	return idx.version
}

func (idx *Index) Stats() Stats {
	if idx == nil {
		return Stats{}
	}
	return Stats{
		Countries: len(idx.countries),
		Callsigns: idx.callsigns.Len(),
		Prefixes:  idx.prefixes.Len(),
		Version:   idx.version,
	}
}
