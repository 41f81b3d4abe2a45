// Package params implements the status/locale parameter pipeline: the pure
// transforms that normalize a request's locale, publication status, and data
// into a concrete database lookup and into default values when absent.
//
// Transforms are named functions over a Params value, applied left-to-right
// with Pipe. Each transform copies what it changes; the input Params is
// never mutated, so every step is independently testable with direct
// input/output assertions.
package params

import (
	"context"

	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// Status selects which publication state of a document an operation
// addresses.
type Status string

const (
	// StatusUnset means the caller did not request a status.
	StatusUnset Status = ""
	// StatusDraft addresses versions with a null published timestamp.
	StatusDraft Status = "draft"
	// StatusPublished addresses versions with a non-null published timestamp.
	StatusPublished Status = "published"
	// StatusAll addresses both states at once.
	StatusAll Status = "*"
)

// Locale selects which locale variants an operation addresses. The zero
// value means "not requested".
type Locale struct {
	codes []string
	all   bool
}

// LocaleOf returns a single-locale selector. "*" selects all locales.
func LocaleOf(code string) Locale {
	if code == "*" {
		return AllLocales()
	}
	if code == "" {
		return Locale{}
	}
	return Locale{codes: []string{code}}
}

// Locales returns a multi-locale selector, used by bulk operations that act
// across several locales at once.
func Locales(codes ...string) Locale {
	if len(codes) == 0 {
		return Locale{}
	}
	return Locale{codes: append([]string(nil), codes...)}
}

// AllLocales selects every locale.
func AllLocales() Locale {
	return Locale{all: true}
}

// IsZero reports whether no locale was requested.
func (l Locale) IsZero() bool { return !l.all && len(l.codes) == 0 }

// IsAll reports whether every locale is selected.
func (l Locale) IsAll() bool { return l.all }

// Single returns the locale code when exactly one locale is selected.
func (l Locale) Single() (string, bool) {
	if l.all || len(l.codes) != 1 {
		return "", false
	}
	return l.codes[0], true
}

// Values returns the selected locale codes. Empty for zero and all.
func (l Locale) Values() []string {
	return append([]string(nil), l.codes...)
}

// Populate describes the relation/component inclusion a caller requests on
// reads. The builder in internal/populate compiles it against a schema.
type Populate struct {
	// Fields selects attributes to populate, optionally nested.
	Fields map[string]*Populate
	// Deep populates relations transitively down to this depth.
	Deep int
	// Count attaches aggregate counts instead of full related rows.
	Count bool
}

// Params carries one operation's request options through the pipeline.
//
// Lookup is the resolved database filter the pipeline produces; it speaks
// the operator dialect the store understands (plain values for equality,
// nil for IS NULL, {"$notNull": true}, {"$ne": v}, {"$in": [...]}).
type Params struct {
	Data     map[string]any
	Locale   Locale
	Status   Status
	Populate *Populate
	Filters  map[string]any
	Lookup   map[string]any
}

// WithLookup returns a copy of p with one lookup entry set.
func (p Params) WithLookup(key string, value any) Params {
	lookup := make(map[string]any, len(p.Lookup)+1)
	for k, v := range p.Lookup {
		lookup[k] = v
	}
	lookup[key] = value
	p.Lookup = lookup
	return p
}

// WithData returns a copy of p with one data entry set.
func (p Params) WithData(key string, value any) Params {
	data := make(map[string]any, len(p.Data)+1)
	for k, v := range p.Data {
		data[k] = v
	}
	data[key] = value
	p.Data = data
	return p
}

// WithoutData returns a copy of p with one data entry removed.
func (p Params) WithoutData(key string) Params {
	if _, ok := p.Data[key]; !ok {
		return p
	}
	data := make(map[string]any, len(p.Data))
	for k, v := range p.Data {
		if k != key {
			data[k] = v
		}
	}
	p.Data = data
	return p
}

// Transform is one pipeline step. Transforms must treat p as immutable.
type Transform func(ctx context.Context, ct *schema.ContentType, p Params) (Params, error)

// Pipe composes transforms left-to-right into a single Transform.
func Pipe(transforms ...Transform) Transform {
	return func(ctx context.Context, ct *schema.ContentType, p Params) (Params, error) {
		var err error
		for _, t := range transforms {
			p, err = t(ctx, ct, p)
			if err != nil {
				return Params{}, err
			}
		}
		return p, nil
	}
}
