package params

import (
	"context"
	"time"

	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// Attribute-level keys used in Lookup and Data. The store maps them to
// physical columns.
const (
	FieldPublishedAt = "publishedAt"
	FieldLocale      = "locale"
)

// LocaleSource resolves the system default locale. Resolution hits the
// database, hence the context.
type LocaleSource interface {
	GetDefaultLocale(ctx context.Context) (string, error)
}

// DefaultToDraft assumes draft when a draft/publish content type is queried
// without an explicit status.
func DefaultToDraft(_ context.Context, ct *schema.ContentType, p Params) (Params, error) {
	if !ct.DraftAndPublish {
		return p, nil
	}
	if p.Status == StatusUnset {
		p.Status = StatusDraft
	}
	return p, nil
}

// SetStatusToDraft forces the draft status for write operations: creates
// and updates always target the draft version, publication is a separate
// step.
func SetStatusToDraft(_ context.Context, ct *schema.ContentType, p Params) (Params, error) {
	if !ct.DraftAndPublish {
		return p, nil
	}
	p.Status = StatusDraft
	return p, nil
}

// StatusToLookup translates the requested status into a publishedAt filter:
// null for draft, not-null for published, no filter for "*".
func StatusToLookup(_ context.Context, ct *schema.ContentType, p Params) (Params, error) {
	if !ct.DraftAndPublish {
		return p, nil
	}

	switch p.Status {
	case StatusDraft:
		return p.WithLookup(FieldPublishedAt, nil), nil
	case StatusPublished:
		return p.WithLookup(FieldPublishedAt, map[string]any{"$notNull": true}), nil
	default:
		return p, nil
	}
}

// StatusToData stamps the publishedAt value that will be written. Content
// types without draft/publish store every version as published.
func StatusToData(_ context.Context, ct *schema.ContentType, p Params) (Params, error) {
	if !ct.DraftAndPublish {
		return p.WithData(FieldPublishedAt, time.Now().UTC()), nil
	}

	switch p.Status {
	case StatusPublished:
		return p.WithData(FieldPublishedAt, time.Now().UTC()), nil
	default:
		return p.WithData(FieldPublishedAt, nil), nil
	}
}

// FilterDataPublishedAt drops a caller-supplied publishedAt from data; the
// publication timestamp is engine-managed and never writable directly.
func FilterDataPublishedAt(_ context.Context, _ *schema.ContentType, p Params) (Params, error) {
	return p.WithoutData(FieldPublishedAt), nil
}

// DefaultLocale resolves the system default locale when a localized content
// type is addressed without one.
func DefaultLocale(src LocaleSource) Transform {
	return func(ctx context.Context, ct *schema.ContentType, p Params) (Params, error) {
		if !ct.Localized {
			return p, nil
		}
		if !p.Locale.IsZero() {
			return p, nil
		}
		code, err := src.GetDefaultLocale(ctx)
		if err != nil {
			return Params{}, err
		}
		p.Locale = LocaleOf(code)
		return p, nil
	}
}

// LocaleToLookup translates the requested locale into a filter: an equality
// match for a single locale, no filter for "*".
func LocaleToLookup(_ context.Context, ct *schema.ContentType, p Params) (Params, error) {
	if !ct.Localized || p.Locale.IsZero() || p.Locale.IsAll() {
		return p, nil
	}
	if code, ok := p.Locale.Single(); ok {
		return p.WithLookup(FieldLocale, code), nil
	}
	return p.WithLookup(FieldLocale, map[string]any{"$in": p.Locale.Values()}), nil
}

// MultiLocaleToLookup is the bulk-operation variant of LocaleToLookup: a
// list of locales becomes an $in filter so delete/publish/unpublish can act
// across all matching locales in one pass. A single locale behaves like
// LocaleToLookup, "*" matches everything.
func MultiLocaleToLookup(ctx context.Context, ct *schema.ContentType, p Params) (Params, error) {
	return LocaleToLookup(ctx, ct, p)
}

// LocaleToData stamps a single requested locale onto created or updated
// data.
func LocaleToData(_ context.Context, ct *schema.ContentType, p Params) (Params, error) {
	if !ct.Localized {
		return p, nil
	}
	if code, ok := p.Locale.Single(); ok {
		return p.WithData(FieldLocale, code), nil
	}
	return p, nil
}

// DropStatus removes any requested status; used by operations that are
// status-agnostic unless told otherwise (delete resolves its own scope).
func DropStatus(_ context.Context, _ *schema.ContentType, p Params) (Params, error) {
	p.Status = StatusUnset
	return p, nil
}
