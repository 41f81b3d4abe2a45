package documents

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/dontreeza/sangpragay-strapi/internal/store"
	"github.com/dontreeza/sangpragay-strapi/pkg/docid"
)

// Version is one stored row of a document: a concrete combination of
// document identity, locale, and publication status, plus the attribute
// payload that was valid for it.
type Version struct {
	ID          int64
	DocumentID  docid.ID
	Locale      string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Fields holds the attribute values keyed by attribute name. Structural
	// attributes are present only when populated.
	Fields map[string]any
}

// IsDraft reports whether the version is a draft.
func (v *Version) IsDraft() bool {
	return v.PublishedAt == nil
}

// IsModified reports whether the draft has changed since the given
// published version was created from it. Publishing carries the draft's
// update timestamp onto the published row, so equal timestamps mean the
// draft is untouched.
func (v *Version) IsModified(published *Version) bool {
	if published == nil {
		return true
	}
	return !v.UpdatedAt.Equal(published.UpdatedAt)
}

// versionEnvelope is the engine-managed part of a row, split off from the
// attribute payload during decoding.
type versionEnvelope struct {
	ID          int64      `mapstructure:"id"`
	DocumentID  string     `mapstructure:"documentId"`
	Locale      string     `mapstructure:"locale"`
	PublishedAt *time.Time `mapstructure:"publishedAt"`
	CreatedAt   time.Time  `mapstructure:"createdAt"`
	UpdatedAt   time.Time  `mapstructure:"updatedAt"`
}

var envelopeFields = map[string]bool{
	store.FieldID:          true,
	store.FieldDocumentID:  true,
	store.FieldLocale:      true,
	store.FieldPublishedAt: true,
	store.FieldCreatedAt:   true,
	store.FieldUpdatedAt:   true,
}

// versionFromRow splits a stored row into the version envelope and the
// attribute payload.
func versionFromRow(row store.Row) (*Version, error) {
	env := versionEnvelope{}

	meta := map[string]any{}
	fields := map[string]any{}
	for key, value := range row {
		if envelopeFields[key] {
			if value != nil {
				meta[key] = value
			}
			continue
		}
		fields[key] = value
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &env,
	})
	if err != nil {
		return nil, fmt.Errorf("error building row decoder: %w", err)
	}
	if err := dec.Decode(meta); err != nil {
		return nil, fmt.Errorf("error decoding version row: %w", err)
	}

	id, err := docid.Parse(env.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("error parsing document id %q: %w", env.DocumentID, err)
	}

	return &Version{
		ID:          env.ID,
		DocumentID:  id,
		Locale:      env.Locale,
		PublishedAt: env.PublishedAt,
		CreatedAt:   env.CreatedAt,
		UpdatedAt:   env.UpdatedAt,
		Fields:      fields,
	}, nil
}

func versionsFromRows(rows []store.Row) ([]Version, error) {
	out := make([]Version, 0, len(rows))
	for _, row := range rows {
		v, err := versionFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// DeleteResult reports how many versions a delete removed.
type DeleteResult struct {
	DeletedEntries int
}

// CloneResult carries the freshly minted document identity and the
// cloned versions.
type CloneResult struct {
	DocumentID docid.ID
	Versions   []Version
}

// PublishResult carries the versions created by publish or discard.
type PublishResult struct {
	Versions []Version
}
