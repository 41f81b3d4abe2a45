package documents

import (
	"context"
	"time"

	"github.com/dontreeza/sangpragay-strapi/internal/store"
	"github.com/dontreeza/sangpragay-strapi/internal/validator"
	"github.com/dontreeza/sangpragay-strapi/pkg/docid"
	"github.com/dontreeza/sangpragay-strapi/pkg/params"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// createEntry validates the payload and inserts one version row together
// with its component rows. A zero id mints a fresh document identity;
// update and lifecycle paths pass the identity they already hold.
func (r *Repository) createEntry(ctx context.Context, svc *Service, qp params.Params, id docid.ID) (*Version, error) {
	if id.IsZero() {
		id = svc.idgen.NewID()
	}

	pubAt := publishedAtOf(qp.Data)
	locale, _ := qp.Data[params.FieldLocale].(string)

	valid, err := svc.validator.ValidateCreation(ctx, r.ct, attributeData(r.ct, qp.Data), validator.Options{
		IsDraft: pubAt == nil,
		Locale:  locale,
	})
	if err != nil {
		return nil, err
	}

	resolved, err := svc.resolveRelations(ctx, r.ct, valid, pubAt == nil, locale)
	if err != nil {
		return nil, err
	}

	row := rowPayload(r.ct, resolved)
	row[store.FieldDocumentID] = id.String()
	row[store.FieldPublishedAt] = timeOrNil(pubAt)
	if r.ct.Localized {
		row[store.FieldLocale] = localeOrNil(locale)
	}
	copyTimestamp(qp.Data, row, store.FieldCreatedAt)
	copyTimestamp(qp.Data, row, store.FieldUpdatedAt)

	query := svc.engine.MustQuery(r.ct.UID)
	created, err := query.Create(ctx, store.Descriptor{Data: row})
	if err != nil {
		return nil, err
	}
	version, err := versionFromRow(created)
	if err != nil {
		return nil, err
	}

	if err := svc.components.Create(ctx, r.ct, version.ID, resolved); err != nil {
		return nil, err
	}
	if err := svc.attachStructural(ctx, r.ct, version); err != nil {
		return nil, err
	}
	return version, nil
}

// updateEntry validates the payload against the current version and applies
// it: scalar and relation columns in place, component rows by diff.
func (r *Repository) updateEntry(ctx context.Context, svc *Service, qp params.Params, cur *Version) (*Version, error) {
	valid, err := svc.validator.ValidateUpdate(ctx, r.ct, attributeData(r.ct, qp.Data), validator.Options{
		IsDraft:   cur.IsDraft(),
		Locale:    cur.Locale,
		ExcludeID: cur.ID,
	})
	if err != nil {
		return nil, err
	}

	resolved, err := svc.resolveRelations(ctx, r.ct, valid, cur.IsDraft(), cur.Locale)
	if err != nil {
		return nil, err
	}

	query := svc.engine.MustQuery(r.ct.UID)
	updated, err := query.Update(ctx, store.Descriptor{
		Where: map[string]any{"id": cur.ID},
		Data:  rowPayload(r.ct, resolved),
	})
	if err != nil {
		return nil, err
	}

	if err := svc.components.Update(ctx, r.ct, cur.ID, resolved); err != nil {
		return nil, err
	}

	version, err := versionFromRow(updated)
	if err != nil {
		return nil, err
	}
	if err := svc.attachStructural(ctx, r.ct, version); err != nil {
		return nil, err
	}
	return version, nil
}

// cloneEntry copies one version under the new document identity: its scalar
// columns, relation targets, and a deep clone of its component rows, with
// the validated override payload applied on top.
func (r *Repository) cloneEntry(ctx context.Context, svc *Service, src *Version, newID docid.ID, override map[string]any) (*Version, error) {
	valid := map[string]any{}
	if len(override) > 0 {
		var err error
		valid, err = svc.validator.ValidateUpdate(ctx, r.ct, attributeData(r.ct, override), validator.Options{
			IsDraft: src.IsDraft(),
			Locale:  src.Locale,
		})
		if err != nil {
			return nil, err
		}
	}
	resolved, err := svc.resolveRelations(ctx, r.ct, valid, src.IsDraft(), src.Locale)
	if err != nil {
		return nil, err
	}

	row := rowPayload(r.ct, scalarFields(r.ct, src.Fields))
	for k, v := range rowPayload(r.ct, resolved) {
		row[k] = v
	}
	row[store.FieldDocumentID] = newID.String()
	row[store.FieldPublishedAt] = timeOrNil(src.PublishedAt)
	if r.ct.Localized {
		row[store.FieldLocale] = localeOrNil(src.Locale)
	}

	query := svc.engine.MustQuery(r.ct.UID)
	created, err := query.Create(ctx, store.Descriptor{Data: row})
	if err != nil {
		return nil, err
	}
	version, err := versionFromRow(created)
	if err != nil {
		return nil, err
	}

	if err := svc.components.Clone(ctx, r.ct, src.ID, version.ID); err != nil {
		return nil, err
	}
	if structural := structuralFields(r.ct, resolved); len(structural) > 0 {
		if err := svc.components.Update(ctx, r.ct, version.ID, structural); err != nil {
			return nil, err
		}
	}

	if err := svc.attachStructural(ctx, r.ct, version); err != nil {
		return nil, err
	}
	return version, nil
}

// recreateAs copies a snapshotted version to the other publication status:
// structural entries are re-created with fresh row identities and relation
// targets are remapped to their counterpart-status rows. The source's
// update timestamp is carried over so modification checks line up across
// statuses.
func (r *Repository) recreateAs(ctx context.Context, svc *Service, src *Version, status params.Status) (*Version, error) {
	data := make(map[string]any, len(src.Fields)+4)
	for name, value := range src.Fields {
		attr := r.ct.Attribute(name)
		switch {
		case attr == nil:
			continue
		case attr.IsStructural():
			data[name] = stripEntryIdentity(value)
		case attr.Kind == schema.KindRelation:
			remapped, err := svc.remapRelation(ctx, attr, value, status == params.StatusDraft)
			if err != nil {
				return nil, err
			}
			data[name] = remapped
		default:
			data[name] = value
		}
	}

	if status == params.StatusPublished {
		data[params.FieldPublishedAt] = time.Now().UTC()
	} else {
		data[params.FieldPublishedAt] = nil
	}
	if r.ct.Localized {
		data[params.FieldLocale] = src.Locale
	}
	data[store.FieldUpdatedAt] = src.UpdatedAt

	return r.createEntry(ctx, svc, params.Params{Data: data}, src.DocumentID)
}

// deleteVersions removes every version matching the filter together with
// its component rows, and returns the removed versions.
func (r *Repository) deleteVersions(ctx context.Context, svc *Service, where map[string]any) ([]Version, error) {
	query := svc.engine.MustQuery(r.ct.UID)
	rows, err := query.FindMany(ctx, store.Descriptor{Where: where, OrderBy: defaultOrder()})
	if err != nil {
		return nil, err
	}
	versions, err := versionsFromRows(rows)
	if err != nil {
		return nil, err
	}

	for i := range versions {
		if err := svc.components.Delete(ctx, r.ct, versions[i].ID); err != nil {
			return nil, err
		}
		if _, err := query.Delete(ctx, store.Descriptor{
			Where: map[string]any{"id": versions[i].ID},
		}); err != nil {
			return nil, err
		}
	}
	return versions, nil
}

// attachStructural loads the version's component data into its fields, so
// write operations return the same shape deep reads do.
func (svc *Service) attachStructural(ctx context.Context, ct *schema.ContentType, v *Version) error {
	if len(ct.StructuralAttributeNames()) == 0 {
		return nil
	}
	structural, err := svc.components.Get(ctx, ct, v.ID)
	if err != nil {
		return err
	}
	for name, value := range structural {
		v.Fields[name] = value
	}
	return nil
}

// attributeData strips engine-managed keys from a payload, leaving only
// what the schema may know about. Unknown attribute names pass through so
// validation can reject them.
func attributeData(ct *schema.ContentType, data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		if envelopeFields[key] {
			continue
		}
		out[key] = value
	}
	return out
}

// rowPayload extracts the column-backed attributes of a sanitized payload:
// scalars and resolved relation ids, never structural values.
func rowPayload(ct *schema.ContentType, data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for _, name := range ct.ScalarAttributeNames() {
		if value, ok := data[name]; ok {
			out[name] = value
		}
	}
	for _, name := range ct.RelationAttributeNames() {
		if value, ok := data[name]; ok {
			out[name] = value
		}
	}
	return out
}

// scalarFields picks stored scalar and relation values off a version's
// fields, the base layer a clone starts from.
func scalarFields(ct *schema.ContentType, fields map[string]any) map[string]any {
	return rowPayload(ct, fields)
}

// structuralFields picks structural attributes off a sanitized payload.
func structuralFields(ct *schema.ContentType, data map[string]any) map[string]any {
	out := make(map[string]any)
	for _, name := range ct.StructuralAttributeNames() {
		if value, ok := data[name]; ok {
			out[name] = value
		}
	}
	return out
}

// stripEntryIdentity removes stored row ids and positions from structural
// data so re-creating it mints fresh component rows. The dynamic-zone
// discriminator is kept.
func stripEntryIdentity(value any) any {
	switch t := value.(type) {
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			out = append(out, stripEntryIdentity(e))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			if k == "id" || k == "ord" {
				continue
			}
			out[k] = stripEntryIdentity(v)
		}
		return out
	default:
		return value
	}
}

func publishedAtOf(data map[string]any) *time.Time {
	switch t := data[params.FieldPublishedAt].(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	default:
		return nil
	}
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func localeOrNil(locale string) any {
	if locale == "" {
		return nil
	}
	return locale
}

func copyTimestamp(from, to map[string]any, key string) {
	if value, ok := from[key]; ok {
		to[key] = value
	}
}
