package documents

import (
	"context"

	"github.com/dontreeza/sangpragay-strapi/internal/populate"
	"github.com/dontreeza/sangpragay-strapi/internal/store"
	"github.com/dontreeza/sangpragay-strapi/pkg/docid"
	"github.com/dontreeza/sangpragay-strapi/pkg/params"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// Repository exposes the document operations of one content type. All
// operations resolve status and locale through the params pipeline before
// touching storage, so callers only ever speak in request terms.
type Repository struct {
	svc *Service
	ct  *schema.ContentType
}

// ContentType returns the descriptor this repository operates on.
func (r *Repository) ContentType() *schema.ContentType {
	return r.ct
}

// readPipeline resolves status and locale for read operations: draft is
// assumed when unspecified, the default locale fills in for localized types.
func (r *Repository) readPipeline(svc *Service) params.Transform {
	return params.Pipe(
		params.DefaultToDraft,
		params.StatusToLookup,
		params.DefaultLocale(svc.locales),
		params.LocaleToLookup,
	)
}

// lifecyclePipeline resolves the scope of publish, unpublish, and discard:
// the default locale fills in when absent, a multi-locale selector becomes
// one lookup. Status is owned by the operation itself.
func (r *Repository) lifecyclePipeline(svc *Service) params.Transform {
	return params.Pipe(
		params.DefaultLocale(svc.locales),
		params.MultiLocaleToLookup,
	)
}

// FindMany returns every version matching the resolved status, locale, and
// caller filters.
func (r *Repository) FindMany(ctx context.Context, p params.Params) ([]Version, error) {
	svc := r.svc
	qp, err := r.readPipeline(svc)(ctx, r.ct, p)
	if err != nil {
		return nil, err
	}

	where := mergeWhere(qp.Lookup, qp.Filters)
	return r.findVersions(ctx, svc, where, qp.Populate, findOptions{})
}

// FindFirst returns the first version matching the resolved scope, or nil.
func (r *Repository) FindFirst(ctx context.Context, p params.Params) (*Version, error) {
	svc := r.svc
	qp, err := r.readPipeline(svc)(ctx, r.ct, p)
	if err != nil {
		return nil, err
	}

	where := mergeWhere(qp.Lookup, qp.Filters)
	versions, err := r.findVersions(ctx, svc, where, qp.Populate, findOptions{limit: 1})
	if err != nil || len(versions) == 0 {
		return nil, err
	}
	return &versions[0], nil
}

// FindOne returns the version of one document matching the resolved status
// and locale, or nil when the document has no such version.
func (r *Repository) FindOne(ctx context.Context, id docid.ID, p params.Params) (*Version, error) {
	svc := r.svc
	qp, err := r.readPipeline(svc)(ctx, r.ct, p)
	if err != nil {
		return nil, err
	}

	where := mergeWhere(qp.Lookup, qp.Filters)
	where[store.FieldDocumentID] = id.String()
	versions, err := r.findVersions(ctx, svc, where, qp.Populate, findOptions{limit: 1})
	if err != nil || len(versions) == 0 {
		return nil, err
	}
	return &versions[0], nil
}

// FindLocales returns every locale version of one document under the
// resolved status, ordered by locale. An explicit locale selector narrows
// the result; absent one, all locales are returned.
func (r *Repository) FindLocales(ctx context.Context, id docid.ID, p params.Params) ([]Version, error) {
	svc := r.svc
	qp, err := params.Pipe(
		params.DefaultToDraft,
		params.StatusToLookup,
		params.MultiLocaleToLookup,
	)(ctx, r.ct, p)
	if err != nil {
		return nil, err
	}

	where := mergeWhere(qp.Lookup, nil)
	where[store.FieldDocumentID] = id.String()
	return r.findVersions(ctx, svc, where, qp.Populate, findOptions{byLocale: true})
}

// Count returns the number of versions in the resolved scope. Unlike the
// other reads, count is status-agnostic unless a status is requested: both
// siblings of a draft/published pair are counted by default.
func (r *Repository) Count(ctx context.Context, p params.Params) (int64, error) {
	svc := r.svc
	qp, err := params.Pipe(
		params.StatusToLookup,
		params.DefaultLocale(svc.locales),
		params.LocaleToLookup,
	)(ctx, r.ct, p)
	if err != nil {
		return 0, err
	}

	where := mergeWhere(qp.Lookup, qp.Filters)
	return svc.engine.MustQuery(r.ct.UID).Count(ctx, store.Descriptor{Where: where})
}

// Create validates the payload and inserts a new draft version under a
// freshly minted document id. Requesting the published status additionally
// publishes the new document and returns the published version.
func (r *Repository) Create(ctx context.Context, p params.Params) (*Version, error) {
	if p.Data == nil {
		return nil, ErrMissingData
	}

	qp, err := params.Pipe(
		params.FilterDataPublishedAt,
		params.SetStatusToDraft,
		params.StatusToData,
		params.DefaultLocale(r.svc.locales),
		params.LocaleToData,
	)(ctx, r.ct, p)
	if err != nil {
		return nil, err
	}

	var created *Version
	err = r.svc.engine.Transaction(ctx, func(tx *store.Engine) error {
		txSvc := r.svc.withEngine(tx)
		created, err = r.createEntry(ctx, txSvc, qp, docid.ID{})
		return err
	})
	if err != nil {
		return nil, err
	}

	if r.ct.DraftAndPublish && p.Status == params.StatusPublished {
		return r.publishOne(ctx, created.DocumentID, p)
	}
	return created, nil
}

// Update validates the payload against the targeted draft version and
// applies it. When the document exists but has no version for the resolved
// locale, a new draft for that locale is materialized instead. A wholly
// absent document yields nil. Requesting the published status additionally
// publishes the result.
func (r *Repository) Update(ctx context.Context, id docid.ID, p params.Params) (*Version, error) {
	qp, err := params.Pipe(
		params.FilterDataPublishedAt,
		params.SetStatusToDraft,
		params.StatusToLookup,
		params.StatusToData,
		params.DefaultLocale(r.svc.locales),
		params.LocaleToLookup,
		params.LocaleToData,
	)(ctx, r.ct, p)
	if err != nil {
		return nil, err
	}

	var updated *Version
	err = r.svc.engine.Transaction(ctx, func(tx *store.Engine) error {
		txSvc := r.svc.withEngine(tx)
		query := txSvc.engine.MustQuery(r.ct.UID)

		where := mergeWhere(qp.Lookup, nil)
		where[store.FieldDocumentID] = id.String()
		current, err := query.FindOne(ctx, store.Descriptor{Where: where})
		if err != nil {
			return err
		}

		if current != nil {
			cur, err := versionFromRow(current)
			if err != nil {
				return err
			}
			updated, err = r.updateEntry(ctx, txSvc, qp, cur)
			return err
		}

		// No version for this scope. Materialize a new locale draft when
		// the document exists at all, otherwise leave updated nil.
		sibling, err := query.FindOne(ctx, store.Descriptor{
			Where: map[string]any{store.FieldDocumentID: id.String()},
		})
		if err != nil || sibling == nil {
			return err
		}
		updated, err = r.createEntry(ctx, txSvc, qp, id)
		return err
	})
	if err != nil || updated == nil {
		return nil, err
	}

	if r.ct.DraftAndPublish && p.Status == params.StatusPublished {
		return r.publishOne(ctx, id, p)
	}
	return updated, nil
}

// Delete removes every version of the document in the resolved locale
// scope, all locales when none is given. Narrowing to the draft status is
// rejected; narrowing to published removes only published versions.
func (r *Repository) Delete(ctx context.Context, id docid.ID, p params.Params) (*DeleteResult, error) {
	if p.Status == params.StatusDraft {
		return nil, ErrDeleteDraftDirectly
	}

	qp, err := params.Pipe(
		params.DropStatus,
		params.MultiLocaleToLookup,
	)(ctx, r.ct, p)
	if err != nil {
		return nil, err
	}

	where := mergeWhere(qp.Lookup, nil)
	where[store.FieldDocumentID] = id.String()
	if r.ct.DraftAndPublish && p.Status == params.StatusPublished {
		where[store.FieldPublishedAt] = map[string]any{"$notNull": true}
	}

	var deleted []Version
	err = r.svc.engine.Transaction(ctx, func(tx *store.Engine) error {
		txSvc := r.svc.withEngine(tx)
		deleted, err = r.deleteVersions(ctx, txSvc, where)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &DeleteResult{DeletedEntries: len(deleted)}, nil
}

// Clone copies every version of the document in the resolved locale scope
// under a freshly minted document id, deep-cloning components and applying
// the payload as a validated override. Returns nil when the document does
// not exist.
func (r *Repository) Clone(ctx context.Context, id docid.ID, p params.Params) (*CloneResult, error) {
	qp, err := params.Pipe(
		params.FilterDataPublishedAt,
		params.MultiLocaleToLookup,
	)(ctx, r.ct, p)
	if err != nil {
		return nil, err
	}

	where := mergeWhere(qp.Lookup, nil)
	where[store.FieldDocumentID] = id.String()

	newID := r.svc.idgen.NewID()
	var cloned []Version
	err = r.svc.engine.Transaction(ctx, func(tx *store.Engine) error {
		txSvc := r.svc.withEngine(tx)
		query := txSvc.engine.MustQuery(r.ct.UID)

		rows, err := query.FindMany(ctx, store.Descriptor{Where: where, OrderBy: defaultOrder()})
		if err != nil {
			return err
		}
		sources, err := versionsFromRows(rows)
		if err != nil {
			return err
		}

		for i := range sources {
			v, err := r.cloneEntry(ctx, txSvc, &sources[i], newID, qp.Data)
			if err != nil {
				return err
			}
			cloned = append(cloned, *v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(cloned) == 0 {
		return nil, nil
	}
	return &CloneResult{DocumentID: newID, Versions: cloned}, nil
}

// Publish replaces the published versions of the document in the resolved
// locale scope with copies of their drafts. The drafts are preserved; their
// relational closure is snapshotted, components re-created, and relation
// targets remapped to their published counterparts.
func (r *Repository) Publish(ctx context.Context, id docid.ID, p params.Params) (*PublishResult, error) {
	svc := r.svc
	svc.log.Debug("publishing document", "uid", r.ct.UID, "documentId", id.String())

	var result *PublishResult
	err := svc.engine.Transaction(ctx, func(tx *store.Engine) error {
		txSvc := svc.withEngine(tx)
		qp, err := r.lifecyclePipeline(txSvc)(ctx, r.ct, p)
		if err != nil {
			return err
		}

		draftWhere := mergeWhere(qp.Lookup, nil)
		draftWhere[store.FieldDocumentID] = id.String()
		draftWhere[store.FieldPublishedAt] = nil
		drafts, err := r.snapshotVersions(ctx, txSvc, draftWhere)
		if err != nil {
			return err
		}
		if len(drafts) == 0 {
			return ErrNotFound
		}

		publishedWhere := mergeWhere(qp.Lookup, nil)
		publishedWhere[store.FieldDocumentID] = id.String()
		publishedWhere[store.FieldPublishedAt] = map[string]any{"$notNull": true}
		if _, err := r.deleteVersions(ctx, txSvc, publishedWhere); err != nil {
			return err
		}

		versions := make([]Version, 0, len(drafts))
		for i := range drafts {
			v, err := r.recreateAs(ctx, txSvc, &drafts[i], params.StatusPublished)
			if err != nil {
				return err
			}
			versions = append(versions, *v)
		}
		result = &PublishResult{Versions: versions}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Unpublish deletes the published versions of the document in the resolved
// locale scope. Drafts are untouched; no published version is a no-op.
func (r *Repository) Unpublish(ctx context.Context, id docid.ID, p params.Params) (*PublishResult, error) {
	svc := r.svc
	svc.log.Debug("unpublishing document", "uid", r.ct.UID, "documentId", id.String())

	var result *PublishResult
	err := svc.engine.Transaction(ctx, func(tx *store.Engine) error {
		txSvc := svc.withEngine(tx)
		qp, err := r.lifecyclePipeline(txSvc)(ctx, r.ct, p)
		if err != nil {
			return err
		}

		where := mergeWhere(qp.Lookup, nil)
		where[store.FieldDocumentID] = id.String()
		where[store.FieldPublishedAt] = map[string]any{"$notNull": true}
		deleted, err := r.deleteVersions(ctx, txSvc, where)
		if err != nil {
			return err
		}
		result = &PublishResult{Versions: deleted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DiscardDraft replaces the draft versions of the document in the resolved
// locale scope with copies of their published counterparts, relation
// targets remapped back to draft rows. Nothing happens when no published
// version exists: the draft is the only state and discarding it would lose
// the document.
func (r *Repository) DiscardDraft(ctx context.Context, id docid.ID, p params.Params) (*PublishResult, error) {
	svc := r.svc
	svc.log.Debug("discarding draft", "uid", r.ct.UID, "documentId", id.String())

	var result *PublishResult
	err := svc.engine.Transaction(ctx, func(tx *store.Engine) error {
		txSvc := svc.withEngine(tx)
		qp, err := r.lifecyclePipeline(txSvc)(ctx, r.ct, p)
		if err != nil {
			return err
		}

		publishedWhere := mergeWhere(qp.Lookup, nil)
		publishedWhere[store.FieldDocumentID] = id.String()
		publishedWhere[store.FieldPublishedAt] = map[string]any{"$notNull": true}
		published, err := r.snapshotVersions(ctx, txSvc, publishedWhere)
		if err != nil {
			return err
		}
		if len(published) == 0 {
			result = &PublishResult{}
			return nil
		}

		draftWhere := mergeWhere(qp.Lookup, nil)
		draftWhere[store.FieldDocumentID] = id.String()
		draftWhere[store.FieldPublishedAt] = nil
		if _, err := r.deleteVersions(ctx, txSvc, draftWhere); err != nil {
			return err
		}

		versions := make([]Version, 0, len(published))
		for i := range published {
			v, err := r.recreateAs(ctx, txSvc, &published[i], params.StatusDraft)
			if err != nil {
				return err
			}
			versions = append(versions, *v)
		}
		result = &PublishResult{Versions: versions}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// publishOne publishes and returns the single resulting version, used when
// create or update chains into publication.
func (r *Repository) publishOne(ctx context.Context, id docid.ID, p params.Params) (*Version, error) {
	res, err := r.Publish(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if len(res.Versions) == 0 {
		return nil, ErrNotFound
	}
	return &res.Versions[0], nil
}

// findOptions tweaks one read beyond its filter.
type findOptions struct {
	limit    int
	byLocale bool
}

// findVersions runs a read, decodes the rows, and applies the requested
// populate tree. Absent an explicit request, filters naming relation
// attributes imply populating those relations.
func (r *Repository) findVersions(ctx context.Context, svc *Service, where map[string]any, pop *params.Populate, opt findOptions) ([]Version, error) {
	d := store.Descriptor{Where: where, OrderBy: defaultOrder(), Limit: opt.limit}
	if opt.byLocale {
		d.OrderBy = append([]store.Order{{Field: params.FieldLocale}}, d.OrderBy...)
	}

	rows, err := svc.engine.MustQuery(r.ct.UID).FindMany(ctx, d)
	if err != nil {
		return nil, err
	}
	versions, err := versionsFromRows(rows)
	if err != nil {
		return nil, err
	}

	tree, err := populate.Build(svc.engine.Schemas(), r.ct, pop)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		tree = populate.InferFromFilters(r.ct, where)
	}
	if err := svc.applyPopulate(ctx, r.ct, versions, tree); err != nil {
		return nil, err
	}
	return versions, nil
}

// snapshotVersions reads versions with their full structural data attached,
// the form lifecycle operations re-create rows from.
func (r *Repository) snapshotVersions(ctx context.Context, svc *Service, where map[string]any) ([]Version, error) {
	rows, err := svc.engine.MustQuery(r.ct.UID).FindMany(ctx, store.Descriptor{
		Where:   where,
		OrderBy: defaultOrder(),
	})
	if err != nil {
		return nil, err
	}
	versions, err := versionsFromRows(rows)
	if err != nil {
		return nil, err
	}
	tree := populate.Deep(svc.engine.Schemas(), r.ct, 0)
	if err := svc.applyPopulate(ctx, r.ct, versions, tree); err != nil {
		return nil, err
	}
	return versions, nil
}

func defaultOrder() []store.Order {
	return []store.Order{{Field: "id"}}
}

func mergeWhere(lookup, filters map[string]any) map[string]any {
	out := make(map[string]any, len(lookup)+len(filters))
	for k, v := range filters {
		out[k] = v
	}
	for k, v := range lookup {
		out[k] = v
	}
	return out
}
