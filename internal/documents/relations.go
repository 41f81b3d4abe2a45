package documents

import (
	"context"

	"github.com/dontreeza/sangpragay-strapi/internal/store"
	"github.com/dontreeza/sangpragay-strapi/internal/validator"
	"github.com/dontreeza/sangpragay-strapi/pkg/params"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// resolveRelations replaces submitted relation references with stored row
// ids. A reference addresses a document, not a row: the target row is the
// version matching the reference's locale and the writing operation's
// status. Callers may also pass a raw row id, which is stored as-is.
func (svc *Service) resolveRelations(ctx context.Context, ct *schema.ContentType, data map[string]any, wantDraft bool, ownerLocale string) (map[string]any, error) {
	relations := ct.RelationAttributeNames()
	if len(relations) == 0 {
		return data, nil
	}

	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}

	for _, name := range relations {
		value, ok := out[name]
		if !ok {
			continue
		}
		attr := ct.Attributes[name]

		switch ref := value.(type) {
		case nil:
			out[name] = nil

		case int:
			out[name] = int64(ref)
		case int64:
			out[name] = ref
		case float64:
			out[name] = int64(ref)

		case string:
			id, err := svc.lookupRelationTarget(ctx, attr, map[string]any{"documentId": ref}, wantDraft, ownerLocale)
			if err != nil {
				return nil, err
			}
			if id == nil {
				return nil, validator.NewError(name, "related document not found")
			}
			out[name] = id

		case map[string]any:
			id, err := svc.lookupRelationTarget(ctx, attr, ref, wantDraft, ownerLocale)
			if err != nil {
				return nil, err
			}
			if id == nil {
				return nil, validator.NewError(name, "related document not found")
			}
			out[name] = id

		default:
			return nil, validator.NewError(name, "must be a row id or a document reference")
		}
	}
	return out, nil
}

// lookupRelationTarget resolves one document reference to the target row id
// matching the requested scope, or nil when no such version exists.
func (svc *Service) lookupRelationTarget(ctx context.Context, attr *schema.Attribute, ref map[string]any, wantDraft bool, ownerLocale string) (any, error) {
	target, err := svc.engine.Schemas().Get(attr.Target)
	if err != nil {
		return nil, err
	}

	docID, _ := ref["documentId"].(string)
	if docID == "" {
		return nil, nil
	}

	where := map[string]any{store.FieldDocumentID: docID}
	if target.Localized {
		locale, _ := ref[params.FieldLocale].(string)
		if locale == "" {
			locale = ownerLocale
		}
		if locale != "" {
			where[store.FieldLocale] = locale
		}
	}
	if target.DraftAndPublish {
		status, _ := ref["status"].(string)
		draft := wantDraft
		switch params.Status(status) {
		case params.StatusDraft:
			draft = true
		case params.StatusPublished:
			draft = false
		}
		if draft {
			where[store.FieldPublishedAt] = nil
		} else {
			where[store.FieldPublishedAt] = map[string]any{"$notNull": true}
		}
	}

	row, err := svc.engine.MustQuery(target.UID).FindOne(ctx, store.Descriptor{Where: where})
	if err != nil || row == nil {
		return nil, err
	}
	return row["id"], nil
}

// remapRelation moves a stored relation target to its counterpart-status
// row: same document, same locale, the status being written. A target with
// no counterpart maps to nil, matching replace semantics where the other
// status may simply not exist yet.
func (svc *Service) remapRelation(ctx context.Context, attr *schema.Attribute, value any, wantDraft bool) (any, error) {
	id, ok := asRowID(value)
	if !ok {
		return nil, nil
	}

	target, err := svc.engine.Schemas().Get(attr.Target)
	if err != nil {
		return nil, err
	}
	query := svc.engine.MustQuery(target.UID)

	row, err := query.FindOne(ctx, store.Descriptor{Where: map[string]any{"id": id}})
	if err != nil || row == nil {
		return nil, err
	}
	if !target.DraftAndPublish {
		return id, nil
	}

	where := map[string]any{
		store.FieldDocumentID: row[store.FieldDocumentID],
	}
	if target.Localized {
		where[store.FieldLocale] = row[store.FieldLocale]
	}
	if wantDraft {
		where[store.FieldPublishedAt] = nil
	} else {
		where[store.FieldPublishedAt] = map[string]any{"$notNull": true}
	}

	counterpart, err := query.FindOne(ctx, store.Descriptor{Where: where})
	if err != nil || counterpart == nil {
		return nil, err
	}
	return counterpart["id"], nil
}

func asRowID(value any) (int64, bool) {
	switch n := value.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
