package components

import (
	"context"

	"github.com/dontreeza/sangpragay-strapi/internal/store"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// fetchEntries loads the stored entries of one component type owned by
// (ownerUID, ownerID, field), nested structural data resolved recursively.
func (h *Handler) fetchEntries(ctx context.Context, compUID, ownerUID string, ownerID int64, field string, withDiscriminator bool) ([]entry, error) {
	compCT, err := h.engine.Schemas().Get(compUID)
	if err != nil {
		return nil, err
	}

	rows, err := h.ownedRows(ctx, compUID, ownerUID, ownerID, field)
	if err != nil {
		return nil, err
	}

	entries := make([]entry, 0, len(rows))
	for _, row := range rows {
		id, _ := rowID(row)
		data := scalarData(compCT, row)
		data["id"] = id
		if withDiscriminator {
			data[DiscriminatorKey] = compUID
			data[store.FieldOrder] = orderOf(row)
		}

		nested, err := h.Get(ctx, compCT, id)
		if err != nil {
			return nil, err
		}
		for k, v := range nested {
			data[k] = v
		}
		entries = append(entries, entry{uid: compUID, data: data})
	}
	return entries, nil
}

// ownedRows returns the raw component rows for one owner and field, in
// stored order.
func (h *Handler) ownedRows(ctx context.Context, compUID, ownerUID string, ownerID int64, field string) ([]store.Row, error) {
	q, err := h.engine.Query(compUID)
	if err != nil {
		return nil, err
	}
	return q.FindMany(ctx, store.Descriptor{
		Where: map[string]any{
			store.FieldEntityType: ownerUID,
			store.FieldEntityID:   ownerID,
			store.FieldField:      field,
		},
		OrderBy: []store.Order{{Field: store.FieldOrder}},
	})
}

// existingRows maps component UID to the set of stored row ids for one
// owner attribute.
func (h *Handler) existingRows(ctx context.Context, owner *schema.ContentType, ownerID int64, field string) (map[string]map[int64]bool, error) {
	attr := owner.Attributes[field]
	out := make(map[string]map[int64]bool)
	for _, cuid := range componentUIDs(attr) {
		rows, err := h.ownedRows(ctx, cuid, owner.UID, ownerID, field)
		if err != nil {
			return nil, err
		}
		ids := make(map[int64]bool, len(rows))
		for _, row := range rows {
			id, _ := rowID(row)
			ids[id] = true
		}
		out[cuid] = ids
	}
	return out, nil
}

// insertEntry inserts one submitted entry (scalars now, nested structural
// attributes recursively) and returns the new row id.
func (h *Handler) insertEntry(ctx context.Context, compUID, ownerUID string, ownerID int64, field string, ord int, data map[string]any) (int64, error) {
	compCT, err := h.engine.Schemas().Get(compUID)
	if err != nil {
		return 0, err
	}

	id, err := h.insertRaw(ctx, compUID, ownerUID, ownerID, field, int64(ord), scalarData(compCT, data))
	if err != nil {
		return 0, err
	}
	if err := h.Create(ctx, compCT, id, data); err != nil {
		return 0, err
	}
	return id, nil
}

// insertRaw inserts one component row carrying only scalar values.
func (h *Handler) insertRaw(ctx context.Context, compUID, ownerUID string, ownerID int64, field string, ord int64, data map[string]any) (int64, error) {
	q, err := h.engine.Query(compUID)
	if err != nil {
		return 0, err
	}

	payload := make(map[string]any, len(data)+4)
	for k, v := range data {
		payload[k] = v
	}
	payload[store.FieldEntityType] = ownerUID
	payload[store.FieldEntityID] = ownerID
	payload[store.FieldField] = field
	payload[store.FieldOrder] = ord

	row, err := q.Create(ctx, store.Descriptor{Data: payload})
	if err != nil {
		return 0, err
	}
	id, _ := rowID(row)
	return id, nil
}

// updateEntry rewrites a matched row in place (scalars and position) and
// recurses into its nested structural attributes.
func (h *Handler) updateEntry(ctx context.Context, compUID string, id int64, ord int, data map[string]any) error {
	compCT, err := h.engine.Schemas().Get(compUID)
	if err != nil {
		return err
	}
	q, err := h.engine.Query(compUID)
	if err != nil {
		return err
	}

	payload := scalarData(compCT, data)
	payload[store.FieldOrder] = int64(ord)
	if _, err := q.Update(ctx, store.Descriptor{
		Where: map[string]any{store.FieldID: id},
		Data:  payload,
	}); err != nil {
		return err
	}

	return h.Update(ctx, compCT, id, data)
}

// deleteEntry removes one component row and, first, everything it owns.
func (h *Handler) deleteEntry(ctx context.Context, compUID string, id int64) error {
	compCT, err := h.engine.Schemas().Get(compUID)
	if err != nil {
		return err
	}
	if err := h.Delete(ctx, compCT, id); err != nil {
		return err
	}

	q, err := h.engine.Query(compUID)
	if err != nil {
		return err
	}
	_, err = q.Delete(ctx, store.Descriptor{Where: map[string]any{store.FieldID: id}})
	return err
}
