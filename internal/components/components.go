// Package components keeps nested structural data synchronized with its
// owning version row. Component rows live in their own tables, addressed by
// the owner's row id (not by document id), and have no independent
// lifecycle: they are created, diffed, cloned, and deleted strictly in
// lockstep with their owner. The storage layer is not assumed to cascade
// anything.
package components

import (
	"context"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/dontreeza/sangpragay-strapi/internal/store"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// DiscriminatorKey marks the component type of a dynamic-zone entry in
// submitted and returned data.
const DiscriminatorKey = "__component"

// Handler cascades component rows for one engine.
type Handler struct {
	engine *store.Engine
	log    hclog.Logger
}

// NewHandler creates a cascade handler.
func NewHandler(engine *store.Engine, log hclog.Logger) *Handler {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Handler{engine: engine, log: log}
}

// WithEngine returns a handler bound to a different engine, used to run
// cascades inside a transaction.
func (h *Handler) WithEngine(engine *store.Engine) *Handler {
	return &Handler{engine: engine, log: h.log}
}

// entry is one normalized component value: its model UID and its data.
type entry struct {
	uid  string
	data map[string]any
}

// Get loads every structural attribute of the owner row, nested components
// included. Single components resolve to a map or nil, repeatable
// components and dynamic zones to a list ordered by stored position.
func (h *Handler) Get(ctx context.Context, owner *schema.ContentType, ownerID int64) (map[string]any, error) {
	out := make(map[string]any)

	for _, name := range owner.StructuralAttributeNames() {
		attr := owner.Attributes[name]

		switch attr.Kind {
		case schema.KindComponent:
			entries, err := h.fetchEntries(ctx, attr.Component, owner.UID, ownerID, name, false)
			if err != nil {
				return nil, err
			}
			if attr.Repeatable {
				out[name] = entriesToList(entries)
			} else if len(entries) > 0 {
				out[name] = entries[0].data
			} else {
				out[name] = nil
			}

		case schema.KindDynamicZone:
			var all []entry
			for _, cuid := range attr.Components {
				entries, err := h.fetchEntries(ctx, cuid, owner.UID, ownerID, name, true)
				if err != nil {
					return nil, err
				}
				all = append(all, entries...)
			}
			sort.SliceStable(all, func(i, j int) bool {
				return orderOf(all[i].data) < orderOf(all[j].data)
			})
			out[name] = entriesToList(all)
		}
	}
	return out, nil
}

// Create inserts component rows for every structural attribute present in
// data, preserving submitted order.
func (h *Handler) Create(ctx context.Context, owner *schema.ContentType, ownerID int64, data map[string]any) error {
	for _, name := range owner.StructuralAttributeNames() {
		value, ok := data[name]
		if !ok {
			continue
		}
		entries, err := normalizeEntries(owner, name, value)
		if err != nil {
			return err
		}
		for i, e := range entries {
			if _, err := h.insertEntry(ctx, e.uid, owner.UID, ownerID, name, i, e.data); err != nil {
				return err
			}
		}
	}
	return nil
}

// Update diffs stored component rows against submitted data for every
// structural attribute present in data: entries carrying a known row id are
// updated in place, entries without one are inserted, stored rows missing
// from the submission are deleted. Attributes absent from data are left
// untouched.
func (h *Handler) Update(ctx context.Context, owner *schema.ContentType, ownerID int64, data map[string]any) error {
	for _, name := range owner.StructuralAttributeNames() {
		value, ok := data[name]
		if !ok {
			continue
		}
		submitted, err := normalizeEntries(owner, name, value)
		if err != nil {
			return err
		}

		existing, err := h.existingRows(ctx, owner, ownerID, name)
		if err != nil {
			return err
		}

		seen := make(map[string]map[int64]bool)
		for i, e := range submitted {
			id, hasID := rowID(e.data)
			if hasID && existing[e.uid][id] {
				if err := h.updateEntry(ctx, e.uid, id, i, e.data); err != nil {
					return err
				}
				if seen[e.uid] == nil {
					seen[e.uid] = make(map[int64]bool)
				}
				seen[e.uid][id] = true
				continue
			}
			if _, err := h.insertEntry(ctx, e.uid, owner.UID, ownerID, name, i, e.data); err != nil {
				return err
			}
		}

		for uid, ids := range existing {
			for id := range ids {
				if seen[uid][id] {
					continue
				}
				if err := h.deleteEntry(ctx, uid, id); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Clone duplicates every component row of the source owner under the
// destination owner, minting fresh row identities while preserving
// structural shape and order.
func (h *Handler) Clone(ctx context.Context, owner *schema.ContentType, srcOwnerID, dstOwnerID int64) error {
	for _, name := range owner.StructuralAttributeNames() {
		attr := owner.Attributes[name]
		for _, cuid := range componentUIDs(attr) {
			rows, err := h.ownedRows(ctx, cuid, owner.UID, srcOwnerID, name)
			if err != nil {
				return err
			}
			for _, row := range rows {
				srcID, _ := rowID(row)
				compCT, err := h.engine.Schemas().Get(cuid)
				if err != nil {
					return err
				}
				data := scalarData(compCT, row)
				newID, err := h.insertRaw(ctx, cuid, owner.UID, dstOwnerID, name, orderOf(row), data)
				if err != nil {
					return err
				}
				if err := h.Clone(ctx, compCT, srcID, newID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Delete removes every component row owned by the owner row, depth-first so
// no orphaned nested rows survive.
func (h *Handler) Delete(ctx context.Context, owner *schema.ContentType, ownerID int64) error {
	for _, name := range owner.StructuralAttributeNames() {
		attr := owner.Attributes[name]
		for _, cuid := range componentUIDs(attr) {
			rows, err := h.ownedRows(ctx, cuid, owner.UID, ownerID, name)
			if err != nil {
				return err
			}
			for _, row := range rows {
				id, _ := rowID(row)
				if err := h.deleteEntry(ctx, cuid, id); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
