package validator

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/dontreeza/sangpragay-strapi/internal/store"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// checkPayloadDuplicates guards repeatable component and dynamic-zone
// payloads against duplicate unique values within the same submission.
// This is a pure in-memory check, distinct from the cross-entity database
// check.
func (v *Validator) checkPayloadDuplicates(ct *schema.ContentType, data map[string]any) error {
	var result *multierror.Error

	for _, name := range ct.StructuralAttributeNames() {
		value, ok := data[name]
		if !ok || value == nil {
			continue
		}
		attr := ct.Attributes[name]
		entries, err := entriesOf(ct, attr, value)
		if err != nil {
			continue // shape errors are reported by kind checking
		}

		// seen maps component uid and attribute to the set of values
		// already submitted under this field.
		seen := make(map[string]map[string]map[any]bool)
		for _, e := range entries {
			compCT, err := v.engine.Schemas().Get(e.uid)
			if err != nil {
				continue
			}
			if err := v.collectDuplicates(compCT, name, e.data, seen, &result); err != nil {
				return err
			}
		}
	}
	return result.ErrorOrNil()
}

func (v *Validator) collectDuplicates(compCT *schema.ContentType, path string, data map[string]any, seen map[string]map[string]map[any]bool, result **multierror.Error) error {
	for _, attrName := range compCT.ScalarAttributeNames() {
		attr := compCT.Attributes[attrName]
		if !attr.Unique {
			continue
		}
		value, ok := data[attrName]
		if !ok || value == nil {
			continue
		}
		key := valueKey(value)

		if seen[compCT.UID] == nil {
			seen[compCT.UID] = make(map[string]map[any]bool)
		}
		if seen[compCT.UID][attrName] == nil {
			seen[compCT.UID][attrName] = make(map[any]bool)
		}
		if seen[compCT.UID][attrName][key] {
			*result = multierror.Append(*result,
				NewError(path+"."+attrName, uniqueMessage))
			continue
		}
		seen[compCT.UID][attrName][key] = true
	}

	// Nested components share the same submission, so their unique values
	// are deduplicated within it as well.
	for _, nestedName := range compCT.StructuralAttributeNames() {
		value, ok := data[nestedName]
		if !ok || value == nil {
			continue
		}
		entries, err := entriesOf(compCT, compCT.Attributes[nestedName], value)
		if err != nil {
			continue
		}
		for _, e := range entries {
			nestedCT, err := v.engine.Schemas().Get(e.uid)
			if err != nil {
				continue
			}
			if err := v.collectDuplicates(nestedCT, path+"."+nestedName, e.data, seen, result); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkUniqueness verifies every unique attribute (top-level and nested in
// components) against stored rows within the same (locale, status) scope,
// excluding the row being updated.
func (v *Validator) checkUniqueness(ctx context.Context, ct *schema.ContentType, data map[string]any, opts Options) error {
	var result *multierror.Error

	for _, name := range ct.ScalarAttributeNames() {
		attr := ct.Attributes[name]
		if !attr.Unique {
			continue
		}
		value, ok := data[name]
		if !ok || value == nil {
			continue
		}

		collides, err := v.scalarCollides(ctx, ct, name, value, opts)
		if err != nil {
			return err
		}
		if collides {
			result = multierror.Append(result, NewError(name, uniqueMessage))
		}
	}

	for _, name := range ct.StructuralAttributeNames() {
		value, ok := data[name]
		if !ok || value == nil {
			continue
		}
		entries, err := entriesOf(ct, ct.Attributes[name], value)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if err := v.componentUniqueness(ctx, ct, name, e, opts, &result); err != nil {
				return err
			}
		}
	}

	return result.ErrorOrNil()
}

// scalarCollides checks one top-level unique value against the content
// type's own table.
func (v *Validator) scalarCollides(ctx context.Context, ct *schema.ContentType, attrName string, value any, opts Options) (bool, error) {
	where := map[string]any{attrName: value}
	if ct.Localized && opts.Locale != "" {
		where[store.FieldLocale] = opts.Locale
	}
	if ct.DraftAndPublish {
		if opts.IsDraft {
			where[store.FieldPublishedAt] = nil
		} else {
			where[store.FieldPublishedAt] = map[string]any{"$notNull": true}
		}
	}
	if opts.ExcludeID != 0 {
		where[store.FieldID] = map[string]any{"$ne": opts.ExcludeID}
	}

	q, err := v.engine.Query(ct.UID)
	if err != nil {
		return false, err
	}
	n, err := q.Count(ctx, store.Descriptor{Where: where})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// componentUniqueness checks the unique scalars of one submitted component
// entry against stored component rows whose owning version shares the same
// scope.
func (v *Validator) componentUniqueness(ctx context.Context, owner *schema.ContentType, path string, e entry, opts Options, result **multierror.Error) error {
	compCT, err := v.engine.Schemas().Get(e.uid)
	if err != nil {
		return err
	}

	for _, attrName := range compCT.ScalarAttributeNames() {
		attr := compCT.Attributes[attrName]
		if !attr.Unique {
			continue
		}
		value, ok := e.data[attrName]
		if !ok || value == nil {
			continue
		}

		collides, err := v.componentValueCollides(ctx, owner, compCT, attrName, value, e.data, opts)
		if err != nil {
			return err
		}
		if collides {
			*result = multierror.Append(*result, NewError(path+"."+attrName, uniqueMessage))
		}
	}

	for _, nestedName := range compCT.StructuralAttributeNames() {
		value, ok := e.data[nestedName]
		if !ok || value == nil {
			continue
		}
		entries, err := entriesOf(compCT, compCT.Attributes[nestedName], value)
		if err != nil {
			continue
		}
		for _, nested := range entries {
			if err := v.componentUniqueness(ctx, owner, path+"."+nestedName, nested, opts, result); err != nil {
				return err
			}
		}
	}
	return nil
}

// componentValueCollides finds stored component rows with the same value
// and resolves their top-level owners to apply the scope filter.
func (v *Validator) componentValueCollides(ctx context.Context, owner *schema.ContentType, compCT *schema.ContentType, attrName string, value any, submitted map[string]any, opts Options) (bool, error) {
	q, err := v.engine.Query(compCT.UID)
	if err != nil {
		return false, err
	}

	where := map[string]any{attrName: value}
	if id, ok := rowIDOf(submitted); ok {
		// The entry itself is stored; its own row is not a collision.
		where[store.FieldID] = map[string]any{"$ne": id}
	}
	rows, err := q.FindMany(ctx, store.Descriptor{Where: where})
	if err != nil {
		return false, err
	}

	for _, row := range rows {
		topUID, topID, err := v.resolveTopOwner(ctx, row)
		if err != nil {
			return false, err
		}
		if topUID != owner.UID {
			continue
		}
		if opts.ExcludeID != 0 && topID == opts.ExcludeID {
			continue
		}
		inScope, err := v.ownerInScope(ctx, owner, topID, opts)
		if err != nil {
			return false, err
		}
		if inScope {
			return true, nil
		}
	}
	return false, nil
}

// resolveTopOwner walks the entity_type/entity_id chain of a component row
// up to the owning content-type version row.
func (v *Validator) resolveTopOwner(ctx context.Context, row store.Row) (string, int64, error) {
	ownerUID, _ := row[store.FieldEntityType].(string)
	ownerID, ok := asInt64(row[store.FieldEntityID])
	if ownerUID == "" || !ok {
		return "", 0, fmt.Errorf("component row has no owner reference")
	}

	ownerCT, err := v.engine.Schemas().Get(ownerUID)
	if err != nil {
		return "", 0, err
	}
	if !ownerCT.IsComponent() {
		return ownerUID, ownerID, nil
	}

	q, err := v.engine.Query(ownerUID)
	if err != nil {
		return "", 0, err
	}
	parent, err := q.FindOne(ctx, store.Descriptor{Where: map[string]any{store.FieldID: ownerID}})
	if err != nil {
		return "", 0, err
	}
	if parent == nil {
		return "", 0, fmt.Errorf("component row %s/%d is orphaned", ownerUID, ownerID)
	}
	return v.resolveTopOwner(ctx, parent)
}

// ownerInScope reports whether a version row matches the validation scope.
func (v *Validator) ownerInScope(ctx context.Context, owner *schema.ContentType, rowID int64, opts Options) (bool, error) {
	where := map[string]any{store.FieldID: rowID}
	if owner.Localized && opts.Locale != "" {
		where[store.FieldLocale] = opts.Locale
	}
	if owner.DraftAndPublish {
		if opts.IsDraft {
			where[store.FieldPublishedAt] = nil
		} else {
			where[store.FieldPublishedAt] = map[string]any{"$notNull": true}
		}
	}

	q, err := v.engine.Query(owner.UID)
	if err != nil {
		return false, err
	}
	n, err := q.Count(ctx, store.Descriptor{Where: where})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
