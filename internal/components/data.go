package components

import (
	"fmt"
	"slices"

	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// componentUIDs returns the component models a structural attribute can
// hold.
func componentUIDs(attr *schema.Attribute) []string {
	switch attr.Kind {
	case schema.KindComponent:
		return []string{attr.Component}
	case schema.KindDynamicZone:
		return attr.Components
	default:
		return nil
	}
}

// normalizeEntries converts a submitted structural value into an ordered
// entry list. Single components accept a map or nil, repeatable components
// a list of maps, dynamic zones a list of maps each carrying the
// __component discriminator.
func normalizeEntries(owner *schema.ContentType, field string, value any) ([]entry, error) {
	attr := owner.Attributes[field]

	switch attr.Kind {
	case schema.KindComponent:
		if !attr.Repeatable {
			if value == nil {
				return nil, nil
			}
			m, ok := value.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s.%s: component value must be an object", owner.UID, field)
			}
			return []entry{{uid: attr.Component, data: m}}, nil
		}

		list, err := toList(owner, field, value)
		if err != nil {
			return nil, err
		}
		entries := make([]entry, 0, len(list))
		for _, m := range list {
			entries = append(entries, entry{uid: attr.Component, data: m})
		}
		return entries, nil

	case schema.KindDynamicZone:
		list, err := toList(owner, field, value)
		if err != nil {
			return nil, err
		}
		entries := make([]entry, 0, len(list))
		for _, m := range list {
			cuid, _ := m[DiscriminatorKey].(string)
			if cuid == "" {
				return nil, fmt.Errorf("%s.%s: dynamic zone entry is missing %s", owner.UID, field, DiscriminatorKey)
			}
			if !slices.Contains(attr.Components, cuid) {
				return nil, fmt.Errorf("%s.%s: component %q is not admitted in this dynamic zone", owner.UID, field, cuid)
			}
			entries = append(entries, entry{uid: cuid, data: m})
		}
		return entries, nil

	default:
		return nil, fmt.Errorf("%s.%s: not a structural attribute", owner.UID, field)
	}
}

func toList(owner *schema.ContentType, field string, value any) ([]map[string]any, error) {
	if value == nil {
		return nil, nil
	}
	raw, ok := value.([]any)
	if !ok {
		if typed, ok := value.([]map[string]any); ok {
			return typed, nil
		}
		return nil, fmt.Errorf("%s.%s: value must be a list", owner.UID, field)
	}
	out := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s.%s: entries must be objects", owner.UID, field)
		}
		out = append(out, m)
	}
	return out, nil
}

// scalarData extracts the column-backed values of an entry, dropping row
// identity, discriminators, and nested structural data.
func scalarData(ct *schema.ContentType, data map[string]any) map[string]any {
	out := make(map[string]any)
	for _, name := range ct.ScalarAttributeNames() {
		if v, ok := data[name]; ok {
			out[name] = v
		}
	}
	for _, name := range ct.RelationAttributeNames() {
		if v, ok := data[name]; ok {
			out[name] = v
		}
	}
	return out
}

func entriesToList(entries []entry) []any {
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.data)
	}
	return out
}

func rowID(data map[string]any) (int64, bool) {
	v, ok := data["id"]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
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

func orderOf(data map[string]any) int64 {
	v, ok := data["ord"]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
