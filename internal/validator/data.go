package validator

import (
	"fmt"

	"github.com/dontreeza/sangpragay-strapi/internal/components"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// entry is one normalized component value under validation.
type entry struct {
	uid  string
	data map[string]any
}

// entriesOf normalizes a structural attribute value into entries, mirroring
// the shapes the cascade handler accepts.
func entriesOf(owner *schema.ContentType, attr *schema.Attribute, value any) ([]entry, error) {
	switch attr.Kind {
	case schema.KindComponent:
		if !attr.Repeatable {
			if value == nil {
				return nil, nil
			}
			m, ok := value.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("component value must be an object")
			}
			return []entry{{uid: attr.Component, data: m}}, nil
		}
		list, err := listOf(value)
		if err != nil {
			return nil, err
		}
		out := make([]entry, 0, len(list))
		for _, m := range list {
			out = append(out, entry{uid: attr.Component, data: m})
		}
		return out, nil

	case schema.KindDynamicZone:
		list, err := listOf(value)
		if err != nil {
			return nil, err
		}
		out := make([]entry, 0, len(list))
		for _, m := range list {
			cuid, _ := m[components.DiscriminatorKey].(string)
			if cuid == "" {
				return nil, fmt.Errorf("dynamic zone entry is missing %s", components.DiscriminatorKey)
			}
			out = append(out, entry{uid: cuid, data: m})
		}
		return out, nil

	default:
		return nil, fmt.Errorf("not a structural attribute")
	}
}

func listOf(value any) ([]map[string]any, error) {
	switch list := value.(type) {
	case nil:
		return nil, nil
	case []map[string]any:
		return list, nil
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, e := range list {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("entries must be objects")
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value must be a list")
	}
}

// valueKey reduces a value to a comparable key for in-payload duplicate
// detection. Numeric types normalize so 42 and 42.0 collide.
func valueKey(value any) any {
	switch n := value.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return fmt.Sprintf("%v", value)
	}
}

func rowIDOf(data map[string]any) (int64, bool) {
	return asInt64(data["id"])
}

func asInt64(v any) (int64, bool) {
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
