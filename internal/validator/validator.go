// Package validator checks submitted entity data against its content-type
// descriptor: kind and constraint validation for scalars, and locale- and
// status-scoped uniqueness against stored rows, including scalars nested in
// components and dynamic-zone entries.
package validator

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/dontreeza/sangpragay-strapi/internal/components"
	"github.com/dontreeza/sangpragay-strapi/internal/store"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// Options scopes one validation run.
type Options struct {
	// IsDraft selects the publication status the entity is validated
	// under; uniqueness is scoped per status.
	IsDraft bool
	// Locale scopes uniqueness for localized content types. Empty for
	// non-localized types.
	Locale string
	// ExcludeID is the row id of the entity being updated. Draft and
	// published siblings of the same document are different rows, so the
	// exclusion is by row id, never by document id.
	ExcludeID int64
}

// Validator validates entity payloads.
type Validator struct {
	engine *store.Engine
	log    hclog.Logger
}

// New creates a validator bound to an engine.
func New(engine *store.Engine, log hclog.Logger) *Validator {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Validator{engine: engine, log: log}
}

// WithEngine returns a validator bound to a different engine, used inside
// transactions.
func (v *Validator) WithEngine(engine *store.Engine) *Validator {
	return &Validator{engine: engine, log: v.log}
}

// ValidateCreation validates data for a new entity and returns the
// sanitized attribute payload.
func (v *Validator) ValidateCreation(ctx context.Context, ct *schema.ContentType, data map[string]any, opts Options) (map[string]any, error) {
	return v.validate(ctx, ct, data, opts, true)
}

// ValidateUpdate validates a partial update against an existing entity and
// returns the sanitized attribute payload. Attributes absent from data are
// not checked; required constraints only apply to explicit nulls.
func (v *Validator) ValidateUpdate(ctx context.Context, ct *schema.ContentType, data map[string]any, opts Options) (map[string]any, error) {
	return v.validate(ctx, ct, data, opts, false)
}

func (v *Validator) validate(ctx context.Context, ct *schema.ContentType, data map[string]any, opts Options, creating bool) (map[string]any, error) {
	var result *multierror.Error
	sanitized := make(map[string]any, len(data))
	rejected := make(map[string]bool)

	for key, value := range data {
		attr := ct.Attribute(key)
		if attr == nil {
			result = multierror.Append(result, NewError(key, "unknown attribute"))
			continue
		}
		if err := v.checkKind(ct, key, attr, value); err != nil {
			result = multierror.Append(result, err)
			rejected[key] = true
			continue
		}
		sanitized[key] = value
	}

	if creating {
		for _, name := range ct.AttributeNames() {
			attr := ct.Attributes[name]
			if !attr.Required || rejected[name] {
				continue
			}
			if value, ok := sanitized[name]; !ok || value == nil {
				result = multierror.Append(result, NewError(name, "value is required"))
			}
		}
	} else {
		for name, value := range sanitized {
			if ct.Attributes[name].Required && value == nil {
				result = multierror.Append(result, NewError(name, "value is required"))
			}
		}
	}

	// The in-memory duplicate check runs before any database round-trip.
	if err := v.checkPayloadDuplicates(ct, sanitized); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	if err := v.checkUniqueness(ctx, ct, sanitized, opts); err != nil {
		return nil, err
	}
	return sanitized, nil
}

// checkKind validates one attribute value against its declared kind. Nested
// component entries are validated recursively.
func (v *Validator) checkKind(ct *schema.ContentType, path string, attr *schema.Attribute, value any) error {
	if value == nil {
		return nil
	}

	switch attr.Kind {
	case schema.KindString, schema.KindText:
		s, ok := value.(string)
		if !ok {
			return NewError(path, "must be a string")
		}
		rules := []validation.Rule{}
		if attr.MinLength > 0 || attr.MaxLength > 0 {
			rules = append(rules, validation.Length(attr.MinLength, attr.MaxLength))
		}
		if err := validation.Validate(s, rules...); err != nil {
			return NewError(path, err.Error())
		}

	case schema.KindEmail:
		s, ok := value.(string)
		if !ok {
			return NewError(path, "must be a string")
		}
		if err := validation.Validate(s, is.EmailFormat); err != nil {
			return NewError(path, err.Error())
		}

	case schema.KindInteger:
		switch n := value.(type) {
		case int, int32, int64:
		case float64:
			if n != float64(int64(n)) {
				return NewError(path, "must be an integer")
			}
		default:
			return NewError(path, "must be an integer")
		}

	case schema.KindFloat:
		switch value.(type) {
		case int, int32, int64, float32, float64:
		default:
			return NewError(path, "must be a number")
		}

	case schema.KindBoolean:
		if _, ok := value.(bool); !ok {
			return NewError(path, "must be a boolean")
		}

	case schema.KindDate, schema.KindDatetime:
		switch t := value.(type) {
		case time.Time:
		case string:
			if err := validation.Validate(t, validation.Date(time.RFC3339).Error("must be a valid timestamp")); err != nil {
				if err2 := validation.Validate(t, validation.Date("2006-01-02")); err2 != nil {
					return NewError(path, "must be a valid timestamp")
				}
			}
		default:
			return NewError(path, "must be a timestamp")
		}

	case schema.KindJSON:
		// Any JSON-encodable value is acceptable.

	case schema.KindRelation:
		switch value.(type) {
		case int, int64, float64:
		case map[string]any:
		default:
			return NewError(path, "must be a row id or a document reference")
		}

	case schema.KindComponent, schema.KindDynamicZone:
		return v.checkStructural(ct, path, attr, value)
	}

	return nil
}

func (v *Validator) checkStructural(ct *schema.ContentType, path string, attr *schema.Attribute, value any) error {
	entries, err := entriesOf(ct, attr, value)
	if err != nil {
		return NewError(path, err.Error())
	}

	var result *multierror.Error
	for i, e := range entries {
		compCT, err := v.engine.Schemas().Get(e.uid)
		if err != nil {
			result = multierror.Append(result, NewError(path, err.Error()))
			continue
		}
		for key, val := range e.data {
			if key == "id" || key == components.DiscriminatorKey || key == "ord" {
				continue
			}
			compAttr := compCT.Attribute(key)
			entryPath := fmt.Sprintf("%s[%d].%s", path, i, key)
			if !attr.Repeatable && attr.Kind == schema.KindComponent {
				entryPath = path + "." + key
			}
			if compAttr == nil {
				result = multierror.Append(result, NewError(entryPath, "unknown attribute"))
				continue
			}
			if err := v.checkKind(compCT, entryPath, compAttr, val); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	return result.ErrorOrNil()
}
