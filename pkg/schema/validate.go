package schema

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate checks every registered descriptor for internal consistency and
// resolvable references. It is called once after loading, before any table
// is migrated or any document stored.
func (r *Registry) Validate() error {
	var result *multierror.Error

	for _, uid := range r.UIDs() {
		ct := r.types[uid]
		if err := r.validateType(ct); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func (r *Registry) validateType(ct *ContentType) error {
	var result *multierror.Error

	if ct.IsComponent() && ct.DraftAndPublish {
		result = multierror.Append(result,
			fmt.Errorf("%s: components cannot enable draft and publish", ct.UID))
	}

	for _, name := range ct.AttributeNames() {
		attr := ct.Attributes[name]

		if IsReservedColumn(name) {
			result = multierror.Append(result,
				fmt.Errorf("%s.%s: attribute name shadows a reserved column", ct.UID, name))
			continue
		}

		switch attr.Kind {
		case KindString, KindText, KindEmail, KindInteger, KindFloat,
			KindBoolean, KindDate, KindDatetime, KindJSON:
			// Unique only makes sense where an equality lookup does.
			if attr.Unique && (attr.Kind == KindJSON || attr.Kind == KindBoolean) {
				result = multierror.Append(result,
					fmt.Errorf("%s.%s: unique is not supported for %s attributes", ct.UID, name, attr.Kind))
			}

		case KindComponent:
			target, err := r.Get(attr.Component)
			if err != nil {
				result = multierror.Append(result,
					fmt.Errorf("%s.%s: component %q is not registered", ct.UID, name, attr.Component))
			} else if !target.IsComponent() {
				result = multierror.Append(result,
					fmt.Errorf("%s.%s: %q is not a component model", ct.UID, name, attr.Component))
			}

		case KindDynamicZone:
			if len(attr.Components) == 0 {
				result = multierror.Append(result,
					fmt.Errorf("%s.%s: dynamic zone declares no components", ct.UID, name))
			}
			for _, cuid := range attr.Components {
				target, err := r.Get(cuid)
				if err != nil {
					result = multierror.Append(result,
						fmt.Errorf("%s.%s: component %q is not registered", ct.UID, name, cuid))
				} else if !target.IsComponent() {
					result = multierror.Append(result,
						fmt.Errorf("%s.%s: %q is not a component model", ct.UID, name, cuid))
				}
			}

		case KindRelation:
			target, err := r.Get(attr.Target)
			if err != nil {
				result = multierror.Append(result,
					fmt.Errorf("%s.%s: relation target %q is not registered", ct.UID, name, attr.Target))
			} else if target.IsComponent() {
				result = multierror.Append(result,
					fmt.Errorf("%s.%s: relation target %q is a component model", ct.UID, name, attr.Target))
			}

		default:
			result = multierror.Append(result,
				fmt.Errorf("%s.%s: unknown attribute kind %q", ct.UID, name, attr.Kind))
		}

		if attr.Unique && !attr.IsScalar() {
			result = multierror.Append(result,
				fmt.Errorf("%s.%s: unique is only supported on scalar attributes", ct.UID, name))
		}
	}

	return result.ErrorOrNil()
}
