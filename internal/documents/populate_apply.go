package documents

import (
	"context"

	"github.com/dontreeza/sangpragay-strapi/internal/populate"
	"github.com/dontreeza/sangpragay-strapi/internal/store"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// applyPopulate attaches requested structural data and related versions to
// a read result. Component attributes resolve through the cascade handler;
// relation attributes swap the stored row id for the decoded target
// version, recursively populated per the tree.
func (svc *Service) applyPopulate(ctx context.Context, ct *schema.ContentType, versions []Version, tree populate.Tree) error {
	if len(tree) == 0 {
		return nil
	}

	for i := range versions {
		v := &versions[i]
		var structural map[string]any

		for name, node := range tree {
			attr := ct.Attribute(name)
			if attr == nil {
				continue
			}

			if attr.IsStructural() {
				if structural == nil {
					loaded, err := svc.components.Get(ctx, ct, v.ID)
					if err != nil {
						return err
					}
					structural = loaded
				}
				if node.Count {
					v.Fields[name] = structuralCount(structural[name])
				} else {
					v.Fields[name] = structural[name]
				}
				continue
			}

			if err := svc.populateRelation(ctx, attr, v, name, node); err != nil {
				return err
			}
		}
	}
	return nil
}

func (svc *Service) populateRelation(ctx context.Context, attr *schema.Attribute, v *Version, name string, node *populate.Node) error {
	id, ok := asRowID(v.Fields[name])
	if !ok {
		if node.Count {
			v.Fields[name] = 0
		} else {
			v.Fields[name] = nil
		}
		return nil
	}
	if node.Count {
		v.Fields[name] = 1
		return nil
	}

	target, err := svc.engine.Schemas().Get(attr.Target)
	if err != nil {
		return err
	}
	row, err := svc.engine.MustQuery(target.UID).FindOne(ctx, store.Descriptor{
		Where: map[string]any{"id": id},
	})
	if err != nil {
		return err
	}
	if row == nil {
		v.Fields[name] = nil
		return nil
	}

	related, err := versionFromRow(row)
	if err != nil {
		return err
	}
	if len(node.Children) > 0 {
		nested := []Version{*related}
		if err := svc.applyPopulate(ctx, target, nested, node.Children); err != nil {
			return err
		}
		related = &nested[0]
	}
	v.Fields[name] = related
	return nil
}

func structuralCount(value any) int {
	switch t := value.(type) {
	case []any:
		return len(t)
	case map[string]any:
		return 1
	default:
		return 0
	}
}
