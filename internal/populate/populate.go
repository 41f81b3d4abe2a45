// Package populate builds the relation/component inclusion tree attached to
// reads and lifecycle queries. Lifecycle operations (publish, unpublish,
// discard) snapshot the entire relational closure of a version before
// re-creating it under a different status, so they always use the deep
// tree; plain reads use whatever the caller requested.
package populate

import (
	"fmt"

	"github.com/dontreeza/sangpragay-strapi/pkg/params"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// Node is one populated attribute in the tree.
type Node struct {
	// Children populates attributes of the related content type; only
	// meaningful for relation attributes.
	Children Tree
	// Count attaches an aggregate count instead of the related rows.
	Count bool
}

// Tree maps attribute names to their populate nodes.
type Tree map[string]*Node

// Build compiles a caller's populate request against a content type.
// A nil request yields a nil tree (no population). Deep requests expand
// with bounded relation depth; explicit field requests are validated
// against the schema.
func Build(reg *schema.Registry, ct *schema.ContentType, req *params.Populate) (Tree, error) {
	if req == nil {
		return nil, nil
	}
	if req.Deep > 0 {
		return Deep(reg, ct, req.Deep), nil
	}

	tree := make(Tree, len(req.Fields))
	for name, sub := range req.Fields {
		attr := ct.Attribute(name)
		if attr == nil {
			return nil, fmt.Errorf("%s: cannot populate unknown attribute %q", ct.UID, name)
		}
		if !attr.IsStructural() && attr.Kind != schema.KindRelation {
			return nil, fmt.Errorf("%s: attribute %q is not populatable", ct.UID, name)
		}

		node := &Node{Count: req.Count}
		if sub != nil {
			node.Count = node.Count || sub.Count
			if attr.Kind == schema.KindRelation {
				target, err := reg.Get(attr.Target)
				if err != nil {
					return nil, err
				}
				children, err := Build(reg, target, sub)
				if err != nil {
					return nil, err
				}
				node.Children = children
			}
		}
		tree[name] = node
	}
	return tree, nil
}

// Deep returns the full populate tree for a content type: every structural
// attribute, and relations expanded transitively down to depth levels.
func Deep(reg *schema.Registry, ct *schema.ContentType, depth int) Tree {
	tree := make(Tree)
	for _, name := range ct.StructuralAttributeNames() {
		tree[name] = &Node{}
	}
	if depth <= 0 {
		return tree
	}
	for _, name := range ct.RelationAttributeNames() {
		attr := ct.Attributes[name]
		target, err := reg.Get(attr.Target)
		if err != nil {
			continue
		}
		tree[name] = &Node{Children: Deep(reg, target, depth-1)}
	}
	return tree
}

// InferFromFilters derives a minimal populate tree from filter keys that
// reference relation attributes, so filtered reads can resolve what they
// filter on.
func InferFromFilters(ct *schema.ContentType, filters map[string]any) Tree {
	var tree Tree
	for key := range filters {
		attr := ct.Attribute(key)
		if attr == nil || attr.Kind != schema.KindRelation {
			continue
		}
		if tree == nil {
			tree = make(Tree)
		}
		tree[key] = &Node{}
	}
	return tree
}
