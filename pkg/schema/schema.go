// Package schema describes content types: the typed field layout of every
// document the engine stores.
//
// A content type is a descriptor, not a Go struct: the set of content types
// is configuration, loaded from YAML files at startup and registered in a
// Registry. The store derives physical tables from descriptors, the
// validator dispatches on attribute kinds, and the parameter pipeline
// consults the draft/publish and localization flags.
package schema

import "sort"

// ModelType distinguishes top-level content types from components.
type ModelType string

const (
	// ModelContentType is a top-level type with its own document lifecycle.
	ModelContentType ModelType = "contentType"
	// ModelComponent is a nested structural type owned by a parent version.
	ModelComponent ModelType = "component"
)

// Kind identifies the value kind of an attribute. The validator and the
// store dispatch on Kind via explicit switches; there is no reflection.
type Kind string

const (
	KindString      Kind = "string"
	KindText        Kind = "text"
	KindEmail       Kind = "email"
	KindInteger     Kind = "integer"
	KindFloat       Kind = "float"
	KindBoolean     Kind = "boolean"
	KindDate        Kind = "date"
	KindDatetime    Kind = "datetime"
	KindJSON        Kind = "json"
	KindComponent   Kind = "component"
	KindDynamicZone Kind = "dynamiczone"
	KindRelation    Kind = "relation"
)

// Attribute describes one schema-defined field of a content type.
type Attribute struct {
	Kind     Kind `yaml:"kind"`
	Required bool `yaml:"required"`

	// Unique requests locale- and status-scoped uniqueness for scalar
	// kinds, including scalars nested inside components.
	Unique bool `yaml:"unique"`

	// String constraints (string, text, email).
	MinLength int `yaml:"minLength"`
	MaxLength int `yaml:"maxLength"`

	// Component is the component UID for KindComponent.
	Component string `yaml:"component"`
	// Repeatable marks a component attribute as a list.
	Repeatable bool `yaml:"repeatable"`

	// Components lists the admissible component UIDs for KindDynamicZone.
	Components []string `yaml:"components"`

	// Target is the content-type UID a KindRelation attribute points at.
	Target string `yaml:"target"`
}

// IsScalar reports whether the attribute holds a plain column value.
func (a *Attribute) IsScalar() bool {
	switch a.Kind {
	case KindString, KindText, KindEmail, KindInteger, KindFloat,
		KindBoolean, KindDate, KindDatetime, KindJSON:
		return true
	default:
		return false
	}
}

// IsStructural reports whether the attribute's data lives in auxiliary
// component tables rather than in a column of the owner's table.
func (a *Attribute) IsStructural() bool {
	return a.Kind == KindComponent || a.Kind == KindDynamicZone
}

// ContentType describes one registered type: its identity, lifecycle flags,
// and attributes.
type ContentType struct {
	// UID is the registry key, e.g. "article" or "shared.seo".
	UID string `yaml:"uid"`

	// CollectionName overrides the derived physical table name.
	CollectionName string `yaml:"collectionName"`

	ModelType ModelType `yaml:"modelType"`

	// DraftAndPublish enables the draft/published version pair. Types
	// without it keep exactly one always-published version per locale.
	DraftAndPublish bool `yaml:"draftAndPublish"`

	// Localized enables per-locale versions.
	Localized bool `yaml:"localized"`

	Attributes map[string]*Attribute `yaml:"attributes"`
}

// IsComponent reports whether this descriptor is a component model.
func (ct *ContentType) IsComponent() bool {
	return ct.ModelType == ModelComponent
}

// Attribute returns the named attribute, or nil if not declared.
func (ct *ContentType) Attribute(name string) *Attribute {
	return ct.Attributes[name]
}

// AttributeNames returns all declared attribute names in sorted order.
func (ct *ContentType) AttributeNames() []string {
	names := make([]string, 0, len(ct.Attributes))
	for name := range ct.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScalarAttributeNames returns the names of column-backed attributes.
func (ct *ContentType) ScalarAttributeNames() []string {
	var names []string
	for _, name := range ct.AttributeNames() {
		if ct.Attributes[name].IsScalar() {
			names = append(names, name)
		}
	}
	return names
}

// StructuralAttributeNames returns the names of component and dynamic-zone
// attributes.
func (ct *ContentType) StructuralAttributeNames() []string {
	var names []string
	for _, name := range ct.AttributeNames() {
		if ct.Attributes[name].IsStructural() {
			names = append(names, name)
		}
	}
	return names
}

// RelationAttributeNames returns the names of relation attributes.
func (ct *ContentType) RelationAttributeNames() []string {
	var names []string
	for _, name := range ct.AttributeNames() {
		if ct.Attributes[name].Kind == KindRelation {
			names = append(names, name)
		}
	}
	return names
}
