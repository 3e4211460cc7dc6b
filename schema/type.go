// Package schema derives JSON Schema objects from explicit argument type
// descriptions. Tool inputs are declared as data, either a record of named
// fields or a tagged union of variants, and compiled to the map[string]any
// parameter shape carried by protocol.Tool.
package schema

// Kind identifies the shape of a single value.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindRef     Kind = "ref"
)

// Type describes the type of one field or payload position. Exactly one
// shape applies: a primitive kind, an array with an element type, or a named
// reference to another ArgumentType resolved at generation time.
type Type struct {
	Kind     Kind
	Elem     *Type  // element type when Kind is KindArray
	Ref      string // target type name when Kind is KindRef
	Optional bool
}

// String returns a string-typed Type.
func String() Type { return Type{Kind: KindString} }

// Integer returns an integer-typed Type.
func Integer() Type { return Type{Kind: KindInteger} }

// Number returns a floating-point-typed Type.
func Number() Type { return Type{Kind: KindNumber} }

// Boolean returns a boolean-typed Type.
func Boolean() Type { return Type{Kind: KindBoolean} }

// Array returns a Type describing a sequence of elem values.
func Array(elem Type) Type {
	return Type{Kind: KindArray, Elem: &elem}
}

// Ref returns a Type referencing another ArgumentType by name. The referenced
// type must be defined on the Generator used to compile the schema.
func Ref(name string) Type {
	return Type{Kind: KindRef, Ref: name}
}

// Optional marks t as optional. Optional fields keep their schema but are
// excluded from the enclosing record's required list.
func Optional(t Type) Type {
	t.Optional = true
	return t
}

// Field is a named member of a record or of a named-fields variant.
// Description is merged into the generated schema entry when non-empty.
type Field struct {
	Name        string
	Type        Type
	Description string
}

// NewField creates a Field without a description.
func NewField(name string, t Type) Field {
	return Field{Name: name, Type: t}
}

// Describe returns a copy of f carrying a human-readable description.
func (f Field) Describe(desc string) Field {
	f.Description = desc
	return f
}

// Variant is one case of a tagged union. Payload shape is determined by
// which of Tuple and Fields is populated:
//
//   - neither: a unit variant carrying only the discriminant
//   - Tuple with one entry: a single typed payload under "value"
//   - Tuple with several entries: a fixed-length positional payload under "value"
//   - Fields: named payload fields alongside the discriminant
type Variant struct {
	Name        string
	Description string
	Tuple       []Type
	Fields      []Field
}

// Unit creates a payload-free variant.
func Unit(name string) Variant {
	return Variant{Name: name}
}

// Case creates a variant with one or more positional payload types.
func Case(name string, payload ...Type) Variant {
	return Variant{Name: name, Tuple: payload}
}

// NamedCase creates a variant whose payload is a set of named fields.
func NamedCase(name string, fields ...Field) Variant {
	return Variant{Name: name, Fields: fields}
}

// ArgumentType is a closed description of a tool's expected input: either a
// record (Fields) or a tagged union (Variants). The two shapes are mutually
// exclusive; a type with variants is treated as a union regardless of Fields.
//
// Field and variant order is declaration order and is preserved in generated
// required lists and oneOf entries.
type ArgumentType struct {
	Name        string
	Description string
	Fields      []Field
	Variants    []Variant
}

// Record creates a record ArgumentType from ordered fields.
func Record(name string, fields ...Field) *ArgumentType {
	return &ArgumentType{Name: name, Fields: fields}
}

// Union creates a tagged-union ArgumentType from ordered variants.
func Union(name string, variants ...Variant) *ArgumentType {
	return &ArgumentType{Name: name, Variants: variants}
}

// Describe sets the type-level description and returns t for chaining.
func (t *ArgumentType) Describe(desc string) *ArgumentType {
	t.Description = desc
	return t
}

// IsUnion reports whether t is a tagged union.
func (t *ArgumentType) IsUnion() bool {
	return len(t.Variants) > 0
}
