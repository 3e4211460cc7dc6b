package schema

import (
	"fmt"
	"sync"
)

// Generator compiles ArgumentTypes to JSON Schema values and resolves named
// references between them. Types are defined once; generation only reads.
// Thread-safe for concurrent use.
type Generator struct {
	mu    sync.RWMutex
	types map[string]*ArgumentType
}

// NewGenerator creates an empty Generator.
func NewGenerator() *Generator {
	return &Generator{types: make(map[string]*ArgumentType)}
}

// Define registers a named ArgumentType so Ref types can resolve to it.
// Returns ErrDuplicateType if the name is already defined.
func (g *Generator) Define(t *ArgumentType) error {
	if t.Name == "" {
		return ErrEmptyTypeName
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.types[t.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, t.Name)
	}

	g.types[t.Name] = t
	return nil
}

// Lookup returns a defined ArgumentType by name.
func (g *Generator) Lookup(name string) (*ArgumentType, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t, exists := g.types[name]
	return t, exists
}

// genState tracks one Generate call. expanding holds the names of types
// currently being inlined on the expansion path; re-entering one of them
// marks a cycle, which is broken by emitting a "#/$defs" reference and
// recording the type's schema under defs on the way back out.
type genState struct {
	root       string
	expanding  map[string]bool
	referenced map[string]bool
	defs       map[string]any
}

// Generate compiles t to a JSON Schema object. Records become
// {type: object, properties, required}; unions become {oneOf: [...]} with a
// constant "type" discriminant per variant. Named references resolve through
// the generator's defined types and are inlined; reference cycles are broken
// with $ref entries ("#" for the root type, "#/$defs/<name>" for any other
// cycle participant) so generation terminates for any well-formed type graph.
//
// Output is deterministic: required lists and oneOf entries follow
// declaration order.
func (g *Generator) Generate(t *ArgumentType) (map[string]any, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	st := &genState{
		root:       t.Name,
		expanding:  make(map[string]bool),
		referenced: make(map[string]bool),
		defs:       make(map[string]any),
	}

	if t.Name != "" {
		st.expanding[t.Name] = true
	}

	root, err := g.genArgumentType(t, st)
	if err != nil {
		return nil, err
	}

	if len(st.defs) > 0 {
		root["$defs"] = st.defs
	}

	return root, nil
}

// Generate compiles a standalone ArgumentType with a throwaway Generator.
// The type itself is defined first, so self-recursive records resolve;
// references to any other named type fail with ErrUnknownType.
func Generate(t *ArgumentType) (map[string]any, error) {
	g := NewGenerator()
	if t.Name != "" {
		if err := g.Define(t); err != nil {
			return nil, err
		}
	}
	return g.Generate(t)
}

func (g *Generator) genArgumentType(t *ArgumentType, st *genState) (map[string]any, error) {
	if t.IsUnion() {
		return g.genUnion(t, st)
	}
	return g.genRecord(t, st)
}

func (g *Generator) genRecord(t *ArgumentType, st *genState) (map[string]any, error) {
	properties := make(map[string]any, len(t.Fields))
	required := make([]string, 0, len(t.Fields))

	for _, field := range t.Fields {
		fieldSchema, err := g.genType(field.Type, st)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		if field.Description != "" {
			fieldSchema["description"] = field.Description
		}

		properties[field.Name] = fieldSchema
		if !field.Type.Optional {
			required = append(required, field.Name)
		}
	}

	record := map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
	if t.Description != "" {
		record["description"] = t.Description
	}

	return record, nil
}

func (g *Generator) genUnion(t *ArgumentType, st *genState) (map[string]any, error) {
	oneOf := make([]any, 0, len(t.Variants))

	for _, variant := range t.Variants {
		variantSchema, err := g.genVariant(variant, st)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", variant.Name, err)
		}
		oneOf = append(oneOf, variantSchema)
	}

	union := map[string]any{"oneOf": oneOf}
	if t.Description != "" {
		union["description"] = t.Description
	}

	return union, nil
}

// genVariant builds the object schema for one union case. Every variant
// requires a constant "type" discriminant equal to the variant name; payload
// encoding depends on the variant shape (see Variant).
func (g *Generator) genVariant(v Variant, st *genState) (map[string]any, error) {
	properties := map[string]any{
		"type": map[string]any{"const": v.Name},
	}
	required := []string{"type"}

	switch {
	case len(v.Fields) > 0:
		for _, field := range v.Fields {
			fieldSchema, err := g.genType(field.Type, st)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field.Name, err)
			}
			if field.Description != "" {
				fieldSchema["description"] = field.Description
			}
			properties[field.Name] = fieldSchema
			required = append(required, field.Name)
		}

	case len(v.Tuple) == 1:
		valueSchema, err := g.genType(v.Tuple[0], st)
		if err != nil {
			return nil, err
		}
		properties["value"] = valueSchema
		required = append(required, "value")

	case len(v.Tuple) > 1:
		items := make([]any, 0, len(v.Tuple))
		for i, elem := range v.Tuple {
			elemSchema, err := g.genType(elem, st)
			if err != nil {
				return nil, fmt.Errorf("position %d: %w", i, err)
			}
			items = append(items, elemSchema)
		}
		properties["value"] = map[string]any{
			"type":  "array",
			"items": items,
		}
		required = append(required, "value")
	}

	variantSchema := map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
	if v.Description != "" {
		variantSchema["description"] = v.Description
	}

	return variantSchema, nil
}

func (g *Generator) genType(t Type, st *genState) (map[string]any, error) {
	switch t.Kind {
	case KindString, KindInteger, KindNumber, KindBoolean:
		return map[string]any{"type": string(t.Kind)}, nil

	case KindArray:
		if t.Elem == nil {
			return nil, fmt.Errorf("array type has no element type")
		}
		items, err := g.genType(*t.Elem, st)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items}, nil

	case KindRef:
		return g.genRef(t.Ref, st)

	default:
		return nil, fmt.Errorf("unsupported kind %q", t.Kind)
	}
}

func (g *Generator) genRef(name string, st *genState) (map[string]any, error) {
	target, exists := g.types[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}

	// Already on the expansion path: inlining again would never terminate.
	// The root type is addressed as "#"; any other cycle participant gets a
	// $defs entry recorded once its own expansion completes.
	if st.expanding[name] {
		if name == st.root {
			return map[string]any{"$ref": "#"}, nil
		}
		st.referenced[name] = true
		return map[string]any{"$ref": "#/$defs/" + name}, nil
	}

	st.expanding[name] = true
	expanded, err := g.genArgumentType(target, st)
	delete(st.expanding, name)
	if err != nil {
		return nil, err
	}

	if st.referenced[name] {
		st.defs[name] = expanded
	}

	return expanded, nil
}
