package schema

import (
	"fmt"
	"math"
)

// Validate checks a decoded JSON value (the map/slice/primitive tree produced
// by encoding/json) against an ArgumentType. All failures wrap
// ErrInvalidValue. Named references resolve through the generator; since
// validation follows the finite input value rather than the type graph, it
// terminates even for cyclic types.
func (g *Generator) Validate(t *ArgumentType, value any) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.validateArgumentType(t, value, "")
}

func (g *Generator) validateArgumentType(t *ArgumentType, value any, path string) error {
	if t.IsUnion() {
		return g.validateUnion(t, value, path)
	}
	return g.validateRecord(t, value, path)
}

func (g *Generator) validateRecord(t *ArgumentType, value any, path string) error {
	obj, ok := value.(map[string]any)
	if !ok {
		return invalid(path, "expected object, got %T", value)
	}

	for _, field := range t.Fields {
		fieldValue, present := obj[field.Name]
		if !present || fieldValue == nil {
			if field.Type.Optional {
				continue
			}
			return invalid(path, "missing required field %q", field.Name)
		}
		if err := g.validateType(field.Type, fieldValue, joinPath(path, field.Name)); err != nil {
			return err
		}
	}

	return nil
}

func (g *Generator) validateUnion(t *ArgumentType, value any, path string) error {
	obj, ok := value.(map[string]any)
	if !ok {
		return invalid(path, "expected object, got %T", value)
	}

	discriminant, ok := obj["type"].(string)
	if !ok {
		return invalid(path, "missing variant discriminant %q", "type")
	}

	for _, variant := range t.Variants {
		if variant.Name == discriminant {
			return g.validateVariant(variant, obj, path)
		}
	}

	return invalid(path, "unknown variant %q", discriminant)
}

func (g *Generator) validateVariant(v Variant, obj map[string]any, path string) error {
	switch {
	case len(v.Fields) > 0:
		for _, field := range v.Fields {
			fieldValue, present := obj[field.Name]
			if !present {
				return invalid(path, "variant %q missing field %q", v.Name, field.Name)
			}
			if err := g.validateType(field.Type, fieldValue, joinPath(path, field.Name)); err != nil {
				return err
			}
		}
		return nil

	case len(v.Tuple) == 1:
		payload, present := obj["value"]
		if !present {
			return invalid(path, "variant %q missing payload %q", v.Name, "value")
		}
		return g.validateType(v.Tuple[0], payload, joinPath(path, "value"))

	case len(v.Tuple) > 1:
		payload, present := obj["value"]
		if !present {
			return invalid(path, "variant %q missing payload %q", v.Name, "value")
		}
		elems, ok := payload.([]any)
		if !ok {
			return invalid(joinPath(path, "value"), "expected array, got %T", payload)
		}
		if len(elems) != len(v.Tuple) {
			return invalid(joinPath(path, "value"), "expected %d elements, got %d", len(v.Tuple), len(elems))
		}
		for i, elem := range elems {
			if err := g.validateType(v.Tuple[i], elem, fmt.Sprintf("%s[%d]", joinPath(path, "value"), i)); err != nil {
				return err
			}
		}
		return nil

	default:
		return nil
	}
}

func (g *Generator) validateType(t Type, value any, path string) error {
	switch t.Kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return invalid(path, "expected string, got %T", value)
		}

	case KindBoolean:
		if _, ok := value.(bool); !ok {
			return invalid(path, "expected boolean, got %T", value)
		}

	case KindNumber:
		if !isNumber(value) {
			return invalid(path, "expected number, got %T", value)
		}

	case KindInteger:
		if !isInteger(value) {
			return invalid(path, "expected integer, got %T", value)
		}

	case KindArray:
		elems, ok := value.([]any)
		if !ok {
			return invalid(path, "expected array, got %T", value)
		}
		if t.Elem == nil {
			return nil
		}
		for i, elem := range elems {
			if err := g.validateType(*t.Elem, elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}

	case KindRef:
		target, exists := g.types[t.Ref]
		if !exists {
			return fmt.Errorf("%w: %s", ErrUnknownType, t.Ref)
		}
		return g.validateArgumentType(target, value, path)

	default:
		return invalid(path, "unsupported kind %q", t.Kind)
	}

	return nil
}

func isNumber(value any) bool {
	switch value.(type) {
	case float32, float64:
		return true
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// isInteger accepts whole-valued floats since encoding/json decodes all JSON
// numbers to float64.
func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return math.Trunc(float64(v)) == float64(v)
	case float64:
		return math.Trunc(v) == v
	}
	return false
}

func invalid(path, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if path != "" {
		msg = path + ": " + msg
	}
	return fmt.Errorf("%w: %s", ErrInvalidValue, msg)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
