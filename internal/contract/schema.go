package contract

import "encoding/json"

// Schema renders a validator as a JSON Schema document, the format tool
// parameter contracts are advertised to AI providers in. Unknown validator
// kinds render as an unconstrained schema.
func Schema(v Validator) json.RawMessage {
	raw, err := json.Marshal(schemaMap(v))
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}

func schemaMap(v Validator) map[string]any {
	switch s := v.(type) {
	case *StringShape:
		m := map[string]any{"type": "string"}
		if s.MinLen > 0 {
			m["minLength"] = s.MinLen
		}
		return m
	case *IntShape:
		m := map[string]any{"type": "integer"}
		if s.Min != nil {
			m["minimum"] = *s.Min
		}
		if s.Max != nil {
			m["maximum"] = *s.Max
		}
		return m
	case *FloatShape:
		return map[string]any{"type": "number"}
	case *BoolShape:
		return map[string]any{"type": "boolean"}
	case *EnumShape:
		return map[string]any{"type": "string", "enum": s.Values}
	case *ArrayShape:
		m := map[string]any{"type": "array"}
		if s.Elem != nil {
			m["items"] = schemaMap(s.Elem)
		}
		return m
	case *ObjectShape:
		props := make(map[string]any, len(s.Fields))
		for name, field := range s.Fields {
			if field != nil {
				props[name] = schemaMap(field)
			}
		}
		m := map[string]any{"type": "object", "properties": props}
		if len(s.Required) > 0 {
			m["required"] = s.Required
		}
		return m
	default:
		return map[string]any{}
	}
}
