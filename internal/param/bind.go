package param

import (
	"fmt"
	"strconv"

	"github.com/dbgateway/gateway/internal/sqltext"
)

// ValidateSchema checks, at tool-registration time, that a query's
// placeholders line up with its declared parameter schema: for the two
// positional styles the declared count must match the highest/occurrence
// count found in the query; for the named style the set of placeholder
// names must equal the set of declared names exactly.
func ValidateSchema(d sqltext.Dialect, declared []Spec, placeholders []Placeholder) error {
	switch StyleForDialect(d) {
	case StyleNamed:
		return validateNamed(declared, placeholders)
	case StylePositionalIndex:
		want := len(declared)
		got := MaxIndex(placeholders)
		if want != got {
			return &PlaceholderCountMismatchError{Want: want, Got: got}
		}
		return nil
	default: // StylePositionalOrdinal
		want := len(declared)
		got := len(placeholders)
		if want != got {
			return &PlaceholderCountMismatchError{Want: want, Got: got}
		}
		return nil
	}
}

func validateNamed(declared []Spec, placeholders []Placeholder) error {
	declaredSet := map[string]bool{}
	for _, s := range declared {
		declaredSet[s.Name] = true
	}
	foundSet := map[string]bool{}
	for _, p := range placeholders {
		foundSet[p.Name] = true
	}

	var missing, extra []string
	for name := range declaredSet {
		if !foundSet[name] {
			missing = append(missing, name)
		}
	}
	for name := range foundSet {
		if !declaredSet[name] {
			extra = append(extra, name)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return &PlaceholderNameMismatchError{Missing: missing, Extra: extra}
	}
	return nil
}

// Bind coerces caller-supplied arguments against the declared schema at
// invocation time: missing values fall back to declared defaults, missing
// required values without a default fail, values are type-coerced, and
// allowed_values is enforced. The result is keyed by parameter name —
// translating that into the dialect's positional or named bind values is
// the connector layer's job.
func Bind(declared []Spec, args map[string]any) (map[string]any, error) {
	declaredSet := map[string]bool{}
	for _, s := range declared {
		declaredSet[s.Name] = true
	}
	for name := range args {
		if !declaredSet[name] {
			return nil, &UnknownParameterError{Name: name}
		}
	}

	out := make(map[string]any, len(declared))
	for _, spec := range declared {
		val, present := args[spec.Name]
		if !present {
			if spec.Default != nil {
				val = spec.Default
			} else if spec.Required {
				return nil, &MissingRequiredParameterError{Name: spec.Name}
			} else {
				continue
			}
		}

		coerced, err := coerce(spec.Type, val)
		if err != nil {
			return nil, &InvalidParamValueError{Name: spec.Name, Value: val, Type: spec.Type, Err: err}
		}

		if len(spec.AllowedValues) > 0 && !allowed(coerced, spec.AllowedValues) {
			return nil, &DisallowedValueError{Name: spec.Name, Value: coerced}
		}

		out[spec.Name] = coerced
	}
	return out, nil
}

func coerce(t Type, v any) (any, error) {
	switch t {
	case TypeString:
		switch x := v.(type) {
		case string:
			return x, nil
		default:
			return fmt.Sprintf("%v", x), nil
		}
	case TypeInteger:
		switch x := v.(type) {
		case int:
			return x, nil
		case int64:
			return int(x), nil
		case float64:
			if x != float64(int64(x)) {
				return nil, fmt.Errorf("%v is not an integer", x)
			}
			return int(x), nil
		case string:
			n, err := strconv.Atoi(x)
			if err != nil {
				return nil, err
			}
			return n, nil
		default:
			return nil, fmt.Errorf("cannot coerce %T to integer", v)
		}
	case TypeFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		case string:
			f, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return nil, err
			}
			return f, nil
		default:
			return nil, fmt.Errorf("cannot coerce %T to float", v)
		}
	case TypeBoolean:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return nil, err
			}
			return b, nil
		default:
			return nil, fmt.Errorf("cannot coerce %T to boolean", v)
		}
	case TypeArray:
		if arr, ok := v.([]any); ok {
			return arr, nil
		}
		return nil, fmt.Errorf("cannot coerce %T to array", v)
	default:
		return nil, fmt.Errorf("unknown parameter type %q", t)
	}
}

func allowed(v any, allowedValues []any) bool {
	for _, a := range allowedValues {
		if fmt.Sprintf("%v", a) == fmt.Sprintf("%v", v) {
			return true
		}
	}
	return false
}
