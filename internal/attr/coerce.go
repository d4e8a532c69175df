package attr

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pgtrunk/pgtrunk/internal/ir"
)

// coerce converts value into the representation of def.Kind. A nil result with
// a nil error clears the attribute.
func coerce(def Def, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	var (
		out any
		err error
	)
	switch def.Kind {
	case String:
		out, err = toString(value)
	case Text:
		out, err = toText(value)
	case Boolean:
		out, err = toBool(value)
	case Integer:
		out, err = toInt(value)
	case Symbol:
		out, err = toSymbol(value)
	case Name:
		out, err = toName(value)
	case Columns:
		out, err = toColumns(value)
	default:
		err = fmt.Errorf("unsupported kind")
	}
	if err != nil {
		return nil, &CoercionError{Attribute: def.Name, Kind: def.Kind, Value: value, Err: unwrapMarker(err)}
	}
	return out, nil
}

// Int coerces value the way an Integer attribute called name is coerced.
func Int(name string, value any) (int, error) {
	out, err := coerce(Def{Name: name, Kind: Integer}, value)
	if err != nil {
		return 0, err
	}
	n, _ := out.(int)
	return n, nil
}

// errMismatch marks a plain type mismatch; CoercionError already says so.
var errMismatch = fmt.Errorf("type mismatch")

func unwrapMarker(err error) error {
	if err == errMismatch {
		return nil
	}
	return err
}

func toString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", errMismatch
	}
}

func toText(value any) (any, error) {
	s, err := toString(value)
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if s == "" {
		return nil, nil
	}
	return s, nil
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "t", "yes", "y", "on", "1":
			return true, nil
		case "false", "f", "no", "n", "off", "0":
			return false, nil
		}
	case int:
		return intToBool(int64(v))
	case int64:
		return intToBool(v)
	case int32:
		return intToBool(int64(v))
	}
	return false, errMismatch
}

func intToBool(v int64) (bool, error) {
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, errMismatch
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("value out of range")
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("not an integral number")
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, errMismatch
		}
		return n, nil
	case []byte:
		return toInt(string(v))
	}
	return 0, errMismatch
}

func toSymbol(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		if b, isBytes := value.([]byte); isBytes {
			s, ok = string(b), true
		}
	}
	if !ok {
		return nil, errMismatch
	}
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ":"))
	if s == "" {
		return nil, nil
	}
	return s, nil
}

func toName(value any) (any, error) {
	switch v := value.(type) {
	case ir.QualifiedName:
		if v.IsZero() {
			return nil, nil
		}
		if v.Name == "" {
			return nil, fmt.Errorf("empty name in schema %q", v.Schema)
		}
		return v, nil
	case *ir.QualifiedName:
		if v == nil {
			return nil, nil
		}
		return toName(*v)
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return ir.ParseQualifiedName(v)
	case []byte:
		return toName(string(v))
	}
	return nil, errMismatch
}

func toColumns(value any) (any, error) {
	var columns []Column
	switch v := value.(type) {
	case []Column:
		columns = append(columns, v...)
	case []map[string]any:
		for _, item := range v {
			col, err := columnFromMap(item)
			if err != nil {
				return nil, err
			}
			columns = append(columns, col)
		}
	case []any:
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("column entry %#v is not a mapping", item)
			}
			col, err := columnFromMap(m)
			if err != nil {
				return nil, err
			}
			columns = append(columns, col)
		}
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		if err := json.Unmarshal([]byte(v), &columns); err != nil {
			return nil, fmt.Errorf("invalid columns JSON: %w", err)
		}
	case []byte:
		return toColumns(string(v))
	default:
		return nil, errMismatch
	}

	if len(columns) == 0 {
		return nil, nil
	}
	for i := range columns {
		if columns[i].Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		columns[i].Storage = strings.ToLower(columns[i].Storage)
	}
	return columns, nil
}

func columnFromMap(m map[string]any) (Column, error) {
	var col Column
	for key, raw := range m {
		s, err := toString(raw)
		if err != nil {
			return Column{}, fmt.Errorf("column field %s: %#v is not a string", key, raw)
		}
		switch key {
		case "name":
			col.Name = s
		case "storage":
			col.Storage = s
		default:
			return Column{}, fmt.Errorf("unknown column field %q", key)
		}
	}
	return col, nil
}
