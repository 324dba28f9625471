package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidValue reports that a value does not conform to its simple type.
var ErrInvalidValue = errors.New("invalid value")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidValue}, args...)...)
}

// Validate checks value against the simple type. Desc path kinds are only
// checked for emptiness here; resolving them is the checker's job.
func (st *SimpleType) Validate(value string) error {
	if st == nil {
		return nil
	}
	if err := st.validateKind(value); err != nil {
		return err
	}
	if st.Pattern != nil && !st.Pattern.MatchString(value) {
		return invalidf("%q doesn't match the pattern of %s", value, st.Name)
	}
	return nil
}

func (st *SimpleType) validateKind(value string) error {
	switch st.Kind {
	case BuiltinString:
		return nil
	case BuiltinBoolean:
		if value != "true" && value != "false" {
			return invalidf("%q is not a boolean, expected true or false", value)
		}
	case BuiltinInteger:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return invalidf("%q is not an integer", value)
		}
	case BuiltinUnsigned:
		if _, err := strconv.ParseUint(value, 10, 64); err != nil {
			return invalidf("%q is not an unsigned integer", value)
		}
	case BuiltinReal:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return invalidf("%q is not a number", value)
		}
	case BuiltinEnum:
		if _, ok := st.EnumValue(value); !ok {
			return invalidf("%q is not a valid %s, expected one of: %s", value, st.Name, strings.Join(st.Enum, ", "))
		}
	case BuiltinFlags:
		for _, flag := range strings.Split(value, "|") {
			flag = strings.TrimSpace(flag)
			if flag == "" {
				continue
			}
			if _, ok := st.EnumValue(strings.TrimPrefix(flag, "!")); !ok {
				return invalidf("%q is not a valid %s flag, expected any of: %s", flag, st.Name, strings.Join(st.Enum, ", "))
			}
		}
	case BuiltinUnion:
		if len(st.Union) == 0 {
			return nil
		}
		for _, member := range st.Union {
			if member.Validate(value) == nil {
				return nil
			}
		}
		if len(st.Enum) > 0 {
			return invalidf("%q is not a valid %s, expected one of: %s", value, st.Name, strings.Join(st.Enum, ", "))
		}
		return invalidf("%q is not a valid %s", value, st.Name)
	default:
		if strings.TrimSpace(value) == "" {
			return invalidf("%s cannot be empty", st.Name)
		}
	}
	return nil
}
