package opts

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Converter turns an unconverted option value into its typed form. The core
// treats converters as opaque: they are only invoked when effective values
// are validated or a schema is materialized.
type Converter interface {
	Convert(value string) (any, error)
}

// ConverterFunc adapts a plain function to the Converter interface.
type ConverterFunc func(value string) (any, error)

func (f ConverterFunc) Convert(value string) (any, error) { return f(value) }

// Void is the field type for nullary options; it carries no information
// beyond the option's presence.
type Void struct{}

// Built-in converters for the supported schema field types.
var (
	StringConverter Converter = ConverterFunc(func(v string) (any, error) { return v, nil })

	BoolConverter Converter = ConverterFunc(func(v string) (any, error) { return parseBoolValue(v) })

	IntConverter Converter = ConverterFunc(func(v string) (any, error) {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %s", v)
		}
		return n, nil
	})

	Int64Converter Converter = ConverterFunc(func(v string) (any, error) {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %s", v)
		}
		return n, nil
	})

	FloatConverter Converter = ConverterFunc(func(v string) (any, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float value: %s", v)
		}
		return f, nil
	})

	DurationConverter Converter = ConverterFunc(func(v string) (any, error) { return parseDurationValue(v) })

	VoidConverter Converter = ConverterFunc(func(string) (any, error) { return Void{}, nil })
)

// converterForFieldType maps a schema field type to its built-in converter.
// AllowMultiple fields convert per element; the slice is assembled by the
// binder.
func converterForFieldType(t reflect.Type) (Converter, error) {
	switch {
	case t == reflect.TypeOf(time.Duration(0)):
		return DurationConverter, nil
	case t == reflect.TypeOf(Void{}):
		return VoidConverter, nil
	}
	switch t.Kind() {
	case reflect.String:
		return StringConverter, nil
	case reflect.Bool:
		return BoolConverter, nil
	case reflect.Int:
		return IntConverter, nil
	case reflect.Int64:
		return Int64Converter, nil
	case reflect.Float64:
		return FloatConverter, nil
	default:
		return nil, fmt.Errorf("unsupported option field type %s", t)
	}
}

// parseBoolValue accepts the permissive boolean grammar used across surface
// syntaxes; the empty string is false so unset boolean defaults validate.
func parseBoolValue(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "t", "yes", "y", "1", "on":
		return true, nil
	case "false", "f", "no", "n", "0", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %s", v)
	}
}

// parseDurationValue supports "MM:SS", "HH:MM:SS", extended day/week/month/
// year units ("1d", "1w", "1M", "1Y"), and standard Go durations.
func parseDurationValue(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.Contains(s, ":") {
		return parseColonDuration(s)
	}
	if d, ok := parseExtendedDuration(s); ok {
		return d, nil
	}
	return time.ParseDuration(s)
}

func parseColonDuration(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		minutes, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, fmt.Errorf("invalid minutes: %s", parts[0])
		}
		seconds, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, fmt.Errorf("invalid seconds: %s", parts[1])
		}
		return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, nil
	case 3:
		hours, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, fmt.Errorf("invalid hours: %s", parts[0])
		}
		minutes, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, fmt.Errorf("invalid minutes: %s", parts[1])
		}
		seconds, err := strconv.Atoi(parts[2])
		if err != nil {
			return 0, fmt.Errorf("invalid seconds: %s", parts[2])
		}
		return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, nil
	}
	return 0, fmt.Errorf("invalid colon duration format: %s", s)
}

func parseExtendedDuration(s string) (time.Duration, bool) {
	if len(s) < 2 {
		return 0, false
	}

	last := s[len(s)-1]
	var multiplier time.Duration
	switch last {
	case 'd':
		multiplier = 24 * time.Hour
	case 'w':
		multiplier = 7 * 24 * time.Hour
	case 'M':
		multiplier = 30 * 24 * time.Hour // 1 month = 30 days (assumption)
	case 'Y', 'y':
		multiplier = 365 * 24 * time.Hour // 1 year = 365 days (assumption)
	default:
		return 0, false
	}

	number, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, false
	}
	return time.Duration(number) * multiplier, true
}
