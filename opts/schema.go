package opts

import (
	"fmt"
	"reflect"
	"strings"
)

// Schema extraction: a Go-native replacement for annotation scanning. Option
// metadata is declared as struct tags on the schema record:
//
//	type BuildOptions struct {
//	    Host string        `opt:"host" abbrev:"h" default:"localhost" help:"Remote host"`
//	    Jobs int           `opt:"jobs" default:"8" category:"performance"`
//	    All  bool          `opt:"all" expansion:"--a=1 --b=2"`
//	    Lib  bool          `opt:"core_library" implies:"--allow_empty_bootclasspath"`
//	    W    opts.Void     `opt:"wrap" wrapper:"true"`
//	}
//
// Supported field types: string, bool, int, int64, float64, time.Duration,
// []string (accumulating) and opts.Void (nullary). Tag keys: opt (long name,
// required), abbrev, default, help, category, tags (comma separated),
// multiple, expansion, implies, wrapper, internal, deprecated.
// Value-dependent expansions are registered via RegistryBuilder.ExpansionFunc
// since a tag cannot carry a function.
//
// The declared default must be convertible by the field's converter; effective
// value validation round-trips defaults too, so an int option without a
// numeric default is reported on the first Parse call.

func extractSchema(schemaType reflect.Type) ([]*OptionDefinition, error) {
	if schemaType == nil || schemaType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("options schema must be a struct, got %v", schemaType)
	}

	var defs []*OptionDefinition
	for i := 0; i < schemaType.NumField(); i++ {
		field := schemaType.Field(i)
		name, ok := field.Tag.Lookup("opt")
		if !ok {
			continue // not an option field
		}
		if name == "" {
			return nil, fmt.Errorf("%s.%s: empty option name", schemaType.Name(), field.Name)
		}
		if !field.IsExported() {
			return nil, fmt.Errorf("%s.%s: option fields must be exported", schemaType.Name(), field.Name)
		}

		def := &OptionDefinition{
			Name:       name,
			Help:       field.Tag.Get("help"),
			Category:   field.Tag.Get("category"),
			schemaType: schemaType,
			fieldIndex: i,
		}

		if abbrev := field.Tag.Get("abbrev"); abbrev != "" {
			if len(abbrev) != 1 {
				return nil, fmt.Errorf("%s.%s: abbreviation must be a single character", schemaType.Name(), field.Name)
			}
			def.Abbrev = abbrev[0]
		}
		if tags := field.Tag.Get("tags"); tags != "" {
			for _, tag := range strings.Split(tags, ",") {
				def.MetadataTags = append(def.MetadataTags, strings.TrimSpace(tag))
			}
		}
		if deprecated, ok := field.Tag.Lookup("deprecated"); ok {
			def.Deprecated = true
			def.DeprecationWarning = deprecated
		}
		def.Wrapper = field.Tag.Get("wrapper") == "true"
		def.Internal = field.Tag.Get("internal") == "true"
		if expansion := field.Tag.Get("expansion"); expansion != "" {
			def.Expansion = strings.Fields(expansion)
		}
		if implies := field.Tag.Get("implies"); implies != "" {
			def.ImplicitRequirements = strings.Fields(implies)
		}
		def.DefaultValue = field.Tag.Get("default")

		fieldType := field.Type
		if fieldType.Kind() == reflect.Slice && fieldType.Elem().Kind() == reflect.String {
			def.AllowMultiple = true
			fieldType = fieldType.Elem()
		}
		if field.Tag.Get("multiple") == "true" && !def.AllowMultiple {
			return nil, fmt.Errorf("%s.%s: multiple options need a slice field", schemaType.Name(), field.Name)
		}

		converter, err := converterForFieldType(fieldType)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %v", schemaType.Name(), field.Name, err)
		}
		switch {
		case fieldType == reflect.TypeOf(Void{}):
			def.Kind = KindVoid
		case fieldType.Kind() == reflect.Bool:
			def.Kind = KindBool
		default:
			def.Kind = KindTyped
		}
		if def.AllowMultiple {
			def.elemConverter = converter
			def.converter = converter
		} else {
			def.converter = converter
		}

		defs = append(defs, def)
	}

	if len(defs) == 0 {
		return nil, fmt.Errorf("%s: no option fields declared", schemaType.Name())
	}
	return defs, nil
}

// Materialize instantiates the schema struct T and populates its option
// fields from the parser's value store, falling back to declared defaults
// for options never set. Conversion problems were already surfaced by Parse;
// failures here indicate schema bugs and panic.
func Materialize[T any](p *Parser) *T {
	var prototype T
	schemaType := schemaTypeOf(prototype)
	defs := p.registry.schemas[schemaType]
	if defs == nil {
		internalf("schema %v was not registered", schemaType)
	}

	instance := reflect.New(schemaType)
	for _, def := range defs {
		vd := p.optionValues[def]
		if vd == nil {
			vd = defaultValueDescription(def)
		}
		value, err := vd.GetValue()
		if err != nil {
			internalf("unable to set option '%s': %v", def.Name, err)
		}
		setSchemaField(instance.Elem().Field(def.fieldIndex), def, value)
	}

	result, ok := instance.Interface().(*T)
	if !ok {
		internalf("schema %v materialized to unexpected type", schemaType)
	}
	return result
}

// setSchemaField assigns a converted value to one schema field. Accumulating
// options arrive as []any of converted elements and are rebuilt into the
// field's slice type.
func setSchemaField(field reflect.Value, def *OptionDefinition, value any) {
	if def.AllowMultiple {
		elems, ok := value.([]any)
		if !ok {
			internalf("option '%s': expected accumulated values, got %T", def.Name, value)
		}
		slice := reflect.MakeSlice(field.Type(), 0, len(elems))
		for _, elem := range elems {
			ev := reflect.ValueOf(elem)
			if !ev.Type().AssignableTo(field.Type().Elem()) {
				internalf("option '%s': cannot assign %T to %v", def.Name, elem, field.Type().Elem())
			}
			slice = reflect.Append(slice, ev)
		}
		field.Set(slice)
		return
	}

	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(field.Type()) {
		internalf("option '%s': cannot assign %T to %v", def.Name, value, field.Type())
	}
	field.Set(v)
}
