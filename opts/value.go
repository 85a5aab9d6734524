package opts

import "fmt"

// ValueDescriptionKind tags the variant of an OptionValueDescription.
type ValueDescriptionKind int

const (
	// ValueSingleton holds the last-seen occurrence; earlier ones are
	// overwritten.
	ValueSingleton ValueDescriptionKind = iota
	// ValueAccumulating holds every occurrence in insertion order.
	ValueAccumulating
	// ValueExpansion marks descriptions of expansion options; occurrences
	// are tracked like singletons but the payload lives in the expanded
	// options.
	ValueExpansion
)

// OptionValueDescription tracks the accumulated value of a single option
// across all parse calls. One exists per option ever set; it is constructed
// lazily on first set and mutated only by addOptionInstance.
type OptionValueDescription struct {
	definition *OptionDefinition
	kind       ValueDescriptionKind

	// singleton / expansion
	value *ParsedOption
	// accumulating
	values []*ParsedOption

	isDefault bool
}

func newOptionValueDescription(def *OptionDefinition) *OptionValueDescription {
	kind := ValueSingleton
	switch {
	case def.AllowMultiple:
		kind = ValueAccumulating
	case def.IsExpansion():
		kind = ValueExpansion
	}
	return &OptionValueDescription{definition: def, kind: kind}
}

// defaultValueDescription synthesizes the description used for options that
// were never set.
func defaultValueDescription(def *OptionDefinition) *OptionValueDescription {
	d := newOptionValueDescription(def)
	d.isDefault = true
	return d
}

// Definition returns the option this description belongs to.
func (d *OptionValueDescription) Definition() *OptionDefinition {
	return d.definition
}

// Kind returns the variant tag.
func (d *OptionValueDescription) Kind() ValueDescriptionKind {
	return d.kind
}

// IsDefault reports whether the description was synthesized for an option
// that was never set.
func (d *OptionValueDescription) IsDefault() bool {
	return d.isDefault
}

// addOptionInstance records one parsed occurrence. Priority ordering across
// parse calls is the caller's obligation; within the store, singletons are
// overwritten unconditionally and accumulating options append.
func (d *OptionValueDescription) addOptionInstance(parsed *ParsedOption) {
	if d.kind == ValueAccumulating {
		d.values = append(d.values, parsed)
		return
	}
	d.value = parsed
}

// Instances returns the recorded occurrences: one for singletons, all of
// them in insertion order for accumulating options.
func (d *OptionValueDescription) Instances() []*ParsedOption {
	if d.kind == ValueAccumulating {
		return d.values
	}
	if d.value == nil {
		return nil
	}
	return []*ParsedOption{d.value}
}

// UnconvertedValue returns the effective unconverted string: the last-seen
// value for singletons, the definition's default when never set. Accumulating
// options have no single unconverted value.
func (d *OptionValueDescription) UnconvertedValue() string {
	if d.value != nil {
		return d.value.UnconvertedValue
	}
	return d.definition.DefaultValue
}

// GetValue round-trips the effective unconverted value through the option's
// converter. For accumulating options the result is a slice of converted
// elements. Surfaces conversion errors uniformly, defaults included.
func (d *OptionValueDescription) GetValue() (any, error) {
	def := d.definition
	if d.kind == ValueAccumulating {
		converter := def.elemConverter
		if converter == nil {
			converter = def.converter
		}
		converted := make([]any, 0, len(d.values))
		for _, parsed := range d.values {
			v, err := convertValue(converter, def, parsed.UnconvertedValue)
			if err != nil {
				return nil, err
			}
			converted = append(converted, v)
		}
		return converted, nil
	}
	if def.Kind == KindVoid {
		return Void{}, nil
	}
	return convertValue(def.converter, def, d.UnconvertedValue())
}

func convertValue(converter Converter, def *OptionDefinition, value string) (any, error) {
	v, err := converter.Convert(value)
	if err != nil {
		return nil, &ParseError{
			Type:    ErrorTypeInvalidValue,
			Message: fmt.Sprintf("While parsing option --%s: %v", def.Name, err),
			Arg:     value,
		}
	}
	return v, nil
}
