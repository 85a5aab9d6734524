package opts

import (
	"fmt"
	"sort"
)

// canonicalMultimap is an insertion-ordered multimap from option definition
// to parsed occurrence. Multiple entries exist per key only for options that
// allow multiple values. Replacing a key removes its existing entries and
// appends the replacement at the tail, so canonicalization reflects the most
// recent assignment order.
type canonicalMultimap struct {
	entries []*ParsedOption
	count   map[*OptionDefinition]int
}

func newCanonicalMultimap() canonicalMultimap {
	return canonicalMultimap{count: make(map[*OptionDefinition]int)}
}

func (m *canonicalMultimap) put(def *OptionDefinition, parsed *ParsedOption) {
	m.entries = append(m.entries, parsed)
	m.count[def]++
}

func (m *canonicalMultimap) replaceValues(def *OptionDefinition, parsed *ParsedOption) {
	m.removeAll(def)
	m.put(def, parsed)
}

func (m *canonicalMultimap) removeAll(def *OptionDefinition) {
	if m.count[def] == 0 {
		return
	}
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.Definition != def {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	delete(m.count, def)
}

func (m *canonicalMultimap) values() []*ParsedOption {
	out := make([]*ParsedOption, len(m.entries))
	copy(out, m.entries)
	return out
}

// AsCompleteListOfParsedOptions returns every explicit and expanded
// occurrence in parse-discovery order, stably sorted by priority. The sort
// must be stable so options on the same priority are not reordered.
func (p *Parser) AsCompleteListOfParsedOptions() []*ParsedOption {
	out := make([]*ParsedOption, len(p.parsedOptions))
	copy(out, p.parsedOptions)
	sortByPriorityStable(out)
	return out
}

// AsListOfExplicitOptions returns the occurrences given directly by the
// caller, stably sorted by priority.
func (p *Parser) AsListOfExplicitOptions() []*ParsedOption {
	var out []*ParsedOption
	for _, parsed := range p.parsedOptions {
		if parsed.IsExplicit() {
			out = append(out, parsed)
		}
	}
	sortByPriorityStable(out)
	return out
}

// AsCanonicalizedList produces the normalized effective command line: one
// "--name=value" token per entry, expansion options elided, options carrying
// implicit requirements grouped after all others in their insertion order,
// everything else sorted lexicographically by name.
func (p *Parser) AsCanonicalizedList() []string {
	entries := p.canonical.values()
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].Definition, entries[j].Definition
		if di.HasImplicitRequirements() {
			return false
		}
		if dj.HasImplicitRequirements() {
			return true
		}
		return di.Name < dj.Name
	})

	var out []string
	for _, entry := range entries {
		if entry.Definition.IsExpansion() {
			continue
		}
		out = append(out, "--"+entry.Definition.Name+"="+entry.UnconvertedValue)
	}
	return out
}

// AsListOfEffectiveOptions returns a value description for every registered
// definition, synthesizing default descriptions for options never set.
func (p *Parser) AsListOfEffectiveOptions() []*OptionValueDescription {
	defs := p.registry.AllDefinitions()
	out := make([]*OptionValueDescription, 0, len(defs))
	for _, def := range defs {
		if vd := p.optionValues[def]; vd != nil {
			out = append(out, vd)
		} else {
			out = append(out, defaultValueDescription(def))
		}
	}
	return out
}

// ContainsExplicitOption reports whether the named option has a stored
// value. Unknown names are a caller bug.
func (p *Parser) ContainsExplicitOption(name string) bool {
	def := p.registry.DefinitionFromName(name)
	if def == nil {
		internalf("no such option '%s'", name)
	}
	return p.optionValues[def] != nil
}

// GetOptionValueDescription returns the accumulated value description for
// the named option, or nil when it was never set. Unknown names are a caller
// bug.
func (p *Parser) GetOptionValueDescription(name string) *OptionValueDescription {
	def := p.registry.DefinitionFromName(name)
	if def == nil {
		internalf("no such option '%s'", name)
	}
	return p.optionValues[def]
}

// ClearValue removes the named definition's value from the store and from
// the canonical multimap, returning the prior description or nil.
func (p *Parser) ClearValue(def *OptionDefinition) *OptionValueDescription {
	p.canonical.removeAll(def)
	prior := p.optionValues[def]
	delete(p.optionValues, def)
	return prior
}

// OptionDescription is the non-mutating preview of an option: its
// definition, its static expansion, and what its implicit requirements
// would parse to at the given priority.
type OptionDescription struct {
	Definition           *OptionDefinition
	Expansion            []string
	ImplicitRequirements []*ParsedOption
}

// GetOptionDescription pre-parses the named option's implicit requirements
// without mutating parser state, so callers can inspect what would happen.
// Returns nil for unknown names.
func (p *Parser) GetOptionDescription(name string, priority Priority, source string) (*OptionDescription, error) {
	def := p.registry.DefinitionFromName(name)
	if def == nil {
		return nil, nil
	}

	sourceFn := ConstantSource(fmt.Sprintf(
		"implicitely required for option %s (source: %s)", def.Name, source))
	requirements, err := p.preParse(def.ImplicitRequirements, priority, sourceFn, def, nil)
	if err != nil {
		return nil, err
	}

	return &OptionDescription{
		Definition:           def,
		Expansion:            def.Expansion,
		ImplicitRequirements: requirements,
	}, nil
}

// GetExpansionOptionValueDescriptions pre-parses the tokens an expansion
// option would expand to for the given value, without mutating parser state.
func (p *Parser) GetExpansionOptionValueDescriptions(
	def *OptionDefinition, value string, priority Priority, source string,
) ([]*ParsedOption, error) {
	sourceFn := ConstantSource(fmt.Sprintf("expanded from %s (source: %s)", def.Name, source))
	return p.preParse(p.registry.EvaluateExpansion(def, value), priority, sourceFn, nil, def)
}

// preParse recognizes a token list without touching the value store or the
// canonical multimap.
func (p *Parser) preParse(
	tokens []string,
	priority Priority,
	source SourceFunc,
	implicitDependent *OptionDefinition,
	expandedFrom *OptionDefinition,
) ([]*ParsedOption, error) {
	it := &argIterator{args: tokens}
	var out []*ParsedOption
	for it.hasNext() {
		parsed, err := p.recognizeOption(it.next(), it, priority, source, implicitDependent, expandedFrom)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

func sortByPriorityStable(options []*ParsedOption) {
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Origin.Priority < options[j].Origin.Priority
	})
}
