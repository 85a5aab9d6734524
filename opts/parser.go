// Package opts implements the command-line options parser used by build-system
// tools: schema-driven option definitions, multi-priority parsing with
// expansion, implicit-requirement and wrapper options, and a canonical,
// order-stable rendering of the effective command line suitable for
// re-invocation and cache-key derivation.
package opts

import (
	"strings"
)

// Priority segregates the trust tiers a parse call belongs to. Callers must
// invoke Parse in ascending priority order; the engine records priorities for
// stable sorting but does not enforce monotonicity.
type Priority int

const (
	PriorityDefault Priority = iota
	PriorityComputedDefault
	PriorityRCFile
	PriorityCommandLine
	PriorityInvocationPolicy
)

func (p Priority) String() string {
	switch p {
	case PriorityDefault:
		return "default"
	case PriorityComputedDefault:
		return "computed default"
	case PriorityRCFile:
		return "rc file"
	case PriorityCommandLine:
		return "command line"
	case PriorityInvocationPolicy:
		return "invocation policy"
	default:
		return "unknown"
	}
}

// ArgsPreprocessor manipulates the raw argument list before parsing. It runs
// once on the arguments of each Parse invocation and once more on the token
// list of every nested sub-parse (expansions, implicit requirements and
// unwrapped wrapper values). It may fail with a parsing error. The default is
// the identity.
type ArgsPreprocessor func(args []string) ([]string, error)

// maxSubparseDepth bounds recursion through expansions, implicit requirements
// and wrappers. The registry is responsible for keeping expansion graphs
// acyclic; this guard turns a cycle into a schema bug instead of a hang.
const maxSubparseDepth = 64

// Parser is a single-owner mutable state machine. It may be fed by many
// Parse calls at varying priorities; terminal steps are the query views or a
// schema materialization. The registry may be shared across parsers; a Parser
// itself must not be shared across goroutines without external locking.
type Parser struct {
	registry *Registry

	// optionValues combines the instances of each option into its final
	// value. Modified by repeated Parse calls.
	optionValues map[*OptionDefinition]*OptionValueDescription

	// parsedOptions tracks each occurrence as it was provided, in
	// parse-discovery order.
	parsedOptions []*ParsedOption

	// canonical is kept separately from parsedOptions so that higher
	// priority tiers can replace values for canonicalization without
	// corrupting the record of the original invocation.
	canonical canonicalMultimap

	warnings []string

	allowSingleDashLong bool
	preprocessor        ArgsPreprocessor
}

// NewParser creates an empty parser over the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{
		registry:     registry,
		optionValues: make(map[*OptionDefinition]*OptionValueDescription),
		canonical:    newCanonicalMultimap(),
		preprocessor: func(args []string) ([]string, error) { return args, nil },
	}
}

// Registry returns the registry the parser was built over.
func (p *Parser) Registry() *Registry {
	return p.registry
}

// AllowSingleDashLongOptions makes the parser accept long options with a
// single dash ("-example") in addition to the usual double dash.
func (p *Parser) AllowSingleDashLongOptions(allow bool) {
	p.allowSingleDashLong = allow
}

// SetArgsPreprocessor replaces the argument preprocessor hook.
func (p *Parser) SetArgsPreprocessor(preprocessor ArgsPreprocessor) {
	if preprocessor == nil {
		internalf("nil args preprocessor")
	}
	p.preprocessor = preprocessor
}

// Warnings returns the accumulated warnings in the order the events were
// encountered.
func (p *Parser) Warnings() []string {
	out := make([]string, len(p.warnings))
	copy(out, p.warnings)
	return out
}

// Parse parses args at the given priority, attributing every occurrence to
// the given source string, and returns the tokens it did not parse. May be
// called multiple times; separate calls may contain intersecting sets of
// options, in which case the occurrence seen last takes precedence.
func (p *Parser) Parse(priority Priority, source string, args []string) ([]string, error) {
	return p.ParseWithSourceFunction(priority, ConstantSource(source), args)
}

// ParseWithSourceFunction is Parse with a per-definition provenance function.
func (p *Parser) ParseWithSourceFunction(
	priority Priority, source SourceFunc, args []string,
) ([]string, error) {
	return p.parse(priority, source, nil, nil, args, 0)
}

type implicitRequirement struct {
	definition *OptionDefinition
	tokens     []string
}

// parse is the recursive engine. The invariant: an occurrence with neither an
// implicit dependent nor an expanded-from reference was explicitly set.
func (p *Parser) parse(
	priority Priority,
	source SourceFunc,
	implicitDependent *OptionDefinition,
	expandedFrom *OptionDefinition,
	args []string,
	depth int,
) ([]string, error) {
	if depth > maxSubparseDepth {
		internalf("options subparse depth exceeds %d; cyclic expansion or implicit requirement graph?",
			maxSubparseDepth)
	}

	var leftover []string
	var implicitRequirements []implicitRequirement
	deferred := make(map[*OptionDefinition]bool)

	preprocessed, err := p.preprocessor(args)
	if err != nil {
		return nil, err
	}
	it := &argIterator{args: preprocessed}

	for it.hasNext() {
		arg := it.next()

		if !strings.HasPrefix(arg, "-") {
			leftover = append(leftover, arg)
			continue // not an option arg
		}

		if arg == "--" { // all remaining args aren't options
			for it.hasNext() {
				leftover = append(leftover, it.next())
			}
			break
		}

		parsed, err := p.recognizeOption(arg, it, priority, source, implicitDependent, expandedFrom)
		if err != nil {
			return nil, err
		}
		def := parsed.Definition

		// All options can be deprecated; check and warn before any
		// option-kind specific work.
		p.maybeAddDeprecationWarning(def)

		// Track the value before the remaining option-kind specific work.
		entry := p.optionValues[def]
		if entry == nil {
			entry = newOptionValueDescription(def)
			p.optionValues[def] = entry
		}
		entry.addOptionInstance(parsed)

		if def.Wrapper {
			if err := p.unwrap(parsed, priority, depth); err != nil {
				return nil, err
			}
			// Don't process implicit requirements or expansions for wrapper
			// options, and don't record them in parsedOptions, so that only
			// the wrapped option shows up in canonicalized output.
			continue
		}

		if implicitDependent == nil {
			// Log explicit and expanded options in the order they are
			// parsed; the expanded-from reference is needed to correctly
			// canonicalize later.
			p.parsedOptions = append(p.parsedOptions, parsed)
			if def.AllowMultiple {
				p.canonical.put(def, parsed)
			} else {
				p.canonical.replaceValues(def, parsed)
			}
		}

		if def.IsExpansion() {
			if err := p.parseExpansion(parsed, priority, source, depth); err != nil {
				return nil, err
			}
		}

		if def.HasImplicitRequirements() {
			if !deferred[def] {
				deferred[def] = true
				implicitRequirements = append(implicitRequirements,
					implicitRequirement{definition: def, tokens: def.ImplicitRequirements})
			}
		}
	}

	// Parse the implicit requirements collected above. They are deferred to
	// the end of the call; firing them on encounter would alter the
	// observable priority and origin of the implied options.
	for _, req := range implicitRequirements {
		def := req.definition
		sourceMessage := "implicit requirement of option --" + def.Name
		if outer := source(def); outer != "" {
			sourceMessage += " from " + outer
		}
		unparsed, err := p.parse(priority, ConstantSource(sourceMessage), def, nil, req.tokens, depth+1)
		if err != nil {
			return nil, err
		}
		if len(unparsed) > 0 {
			// An error in the declared implicit requirements, not in the
			// user's input.
			internalf("Unparsed options remain after parsing implicit options: %s",
				strings.Join(unparsed, " "))
		}
	}

	// Go through the final values and make sure they are valid for their
	// option. Unlike the checks above, this also covers options that were
	// not set, so invalid defaults surface uniformly.
	for _, valueDescription := range p.AsListOfEffectiveOptions() {
		if _, err := valueDescription.GetValue(); err != nil {
			return nil, err
		}
	}

	return leftover, nil
}

// unwrap re-parses a wrapper option's value as a full argument token at the
// same priority.
func (p *Parser) unwrap(parsed *ParsedOption, priority Priority, depth int) error {
	def := parsed.Definition
	value := parsed.UnconvertedValue
	if !strings.HasPrefix(value, "-") {
		return parseErrorf(ErrorTypeWrapperValue, parsed.CommandLineForm,
			"Invalid --%s value format. You may have meant --%s=--%s", def.Name, def.Name, value)
	}

	sourceMessage := "Unwrapped from wrapper option --" + def.Name
	unparsed, err := p.parse(priority, ConstantSource(sourceMessage), nil, nil, []string{value}, depth+1)
	if err != nil {
		return err
	}
	if len(unparsed) > 0 {
		return parseErrorf(ErrorTypeUnwrappedLeftover, parsed.CommandLineForm,
			"Unparsed options remain after unwrapping %s: %s",
			parsed.CommandLineForm, strings.Join(unparsed, " "))
	}
	return nil
}

// parseExpansion recurses into the tokens an expansion option expands to.
func (p *Parser) parseExpansion(parsed *ParsedOption, priority Priority, source SourceFunc, depth int) error {
	def := parsed.Definition
	expansion := p.registry.EvaluateExpansion(def, parsed.UnconvertedValue)

	sourceMessage := "expanded from option --" + def.Name
	if outer := source(def); outer != "" {
		sourceMessage += " from " + outer
	}
	unparsed, err := p.parse(priority, ConstantSource(sourceMessage), nil, def, expansion, depth+1)
	if err != nil {
		return err
	}
	if len(unparsed) > 0 {
		// An error in the definition of this option's expansion, not in the
		// input as provided by the user.
		internalf("Unparsed options remain after parsing expansion of %s: %s",
			parsed.CommandLineForm, strings.Join(unparsed, " "))
	}
	return nil
}

func (p *Parser) maybeAddDeprecationWarning(def *OptionDefinition) {
	if def.DeprecationWarning == "" && !def.Deprecated {
		return
	}
	warning := "Option '" + def.Name + "' is deprecated"
	if def.DeprecationWarning != "" {
		warning += ": " + def.DeprecationWarning
	}
	p.warnings = append(p.warnings, warning)
}
