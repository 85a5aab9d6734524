package opts

import (
	"strings"

	"github.com/dzonerzy/go-opts/internal/fuzzy"
	"github.com/dzonerzy/go-opts/internal/intern"
)

// SourceFunc maps an option definition to a human-readable provenance string
// for the occurrence being parsed.
type SourceFunc func(*OptionDefinition) string

// ConstantSource returns a SourceFunc that ignores the definition.
func ConstantSource(source string) SourceFunc {
	return func(*OptionDefinition) string { return source }
}

// OptionOrigin records where and how a single option occurrence entered the
// parse. ImplicitDependent and ExpandedFrom are back-references into the
// registry, not owned values.
type OptionOrigin struct {
	Priority          Priority
	Source            string
	ImplicitDependent *OptionDefinition
	ExpandedFrom      *OptionDefinition
}

// ParsedOption describes one successfully recognized option occurrence.
// UnconvertedValue is the string as read from the input, or partially
// normalized for boolean surface forms ("--nofoo" becomes value "0").
type ParsedOption struct {
	Definition       *OptionDefinition
	CommandLineForm  string
	UnconvertedValue string
	HasValue         bool
	Origin           OptionOrigin
}

// IsExplicit reports whether the occurrence was given directly by the caller
// rather than arising from an expansion or an implicit requirement.
func (p *ParsedOption) IsExplicit() bool {
	return p.Origin.ImplicitDependent == nil && p.Origin.ExpandedFrom == nil
}

// argIterator walks a token list, letting the recognizer consume one extra
// token for a detached value.
type argIterator struct {
	args []string
	pos  int
}

func (it *argIterator) hasNext() bool {
	return it.pos < len(it.args)
}

func (it *argIterator) next() string {
	arg := it.args[it.pos]
	it.pos++
	return arg
}

// recognizeOption converts one surface token, plus at most one following
// token, into a ParsedOption. The caller guarantees arg starts with '-' and
// is not the bare "--" terminator.
func (p *Parser) recognizeOption(
	arg string,
	rest *argIterator,
	priority Priority,
	source SourceFunc,
	implicitDependent *OptionDefinition,
	expandedFrom *OptionDefinition,
) (*ParsedOption, error) {
	commandLineForm := arg
	var def *OptionDefinition
	lookupName := ""
	unconvertedValue := ""
	hasValue := false
	booleanValue := true

	switch {
	case len(arg) == 2: // -l  (may be nullary or unary)
		def = p.registry.DefinitionFromAbbrev(arg[1])

	case len(arg) == 3 && arg[2] == '-': // -l-  (boolean)
		def = p.registry.DefinitionFromAbbrev(arg[1])
		booleanValue = false

	case p.allowSingleDashLong || strings.HasPrefix(arg, "--"): // --long_option or -long_option
		nameStart := 1
		if strings.HasPrefix(arg, "--") {
			nameStart = 2
		}
		name := arg[nameStart:]
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			unconvertedValue = name[eq+1:]
			hasValue = true
			name = name[:eq]
		}
		if strings.TrimSpace(name) == "" {
			return nil, parseErrorf(ErrorTypeInvalidSyntax, arg, "Invalid options syntax: %s", arg)
		}
		name = intern.String(name)
		lookupName = name
		def = p.registry.DefinitionFromName(name)

		// Look for a "no"-prefixed option name: "no<optionName>".
		if def == nil && strings.HasPrefix(name, "no") {
			name = intern.String(name[2:])
			def = p.registry.DefinitionFromName(name)
			booleanValue = false
			if def != nil {
				if !def.UsesBooleanSyntax() {
					return nil, parseErrorf(ErrorTypeIllegalNoPrefix, arg,
						"Illegal use of 'no' prefix on non-boolean option: %s", arg)
				}
				if hasValue {
					return nil, parseErrorf(ErrorTypeUnexpectedValue, arg,
						"Unexpected value after boolean option: %s", arg)
				}
				// "no<optionname>" signifies a boolean option w/ false value.
				unconvertedValue = "0"
				hasValue = true
			}
		}

	default:
		return nil, parseErrorf(ErrorTypeInvalidSyntax, arg, "Invalid options syntax: %s", arg)
	}

	if def == nil || def.Internal {
		// Internal options are treated as if they did not exist.
		err := parseErrorf(ErrorTypeUnrecognized, arg, "Unrecognized option: %s", arg)
		if lookupName != "" {
			if best := fuzzy.FindBestOption(lookupName, p.suggestionCandidates(), 2); best != "" {
				err.Suggestion = "Did you mean '--" + best + "'?"
			}
		}
		return nil, err
	}

	if !hasValue {
		switch {
		case def.UsesBooleanSyntax():
			// Supply the value based on presence of the "no" prefix or the
			// trailing dash of the short form.
			if booleanValue {
				unconvertedValue = "1"
			} else {
				unconvertedValue = "0"
			}
			hasValue = true
		case def.Kind == KindVoid && !def.Wrapper:
			// Expected: void options have no args (unless they're wrappers).
		case rest.hasNext():
			// "--flag value" form.
			unconvertedValue = rest.next()
			hasValue = true
			commandLineForm += " " + unconvertedValue
		default:
			return nil, parseErrorf(ErrorTypeMissingValue, arg, "Expected value after %s", arg)
		}
	}

	return &ParsedOption{
		Definition:       def,
		CommandLineForm:  commandLineForm,
		UnconvertedValue: unconvertedValue,
		HasValue:         hasValue,
		Origin: OptionOrigin{
			Priority:          priority,
			Source:            source(def),
			ImplicitDependent: implicitDependent,
			ExpandedFrom:      expandedFrom,
		},
	}, nil
}

// suggestionCandidates lists the long names eligible for typo suggestions.
func (p *Parser) suggestionCandidates() []string {
	defs := p.registry.AllDefinitions()
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		if !def.Internal {
			names = append(names, def.Name)
		}
	}
	return names
}
