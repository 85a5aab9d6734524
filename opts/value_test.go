package opts

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSingletonOverwrites(t *testing.T) {
	registry := buildTestRegistry(t)
	host := registry.DefinitionFromName("host")

	vd := newOptionValueDescription(host)
	if vd.Kind() != ValueSingleton {
		t.Fatalf("kind = %v, want singleton", vd.Kind())
	}

	vd.addOptionInstance(&ParsedOption{Definition: host, UnconvertedValue: "a", HasValue: true})
	vd.addOptionInstance(&ParsedOption{Definition: host, UnconvertedValue: "b", HasValue: true})

	if got := vd.UnconvertedValue(); got != "b" {
		t.Errorf("unconverted value = %q, want %q", got, "b")
	}
	if got := len(vd.Instances()); got != 1 {
		t.Errorf("instances length = %d, want 1", got)
	}
}

func TestAccumulatingPreservesOrder(t *testing.T) {
	registry := buildTestRegistry(t)
	copt := registry.DefinitionFromName("copt")

	vd := newOptionValueDescription(copt)
	if vd.Kind() != ValueAccumulating {
		t.Fatalf("kind = %v, want accumulating", vd.Kind())
	}
	for _, v := range []string{"-O2", "-g", "-Wall"} {
		vd.addOptionInstance(&ParsedOption{Definition: copt, UnconvertedValue: v, HasValue: true})
	}

	value, err := vd.GetValue()
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if diff := cmp.Diff([]any{"-O2", "-g", "-Wall"}, value); diff != "" {
		t.Errorf("accumulated value mismatch (-want +got):\n%s", diff)
	}
}

func TestExpansionDescriptionKind(t *testing.T) {
	registry := buildTestRegistry(t)
	all := registry.DefinitionFromName("all")

	vd := newOptionValueDescription(all)
	if vd.Kind() != ValueExpansion {
		t.Errorf("kind = %v, want expansion", vd.Kind())
	}
}

func TestDefaultValueDescription(t *testing.T) {
	registry := buildTestRegistry(t)
	host := registry.DefinitionFromName("host")

	vd := defaultValueDescription(host)
	if !vd.IsDefault() {
		t.Error("IsDefault = false for synthesized default")
	}
	if got := vd.UnconvertedValue(); got != "localhost" {
		t.Errorf("unconverted value = %q, want declared default", got)
	}
	value, err := vd.GetValue()
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if value != "localhost" {
		t.Errorf("value = %v, want %q", value, "localhost")
	}
}

func TestEffectiveOptionsCoverAllDefinitions(t *testing.T) {
	p := newTestParser(t)
	mustParse(t, p, PriorityCommandLine, "test", "--host=a")

	effective := p.AsListOfEffectiveOptions()
	if got, want := len(effective), len(p.Registry().AllDefinitions()); got != want {
		t.Fatalf("effective options length = %d, want %d", got, want)
	}
	byName := make(map[string]*OptionValueDescription)
	for _, vd := range effective {
		byName[vd.Definition().Name] = vd
	}
	if byName["host"].IsDefault() {
		t.Error("host should use the parsed value, not the default")
	}
	if !byName["strict"].IsDefault() {
		t.Error("strict was never set; expected a default description")
	}
}
