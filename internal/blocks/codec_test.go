package blocks

import (
	"strings"
	"testing"
	"time"
)

func TestRoundTripDefaults(t *testing.T) {
	for _, tag := range Types {
		def := DefaultContent(tag)
		got := ParseContent(SerializeContent(def), tag)
		if got != def {
			t.Errorf("%s: round trip = %#v, want %#v", tag, got, def)
		}
		if got.BlockType() != tag {
			t.Errorf("%s: BlockType() = %s", tag, got.BlockType())
		}
	}
}

func TestParseMalformedFallsBackToDefault(t *testing.T) {
	inputs := []string{"", "not json", "{", `{"headline":`, "null", "42", `"hero"`, "[1,2]", "true"}
	for _, tag := range Types {
		for _, raw := range inputs {
			got := ParseContent(raw, tag)
			if got != DefaultContent(tag) {
				t.Errorf("ParseContent(%q, %s) = %#v, want default", raw, tag, got)
			}
		}
	}
}

func TestParseTrustsDecodedShape(t *testing.T) {
	// A hero decoded from text-shaped JSON keeps blank hero fields rather
	// than falling back to the hero default.
	got := ParseContent(`{"heading":"Hi","body":"there"}`, TypeHero)
	want := Hero{}
	if got != want {
		t.Errorf("mismatched shape = %#v, want zero hero", got)
	}
}

func TestParsePartialObjectLeavesMissingFieldsEmpty(t *testing.T) {
	got := ParseContent(`{"label":"Buy"}`, TypeButton).(Button)
	if got.Label != "Buy" {
		t.Errorf("label = %q", got.Label)
	}
	if got.URL != "" || got.Variant != "" {
		t.Errorf("missing fields should be empty, got %#v", got)
	}
}

func TestParseConvertsScalars(t *testing.T) {
	got := ParseContent(`{"heading":42,"body":true}`, TypeText).(Text)
	if got.Heading != "42" || got.Body != "true" {
		t.Errorf("scalars = %#v", got)
	}
}

func TestParseKeepsUnknownVariant(t *testing.T) {
	got := ParseContent(`{"label":"x","url":"#","variant":"ghost"}`, TypeButton).(Button)
	if got.Variant != "ghost" {
		t.Errorf("variant = %q", got.Variant)
	}
	if got.Variant.Valid() {
		t.Error("ghost should not be a valid variant")
	}
}

func TestHeroEditScenario(t *testing.T) {
	hero := ParseContent(DefaultSerialized(TypeHero), TypeHero).(Hero)
	hero.Headline = "Launch Day"
	got := ParseContent(SerializeContent(hero), TypeHero)

	want := DefaultContent(TypeHero).(Hero)
	want.Headline = "Launch Day"
	if got != want {
		t.Errorf("edited hero = %#v, want %#v", got, want)
	}
}

func TestSerializeDeterministic(t *testing.T) {
	c := Columns{LeftHeading: "a", LeftBody: "b", RightHeading: "c", RightBody: "d"}
	first := SerializeContent(c)
	for i := 0; i < 5; i++ {
		if SerializeContent(c) != first {
			t.Fatal("serialization is not deterministic")
		}
	}
	want := `{"leftHeading":"a","leftBody":"b","rightHeading":"c","rightBody":"d"}`
	if first != want {
		t.Errorf("serialized = %s, want %s", first, want)
	}
}

func TestDefaultsAreNonEmpty(t *testing.T) {
	for _, tag := range Types {
		if s := SerializeContent(DefaultContent(tag)); s == "{}" || s == "" {
			t.Errorf("%s default serialized to %q", tag, s)
		}
	}
}

func TestFooterCopyrightYear(t *testing.T) {
	now := time.Date(2031, 3, 1, 0, 0, 0, 0, time.UTC)
	f := defaultContentAt(TypeFooter, now).(Footer)
	if !strings.Contains(f.Copyright, "2031") {
		t.Errorf("copyright = %q", f.Copyright)
	}
}

func TestParseBlockType(t *testing.T) {
	if _, err := ParseBlockType("hero"); err != nil {
		t.Errorf("hero: %v", err)
	}
	if _, err := ParseBlockType("carousel"); err == nil {
		t.Error("carousel should be rejected")
	}
}

func TestLibraryCoversEveryType(t *testing.T) {
	if len(Library) != len(Types) {
		t.Fatalf("library has %d entries, want %d", len(Library), len(Types))
	}
	for i, tag := range Types {
		if Library[i].Type != tag {
			t.Errorf("library[%d] = %s, want %s", i, Library[i].Type, tag)
		}
	}
	if Label(TypeColumns) != "Columns" {
		t.Errorf("Label(columns) = %q", Label(TypeColumns))
	}
}
