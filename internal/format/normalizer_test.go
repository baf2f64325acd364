package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_NumeralSpacing(t *testing.T) {
	got := Normalize("1.DNA Replication is key.")
	assert.Equal(t, "1. DNA Replication is key.", got)

	got = Normalize("Steps: 1.transcription then 2.translation")
	assert.Equal(t, "Steps: 1. transcription then 2. translation", got)
}

func TestNormalize_NumeralSpacingNoop(t *testing.T) {
	inputs := []string{
		"pH 7.4 buffer at 3.5 mM",
		"1. Already spaced",
		"No numbers here at all.",
		"Version 2.0 of the assay",
	}
	for _, in := range inputs {
		assert.Equal(t, in, Normalize(in), in)
	}
}

func TestNormalize_NumberedBoldBecomesBullet(t *testing.T) {
	got := Normalize("### Key Features\n1. **Speed**: fast")
	assert.Equal(t, "### Key Features\n- **Speed**: fast", got)
}

func TestNormalize_NumberedBoldVocabulary(t *testing.T) {
	for _, heading := range []string{"Characteristics", "Cell TYPES", "Main components", "Key aspects"} {
		got := Normalize(heading + "\n1. **Membrane**: lipid bilayer")
		assert.Equal(t, heading+"\n- **Membrane**: lipid bilayer", got, heading)
	}
}

func TestNormalize_NumberedBoldStaysNumbered(t *testing.T) {
	got := Normalize("### Steps\n1.   **Initialization**:    create a matrix")
	assert.Equal(t, "### Steps\n1. **Initialization**: create a matrix", got)
}

func TestNormalize_NumberedBoldFirstLine(t *testing.T) {
	assert.Equal(t, "1. **Speed**: fast", Normalize("  1. **Speed**: fast"))
}

func TestNormalize_NumberedBoldEmptyDetail(t *testing.T) {
	assert.Equal(t, "Types\n- **Speed**:", Normalize("Types\n1. **Speed**:"))
}

func TestNormalize_NumberedPlainBecomesBullet(t *testing.T) {
	got := Normalize("Cell types include\n1. Prokaryotic Cells")
	assert.Equal(t, "Cell types include\n- **Prokaryotic Cells**", got)
}

func TestNormalize_NumberedPlainUnchangedWithoutContext(t *testing.T) {
	in := "Procedure\n  1. Mix Reagents"
	assert.Equal(t, in, Normalize(in))
}

func TestNormalize_NumberedPlainWithColonUnchanged(t *testing.T) {
	in := "Types\n1. Cells:"
	assert.Equal(t, in, Normalize(in))
}

func TestNormalize_BulletedLongPhraseLosesBold(t *testing.T) {
	got := Normalize("The main features are\n1. Rapid Growth In Warm Conditions")
	assert.Equal(t, "The main features are\n- Rapid Growth In Warm Conditions", got)
}

func TestNormalize_WholeLineBold(t *testing.T) {
	assert.Equal(t,
		"This sentence is definitely too long to stay bold.",
		Normalize("**This sentence is definitely too long to stay bold.**"))
	assert.Equal(t, "**Key Concepts**", Normalize("**Key Concepts**"))
	assert.Equal(t, "  **Key Concepts**", Normalize("  **Key Concepts**"))
	assert.Equal(t, "See Fig. 2", Normalize("**See Fig. 2**"))
}

func TestNormalize_WholeLineBoldDegenerate(t *testing.T) {
	assert.Equal(t, "**", Normalize("**"))
	assert.Equal(t, "***", Normalize("***"))
}

func TestNormalize_InlineBold(t *testing.T) {
	got := Normalize("The enzyme **breaks down complex sugars** quickly and **ATP** is made.")
	assert.Equal(t, "The enzyme breaks down complex sugars quickly and **ATP** is made.", got)

	in := "Use **three word term** here."
	assert.Equal(t, in, Normalize(in))
}

func TestNormalize_InlineBoldRepeatedSpan(t *testing.T) {
	got := Normalize("**a b c d** and again **a b c d**.")
	assert.Equal(t, "a b c d and again a b c d.", got)
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", New(WithMaxPasses(5)).Normalize(""))
}

func TestNormalize_LookbackUsesOriginalLine(t *testing.T) {
	// The bolded heading is unwrapped by the emphasis rules, but the list
	// rules have already seen it with its markers.
	in := "**These are the most important features of all.**\n1. **Speed**: fast"
	want := "These are the most important features of all.\n- **Speed**: fast"
	assert.Equal(t, want, Normalize(in))
}

func TestNormalize_IdempotentOnHouseStyle(t *testing.T) {
	raw := "## DNA Replication\n" +
		"### Key Features\n" +
		"1. **Semi-conservative**: each helix keeps one parental strand\n" +
		"2. **Bidirectional**: forks move both ways\n" +
		"### Steps\n" +
		"1.**Initiation** happens first\n" +
		"1. **Initiation**: helicase unwinds the origin\n" +
		"2. **Elongation**: polymerase extends primers\n" +
		"**This whole line is far too long to be bold.**"

	once := Normalize(raw)
	assert.Equal(t, once, Normalize(once))
}

func TestNormalize_NotIdempotentCounterexample(t *testing.T) {
	in := "**Gene expression** is tightly regulated by **promoters**"

	once := Normalize(in)
	assert.Equal(t, "Gene expression** is tightly regulated by **promoters", once)
	assert.NotEqual(t, once, Normalize(once))

	stable := New(WithMaxPasses(3)).Normalize(in)
	assert.Equal(t, "Gene expression is tightly regulated by promoters", stable)
	assert.Equal(t, stable, New(WithMaxPasses(3)).Normalize(stable))
}

func TestWithMaxPasses_IgnoresInvalid(t *testing.T) {
	assert.Equal(t, 1, New(WithMaxPasses(0)).maxPasses)
	assert.Equal(t, 4, New(WithMaxPasses(4)).maxPasses)
}

func TestTrace_ReportsRulesInOrder(t *testing.T) {
	in := "### Key Features\n1.**Speed**: fast\n1.Fast Replication Forks Everywhere\n**This line is much too long to stay bold.**"

	changes := Trace(in)

	rules := make([]string, 0, len(changes))
	for _, c := range changes {
		rules = append(rules, c.Rule)
	}
	assert.Equal(t, []string{"numeral-spacing", "whole-line-bold"}, rules)
	assert.Equal(t, 2, changes[0].Line)
	assert.Equal(t, "1. Fast Replication Forks Everywhere", changes[0].After)
}

func TestTrace_ListThenEmphasis(t *testing.T) {
	changes := Trace("Features\n1. Rapid Growth In Warm Conditions")

	if assert.Len(t, changes, 2) {
		assert.Equal(t, "numbered-plain-item", changes[0].Rule)
		assert.Equal(t, "- **Rapid Growth In Warm Conditions**", changes[0].After)
		assert.Equal(t, "inline-bold", changes[1].Rule)
		assert.Equal(t, "- Rapid Growth In Warm Conditions", changes[1].After)
	}
}

func TestTrace_NoChanges(t *testing.T) {
	assert.Empty(t, Trace("## Heading\n- **Key**: value"))
}
