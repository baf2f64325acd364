// Package format rewrites model-generated markdown to the house style used
// by the chat front-end.
//
// The rewrite is a line-based state machine: each line is classified against
// a table of list rules using a one-line lookback, then against a table of
// emphasis rules. Numeral spacing is fixed over the whole text before the
// line scan starts.
package format

import (
	"regexp"
	"strings"
)

var (
	numeralPattern       = regexp.MustCompile(`(\d+)\.([A-Za-z])`)
	numberedBoldPattern  = regexp.MustCompile(`^(\d+)\.\s+\*\*([^*]+)\*\*:\s*`)
	numberedPlainPattern = regexp.MustCompile(`^(\d+)\.\s+([A-Z][a-zA-Z\s]+[^:])$`)
	boldSpanPattern      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

// Nouns in the preceding line that mark a list as unordered.
var (
	boldListVocabulary  = []string{"features", "characteristics", "types", "components", "aspects"}
	plainListVocabulary = []string{"features", "types", "characteristics", "components", "includes"}
)

const (
	maxKeyTermWords    = 4
	maxInlineBoldWords = 3
)

// lineState is what a rule sees: the line being rewritten and the line
// before it as it looked before any line rule ran.
type lineState struct {
	line     string
	stripped string
	prev     string
	hasPrev  bool
}

func newLineState(line string) lineState {
	return lineState{line: line, stripped: strings.TrimSpace(line)}
}

// prevMentions reports whether the lookback line contains any of words,
// ignoring case.
func (s lineState) prevMentions(words []string) bool {
	if !s.hasPrev {
		return false
	}
	prev := strings.ToLower(s.prev)
	for _, w := range words {
		if strings.Contains(prev, w) {
			return true
		}
	}
	return false
}

type lineRule struct {
	tag   string
	apply func(s lineState) (string, bool)
}

// Within a table the first rule that applies wins.
var (
	listRules = []lineRule{
		{tag: "numbered-bold-item", apply: rewriteNumberedBold},
		{tag: "numbered-plain-item", apply: rewriteNumberedPlain},
	}
	emphasisRules = []lineRule{
		{tag: "whole-line-bold", apply: reduceWholeLineBold},
		{tag: "inline-bold", apply: reduceInlineBold},
	}
)

// Change records one rule rewriting one line.
type Change struct {
	Line   int
	Rule   string
	Before string
	After  string
}

func applyFirst(rules []lineRule, s lineState, line int, record func(Change)) string {
	for _, r := range rules {
		out, ok := r.apply(s)
		if !ok {
			continue
		}
		if record != nil && out != s.line {
			record(Change{Line: line, Rule: r.tag, Before: s.line, After: out})
		}
		return out
	}
	return s.line
}

// rewriteNumberedBold handles "1. **Term**: detail". It becomes a bullet
// when the line above introduces an unordered set, and is otherwise
// re-emitted with canonical spacing.
func rewriteNumberedBold(s lineState) (string, bool) {
	m := numberedBoldPattern.FindStringSubmatchIndex(s.stripped)
	if m == nil {
		return "", false
	}
	number := s.stripped[m[2]:m[3]]
	term := s.stripped[m[4]:m[5]]
	rest := s.stripped[m[1]:]

	marker := number + "."
	if s.prevMentions(boldListVocabulary) {
		marker = "-"
	}
	out := marker + " **" + term + "**:"
	if rest != "" {
		out += " " + rest
	}
	return out, true
}

// rewriteNumberedPlain handles "1. Some Phrase" with no trailing colon.
func rewriteNumberedPlain(s lineState) (string, bool) {
	m := numberedPlainPattern.FindStringSubmatch(s.stripped)
	if m == nil {
		return "", false
	}
	if !s.prevMentions(plainListVocabulary) {
		return s.line, true
	}
	return "- **" + m[2] + "**", true
}

// reduceWholeLineBold strips bold from a fully bolded line unless it is a
// short key term without a period.
func reduceWholeLineBold(s lineState) (string, bool) {
	if !strings.HasPrefix(s.stripped, "**") || !strings.HasSuffix(s.stripped, "**") {
		return "", false
	}
	var inner string
	if len(s.stripped) >= 4 {
		inner = s.stripped[2 : len(s.stripped)-2]
	}
	if len(strings.Fields(inner)) <= maxKeyTermWords && !strings.Contains(inner, ".") {
		return s.line, true
	}
	return inner, true
}

func reduceInlineBold(s lineState) (string, bool) {
	out := s.line
	for _, m := range boldSpanPattern.FindAllStringSubmatch(s.line, -1) {
		if len(strings.Fields(m[1])) > maxInlineBoldWords {
			out = strings.ReplaceAll(out, m[0], m[1])
		}
	}
	return out, true
}

// pass applies every rule exactly once, reporting changes to record when
// it is not nil.
func pass(text string, record func(Change)) string {
	original := strings.Split(text, "\n")
	lines := strings.Split(numeralPattern.ReplaceAllString(text, "${1}. ${2}"), "\n")

	out := make([]string, len(lines))
	for i, line := range lines {
		if record != nil && line != original[i] {
			record(Change{Line: i, Rule: "numeral-spacing", Before: original[i], After: line})
		}
		s := newLineState(line)
		if i > 0 {
			s.prev, s.hasPrev = lines[i-1], true
		}
		listed := applyFirst(listRules, s, i, record)
		out[i] = applyFirst(emphasisRules, newLineState(listed), i, record)
	}
	return strings.Join(out, "\n")
}

// Trace runs a single pass and lists every rewrite in the order it was
// applied.
func Trace(text string) []Change {
	var changes []Change
	pass(text, func(c Change) { changes = append(changes, c) })
	return changes
}

// Normalizer rewrites markdown. The zero value is not usable; call New.
type Normalizer struct {
	maxPasses int
}

type Option func(*Normalizer)

// WithMaxPasses lets the normalizer re-run the rules on its own output
// until nothing changes, at most n times. Values below 1 are ignored.
func WithMaxPasses(n int) Option {
	return func(nz *Normalizer) {
		if n >= 1 {
			nz.maxPasses = n
		}
	}
}

func New(opts ...Option) *Normalizer {
	nz := &Normalizer{maxPasses: 1}
	for _, opt := range opts {
		opt(nz)
	}
	return nz
}

// Normalize returns text rewritten to house style. Empty input is returned
// as is.
func (nz *Normalizer) Normalize(text string) string {
	if text == "" {
		return text
	}
	for i := 0; i < nz.maxPasses; i++ {
		next := pass(text, nil)
		if next == text {
			break
		}
		text = next
	}
	return text
}

// Normalize runs a single pass with the default rules.
func Normalize(text string) string {
	return New().Normalize(text)
}
