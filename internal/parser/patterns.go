package parser

import (
	"regexp"
	"strings"
)

// Field names one AnalysisResult section
type Field string

const (
	FieldSummary         Field = "summary"
	FieldKeyFindings     Field = "keyFindings"
	FieldRecommendations Field = "recommendations"
	FieldRiskFactors     Field = "riskFactors"
)

// Alternative is one header spelling and the labels that end its section.
// A section with no terminators runs to the end of the text.
type Alternative struct {
	Header      string
	Terminators []string
}

// Rule lists the header alternatives for a field, tried in order
type Rule struct {
	Field        Field
	Alternatives []Alternative
}

// Rules is the header table. New header variants are added here.
var Rules = []Rule{
	{
		Field: FieldSummary,
		Alternatives: []Alternative{
			{Header: "SUMMARY", Terminators: []string{"KEY_FINDINGS:", "FINDINGS:"}},
			{Header: "SUMMARY", Terminators: []string{"KEY FINDINGS:"}},
			{Header: "OVERALL ASSESSMENT", Terminators: []string{"KEY_FINDINGS:", "FINDINGS:"}},
		},
	},
	{
		Field: FieldKeyFindings,
		Alternatives: []Alternative{
			{Header: "KEY_FINDINGS", Terminators: []string{"RECOMMENDATIONS:"}},
			{Header: "KEY FINDINGS", Terminators: []string{"RECOMMENDATIONS:"}},
			{Header: "FINDINGS", Terminators: []string{"RECOMMENDATIONS:"}},
			{Header: "ABNORMAL VALUES", Terminators: []string{"RECOMMENDATIONS:"}},
		},
	},
	{
		Field: FieldRecommendations,
		Alternatives: []Alternative{
			{Header: "RECOMMENDATIONS", Terminators: []string{"RISK_FACTORS:", "RISKS:"}},
			{Header: "SUGGESTED ACTIONS", Terminators: []string{"RISK_FACTORS:", "RISKS:"}},
			{Header: "NEXT STEPS", Terminators: []string{"RISK_FACTORS:", "RISKS:"}},
		},
	},
	{
		Field: FieldRiskFactors,
		Alternatives: []Alternative{
			{Header: "RISK_FACTORS"},
			{Header: "RISKS"},
			{Header: "POTENTIAL CONCERNS"},
		},
	},
}

type compiledAlternative struct {
	header     *regexp.Regexp
	terminator *regexp.Regexp
}

// compile turns an alternative into a case-insensitive header matcher with an
// optional trailing colon and a matcher for the earliest terminator
func (a Alternative) compile() compiledAlternative {
	c := compiledAlternative{
		header: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(a.Header) + `:?`),
	}
	if len(a.Terminators) > 0 {
		quoted := make([]string, len(a.Terminators))
		for i, t := range a.Terminators {
			quoted[i] = regexp.QuoteMeta(t)
		}
		c.terminator = regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
	}
	return c
}

// capture returns the text between the first occurrence of the header and
// the earliest terminator after it
func (c compiledAlternative) capture(text string) (string, bool) {
	loc := c.header.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	if c.terminator != nil {
		if end := c.terminator.FindStringIndex(rest); end != nil {
			rest = rest[:end[0]]
		}
	}
	return rest, true
}

type compiledRule struct {
	field        Field
	alternatives []compiledAlternative
}

func compileRules(rules []Rule) []compiledRule {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		cr := compiledRule{field: r.Field}
		for _, a := range r.Alternatives {
			cr.alternatives = append(cr.alternatives, a.compile())
		}
		compiled = append(compiled, cr)
	}
	return compiled
}

// section returns the first non-blank capture among the rule's alternatives
func (r compiledRule) section(text string) (string, bool) {
	for _, alt := range r.alternatives {
		if captured, ok := alt.capture(text); ok && strings.TrimSpace(captured) != "" {
			return captured, true
		}
	}
	return "", false
}
