package tracking

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/99minutos/customs-tracking/internal/core/domain"
)

//go:embed patterns.yaml
var defaultPatterns []byte

// Rule is one lexical rule as written in the pattern file. It unmarshals from
// either a bare string or a {pattern, unless_followed_by} mapping.
type Rule struct {
	Pattern          string `yaml:"pattern"`
	UnlessFollowedBy string `yaml:"unless_followed_by"`
}

func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Pattern = node.Value
		return nil
	}
	type plain Rule
	return node.Decode((*plain)(r))
}

type patternFile struct {
	Stages struct {
		InProgress []Rule `yaml:"in_progress"`
		Delay      []Rule `yaml:"delay"`
		Cleared    []Rule `yaml:"cleared"`
	} `yaml:"stages"`
	Legs struct {
		Import []string `yaml:"import"`
		Export []string `yaml:"export"`
	} `yaml:"legs"`
	StatusCodes struct {
		Exact    map[string]domain.Stage `yaml:"exact"`
		Families []struct {
			Prefix string       `yaml:"prefix"`
			Suffix string       `yaml:"suffix"`
			Stage  domain.Stage `yaml:"stage"`
		} `yaml:"families"`
	} `yaml:"status_codes"`
}

// PatternSet holds the compiled classification tables. It is built once and
// never mutated, so a single instance can be shared by every goroutine.
type PatternSet struct {
	stages   []stageRules
	legs     []legRules
	codes    map[string]domain.Stage
	families []codeFamily
}

type stageRules struct {
	stage domain.Stage
	rules []compiledRule
}

type legRules struct {
	leg   domain.Leg
	rules []*regexp.Regexp
}

// codeFamily matches codes by prefix, suffix or both.
type codeFamily struct {
	prefix string
	suffix string
	stage  domain.Stage
}

func (f codeFamily) match(code string) bool {
	return strings.HasPrefix(code, f.prefix) && strings.HasSuffix(code, f.suffix)
}

type compiledRule struct {
	re     *regexp.Regexp
	unless *regexp.Regexp
}

// DefaultPatternSet compiles the embedded pattern file.
func DefaultPatternSet() (*PatternSet, error) {
	return ParsePatternSet(defaultPatterns)
}

// LoadPatternSet compiles the pattern file at path, or the embedded default
// when path is empty.
func LoadPatternSet(path string) (*PatternSet, error) {
	if path == "" {
		return DefaultPatternSet()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}
	return ParsePatternSet(data)
}

// ParsePatternSet compiles a YAML pattern document.
func ParsePatternSet(data []byte) (*PatternSet, error) {
	var f patternFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse pattern file: %w", err)
	}

	set := &PatternSet{codes: make(map[string]domain.Stage, len(f.StatusCodes.Exact))}

	ordered := []struct {
		stage domain.Stage
		rules []Rule
	}{
		{domain.StageInProgress, f.Stages.InProgress},
		{domain.StageDelay, f.Stages.Delay},
		{domain.StageCleared, f.Stages.Cleared},
	}
	for _, o := range ordered {
		sr := stageRules{stage: o.stage}
		for i, r := range o.rules {
			cr, err := compileRule(r)
			if err != nil {
				return nil, fmt.Errorf("stage %s rule %d: %w", o.stage, i, err)
			}
			sr.rules = append(sr.rules, cr)
		}
		set.stages = append(set.stages, sr)
	}

	for _, l := range []struct {
		leg      domain.Leg
		patterns []string
	}{
		{domain.LegImport, f.Legs.Import},
		{domain.LegExport, f.Legs.Export},
	} {
		lr := legRules{leg: l.leg}
		for i, p := range l.patterns {
			re, err := compileFold(p)
			if err != nil {
				return nil, fmt.Errorf("leg %s rule %d: %w", l.leg, i, err)
			}
			lr.rules = append(lr.rules, re)
		}
		set.legs = append(set.legs, lr)
	}

	for code, stage := range f.StatusCodes.Exact {
		if !stage.Valid() {
			return nil, fmt.Errorf("status code %q: unknown stage %q", code, stage)
		}
		set.codes[normalizeCode(code)] = stage
	}
	for _, fam := range f.StatusCodes.Families {
		fam.Prefix, fam.Suffix = normalizeCode(fam.Prefix), normalizeCode(fam.Suffix)
		if fam.Prefix == "" && fam.Suffix == "" {
			return nil, fmt.Errorf("status code family needs a prefix or a suffix")
		}
		if !fam.Stage.Valid() {
			return nil, fmt.Errorf("status code family %q/%q: unknown stage %q", fam.Prefix, fam.Suffix, fam.Stage)
		}
		set.families = append(set.families, codeFamily{prefix: fam.Prefix, suffix: fam.Suffix, stage: fam.Stage})
	}

	return set, nil
}

func compileRule(r Rule) (compiledRule, error) {
	if strings.TrimSpace(r.Pattern) == "" {
		return compiledRule{}, fmt.Errorf("empty pattern")
	}
	re, err := compileFold(r.Pattern)
	if err != nil {
		return compiledRule{}, err
	}
	cr := compiledRule{re: re}
	if r.UnlessFollowedBy != "" {
		unless, err := compileFold("^(?:" + r.UnlessFollowedBy + ")")
		if err != nil {
			return compiledRule{}, err
		}
		cr.unless = unless
	}
	return cr, nil
}

func compileFold(p string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + p)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", p, err)
	}
	return re, nil
}

// match reports whether text satisfies the rule. For rules with an unless
// clause every candidate end position is tried, from the rightmost one back,
// until one is not followed by the excluded text.
func (r compiledRule) match(text string) bool {
	if r.unless == nil {
		return r.re.MatchString(text)
	}
	limit := len(text)
	for limit > 0 {
		loc := r.re.FindStringIndex(text[:limit])
		if loc == nil {
			return false
		}
		end := loc[1]
		if endsWord(text, end) && !r.unless.MatchString(text[end:]) {
			return true
		}
		if end == 0 {
			return false
		}
		_, size := utf8.DecodeLastRuneInString(text[:end])
		limit = end - size
	}
	return false
}

// endsWord reports whether a match ending at i stops on a word boundary of the
// full text, so that a shortened search window cannot produce a partial word.
func endsWord(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	c := text[i]
	return !(c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z')
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
