package openclaw

import (
	"fmt"
	"log"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Policy decides whether a goal may be delegated. It is a coarse lexical
// filter, not semantic intent classification: the goal string is matched
// against a deny-pattern list and anything that matches nothing is
// permitted (default-allow, inherited from the original design — a goal
// phrased to avoid every keyword will pass). Deny always wins.
type Policy struct {
	deny []*regexp.Regexp
}

// PolicyConfig is the YAML shape for externally configured patterns.
type PolicyConfig struct {
	DenyPatterns []string `yaml:"deny_patterns"`
}

// defaultDenyPatterns cover shell deletion, privilege escalation, dynamic
// code execution and credential access. Patterns are applied
// case-insensitively.
var defaultDenyPatterns = []string{
	`rm `,
	`rmdir`,
	`sudo`,
	`doas `,
	`eval\(`,
	`exec\(`,
	`password`,
	`credential`,
	`private[._ ]?key`,
}

func NewPolicy() *Policy {
	p := &Policy{}
	for _, pat := range defaultDenyPatterns {
		p.deny = append(p.deny, regexp.MustCompile(`(?i)`+pat))
	}
	return p
}

// Extend adds externally configured deny patterns. A pattern that fails
// to compile is skipped with a warning; the rest still apply.
func (p *Policy) Extend(cfg PolicyConfig) {
	for _, pat := range cfg.DenyPatterns {
		re, err := regexp.Compile(`(?i)` + pat)
		if err != nil {
			log.Printf("⚠️ [OPENCLAW] skipping bad deny pattern %q: %v", pat, err)
			continue
		}
		p.deny = append(p.deny, re)
	}
}

// LoadPolicyFile reads a PolicyConfig from a YAML file.
func LoadPolicyFile(path string) (PolicyConfig, error) {
	var cfg PolicyConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse policy file: %w", err)
	}
	return cfg, nil
}

// Check evaluates a goal against the deny list. When blocked it also
// returns the pattern that matched, for logging.
func (p *Policy) Check(goal string) (allowed bool, pattern string) {
	for _, re := range p.deny {
		if re.MatchString(goal) {
			return false, re.String()
		}
	}
	return true, ""
}

// IsAllowed reports whether a goal may be delegated.
func (p *Policy) IsAllowed(goal string) bool {
	ok, _ := p.Check(goal)
	return ok
}
