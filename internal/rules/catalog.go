package rules

import (
	"sort"
	"strings"

	"github.com/PASTER-G/CI-guard/internal/ir"
)

// Options filters which catalog entries are active for a scan.
type Options struct {
	SeverityThreshold string          // minimum severity to report; "" = LOW
	Disabled          map[string]bool // rule ID (lowercase) -> skip
}

// Catalog is an ordered, immutable collection of rules, built once and
// passed by reference into Evaluate. There is no global registry: swapping
// or extending the rule set means building a different catalog.
type Catalog struct {
	rules []Rule
	index map[string]int // normalized rule ID -> index
	opts  Options
}

func NewCatalog(opts Options, rs ...Rule) *Catalog {
	if opts.SeverityThreshold == "" {
		opts.SeverityThreshold = ir.SeverityLow
	}
	disabled := map[string]bool{}
	for id, on := range opts.Disabled {
		if on {
			disabled[normID(id)] = true
		}
	}
	opts.Disabled = disabled
	c := &Catalog{opts: opts, index: map[string]int{}}
	for _, r := range rs {
		id := normID(r.ID)
		if id == "" || opts.Disabled[id] {
			continue
		}
		if _, dup := c.index[id]; dup {
			continue // first registration wins
		}
		c.index[id] = 0 // placeholder until sorted
		c.rules = append(c.rules, r)
	}
	sort.Slice(c.rules, func(i, j int) bool { return c.rules[i].ID < c.rules[j].ID })
	for i, r := range c.rules {
		c.index[normID(r.ID)] = i
	}
	return c
}

// Builtin returns the catalog of built-in checks.
func Builtin(opts Options) *Catalog {
	return NewCatalog(opts, Builtins()...)
}

// Builtins returns the built-in rule set, one entry per rule_*.go file.
func Builtins() []Rule {
	return []Rule{
		openSensitivePort(),
		unencryptedStorage(),
	}
}

// Rules returns the active rules in stable (ID) order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

func (c *Catalog) Len() int { return len(c.rules) }

// Get returns a rule by ID if present (used by the API rule inventory).
func (c *Catalog) Get(id string) (Rule, bool) {
	i, ok := c.index[normID(id)]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i], true
}

func (c *Catalog) severityOK(sev string) bool {
	return severityRank(sev) >= severityRank(c.opts.SeverityThreshold)
}

func severityRank(sev string) int {
	switch strings.ToUpper(strings.TrimSpace(sev)) {
	case ir.SeverityHigh:
		return 3
	case ir.SeverityMedium:
		return 2
	default:
		return 1 // LOW or unknown
	}
}

func normID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
