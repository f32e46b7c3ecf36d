// Package rulesdsl compiles YAML-declared rule packs into catalog entries,
// so teams can ship policy additions without touching the built-ins.
package rulesdsl

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PASTER-G/CI-guard/internal/cidr"
	"github.com/PASTER-G/CI-guard/internal/ir"
	"github.com/PASTER-G/CI-guard/internal/rules"
)

type dslPack struct {
	Rules []dslRule `yaml:"rules"`
}

type dslRule struct {
	ID       string `yaml:"id"`
	Summary  string `yaml:"summary"`
	Kind     string `yaml:"kind"`     // network_rule|storage
	Severity string `yaml:"severity"` // LOW|MEDIUM|HIGH
	Message  string `yaml:"message"`  // supports {id} {port} {cidr} {protocol}

	Where struct {
		IDRegex   string `yaml:"id_regex"`   // regex on resource ID (optional)
		Protocol  string `yaml:"protocol"`   // exact match, case-insensitive (network)
		Ports     []int  `yaml:"ports"`      // any-of (network)
		CIDRClass string `yaml:"cidr_class"` // public|private|invalid (network)
		Encrypted *bool  `yaml:"encrypted"`  // required value (storage)
	} `yaml:"where"`
}

// Load reads a rule pack and returns the compiled rules, ready to be handed
// to rules.NewCatalog alongside the built-ins.
func Load(path string) ([]rules.Rule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules pack: %w", err)
	}
	var pack dslPack
	if err := yaml.Unmarshal(b, &pack); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out := make([]rules.Rule, 0, len(pack.Rules))
	for _, r := range pack.Rules {
		cr, err := compile(r)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.ID, err)
		}
		out = append(out, cr)
	}
	return out, nil
}

func compile(r dslRule) (rules.Rule, error) {
	if r.ID == "" || r.Kind == "" || r.Severity == "" || r.Message == "" {
		return rules.Rule{}, fmt.Errorf("missing required fields (id/kind/severity/message)")
	}
	kind := ir.Kind(strings.ToLower(strings.TrimSpace(r.Kind)))
	if kind != ir.KindNetworkRule && kind != ir.KindStorage {
		return rules.Rule{}, fmt.Errorf("unknown kind %q", r.Kind)
	}

	var reID *regexp.Regexp
	if r.Where.IDRegex != "" {
		re, err := regexp.Compile("(?i)" + r.Where.IDRegex)
		if err != nil {
			return rules.Rule{}, fmt.Errorf("id_regex: %w", err)
		}
		reID = re
	}

	var wantClass cidr.Class
	checkClass := false
	if r.Where.CIDRClass != "" {
		switch strings.ToLower(r.Where.CIDRClass) {
		case "public":
			wantClass = cidr.Public
		case "private":
			wantClass = cidr.Private
		case "invalid":
			wantClass = cidr.Invalid
		default:
			return rules.Rule{}, fmt.Errorf("unknown cidr_class %q", r.Where.CIDRClass)
		}
		checkClass = true
	}

	ports := map[int]bool{}
	for _, p := range r.Where.Ports {
		ports[p] = true
	}
	where := r.Where
	msg := r.Message

	return rules.Rule{
		ID:       r.ID,
		Summary:  r.Summary,
		Kind:     kind,
		Severity: strings.ToUpper(r.Severity),
		Check: func(res *ir.Resource) bool {
			if reID != nil && !reID.MatchString(res.ID) {
				return false
			}
			switch kind {
			case ir.KindNetworkRule:
				n := res.Network
				if n == nil {
					return false
				}
				if where.Protocol != "" && !strings.EqualFold(n.Protocol, where.Protocol) {
					return false
				}
				if len(ports) > 0 && !ports[n.Port] {
					return false
				}
				if checkClass && cidr.Classify(n.CIDR) != wantClass {
					return false
				}
				return true
			case ir.KindStorage:
				s := res.Storage
				if s == nil {
					return false
				}
				if where.Encrypted != nil && s.Encrypted != *where.Encrypted {
					return false
				}
				return true
			}
			return false
		},
		Message: func(res *ir.Resource) string {
			return expand(msg, res)
		},
	}, nil
}

// expand substitutes {id} {port} {cidr} {protocol} placeholders with the
// record's actual fields.
func expand(msg string, res *ir.Resource) string {
	pairs := []string{"{id}", res.ID}
	if n := res.Network; n != nil {
		pairs = append(pairs,
			"{port}", strconv.Itoa(n.Port),
			"{cidr}", n.CIDR,
			"{protocol}", n.Protocol,
		)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
