package rules

import (
	"fmt"
	"hash/crc32"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/PASTER-G/CI-guard/internal/ir"
)

// Evaluate applies every applicable catalog rule to every resource and
// returns one violation per matching pair. It is a pure fold: no I/O and no
// mutation of resources or the catalog, so record×rule pairs are evaluated
// concurrently and merged in input order. Canonical reporting order is
// imposed later by the reporter, not here.
func Evaluate(resources []ir.Resource, cat *Catalog) []ir.Violation {
	rs := cat.Rules()
	results := make([][]ir.Violation, len(resources))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range resources {
		i := i
		g.Go(func() error {
			results[i] = evalResource(&resources[i], rs, cat)
			return nil
		})
	}
	_ = g.Wait() // workers never fail; broken rules are absorbed in check()

	var all []ir.Violation
	for _, vs := range results {
		all = append(all, vs...)
	}
	return all
}

func evalResource(res *ir.Resource, rs []Rule, cat *Catalog) []ir.Violation {
	var out []ir.Violation
	for _, rule := range rs {
		if rule.Kind != res.Kind {
			continue
		}
		if !cat.severityOK(rule.Severity) {
			continue
		}
		hit, ok := check(rule, res)
		if !ok || !hit {
			continue
		}
		out = append(out, ir.Violation{
			ID:         makeID(rule.ID, res.ID),
			ResourceID: res.ID,
			RuleID:     rule.ID,
			Severity:   rule.Severity,
			Message:    renderMessage(rule, res),
		})
	}
	return out
}

// check runs the predicate behind a recover barrier: a rule that panics is
// an internal rule error, logged and skipped for this resource only, and the
// scan continues for all other rule/record pairs.
func check(rule Rule, res *ir.Resource) (hit, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("internal rule error",
				"rule", rule.ID,
				"resource", res.ID,
				"panic", fmt.Sprint(p),
			)
			hit, ok = false, false
		}
	}()
	if rule.Check == nil {
		return false, true
	}
	return rule.Check(res), true
}

func renderMessage(rule Rule, res *ir.Resource) (msg string) {
	defer func() {
		if recover() != nil {
			msg = rule.Summary
		}
	}()
	if rule.Message == nil {
		return rule.Summary
	}
	if m := rule.Message(res); m != "" {
		return m
	}
	return rule.Summary
}

// makeID derives a stable violation ID from the pair identity, so repeated
// scans of the same input produce identical artifacts.
func makeID(ruleID, resourceID string) string {
	sum := crc32.ChecksumIEEE([]byte(ruleID + "|" + resourceID))
	return fmt.Sprintf("%s-%08x", ruleID, sum)
}
