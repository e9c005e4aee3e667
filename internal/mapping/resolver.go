package mapping

import (
	"sort"

	"github.com/mehdihou95/middleware-mapper/internal/xpath"
)

// ActiveRules returns the active rules for one table, ordered by priority
// then target field for a stable application order
func ActiveRules(rules []Rule, tableName string) []Rule {
	var out []Rule
	for _, r := range rules {
		if r.IsActive && r.TableName == tableName {
			out = append(out, r)
		}
	}
	sortRules(out)
	return out
}

// ResolveLineGroups partitions active line rules by the parent path of their
// source paths. Rules whose parent paths differ define distinct line groups;
// parent-path comparison ignores formatting differences such as trailing
// slashes. Inactive rules and rules without a source path are excluded,
// not rejected: a rule author may stage an inactive rule for later.
func ResolveLineGroups(rules []Rule) map[string][]Rule {
	groups := make(map[string][]Rule)
	for _, r := range rules {
		if !r.IsActive || xpath.Normalize(r.SourcePath) == "" {
			continue
		}
		parent := xpath.ParentPath(r.SourcePath)
		if parent == "" {
			continue
		}
		groups[parent] = append(groups[parent], r)
	}
	for parent := range groups {
		sortRules(groups[parent])
	}
	return groups
}

// GroupOrder returns the group keys sorted for deterministic iteration
func GroupOrder(groups map[string][]Rule) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].TargetField < rules[j].TargetField
	})
}
