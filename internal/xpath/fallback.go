package xpath

import (
	"github.com/antchfx/xmlquery"
)

// Discovery method labels reported alongside discovered line groups
const (
	DiscoveryConfigured   = "configured"
	DiscoveryConventional = "conventional"
	DiscoverySiblingScan  = "sibling-scan"
)

// conventionalGroupPaths are tried, in order, when no configured path
// matches any nodes. Wildcard local names keep them namespace-agnostic.
var conventionalGroupPaths = []string{
	"//*[local-name()='Items']/*[local-name()='Item']",
	"//*[local-name()='Lines']/*[local-name()='Line']",
	"//*[local-name()='Details']/*[local-name()='Detail']",
}

// DiscoverLineNodes locates the repeating node group for a set of line
// rules. The configured path wins when it matches; otherwise conventional
// group patterns are tried, and as a last resort the document is scanned
// for the first family of same-named siblings under a common parent.
// The returned method tells the caller which route produced the group, so
// fallback use can be surfaced to operators.
func (e *Evaluator) DiscoverLineNodes(configuredPath string) ([]*xmlquery.Node, string, error) {
	if configuredPath != "" {
		nodes, err := e.EvaluateNodes(e.doc, configuredPath)
		if err != nil {
			return nil, "", err
		}
		if len(nodes) > 0 {
			return nodes, DiscoveryConfigured, nil
		}
	}

	for _, pattern := range conventionalGroupPaths {
		nodes, err := e.EvaluateNodes(e.doc, pattern)
		if err != nil {
			return nil, "", err
		}
		if len(nodes) > 0 {
			return nodes, DiscoveryConventional, nil
		}
	}

	if nodes := e.scanSiblingGroups(); len(nodes) > 0 {
		return nodes, DiscoverySiblingScan, nil
	}

	return nil, "", nil
}

// scanSiblingGroups walks all elements in document order, groups them by
// parent and local name, and returns the first group with more than one
// member. First-encountered wins on ties, which keeps repeated runs over
// identical input deterministic.
func (e *Evaluator) scanSiblingGroups() []*xmlquery.Node {
	type groupKey struct {
		parent *xmlquery.Node
		name   string
	}

	groups := make(map[groupKey][]*xmlquery.Node)
	var order []groupKey

	var walk func(n *xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for node := n; node != nil; node = node.NextSibling {
			if node.Type == xmlquery.ElementNode && node.Parent != nil {
				key := groupKey{parent: node.Parent, name: node.Data}
				if _, seen := groups[key]; !seen {
					order = append(order, key)
				}
				groups[key] = append(groups[key], node)
			}
			if node.FirstChild != nil {
				walk(node.FirstChild)
			}
		}
	}
	walk(e.doc)

	for _, key := range order {
		if members := groups[key]; len(members) > 1 {
			return members
		}
	}
	return nil
}
