package xpath

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	xp "github.com/antchfx/xpath"
)

// EvaluationError wraps a path-query failure with the offending path
type EvaluationError struct {
	Path string
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate path %q: %v", e.Path, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Evaluator evaluates path queries against one parsed document.
// Namespace declarations are collected once from the whole document so the
// same configured path works whatever prefix style the source system uses.
type Evaluator struct {
	doc        *xmlquery.Node
	namespaces map[string]string
	defaultNS  string
	compiled   map[string]*xp.Expr
}

// NewEvaluator creates an evaluator for a parsed document
func NewEvaluator(doc *xmlquery.Node) *Evaluator {
	e := &Evaluator{
		doc:        doc,
		namespaces: make(map[string]string),
		compiled:   make(map[string]*xp.Expr),
	}
	e.collectNamespaces(doc)
	return e
}

// Namespaces returns the prefix to URI table collected from the document.
// The default namespace, if declared, is stored under the empty prefix.
func (e *Evaluator) Namespaces() map[string]string {
	out := make(map[string]string, len(e.namespaces)+1)
	for p, uri := range e.namespaces {
		out[p] = uri
	}
	if e.defaultNS != "" {
		out[""] = e.defaultNS
	}
	return out
}

// collectNamespaces walks every element and records xmlns declarations.
// Prefixed declarations go into the prefix table; the first default
// declaration is kept separately (XPath 1.0 cannot address it by prefix,
// wildcard-local-name paths are used for default-namespace documents).
func (e *Evaluator) collectNamespaces(n *xmlquery.Node) {
	for node := n; node != nil; node = node.NextSibling {
		if node.Type == xmlquery.ElementNode {
			for _, attr := range node.Attr {
				switch {
				case attr.Name.Space == "xmlns" && attr.Name.Local != "":
					if _, ok := e.namespaces[attr.Name.Local]; !ok {
						e.namespaces[attr.Name.Local] = attr.Value
					}
				case attr.Name.Space == "" && attr.Name.Local == "xmlns":
					if e.defaultNS == "" {
						e.defaultNS = attr.Value
					}
				}
			}
		}
		if node.FirstChild != nil {
			e.collectNamespaces(node.FirstChild)
		}
	}
}

// compile compiles a path with the document's namespace table, caching the
// result per evaluator
func (e *Evaluator) compile(path string) (*xp.Expr, error) {
	if expr, ok := e.compiled[path]; ok {
		return expr, nil
	}
	expr, err := xp.CompileWithNS(path, e.namespaces)
	if err != nil {
		return nil, &EvaluationError{Path: path, Err: err}
	}
	e.compiled[path] = expr
	return expr, nil
}

// Evaluate returns the trimmed text value of the first node matching path
// under node, or ok=false when nothing matches
func (e *Evaluator) Evaluate(node *xmlquery.Node, path string) (string, bool, error) {
	expr, err := e.compile(path)
	if err != nil {
		return "", false, err
	}
	match := xmlquery.QuerySelector(node, expr)
	if match == nil {
		return "", false, nil
	}
	return strings.TrimSpace(match.InnerText()), true, nil
}

// EvaluateNodes returns all nodes matching path under node, in document order
func (e *Evaluator) EvaluateNodes(node *xmlquery.Node, path string) ([]*xmlquery.Node, error) {
	expr, err := e.compile(path)
	if err != nil {
		return nil, err
	}
	return xmlquery.QuerySelectorAll(node, expr), nil
}
