package xpath

import "strings"

// Normalize trims surrounding whitespace and trailing slashes so paths that
// differ only in formatting compare equal
func Normalize(path string) string {
	p := strings.TrimSpace(path)
	for strings.HasSuffix(p, "/") && p != "/" && p != "//" {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// ParentPath returns path with its final segment removed. Separators inside
// predicate brackets do not split segments. Returns "" when the path has a
// single segment.
func ParentPath(path string) string {
	p := Normalize(path)
	idx := lastSegmentStart(p)
	if idx <= 0 {
		return ""
	}
	// Keep the "//" of an anywhere-axis path intact
	parent := p[:idx]
	for strings.HasSuffix(parent, "/") && parent != "/" && parent != "//" {
		parent = strings.TrimSuffix(parent, "/")
	}
	if parent == "" || parent == "/" || parent == "//" {
		return ""
	}
	return parent
}

// LastSegment returns the final segment of path, without predicates removed
func LastSegment(path string) string {
	p := Normalize(path)
	idx := lastSegmentStart(p)
	if idx < 0 {
		return p
	}
	return p[idx:]
}

// RelativePath rewrites path, written from the document root, to be relative
// to a node previously selected by ancestorPath. When path does not extend
// ancestorPath the final segment is returned as a descendant search, so a
// field path still resolves against the right line node.
func RelativePath(path, ancestorPath string) string {
	p := Normalize(path)
	a := Normalize(ancestorPath)
	if a != "" && strings.HasPrefix(p, a) {
		rel := strings.TrimPrefix(p, a)
		if rel == "" {
			return "."
		}
		// A segment boundary must follow the ancestor, "//Line" is not an
		// ancestor of "//LineItems/Qty"
		if rel[0] == '/' {
			return strings.TrimLeft(rel, "/")
		}
	}
	seg := LastSegment(p)
	if seg == "" {
		return "."
	}
	return ".//" + seg
}

// lastSegmentStart returns the index just after the last '/' that sits
// outside predicate brackets, or -1 when there is none
func lastSegmentStart(p string) int {
	depth := 0
	last := -1
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '/':
			if depth == 0 {
				last = i + 1
			}
		}
	}
	return last
}
