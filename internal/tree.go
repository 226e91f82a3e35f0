package internal

import (
	"fmt"
	"strings"
)

// MethodAny registers a route for every method. Lookup prefers an exact
// method entry and falls back to the MethodAny entry.
const MethodAny = "ALL"

// WildcardParam is the parameter name under which a wildcard match stores
// the remaining path segments, joined by '/'.
const WildcardParam = "*"

// tree is the dynamic route matcher: a prefix tree keyed by path segment.
// It is built during registration and read-only while serving, so lookups
// need no synchronization.
type tree struct {
	root *node
}

// node matches one path segment. Priority at each node is fixed: an exact
// static child beats a parameter capture, which beats the wildcard.
type node struct {
	children  map[string]*node
	param     *node
	paramName string
	handlers  map[string]*route
	wildcard  map[string]*route
}

func newTree() *tree {
	return &tree{root: &node{}}
}

// add registers a compiled route under the given method and pattern.
// It panics on malformed patterns, conflicting parameter names at the same
// position, and duplicate method+pattern registrations: all three are
// programmer errors that must surface at startup, not at serve time.
func (t *tree) add(method, pattern string, rt *route) {
	n := t.root
	segments := splitPath(pattern)
	for i, seg := range segments {
		switch {
		case seg == "*":
			if i != len(segments)-1 {
				panic(fmt.Sprintf("velo: wildcard must terminate the pattern: %s", pattern))
			}
			if n.wildcard == nil {
				n.wildcard = make(map[string]*route, 1)
			}
			if _, dup := n.wildcard[method]; dup {
				panic(fmt.Sprintf("velo: duplicate route: %s %s", method, pattern))
			}
			n.wildcard[method] = rt
			return
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if name == "" {
				panic(fmt.Sprintf("velo: parameter segment without a name: %s", pattern))
			}
			if n.param == nil {
				n.param = &node{}
				n.paramName = name
			} else if n.paramName != name {
				panic(fmt.Sprintf("velo: conflicting parameter names %q and %q at the same position: %s", n.paramName, name, pattern))
			}
			n = n.param
		default:
			if n.children == nil {
				n.children = make(map[string]*node, 4)
			}
			child, ok := n.children[seg]
			if !ok {
				child = &node{}
				n.children[seg] = child
			}
			n = child
		}
	}
	if n.handlers == nil {
		n.handlers = make(map[string]*route, 1)
	}
	if _, dup := n.handlers[method]; dup {
		panic(fmt.Sprintf("velo: duplicate route: %s %s", method, pattern))
	}
	n.handlers[method] = rt
}

// capture is one path parameter captured during matching.
type capture struct {
	name  string
	value string
}

// find resolves a method and path to a compiled route plus captured
// parameters. The params map is freshly allocated per call, so concurrent
// lookups never share state.
func (t *tree) find(method, path string) (*route, map[string]string, bool) {
	rt, captures, ok := t.root.match(method, splitPath(path), nil)
	if !ok {
		return nil, nil, false
	}
	var params map[string]string
	if len(captures) > 0 {
		params = make(map[string]string, len(captures))
		for _, cp := range captures {
			params[cp.name] = cp.value
		}
	}
	return rt, params, true
}

// match walks the tree segment by segment. Captures are threaded down the
// call stack as an immutable slice: the full slice expression on append
// forces a copy, so a failed descent is discarded simply by returning and
// never leaves a stale capture behind.
func (n *node) match(method string, segments []string, captures []capture) (*route, []capture, bool) {
	if len(segments) == 0 {
		if rt := lookupMethod(n.handlers, method); rt != nil {
			return rt, captures, true
		}
		return nil, nil, false
	}

	head, rest := segments[0], segments[1:]

	if child, ok := n.children[head]; ok {
		if rt, caps, ok := child.match(method, rest, captures); ok {
			return rt, caps, true
		}
	}

	if n.param != nil {
		caps := append(captures[:len(captures):len(captures)], capture{n.paramName, head})
		if rt, caps, ok := n.param.match(method, rest, caps); ok {
			return rt, caps, true
		}
	}

	if rt := lookupMethod(n.wildcard, method); rt != nil {
		caps := append(captures[:len(captures):len(captures)], capture{WildcardParam, strings.Join(segments, "/")})
		return rt, caps, true
	}

	return nil, nil, false
}

func lookupMethod(handlers map[string]*route, method string) *route {
	if handlers == nil {
		return nil
	}
	if rt, ok := handlers[method]; ok {
		return rt
	}
	return handlers[MethodAny]
}

// splitPath splits a path into segments. The root path has zero segments.
// A trailing slash yields a final empty segment, so "/a" and "/a/" are
// distinct paths.
func splitPath(path string) []string {
	if path == "" || path == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}
