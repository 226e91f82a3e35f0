package internal

import (
	"fmt"
	"strings"
)

// staticIndex is the O(1) fast path for routes whose pattern contains no
// parameter or wildcard segments: a flat path → method → route mapping,
// consulted before the tree on every request.
type staticIndex struct {
	byPath map[string]map[string]*route
}

func newStaticIndex() *staticIndex {
	return &staticIndex{byPath: make(map[string]map[string]*route)}
}

func (si *staticIndex) add(rt *route) {
	methods, ok := si.byPath[rt.pattern]
	if !ok {
		methods = make(map[string]*route, 1)
		si.byPath[rt.pattern] = methods
	}
	if _, dup := methods[rt.method]; dup {
		panic(fmt.Sprintf("velo: duplicate route: %s %s", rt.method, rt.pattern))
	}
	methods[rt.method] = rt
}

// find returns the route registered for the exact path, preferring the
// exact method over a MethodAny entry. Returns nil on miss.
func (si *staticIndex) find(method, path string) *route {
	methods, ok := si.byPath[path]
	if !ok {
		return nil
	}
	return lookupMethod(methods, method)
}

// isStaticPattern reports whether a pattern qualifies for the index:
// no ':' parameter and no '*' wildcard segments.
func isStaticPattern(pattern string) bool {
	return !strings.ContainsAny(pattern, ":*")
}
