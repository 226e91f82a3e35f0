package internal

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticIndex(t *testing.T) {
	t.Parallel()

	t.Run("finds route by exact path and method", func(t *testing.T) {
		t.Parallel()

		si := newStaticIndex()
		want := testRoute(http.MethodGet, "/healthz")
		si.add(want)

		require.Same(t, want, si.find(http.MethodGet, "/healthz"))
		require.Nil(t, si.find(http.MethodGet, "/health"))
	})

	t.Run("distinguishes methods on the same path", func(t *testing.T) {
		t.Parallel()

		si := newStaticIndex()
		get := testRoute(http.MethodGet, "/items")
		post := testRoute(http.MethodPost, "/items")
		si.add(get)
		si.add(post)

		require.Same(t, get, si.find(http.MethodGet, "/items"))
		require.Same(t, post, si.find(http.MethodPost, "/items"))
		require.Nil(t, si.find(http.MethodDelete, "/items"))
	})

	t.Run("falls back to ALL entry", func(t *testing.T) {
		t.Parallel()

		si := newStaticIndex()
		get := testRoute(http.MethodGet, "/items")
		any := testRoute(MethodAny, "/items")
		si.add(get)
		si.add(any)

		require.Same(t, get, si.find(http.MethodGet, "/items"))
		require.Same(t, any, si.find(http.MethodDelete, "/items"))
	})

	t.Run("trailing slash is a distinct path", func(t *testing.T) {
		t.Parallel()

		si := newStaticIndex()
		si.add(testRoute(http.MethodGet, "/a"))

		require.NotNil(t, si.find(http.MethodGet, "/a"))
		require.Nil(t, si.find(http.MethodGet, "/a/"))
	})

	t.Run("panics on duplicate registration", func(t *testing.T) {
		t.Parallel()

		si := newStaticIndex()
		si.add(testRoute(http.MethodGet, "/items"))
		require.Panics(t, func() {
			si.add(testRoute(http.MethodGet, "/items"))
		})
	})
}

func TestStaticIndexMatchesTree(t *testing.T) {
	t.Parallel()

	// A parameter-free route resolves identically through the index and the
	// trie; the index is purely an optimization.
	patterns := []string{"/", "/users", "/users/list", "/api/v1/items"}

	si := newStaticIndex()
	tr := newTree()
	for _, pattern := range patterns {
		rt := testRoute(http.MethodGet, pattern)
		si.add(rt)
		tr.add(http.MethodGet, pattern, rt)
	}

	for _, path := range append(patterns, "/users/", "/missing", "/api/v1") {
		fromIndex := si.find(http.MethodGet, path)
		fromTree, params, ok := tr.find(http.MethodGet, path)
		if !ok {
			fromTree = nil
		}
		require.Equal(t, fromTree, fromIndex, "path %s", path)
		require.Empty(t, params)
	}
}

func TestIsStaticPattern(t *testing.T) {
	t.Parallel()

	require.True(t, isStaticPattern("/"))
	require.True(t, isStaticPattern("/users/list"))
	require.False(t, isStaticPattern("/users/:id"))
	require.False(t, isStaticPattern("/files/*"))
}
