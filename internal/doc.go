// Package internal contains the routing and dispatch core: the trie
// matcher, the static route index, the route compiler, the per-request
// context, and the App dispatcher. The root velo package re-exports the
// public surface.
package internal
