// Package security provides the domain types for guarding shell command
// execution: the session whitelist, review verdicts, and the default policy
// of forbidden path patterns.
package security

import (
	"sort"
	"strings"
	"sync"
)

// Context tracks the files a user has approved for access during a session.
// It is safe for concurrent use; reviews running against separate shells
// share a single context so an approval in one review is visible to all.
type Context struct {
	mu        sync.Mutex
	whitelist map[string]struct{}
}

// NewContext creates an empty security context.
func NewContext() *Context {
	return &Context{whitelist: make(map[string]struct{})}
}

// AddToWhitelist marks a path as approved for the remainder of the session.
// Adding the same path twice has no additional effect.
func (c *Context) AddToWhitelist(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.whitelist[path] = struct{}{}
}

// IsWhitelisted reports whether a path was previously approved.
func (c *Context) IsWhitelisted(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.whitelist[path]
	return ok
}

// Whitelist returns a sorted copy of the approved paths.
func (c *Context) Whitelist() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths := make([]string, 0, len(c.whitelist))
	for p := range c.whitelist {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// WhitelistString renders the approved paths as a comma separated list for
// prompts and log lines. It returns "None" when the whitelist is empty.
func (c *Context) WhitelistString() string {
	paths := c.Whitelist()
	if len(paths) == 0 {
		return "None"
	}
	return strings.Join(paths, ", ")
}
