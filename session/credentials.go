package session

import "sync"

// Credentials is the process-wide holder of the current access credential.
// It performs no validation; it is a pure holder with change notification so
// the host transport can keep its Authorization header current.
//
// Write discipline: only the engine's logout teardown and a successful
// login/refresh may call Set or Clear.
type Credentials struct {
	mu    sync.RWMutex
	token string
	hooks []func(token string)
}

// NewCredentials creates an empty credential holder.
func NewCredentials() *Credentials {
	return &Credentials{}
}

// Get returns the current access credential, or "" when absent.
func (c *Credentials) Get() string {
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Present reports whether a credential is currently held.
func (c *Credentials) Present() bool {
	return c.Get() != ""
}

// Set replaces the held credential and synchronously notifies change hooks.
// Hooks observe a fully committed value, never a partial write.
func (c *Credentials) Set(token string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.token = token
	hooks := c.hooks
	c.mu.Unlock()

	for _, hook := range hooks {
		hook(token)
	}
}

// Clear removes the held credential and notifies change hooks with "".
func (c *Credentials) Clear() {
	c.Set("")
}

// OnChange registers a hook invoked synchronously after every Set/Clear.
// Hooks registered during construction must not call back into the holder.
func (c *Credentials) OnChange(hook func(token string)) {
	if c == nil || hook == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, hook)
}
