package token

import (
	"sort"
	"sync"
	"time"
)

// Namespace is the first path segment of a capability path. It determines
// which workflow transition the capability authorizes.
type Namespace string

const (
	// NamespacePush capabilities accept the second staged command (POST).
	NamespacePush Namespace = "push"
	// NamespacePop capabilities release one staged command (GET).
	NamespacePop Namespace = "pop"
)

// Path returns the capability path "/<ns>/<tok>".
func Path(ns Namespace, tok string) string {
	return "/" + string(ns) + "/" + tok
}

// Capability is a live single-use path registered in a Registry.
type Capability struct {
	Namespace Namespace
	Token     string
	Path      string
	Minted    time.Time
}

// Registry is a thread-safe in-memory table of live capability paths.
// It stands in for dynamic route registration: a capability exists exactly
// as long as its path is in the table.
type Registry struct {
	mu   sync.RWMutex
	caps map[string]Capability // path -> capability
	now  func() time.Time
}

// NewRegistry creates a new empty capability registry.
func NewRegistry() *Registry {
	return &Registry{
		caps: make(map[string]Capability),
		now:  time.Now,
	}
}

// Register makes the capability ns/tok live and returns it.
// If the path is already live its entry is replaced.
func (r *Registry) Register(ns Namespace, tok string) Capability {
	c := Capability{
		Namespace: ns,
		Token:     tok,
		Path:      Path(ns, tok),
		Minted:    r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[c.Path] = c
	return c
}

// Mint generates a token with gen and registers it under ns.
func (r *Registry) Mint(ns Namespace, gen Generator) Capability {
	return r.Register(ns, gen())
}

// Lookup reports whether ns/tok is live and returns its entry.
func (r *Registry) Lookup(ns Namespace, tok string) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[Path(ns, tok)]
	return c, ok
}

// Revoke removes ns/tok from the registry.
// Returns true if the capability was live and is now consumed, false if it
// did not exist. Of several concurrent Revoke calls for the same capability
// exactly one returns true.
func (r *Registry) Revoke(ns Namespace, tok string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	path := Path(ns, tok)
	if _, exists := r.caps[path]; exists {
		delete(r.caps, path)
		return true
	}
	return false
}

// Count returns the number of live capabilities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.caps)
}

// List returns a copy of all live capabilities sorted by path.
func (r *Registry) List() []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Capability, 0, len(r.caps))
	for _, c := range r.caps {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result
}
