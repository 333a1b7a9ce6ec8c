package cart

import (
	"sync"

	"github.com/angelmondragon/vendorverse-backend/internal/auth"
	"github.com/google/uuid"
)

type authEvents interface {
	OnAuthChange(fn func(auth.Event)) func()
}

// Registry owns one cart per signed-in vendor.
type Registry struct {
	mu     sync.Mutex
	carts  map[uuid.UUID]*Cart
	policy Policy
}

func NewRegistry(policy Policy) *Registry {
	return &Registry{carts: make(map[uuid.UUID]*Cart), policy: policy}
}

// For returns the user's cart, creating an empty one on first use.
func (r *Registry) For(userID uuid.UUID) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		c = New(r.policy)
		r.carts[userID] = c
	}
	return c
}

// Drop destroys the user's cart.
func (r *Registry) Drop(userID uuid.UUID) {
	r.mu.Lock()
	delete(r.carts, userID)
	r.mu.Unlock()
}

// Len reports how many carts are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

// Listen drops a user's cart when they sign out. The returned func stops
// listening.
func (r *Registry) Listen(source authEvents) func() {
	return source.OnAuthChange(func(event auth.Event) {
		if event.Type == auth.EventSignedOut {
			r.Drop(event.UserID)
		}
	})
}
