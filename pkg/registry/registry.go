package registry

import (
	"fmt"
	"sync"

	apperrors "mergington-activities/internal/common/errors"
)

// Registry owns the activity catalog and every roster mutation. A single
// RWMutex serializes mutations; reads share the lock.
type Registry struct {
	mu         sync.RWMutex
	activities map[string]*Activity
	seed       Catalog
}

// New builds a registry from seed. The seed is copied, so later changes to the
// argument do not leak in.
func New(seed Catalog) *Registry {
	r := &Registry{seed: seed.Clone()}
	r.activities = r.fromSeed()
	return r
}

// NewDefault builds a registry from the built-in catalog.
func NewDefault() *Registry {
	return New(DefaultCatalog())
}

func (r *Registry) fromSeed() map[string]*Activity {
	out := make(map[string]*Activity, len(r.seed))
	for name, a := range r.seed {
		a := a.clone()
		out[name] = &a
	}
	return out
}

// List returns a snapshot of every activity.
func (r *Registry) List() Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(Catalog, len(r.activities))
	for name, a := range r.activities {
		out[name] = a.clone()
	}
	return out
}

// Get returns a snapshot of one activity.
func (r *Registry) Get(activity string) (Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.activities[activity]
	if !ok {
		return Activity{}, apperrors.NewActivityNotFoundError(activity)
	}
	return a.clone(), nil
}

// Signup appends email to the activity's roster. Capacity is not enforced.
func (r *Registry) Signup(activity, email string) (string, error) {
	if email == "" {
		return "", apperrors.NewInvalidInputError("email", "participant email must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[activity]
	if !ok {
		return "", apperrors.NewActivityNotFoundError(activity)
	}
	if a.hasParticipant(email) {
		return "", apperrors.NewAlreadySignedUpError(activity, email)
	}

	a.Participants = append(a.Participants, email)
	return fmt.Sprintf("Signed up %s for %s", email, activity), nil
}

// Unregister removes email from the activity's roster, keeping the order of the rest.
func (r *Registry) Unregister(activity, email string) (string, error) {
	if email == "" {
		return "", apperrors.NewInvalidInputError("email", "participant email must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[activity]
	if !ok {
		return "", apperrors.NewActivityNotFoundError(activity)
	}
	idx := a.indexOf(email)
	if idx < 0 {
		return "", apperrors.NewNotSignedUpError(activity, email)
	}

	a.Participants = append(a.Participants[:idx], a.Participants[idx+1:]...)
	return fmt.Sprintf("Unregistered %s from %s", email, activity), nil
}

// Reset restores the seed state. Tests use it for isolation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities = r.fromSeed()
}
