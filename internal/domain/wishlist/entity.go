// internal/domain/wishlist/entity.go
package wishlist

import "errors"

var (
	ErrUnknownProduct  = errors.New("product not found")
	ErrProfileNotFound = errors.New("user profile not found")
)

// Set is an ordered set of product ids in their string form
type Set []string

// Contains reports whether id is in the set
func (s Set) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Toggle returns a new set with id removed if present, appended otherwise
func (s Set) Toggle(id string) Set {
	if s.Contains(id) {
		return s.Without(id)
	}
	return s.With(id)
}

// With returns a new set that includes id
func (s Set) With(id string) Set {
	if s.Contains(id) {
		return append(Set{}, s...)
	}
	out := make(Set, 0, len(s)+1)
	out = append(out, s...)
	return append(out, id)
}

// Without returns a new set that excludes id
func (s Set) Without(id string) Set {
	out := make(Set, 0, len(s))
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Union returns s followed by the members of other not already in s
func (s Set) Union(other Set) Set {
	out := append(Set{}, s...)
	for _, v := range other {
		if !out.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}

// Normalize drops duplicates and empty ids, keeping first occurrences
func Normalize(ids []string) Set {
	out := make(Set, 0, len(ids))
	for _, id := range ids {
		if id == "" || out.Contains(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Profile is the remote per-user document. Orders are kept in their own
// collection; the field is created empty for compatibility with the
// storefront's profile shape.
type Profile struct {
	UserID   string   `bson:"_id" json:"user_id"`
	Email    string   `bson:"email,omitempty" json:"email,omitempty"`
	Wishlist []string `bson:"wishlist" json:"wishlist"`
	Orders   []string `bson:"orders" json:"orders"`
}

// ToggleResult reports the outcome of a toggle
type ToggleResult struct {
	ProductID  string `json:"product_id"`
	Wishlisted bool   `json:"wishlisted"`
	Items      Set    `json:"items"`
}
