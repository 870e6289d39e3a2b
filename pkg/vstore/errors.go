package vstore

import "fmt"

// KeyCollisionError is returned when two caller keys normalize to the same
// virtual path (for example "a" and "a.ts").
type KeyCollisionError struct {
	// Path is the virtual path both keys map to.
	Path string
	// Existing is the key registered first.
	Existing string
	// Key is the key that was rejected.
	Key string
}

func (e *KeyCollisionError) Error() string {
	return fmt.Sprintf("keys %q and %q both map to %q", e.Existing, e.Key, e.Path)
}
