// Package id generates prefixed identifiers for stored entities.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for each entity kind.
const (
	PrefixUser      = "usr"
	PrefixBook      = "book"
	PrefixCategory  = "cat"
	PrefixCart      = "cart"
	PrefixCartItem  = "ci"
	PrefixOrder     = "ord"
	PrefixOrderItem = "oi"
	PrefixToken     = "tok"
)

// alphabet drops '-' and '_' from the NanoID default so the prefix separator stays unambiguous.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const size = 21

// Generate creates a prefixed unique ID, e.g. "ord-V1StGXR8Z5jdHi6BmyT6a".
//
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.Generate(alphabet, size)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}
