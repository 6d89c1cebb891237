package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// IDLength is the length of account and food item ids. The schema stores
// them as text, so the length only has to stay collision safe.
const IDLength = 24

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NanoID returns a random row identifier.
func NanoID() string {
	return gonanoid.MustGenerate(idAlphabet, IDLength)
}

// NanoIDs returns n distinct identifiers.
func NanoIDs(n int) []string {
	if n <= 0 {
		return nil
	}
	seen := make(map[string]struct{}, n)
	ids := make([]string, 0, n)
	for len(ids) < n {
		id := NanoID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
