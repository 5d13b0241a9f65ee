package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes, strips combining marks and recomposes, so that
// "Müller" and "Muller" normalize to the same key.
var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName produces the canonical matching key for a player or catalog
// name: diacritics folded, lower-cased, inner whitespace collapsed.
// Every lookup and every sync key goes through this function; matching is
// exact on the normalized form, never partial.
func NormalizeName(name string) string {
	folded, _, err := transform.String(foldTransformer, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// SyncKey derives the idempotency token for an auto-assessed penalty from the
// external event id and the normalized player identity. Re-running a sync over
// the same event and player always yields the same key.
func SyncKey(eventID, player string) string {
	sum := sha256.Sum256([]byte(eventID + "|" + NormalizeName(player)))
	return hex.EncodeToString(sum[:])
}
