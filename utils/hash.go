package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// ItemID derives the deterministic id of a warranty item from its source
// text and owner. Re-parsing identical text for the same user yields the
// same id; distinct users get distinct ids.
func ItemID(text, userID string) string {
	sum := sha1.Sum([]byte(text + userID))
	return hex.EncodeToString(sum[:])
}

// GenerateID produces a prefixed random identifier, e.g. "rem_<uuid>".
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
