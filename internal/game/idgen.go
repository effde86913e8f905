package game

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

func shuffle(deck []Role) {
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// newRoomID returns a short join code, e.g. "WWG-3f9a2c".
func newRoomID() string {
	u := uuid.New()
	return "WWG-" + strings.ToLower(hex.EncodeToString(u[:3]))
}

// archiveCode derives the archival code from the finished room's content, so
// the same snapshot always maps to the same code.
func archiveCode(r *Room) string {
	data, err := json.Marshal(r)
	if err != nil {
		data = []byte(r.ID)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:6])
}
