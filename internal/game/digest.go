package game

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"
)

// Digest hashes everything that evolves with play; save metadata is excluded
// so a reloaded game hashes the same as the one it came from.
func (g *Game) Digest() string {
	s := g.Export()
	s.Meta = SaveMeta{}
	raw, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
