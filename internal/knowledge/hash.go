package knowledge

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// chunkDomainKey separates chunk hashes from any other BLAKE3 use. Changing
// it invalidates every stored content hash.
var chunkDomainKey = [32]byte{
	'n', 'a', 'n', 's', 'c', '.', 'k', 'n', 'o', 'w', 'l', 'e', 'd', 'g', 'e', '.',
	'c', 'h', 'u', 'n', 'k', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashChunk returns the hex keyed BLAKE3 digest used to deduplicate chunks.
func HashChunk(content string) string {
	hasher, err := blake3.NewKeyed(chunkDomainKey[:])
	if err != nil {
		// Only returned for a key that is not 32 bytes.
		panic("knowledge: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write([]byte(content))
	return hex.EncodeToString(hasher.Sum(nil))
}
