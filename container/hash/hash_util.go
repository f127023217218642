package hash

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"

	"github.com/kfujita/HibariDB/types"
)

// GenHashMurMur hashes a serialized value with murmur3
func GenHashMurMur(key []byte) uint32 {
	h := murmur3.New128()
	h.Write(key)

	hash := h.Sum(nil)

	return binary.LittleEndian.Uint32(hash)
}

// HashValue returns the hash of the value's wire form
func HashValue(val *types.Value) uint32 {
	raw := val.Serialize()
	return GenHashMurMur(raw)
}
