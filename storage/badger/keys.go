package badger

import (
	"encoding/binary"

	"github.com/poiesic/titlegate/core"
)

// Key prefixes for different data types
const (
	titleRecordPrefix = "titlerec"
	titleNamePrefix   = "titlekey"
	titleIDSeq        = "titleseq"
)

// makeTitleRecordKey generates a key for a title record by ID.
// The ID is written in BigEndian order so prefix iteration yields records in
// insertion order.
func makeTitleRecordKey(id core.ID) []byte {
	prefix := titleRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeTitleNameKey generates a key for the normalized-name uniqueness index.
// Format: prefix:normalizedKey
func makeTitleNameKey(normalizedKey string) []byte {
	prefix := titleNamePrefix + ":"
	buf := make([]byte, len(prefix)+len(normalizedKey))
	offset := copy(buf, prefix)
	copy(buf[offset:], normalizedKey)
	return buf
}
