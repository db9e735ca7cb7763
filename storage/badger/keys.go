package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ailsahq/grantseek/core"
)

// Key prefixes for different data types
const (
	grantRecordPrefix  = "grarec"
	grantUpdatedPrefix = "graupd"
	chunkRecordPrefix  = "chkrec"
	chunkGrantPrefix   = "chkgra"
	sessionPrefix      = "sesrec"
)

// makeGrantKey generates a key for a grant by ID.
func makeGrantKey(id core.GrantID) []byte {
	return []byte(fmt.Sprintf("%s:%s", grantRecordPrefix, id))
}

// makeGrantUpdatedKey generates a composite key for the updated-at index.
// Format: prefix:timestamp:id
func makeGrantUpdatedKey(updatedAt time.Time, id core.GrantID) []byte {
	prefix := grantUpdatedPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 + len(id)
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(updatedAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], []byte(id))
	return buf
}

// makePartialGrantUpdatedKey generates a partial key for updated-at scans.
// Format: prefix:timestamp
func makePartialGrantUpdatedKey(updatedAt time.Time) []byte {
	prefix := grantUpdatedPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(updatedAt.UnixMicro()))
	return buf
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ChunkID) []byte {
	prefix := chunkRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkGrantKey generates a composite key for the grant-to-chunk index.
// Format: prefix:grantID:chunkID
func makeChunkGrantKey(grantID core.GrantID, chunkID core.ChunkID) []byte {
	prefix := chunkGrantPrefix + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + len(grantID) + 1 + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	offset += copy(buf[offset:], []byte(grantID))
	buf[offset] = ':'
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkID))
	return buf
}

// makePartialChunkGrantKey generates a partial key for per-grant chunk scans.
// Format: prefix:grantID:
func makePartialChunkGrantKey(grantID core.GrantID) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkGrantPrefix, grantID))
}

// makeSessionKey generates a key for session state by session ID.
func makeSessionKey(sessionID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", sessionPrefix, sessionID))
}

// marshalChunkID serializes a ChunkID for index values.
func marshalChunkID(id core.ChunkID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

// unmarshalChunkID deserializes a ChunkID from index values.
func unmarshalChunkID(data []byte) (core.ChunkID, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("chunk id: expected 8 bytes, got %d", len(data))
	}
	return core.ChunkID(binary.BigEndian.Uint64(data)), nil
}
