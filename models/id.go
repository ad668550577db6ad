package models

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"
)

// Snowflake generates unique 64-bit IDs composed of timestamp and node/sequence bits.
// Layout: 1 bit unused + 41 bits timestamp(ms since custom epoch) + 10 bits node + 12 bits sequence.
type Snowflake struct {
	epoch  int64
	nodeID int64 // 10 bits
	lastMs int64
	seq    int64 // 12 bits
	mu     sync.Mutex
}

func NewSnowflake(nodeID int64) *Snowflake {
	return &Snowflake{epoch: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), nodeID: nodeID & 0x3FF}
}

func (s *Snowflake) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UnixMilli()
	if now == s.lastMs {
		s.seq = (s.seq + 1) & 0xFFF
		if s.seq == 0 { // sequence rollover, wait next ms
			for now <= s.lastMs {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		s.seq = 0
	}
	s.lastMs = now
	ts := (now - s.epoch) & ((1 << 41) - 1)
	return (ts << (10 + 12)) | (s.nodeID << 12) | s.seq
}

// encodeUUID4 packs a 64-bit ID into a UUIDv4-shaped 32-hex string (no hyphens).
// The high 16 bits land in bytes 4-5 and the low 48 bits in bytes 10-15 so the
// version/variant bytes stay untouched.
func encodeUUID4(id uint64) string {
	var b [16]byte
	binary.BigEndian.PutUint16(b[4:6], uint16(id>>48))
	lo := id & 0x0000FFFFFFFFFFFF
	b[10] = byte(lo >> 40)
	b[11] = byte(lo >> 32)
	b[12] = byte(lo >> 24)
	b[13] = byte(lo >> 16)
	b[14] = byte(lo >> 8)
	b[15] = byte(lo)
	b[6] = (b[6] & 0x0F) | 0x40
	b[8] = (b[8] & 0x3F) | 0x80
	return fmt.Sprintf("%x", b[:])
}

var idGen = NewSnowflake(1)

// NexID returns a new 32-char row identifier: a snowflake ID encoded as a
// hyphenless UUIDv4-compatible hex string.
func NexID() string {
	return encodeUUID4(uint64(idGen.Next()))
}
