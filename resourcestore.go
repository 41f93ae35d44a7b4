package zireael

// resourceStore holds owned byte slices for strings and blobs defined by
// drawlist DEFINE commands, keyed by nonzero 32-bit ID. It is bounded by
// Limits.DLMaxStrings / Limits.DLMaxBlobs.
type resourceStore struct {
	strings    map[uint32][]byte
	blobs      map[uint32][]byte
	maxStrings int
	maxBlobs   int
}

func newResourceStore(maxStrings, maxBlobs int) *resourceStore {
	return &resourceStore{
		strings:    make(map[uint32][]byte),
		blobs:      make(map[uint32][]byte),
		maxStrings: maxStrings,
		maxBlobs:   maxBlobs,
	}
}

func (s *resourceStore) defineString(id uint32, data []byte) error {
	const op = "resourcestore.define_string"
	if id == 0 {
		return newErr(KindFormat, op, "id must be nonzero")
	}
	if _, exists := s.strings[id]; !exists && len(s.strings) >= s.maxStrings {
		return newErr(KindLimit, op, "string count limit exceeded")
	}
	owned := make([]byte, len(data))
	copy(owned, data)
	s.strings[id] = owned
	return nil
}

func (s *resourceStore) defineBlob(id uint32, data []byte) error {
	const op = "resourcestore.define_blob"
	if id == 0 {
		return newErr(KindFormat, op, "id must be nonzero")
	}
	if _, exists := s.blobs[id]; !exists && len(s.blobs) >= s.maxBlobs {
		return newErr(KindLimit, op, "blob count limit exceeded")
	}
	owned := make([]byte, len(data))
	copy(owned, data)
	s.blobs[id] = owned
	return nil
}

func (s *resourceStore) freeString(id uint32) error {
	const op = "resourcestore.free_string"
	if _, ok := s.strings[id]; !ok {
		return newErr(KindFormat, op, "unknown string id")
	}
	delete(s.strings, id)
	return nil
}

func (s *resourceStore) freeBlob(id uint32) error {
	const op = "resourcestore.free_blob"
	if _, ok := s.blobs[id]; !ok {
		return newErr(KindFormat, op, "unknown blob id")
	}
	delete(s.blobs, id)
	return nil
}

func (s *resourceStore) lookupString(id uint32) ([]byte, error) {
	const op = "resourcestore.lookup_string"
	b, ok := s.strings[id]
	if !ok {
		return nil, newErr(KindFormat, op, "unknown string id")
	}
	return b, nil
}

func (s *resourceStore) lookupBlob(id uint32) ([]byte, error) {
	const op = "resourcestore.lookup_blob"
	b, ok := s.blobs[id]
	if !ok {
		return nil, newErr(KindFormat, op, "unknown blob id")
	}
	return b, nil
}

// clone returns a shallow copy: a new store with independent maps whose
// entries point at the same owned byte slices. Used by the executor's
// preflight pass to simulate this drawlist's DEFINE/FREE effects without
// mutating the real store (spec.md §4.3).
func (s *resourceStore) clone() *resourceStore {
	c := newResourceStore(s.maxStrings, s.maxBlobs)
	for k, v := range s.strings {
		c.strings[k] = v
	}
	for k, v := range s.blobs {
		c.blobs[k] = v
	}
	return c
}

// totalBytes reports the combined accounted size of all live string and
// blob resources (spec.md §8 property 6: "redefining an id ... updates
// the total-bytes accounting").
func (s *resourceStore) totalBytes() int {
	n := 0
	for _, b := range s.strings {
		n += len(b)
	}
	for _, b := range s.blobs {
		n += len(b)
	}
	return n
}
