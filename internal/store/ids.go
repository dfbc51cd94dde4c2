package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32
// (lowercase, no padding). 8 chars base32 ~= 40 bits of space.
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// NextID mints a workspace-unique id with the given prefix
// (job-, grp-, asp-, trk-, clip-, tn-).
func (db *DB) NextID(prefix string) string {
	for i := 0; i < 10; i++ {
		id, err := newRandomID(prefix)
		if err != nil {
			break
		}
		if !db.idExists(id) {
			return id
		}
	}
	// Extremely unlikely fallback: deterministic suffix from the current counts.
	n := len(db.Tenants)
	for i := range db.Jobs {
		n += 1 + len(db.Jobs[i].MasterClips) + len(db.Jobs[i].AllClips())
	}
	return fmt.Sprintf("%s-%d", prefix, n)
}

func (db *DB) idExists(id string) bool {
	for i := range db.Tenants {
		if db.Tenants[i].ID == id {
			return true
		}
	}
	for i := range db.Jobs {
		j := &db.Jobs[i]
		if j.ID == id {
			return true
		}
		if _, ok := j.FindGroup(id); ok {
			return true
		}
		if _, ok := j.FindAspect(id); ok {
			return true
		}
		if _, ok := j.FindTrack(id); ok {
			return true
		}
		if _, ok := j.FindClip(id); ok {
			return true
		}
	}
	return false
}
