// Package hashing derives file fingerprints and commit ids.
//
// Both are additive, order-dependent folds over bytes with uint32
// wraparound. They are not collision resistant. The exact arithmetic is part
// of the id format and must not change.
package hashing

import (
	"fmt"

	"svc/internal/change"
)

const (
	pathModulus    = 1000
	contentModulus = 2000000000
	idModulus      = 15485863
	nameFactor     = 37
)

// Per-kind salts added before folding an action's file name.
const (
	SaltAdd    uint32 = 376591
	SaltRemove uint32 = 85973
	SaltModify uint32 = 9573681
)

// IDLength is the number of hex digits in a commit id.
const IDLength = 6

// Fingerprint folds path then content into a file fingerprint.
// An empty content yields the path-only sum.
func Fingerprint(path string, content []byte) uint32 {
	h := foldMessage(path)
	for _, b := range content {
		h += uint32(b)
		h %= contentModulus
	}
	return h
}

func foldMessage(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h += uint32(s[i])
		h %= pathModulus
	}
	return h
}

// Salt returns the constant added for an action of kind k.
func Salt(k change.Kind) uint32 {
	switch k {
	case change.Add:
		return SaltAdd
	case change.Remove:
		return SaltRemove
	case change.Modify:
		return SaltModify
	}
	return 0
}

// Sum folds message and actions into the numeric commit id. actions must
// already be in change.Sort order.
func Sum(message string, actions change.Set) uint32 {
	h := foldMessage(message)
	for _, a := range actions {
		h += Salt(a.Kind)
		for i := 0; i < len(a.Name); i++ {
			h *= uint32(a.Name[i]) % nameFactor
			h = h%idModulus + 1
		}
	}
	return h
}

// CommitID renders Sum as six lowercase hex digits.
func CommitID(message string, actions change.Set) string {
	return FormatID(Sum(message, actions))
}

// FormatID zero pads v to six hex digits. Wider values keep their leading
// six digits, as a fixed seven-byte id buffer would.
func FormatID(v uint32) string {
	s := fmt.Sprintf("%0*x", IDLength, v)
	if len(s) > IDLength {
		s = s[:IDLength]
	}
	return s
}
