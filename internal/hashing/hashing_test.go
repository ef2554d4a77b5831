package hashing

import (
	"testing"

	"svc/internal/change"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintWorkedExample(t *testing.T) {
	// path sum 495 plus content sum 65
	assert.Equal(t, uint32(560), Fingerprint("a.txt", []byte("A")))
}

func TestFingerprintEmptyContent(t *testing.T) {
	assert.Equal(t, uint32(495), Fingerprint("a.txt", nil))
	assert.Equal(t, Fingerprint("a.txt", nil), Fingerprint("a.txt", []byte{}))
}

func TestFingerprintPathReducedModuloThousand(t *testing.T) {
	// 'z' is 122; ten of them sum to 1220 but the path fold keeps 220.
	assert.Equal(t, uint32(220), Fingerprint("zzzzzzzzzz", nil))
}

func TestFingerprintHighBytes(t *testing.T) {
	assert.Equal(t, uint32(97+255), Fingerprint("a", []byte{0xff}))
}

func TestFingerprintDeterministic(t *testing.T) {
	content := []byte("package main\n\nfunc main() {}\n")
	first := Fingerprint("main.go", content)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Fingerprint("main.go", content))
	}
	assert.NotEqual(t, first, Fingerprint("main.go", append(content, '\n')))
}

func TestCommitIDWorkedExample(t *testing.T) {
	actions := change.Set{{Kind: change.Add, Name: "a.txt", Fingerprint: 560}}

	assert.Equal(t, uint32(14552047), Sum("init", actions))
	assert.Equal(t, "de0bef", CommitID("init", actions))
}

func TestCommitIDNoActions(t *testing.T) {
	// 'h' + 'i' = 104 + 105
	assert.Equal(t, "0000d1", CommitID("hi", nil))
}

func TestCommitIDDependsOnKind(t *testing.T) {
	add := CommitID("m", change.Set{{Kind: change.Add, Name: "f"}})
	rm := CommitID("m", change.Set{{Kind: change.Remove, Name: "f"}})
	mod := CommitID("m", change.Set{{Kind: change.Modify, Name: "f"}})

	assert.NotEqual(t, add, rm)
	assert.NotEqual(t, add, mod)
	assert.NotEqual(t, rm, mod)
}

func TestCommitIDIgnoresFingerprints(t *testing.T) {
	a := change.Set{{Kind: change.Modify, Name: "f", Fingerprint: 1, OldFingerprint: 2}}
	b := change.Set{{Kind: change.Modify, Name: "f", Fingerprint: 9, OldFingerprint: 8}}

	assert.Equal(t, CommitID("m", a), CommitID("m", b))
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "000000", FormatID(0))
	assert.Equal(t, "ec4a67", FormatID(15485543))
	assert.Equal(t, "ffffff", FormatID(0xffffff))
	assert.Equal(t, "123456", FormatID(0x1234567))
}

func TestSalt(t *testing.T) {
	assert.Equal(t, SaltAdd, Salt(change.Add))
	assert.Equal(t, SaltRemove, Salt(change.Remove))
	assert.Equal(t, SaltModify, Salt(change.Modify))
	assert.Equal(t, uint32(0), Salt(change.Kind(0)))
}
