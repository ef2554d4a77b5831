// internal/change/types.go
package change

import (
	"fmt"
)

// Kind classifies how a file differs between the head snapshot and the
// staging snapshot.
type Kind int

const (
	Add Kind = iota + 1
	Remove
	Modify
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Modify:
		return "modify"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Symbol is the one-character marker used in commit listings.
func (k Kind) Symbol() string {
	switch k {
	case Add:
		return "+"
	case Remove:
		return "-"
	case Modify:
		return "/"
	}
	return "?"
}

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Add, Remove, Modify:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("invalid action kind %d", int(k))
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "add":
		*k = Add
	case "remove":
		*k = Remove
	case "modify":
		*k = Modify
	default:
		return fmt.Errorf("invalid action kind %q", text)
	}
	return nil
}

// Action is one classified file change of a commit.
type Action struct {
	Kind           Kind   `json:"kind"`
	Name           string `json:"name"`
	Fingerprint    uint32 `json:"fingerprint"`
	OldFingerprint uint32 `json:"old_fingerprint"` // 0 unless Kind is Modify
}

// Set is the ordered action list of one commit attempt.
type Set []Action

// Count returns the number of actions of kind k.
func (s Set) Count(k Kind) int {
	n := 0
	for _, a := range s {
		if a.Kind == k {
			n++
		}
	}
	return n
}

// Names returns the file names in action order.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, a := range s {
		names[i] = a.Name
	}
	return names
}
