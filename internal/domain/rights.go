package domain

import (
	"encoding/json"
	"slices"
	"strings"
)

// Rights is a bit set of the personal access levels a user can hold on a model.
type Rights uint8

const (
	// RightRead allows viewing a model.
	RightRead Rights = 1 << iota
	// RightWrite allows modifying a model. Grants always pair it with RightRead.
	RightWrite
)

// RightsComplete is the full set of personal rights.
const RightsComplete = RightRead | RightWrite

// Has reports whether every bit of other is present in r.
func (r Rights) Has(other Rights) bool {
	return other != 0 && r&other == other
}

func (r Rights) String() string {
	var parts []string
	if r&RightRead != 0 {
		parts = append(parts, "read")
	}
	if r&RightWrite != 0 {
		parts = append(parts, "write")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// IDSet is an insertion-ordered set of document ids.
// It serializes as a JSON array and never as null.
type IDSet []string

// Contains reports whether id is a member.
func (s IDSet) Contains(id string) bool {
	return slices.Contains(s, id)
}

// Add inserts id if absent and reports whether the set changed.
func (s *IDSet) Add(id string) bool {
	if s.Contains(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove deletes id if present and reports whether the set changed.
func (s *IDSet) Remove(id string) bool {
	i := slices.Index(*s, id)
	if i < 0 {
		return false
	}
	*s = slices.Delete(*s, i, i+1)
	return true
}

// MarshalJSON encodes a nil set as an empty array.
func (s IDSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// applyRights adds or removes id in the read and write sets selected by rights.
func applyRights(read, write *IDSet, id string, rights Rights, grant bool) bool {
	changed := false
	op := (*IDSet).Remove
	if grant {
		op = (*IDSet).Add
	}
	if rights&RightRead != 0 && op(read, id) {
		changed = true
	}
	if rights&RightWrite != 0 && op(write, id) {
		changed = true
	}
	return changed
}
