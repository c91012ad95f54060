package rosca

import (
	"bytes"
	"testing"
)

func TestStorageKeysAreCollisionFreeAcrossNamespaces(t *testing.T) {
	groupID := uint64(7)
	cycle := uint32(3)
	member := testAddr(1)

	keys := [][]byte{
		GroupKey(groupID),
		MembersKey(groupID),
		StatusKey(groupID),
		ContributionRecordKey(groupID, cycle, member),
		ContributionFlagKey(groupID, cycle, member),
		CycleTotalKey(groupID, cycle),
		CycleCountKey(groupID, cycle),
		PayoutRecordKey(groupID, cycle),
		PayoutFlagKey(groupID, cycle),
		NextGroupIDKey(),
		ConfigKey(),
	}

	for i := range keys {
		for j := range keys {
			if i == j {
				continue
			}
			if bytes.Equal(keys[i], keys[j]) {
				t.Fatalf("key collision between index %d and %d: %x", i, j, keys[i])
			}
		}
	}
}

func TestStorageKeysAreDeterministic(t *testing.T) {
	a := ContributionRecordKey(1, 2, testAddr(9))
	b := ContributionRecordKey(1, 2, testAddr(9))
	if !bytes.Equal(a, b) {
		t.Fatal("expected identical inputs to produce identical keys")
	}
}

func TestStorageKeysVaryByDiscriminant(t *testing.T) {
	a := GroupKey(1)
	b := GroupKey(2)
	if bytes.Equal(a, b) {
		t.Fatal("expected different group ids to produce different keys")
	}
}
