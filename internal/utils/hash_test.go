package utils

import "testing"

func TestHashString_Deterministic(t *testing.T) {
	a := HashString("primary-key", "secret")
	b := HashString("primary-key", "secret")

	if a != b {
		t.Fatalf("expected equal digests, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha256 digest, got %d chars", len(a))
	}
}

func TestHashString_KeyAndDataMatter(t *testing.T) {
	base := HashString("primary-key", "secret")

	if base == HashString("primary-key", "other") {
		t.Fatal("different keys produced the same digest")
	}
	if base == HashString("other-key", "secret") {
		t.Fatal("different data produced the same digest")
	}
}

func TestEqualHashes(t *testing.T) {
	h := HashString("x", "k")
	if !EqualHashes(h, HashString("x", "k")) {
		t.Fatal("expected equal")
	}
	if EqualHashes(h, HashString("y", "k")) {
		t.Fatal("expected different")
	}
}
