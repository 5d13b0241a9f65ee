package domain

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Max Müller", "max muller"},
		{"max  MÜLLER ", "max muller"},
		{"  Gelbe   Karte", "gelbe karte"},
		{"José García", "jose garcia"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSyncKeyDeterministic(t *testing.T) {
	a := SyncKey("E1", "Max Müller")
	b := SyncKey("E1", "max  muller")
	if a != b {
		t.Fatalf("sync keys differ for equivalent identities: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected sha256 hex key, got length %d", len(a))
	}
	if SyncKey("E2", "Max Müller") == a {
		t.Fatalf("different events must produce different keys")
	}
	if SyncKey("E1", "Anna Schmidt") == a {
		t.Fatalf("different players must produce different keys")
	}
}
