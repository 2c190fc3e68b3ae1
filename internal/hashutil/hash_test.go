package hashutil

import "testing"

func TestSHA256HexKnownVector(t *testing.T) {
	got := SHA256HexString("")
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Fatalf("empty string digest = %s, want %s", got, want)
	}
}

func TestEmptyPayloadHashMatchesSHA256OfEmptyString(t *testing.T) {
	if EmptyPayloadHash != SHA256Hex(nil) {
		t.Fatal("EmptyPayloadHash out of sync with SHA256Hex(nil)")
	}
}

func TestSHA256HexStringHandlesNonASCII(t *testing.T) {
	got := SHA256HexString("при(ве)+т_как23дела")
	want := SHA256Hex([]byte("при(ве)+т_как23дела"))
	if got != want {
		t.Fatalf("non-ascii digest mismatch: %s vs %s", got, want)
	}
}

func TestHexFormatting(t *testing.T) {
	got := Hex([]byte{0x00, 0xFF, 0x0A, 0xB1})
	want := "00ff0ab1"
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
	for _, c := range got {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			t.Fatalf("non hex char %q in %s", c, got)
		}
	}
}

func TestAppendHexLength(t *testing.T) {
	input := make([]byte, 37)
	out := AppendHex(nil, input)
	if len(out) != 2*len(input) {
		t.Fatalf("len(hex) = %d, want %d", len(out), 2*len(input))
	}
}
