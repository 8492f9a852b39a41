package archive

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Compression
// ---------------------------------------------------------------------------

func TestCompressRoundTrip(t *testing.T) {
	src := []byte(strings.Repeat("--- File: /a.txt ---\n\ncontent\n\n", 50))

	packed, err := Compress(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(packed) >= len(src) {
		t.Errorf("repetitive input should shrink: %d -> %d", len(src), len(packed))
	}

	out, err := Decompress(packed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, src) {
		t.Error("round trip altered content")
	}
}

func TestMaybeDecompress(t *testing.T) {
	plain := []byte("--- File: /a.txt ---\n\nalpha\n\n")

	out, was, err := MaybeDecompress(plain)
	if err != nil || was {
		t.Fatalf("plain input: was=%v err=%v", was, err)
	}
	if !bytes.Equal(out, plain) {
		t.Error("plain input must pass through")
	}

	packed, err := Compress(plain)
	if err != nil {
		t.Fatal(err)
	}
	out, was, err = MaybeDecompress(packed)
	if err != nil {
		t.Fatal(err)
	}
	if !was {
		t.Error("gzip magic should be detected")
	}
	if !bytes.Equal(out, plain) {
		t.Error("decompressed content differs")
	}
}

func TestDecompress_RejectsGarbage(t *testing.T) {
	if _, err := Decompress([]byte("\x1f\x8bnot really gzip")); err == nil {
		t.Fatal("expected an error")
	}
}

// ---------------------------------------------------------------------------
// Artifact naming
// ---------------------------------------------------------------------------

func TestName(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 15, 0, time.UTC)

	if got := Name("myproj", "txt", false, at); got != "myproj_20260301-093015.snapshot.txt" {
		t.Errorf("Name = %q", got)
	}
	if got := Name("myproj", "json", true, at); got != "myproj_20260301-093015.snapshot.json.gz" {
		t.Errorf("Name = %q", got)
	}
}

func TestName_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2026, 3, 1, 11, 0, 0, 0, loc)

	if got := Name("p", "txt", false, at); !strings.Contains(got, "20260301-090000") {
		t.Errorf("Name = %q, want UTC stamp", got)
	}
}
