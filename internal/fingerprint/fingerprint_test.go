package fingerprint

import "testing"

func TestSumKnownValue(t *testing.T) {
	got := Sum("Hello world")
	want := "64ec88ca00b268e5ba1a35678a1b5316d212f4f366b2477232534a8aeca37f3c"
	if got != want {
		t.Fatalf("digest mismatch: %s != %s", got, want)
	}
}

func TestSumDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if Sum("same input") != Sum("same input") {
			t.Fatalf("digest changed between calls")
		}
	}
}

func TestSumByteSensitive(t *testing.T) {
	inputs := []string{"Hello world", "Hello world ", "hello world", "Hello  world", ""}
	seen := make(map[string]string)
	for _, in := range inputs {
		h := Sum(in)
		if prev, ok := seen[h]; ok {
			t.Fatalf("collision between %q and %q", prev, in)
		}
		seen[h] = in
		if !Valid(h) {
			t.Fatalf("digest %q is not a valid fingerprint", h)
		}
	}
}

func TestValid(t *testing.T) {
	if Valid("abc") {
		t.Fatalf("short hash accepted")
	}
	if Valid("64EC88CA00B268E5BA1A35678A1B5316D212F4F366B2477232534A8AECA37F3C") {
		t.Fatalf("uppercase hash accepted")
	}
}
