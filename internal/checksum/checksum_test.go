package checksum

import "testing"

func TestSum(t *testing.T) {
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s, want %s", got, empty)
	}
	if Sum([]byte("[]")) == Sum([]byte("[ ]")) {
		t.Error("different documents should not share a digest")
	}
}

func TestETagRoundTrip(t *testing.T) {
	if ETag("") != "" {
		t.Error("empty digest should give empty tag")
	}
	for _, in := range []string{`"abc"`, `W/"abc"`, ` abc `} {
		if got := FromETag(in); got != "abc" {
			t.Errorf("FromETag(%q) = %q", in, got)
		}
	}
	if FromETag(ETag("abc")) != "abc" {
		t.Error("round trip failed")
	}
}
