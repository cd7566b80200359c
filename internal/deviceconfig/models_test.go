package deviceconfig

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseConfigOrderAndDuplicates(t *testing.T) {
	c := ParseConfig("eotf:2\nis_sdr:1\n\nnot a pair\neotf:3\nhostname:pg:01\n")

	if diff := cmp.Diff([]string{"eotf", "is_sdr", "hostname"}, c.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	if got := c.Get("eotf", ""); got != "3" {
		t.Errorf("eotf = %q, want 3 (last duplicate wins)", got)
	}
	if got := c.Get("hostname", ""); got != "pg:01" {
		t.Errorf("hostname = %q, want pg:01", got)
	}
	if got := c.Get("EOTF", "none"); got != "none" {
		t.Errorf("Get(EOTF) = %q, want case-sensitive miss", got)
	}
}

func TestConfigInt(t *testing.T) {
	c := ParseConfig("max_bpc: 10\neotf:pq")

	tests := []struct {
		key  string
		def  int
		want int
	}{
		{"max_bpc", 8, 10},
		{"eotf", 2, 2},
		{"missing", 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := c.Int(tt.key, tt.def); got != tt.want {
				t.Errorf("Int(%q) = %d, want %d", tt.key, got, tt.want)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	orig := ParseConfig("a:1\nb:2")
	clone := orig.Clone()
	clone.Set("a", "9")

	if got := orig.Get("a", ""); got != "1" {
		t.Errorf("original changed: a = %q", got)
	}
	if diff := cmp.Diff(orig.Keys(), clone.Keys()); diff != "" {
		t.Errorf("clone key order mismatch (-orig +clone):\n%s", diff)
	}
}

func TestConfigDiff(t *testing.T) {
	old := ParseConfig("a:1\nb:2\nc:3")
	nw := ParseConfig("a:1\nb:5\nd:4")

	want := []Change{
		{Key: "b", Old: "2", New: "5", OldPresent: true, NewPresent: true},
		{Key: "c", Old: "3", OldPresent: true},
		{Key: "d", New: "4", NewPresent: true},
	}
	got := old.Diff(nw)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", diff)
	}

	wantStrings := []string{"b: 2 → 5", "c: 3 → (unset)", "d: (unset) → 4"}
	for i, ch := range got {
		if ch.String() != wantStrings[i] {
			t.Errorf("Change[%d].String() = %q, want %q", i, ch.String(), wantStrings[i])
		}
	}

	if len(old.Diff(old.Clone())) != 0 {
		t.Error("Diff of identical configs should be empty")
	}
}

func TestNilConfig(t *testing.T) {
	var c *Config
	if c.Len() != 0 || c.Keys() != nil {
		t.Error("nil Config should be empty")
	}
	if got := c.Get("x", "d"); got != "d" {
		t.Errorf("Get on nil = %q, want d", got)
	}
	if len(c.Map()) != 0 {
		t.Error("Map on nil should be empty")
	}
}
