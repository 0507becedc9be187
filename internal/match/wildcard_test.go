package match

import "testing"

func TestWildcardMatch(t *testing.T) {
	cases := []struct {
		pattern string
		value   string
		want    bool
	}{
		{pattern: "*", value: "anything", want: true},
		{pattern: "eth0", value: "eth0", want: true},
		{pattern: "eth0", value: "eth01", want: false},
		{pattern: "eth0", value: "xeth0", want: false},
		{pattern: "lo", value: "lo", want: true},
		{pattern: "/", value: "/", want: true},
		{pattern: "/", value: "/data", want: false},
		{pattern: "eth*", value: "eth1", want: true},
		{pattern: "eth*", value: "ens3", want: false},
		{pattern: "*0", value: "eth0", want: true},
		{pattern: "*0", value: "eth1", want: false},
		{pattern: "nvme*n1", value: "nvme0n1", want: true},
		{pattern: "nvme*n1", value: "nvme0n1p1", want: false},
		{pattern: "*dm*", value: "vdm-0", want: true},
		{pattern: "a*b*c", value: "abc", want: true},
		{pattern: "a*b*c", value: "acb", want: false},
		{pattern: "ab*b", value: "ab", want: false},
		{pattern: "ab*b", value: "abb", want: true},
		{pattern: "", value: "", want: false},
		{pattern: "  ", value: "x", want: false},
	}

	for _, tc := range cases {
		if got := WildcardMatch(tc.pattern, tc.value); got != tc.want {
			t.Fatalf("WildcardMatch(%q, %q)=%v want %v", tc.pattern, tc.value, got, tc.want)
		}
	}
}

func TestCompileWildcardReportsEmptyPattern(t *testing.T) {
	if _, ok := CompileWildcard(" "); ok {
		t.Fatalf("expected blank pattern to be rejected")
	}
	compiled, ok := CompileWildcard(" sd* ")
	if !ok {
		t.Fatalf("expected pattern to compile")
	}
	if !compiled.Match("sdb") {
		t.Fatalf("expected trimmed pattern to match sdb")
	}
}
