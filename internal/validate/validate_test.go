package validate

import "testing"

func TestEmail(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"alice@shopmart.test", true},
		{"  alice@shopmart.test  ", true},
		{"alice@", false},
		{"@shopmart.test", false},
		{"", false},
		{"no-at-sign", false},
	}
	for _, tc := range cases {
		if _, ok := Email(tc.in); ok != tc.ok {
			t.Errorf("Email(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
	}
}

func TestCardDigits(t *testing.T) {
	cases := []struct{ in, want string }{
		{"4111 1111 1111 1111", "4111111111111111"},
		{"4111-1111-1111-1111", "4111111111111111"},
		{"abcd", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CardDigits(tc.in); got != tc.want {
			t.Errorf("CardDigits(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestID(t *testing.T) {
	if _, ok := ID("42"); !ok {
		t.Error("42 should parse")
	}
	for _, bad := range []string{"0", "-1", "abc", "", "1.5"} {
		if _, ok := ID(bad); ok {
			t.Errorf("ID(%q) should fail", bad)
		}
	}
}

func TestQty(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"3", 3},
		{"", 1},
		{"0", 1},
		{"-4", 1},
		{"junk", 1},
		{"500", 99},
	}
	for _, tc := range cases {
		if got := Qty(tc.in); got != tc.want {
			t.Errorf("Qty(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSearch(t *testing.T) {
	if _, ok := Search(""); !ok {
		t.Error("empty search is a valid no-op")
	}
	if s, ok := Search("green tea"); !ok || s != "green tea" {
		t.Errorf("plain keyword rejected: %q %v", s, ok)
	}
	if _, ok := Search("<script>"); ok {
		t.Error("markup should be rejected")
	}
}

func TestSort(t *testing.T) {
	if Sort("qty_asc") != "qty_asc" || Sort("qty_desc") != "qty_desc" {
		t.Error("known keys must pass through")
	}
	if Sort("price; DROP TABLE products") != "" {
		t.Error("unknown keys must normalize to empty")
	}
}
