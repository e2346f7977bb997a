package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		// empty -> default
		{"", 10, 10},
		// valid ints
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		// invalid -> default (no trim)
		{"x", 5, 5},
		{" 42", 7, 7},
		// overflow -> default
		{"999999999999999999999999", -1, -1},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestPageBounds(t *testing.T) {
	cases := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"", "", 1, 20},
		{"3", "50", 3, 50},
		{"0", "0", 1, 1},
		{"-2", "x", 1, 20},
		{"2", "1000", 2, 100},
	}
	for _, tc := range cases {
		p, l := PageBounds(tc.page, tc.limit, 20, 100)
		if p != tc.wantPage || l != tc.wantLimit {
			t.Fatalf("PageBounds(%q,%q) = %d,%d; want %d,%d", tc.page, tc.limit, p, l, tc.wantPage, tc.wantLimit)
		}
	}
}

func TestTotalPages(t *testing.T) {
	if TotalPages(0, 20) != 0 || TotalPages(1, 20) != 1 || TotalPages(40, 20) != 2 || TotalPages(41, 20) != 3 || TotalPages(5, 0) != 0 {
		t.Fatalf("TotalPages mismatch")
	}
}

func TestOptionalBool(t *testing.T) {
	if b, err := OptionalBool(" "); b != nil || err != nil {
		t.Fatalf("blank = %v %v", b, err)
	}
	if b, err := OptionalBool("true"); err != nil || b == nil || !*b {
		t.Fatalf("true = %v %v", b, err)
	}
	if b, err := OptionalBool("0"); err != nil || b == nil || *b {
		t.Fatalf("0 = %v %v", b, err)
	}
	if _, err := OptionalBool("maybe"); err == nil {
		t.Fatalf("expected error")
	}
}
