package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"", 7, 7},
		{"42", 7, 42},
		{"-3", 7, -3},
		{"abc", 7, 7},
		{"4.2", 7, 7},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Errorf("AtoiDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, size     int
		wantPage, want int
	}{
		{0, 10, 1, 10},
		{-5, 10, 1, 10},
		{2, 0, 2, 20},
		{2, -1, 2, 20},
		{1, 500, 1, 100},
		{3, 50, 3, 50},
	}
	for _, tc := range cases {
		gp, gs := ClampPage(tc.page, tc.size, 20, 100)
		if gp != tc.wantPage || gs != tc.want {
			t.Errorf("ClampPage(%d, %d) = (%d, %d), want (%d, %d)",
				tc.page, tc.size, gp, gs, tc.wantPage, tc.want)
		}
	}
}
