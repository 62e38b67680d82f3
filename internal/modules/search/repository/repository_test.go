package repository

import (
	"reflect"
	"testing"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in       string
		min, max int
		ok       bool
	}{
		{"", 0, 0, false},
		{"abc", 0, 0, false},
		{"-500000", 0, 500000, true},
		{"500000-800000", 500000, 800000, true},
		{"800000-1000000", 800000, 1000000, true},
		{"1000000-", 1000000, 0, true},
		{"10-50", 10, 50, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			min, max, ok := parseRange(tc.in)
			if min != tc.min || max != tc.max || ok != tc.ok {
				t.Errorf("parseRange(%q) = (%d, %d, %v), want (%d, %d, %v)",
					tc.in, min, max, ok, tc.min, tc.max, tc.ok)
			}
		})
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"go", []string{"go"}},
		{"go,postgres", []string{"go", "postgres"}},
		{" go , postgres ,", []string{"go", "postgres"}},
	}

	for _, tc := range tests {
		if got := splitCSV(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitCSV(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
