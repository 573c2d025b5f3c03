package utils

import "testing"

func TestParseAmount_AcceptsFormattedStrings(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"20000", "20000"},
		{"20,000", "20000"},
		{"$ 1,500", "1500"},
		{"USD 85", "85"},
		{"usd 85.50", "85.5"},
		{"-120.50", "-120.5"},
		{"  $-1,000  ", "-1000"},
	}
	for _, tc := range cases {
		d := ParseAmount(tc.in)
		if d.String() != tc.expected {
			t.Fatalf("ParseAmount(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestParseAmount_InvalidInputIsZero(t *testing.T) {
	cases := []string{"", "   ", "abc", "$", "USD", "--", "1.2.3"}
	for _, in := range cases {
		d := ParseAmount(in)
		if !d.IsZero() {
			t.Fatalf("ParseAmount(%q) expected 0, got %s", in, d.String())
		}
	}
}

func TestParseDecimal_RejectsInvalidInput(t *testing.T) {
	if _, err := ParseDecimal(""); err == nil {
		t.Fatalf("ParseDecimal(\"\") expected error")
	}
	if _, err := ParseDecimal("abc"); err == nil {
		t.Fatalf("ParseDecimal(\"abc\") expected error")
	}
	d, err := ParseDecimal(" 123.45 ")
	if err != nil {
		t.Fatalf("ParseDecimal(\" 123.45 \") error: %v", err)
	}
	if d.String() != "123.45" {
		t.Fatalf("ParseDecimal(\" 123.45 \") expected 123.45, got %s", d.String())
	}
}
