package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		valid bool
	}{
		{name: "double zero prefix with spaces", input: " 00 97150 1234567 ", want: "+971501234567", valid: true},
		{name: "already e164", input: "+971501234567", want: "+971501234567", valid: true},
		{name: "local uae mobile", input: "050 123 4567", want: "+971501234567", valid: true},
		{name: "punctuation", input: "+971-(50)-123.4567", want: "+971501234567", valid: true},
		{name: "too short", input: "12345", want: "12345", valid: false},
		{name: "letters", input: "call me", want: "callme", valid: false},
		{name: "blank", input: "   ", want: "", valid: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeE164(tc.input)
			if got != tc.want {
				t.Fatalf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
			}
			if IsValidE164(got) != tc.valid {
				t.Fatalf("IsValidE164(%q) = %v, want %v", got, !tc.valid, tc.valid)
			}
		})
	}
}

func TestIsValidE164Bounds(t *testing.T) {
	if !IsValidE164("12345678") {
		t.Fatal("expected 8 digits to be valid")
	}
	if IsValidE164("+1234567890123456") {
		t.Fatal("expected 16 digits to be invalid")
	}
	if IsValidE164("++971501234567") {
		t.Fatal("expected double plus to be invalid")
	}
}
