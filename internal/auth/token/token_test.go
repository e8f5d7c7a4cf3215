package token

import "testing"

func TestGenerateRandomTokenIsWellFormed(t *testing.T) {
	raw, err := GenerateRandomToken(DecisionTokenBytes)
	if err != nil {
		t.Fatalf("GenerateRandomToken returned error: %v", err)
	}
	if len(raw) != 43 {
		t.Fatalf("expected 43 characters, got %d", len(raw))
	}
	if !IsWellFormed(raw, DecisionTokenBytes) {
		t.Fatalf("expected %q to be well formed", raw)
	}

	other, _ := GenerateRandomToken(DecisionTokenBytes)
	if other == raw {
		t.Fatal("expected two tokens to differ")
	}
}

func TestIsWellFormedRejects(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"short":     "abc",
		"padding":   "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
		"bad chars": "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA+/",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if IsWellFormed(raw, DecisionTokenBytes) {
				t.Fatalf("expected %q to be rejected", raw)
			}
		})
	}
}

func TestHashSHA256IsStableHex(t *testing.T) {
	got := HashSHA256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
