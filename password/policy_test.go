package password

import (
	"strings"
	"testing"
)

func TestPolicyShortCircuitsWithSpecificReasons(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name     string
		password string
		wantPart string
	}{
		{"too short", "Ab1!x", "at least 12 characters"},
		{"no uppercase", "abcdefgh1234!", "uppercase letter"},
		{"no digit", "Abcdefghijkl!", "digit"},
		{"no special", "Abcdefghijkl1", "special character"},
		{"guessable", "Password123!", "predictable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := policy.Validate(tc.password)
			if ok {
				t.Fatalf("expected %q to fail validation", tc.password)
			}
			if reason == "" || !strings.Contains(reason, tc.wantPart) {
				t.Fatalf("expected reason containing %q, got %q", tc.wantPart, reason)
			}
		})
	}
}

func TestPolicyAcceptsStrongPassword(t *testing.T) {
	policy := DefaultPolicy()

	for _, password := range []string{
		"Str0ng!Passw0rd123",
		"C0mplex&Unrelated-Phrase9",
		"xK#9mQ2vL!pR7wTz",
	} {
		ok, reason := policy.Validate(password)
		if !ok {
			t.Fatalf("expected %q to pass, got reason %q", password, reason)
		}
	}
}

func TestEstimateEntropyDiscountsCommonStems(t *testing.T) {
	strong := EstimateEntropy("xK#9mQ2vL!pR7wTz")
	weak := EstimateEntropy("Password123!")

	if strong <= weak {
		t.Fatalf("expected random password to score above stem-based one (%.1f vs %.1f)", strong, weak)
	}
	if weak >= 60 {
		t.Fatalf("expected Password123! below 60 bits, got %.1f", weak)
	}

	// The leetspeak fold must catch substituted stems too.
	if got := EstimateEntropy("P@ssw0rd1234"); got >= 60 {
		t.Fatalf("expected leet variant below 60 bits, got %.1f", got)
	}
}

func TestEstimateEntropyDiscountsRunsAndSequences(t *testing.T) {
	repeated := EstimateEntropy("aaaaaaaaaaaaaaaa")
	varied := EstimateEntropy("kmqvwrtzpbdfghjn")

	if repeated >= varied {
		t.Fatalf("expected repeated run to score below varied text (%.1f vs %.1f)", repeated, varied)
	}

	if EstimateEntropy("") != 0 {
		t.Fatal("expected zero entropy for empty input")
	}
}
