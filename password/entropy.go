package password

import (
	"math"
	"strings"
)

// Character pool sizes per class for the entropy model.
const (
	poolLower   = 26
	poolUpper   = 26
	poolDigit   = 10
	poolSpecial = 33
)

// commonStems are lowercase fragments that dominate breached-password lists.
// An occurrence collapses the real guess space far below the charset model,
// so the longest matched stem is discounted from the estimate.
var commonStems = []string{
	"password", "passwort", "qwerty", "letmein", "welcome", "iloveyou",
	"sunshine", "princess", "football", "baseball", "superman", "batman",
	"dragon", "monkey", "master", "shadow", "abc123", "123456", "654321",
	"admin", "secret", "login", "trustno",
}

// unleet folds the usual digit/symbol substitutions back to letters before
// stem matching, so "Passw0rd" is caught as "password".
var unleet = strings.NewReplacer(
	"@", "a", "4", "a", "3", "e", "1", "i", "!", "i", "0", "o", "$", "s", "5", "s", "7", "t",
)

// EstimateEntropy scores password strength in bits: a charset-pool model over
// an effective length that discounts repeated runs and straight sequences,
// minus a penalty for known common stems. It is a coarse estimator meant to
// reject guessable passwords that pass the mechanical rules, not a cracker
// simulation.
func EstimateEntropy(password string) float64 {
	if password == "" {
		return 0
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	pool := 0
	if hasLower {
		pool += poolLower
	}
	if hasUpper {
		pool += poolUpper
	}
	if hasDigit {
		pool += poolDigit
	}
	if hasSpecial {
		pool += poolSpecial
	}

	perChar := math.Log2(float64(pool))
	bits := effectiveLength(password) * perChar

	lowered := strings.ToLower(password)
	folded := unleet.Replace(lowered)
	longest := 0
	for _, stem := range commonStems {
		if len(stem) <= longest {
			continue
		}
		if strings.Contains(lowered, stem) || strings.Contains(folded, stem) {
			longest = len(stem)
		}
	}
	if longest > 0 {
		bits -= float64(longest) * perChar * 0.75
	}

	if bits < 0 {
		return 0
	}
	return bits
}

// effectiveLength counts the first two characters of a repeated run or a
// straight ascending/descending sequence at full weight and the rest at half,
// so "aaaaaa" and "123456" stop accumulating strength.
func effectiveLength(password string) float64 {
	runes := []rune(password)
	length := 1.0
	runLen := 1
	seqLen := 1

	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]

		if cur == prev {
			runLen++
		} else {
			runLen = 1
		}
		if cur == prev+1 || cur == prev-1 {
			seqLen++
		} else {
			seqLen = 1
		}

		if runLen > 2 || seqLen > 2 {
			length += 0.5
		} else {
			length++
		}
	}
	return length
}
