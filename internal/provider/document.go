package provider

import (
	"math/rand"
	"strconv"
	"strings"
)

// GenerateCPF produces a random CPF with valid check digits. It exists for
// sandbox environments where provider-side checksum validation rejects
// placeholder documents; production never calls it.
func GenerateCPF() string {
	digits := make([]int, 11)
	for i := 0; i < 9; i++ {
		digits[i] = rand.Intn(9)
	}
	digits[9] = cpfCheckDigit(digits[:9], 10)
	digits[10] = cpfCheckDigit(digits[:10], 11)

	var b strings.Builder
	for _, d := range digits {
		b.WriteString(strconv.Itoa(d))
	}
	return b.String()
}

func cpfCheckDigit(digits []int, weight int) int {
	sum := 0
	for _, d := range digits {
		sum += d * weight
		weight--
	}
	rem := sum % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

// ValidCPF verifies length and both check digits.
func ValidCPF(document string) bool {
	if len(document) != 11 {
		return false
	}
	digits := make([]int, 11)
	allEqual := true
	for i, r := range document {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
		if digits[i] != digits[0] {
			allEqual = false
		}
	}
	// Repdigit sequences pass the checksum but are not real documents.
	if allEqual {
		return false
	}
	return digits[9] == cpfCheckDigit(digits[:9], 10) &&
		digits[10] == cpfCheckDigit(digits[:10], 11)
}

// UsableDocument reports whether a stored document can be sent to the
// gateway: 11-digit CPF or 14-digit CNPJ, not the all-zero placeholder.
func UsableDocument(document string) bool {
	if document == "" || document == "00000000000" {
		return false
	}
	if len(document) != 11 && len(document) != 14 {
		return false
	}
	for _, r := range document {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// AliasEmail derives a unique variant of an email address for the bounded
// identity-collision retry, e.g. seller@mail.com -> seller+1712345@mail.com.
func AliasEmail(email string, nonce int64) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}
	return email[:at] + "+" + strconv.FormatInt(nonce, 10) + email[at:]
}
