package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	internal "github.com/diogopimentels/capicash/internal"
)

// Verifier authenticates an inbound webhook delivery before its payload is
// trusted. Implementations read credentials from headers only; the raw body
// is passed separately so signature schemes can hash the exact bytes sent.
type Verifier interface {
	Verify(r *http.Request, body []byte) error
}

// SharedSecretVerifier compares a static token carried in a request header
// against the configured webhook secret.
type SharedSecretVerifier struct {
	header string
	secret string
}

func NewSharedSecretVerifier(header, secret string) *SharedSecretVerifier {
	return &SharedSecretVerifier{header: header, secret: secret}
}

func (v *SharedSecretVerifier) Verify(r *http.Request, _ []byte) error {
	token := r.Header.Get(v.header)
	if token == "" || v.secret == "" {
		return internal.ErrInvalidSignature
	}
	if !hmac.Equal([]byte(token), []byte(v.secret)) {
		return internal.ErrInvalidSignature
	}
	return nil
}

// HMACVerifier checks an HMAC-SHA256 hex signature computed over the raw
// request body.
type HMACVerifier struct {
	header string
	secret string
}

func NewHMACVerifier(header, secret string) *HMACVerifier {
	return &HMACVerifier{header: header, secret: secret}
}

func (v *HMACVerifier) Verify(r *http.Request, body []byte) error {
	signature := r.Header.Get(v.header)
	if signature == "" || v.secret == "" {
		return internal.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return internal.ErrInvalidSignature
	}
	return nil
}
