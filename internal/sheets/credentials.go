package sheets

import (
	"crypto/rsa"
	"encoding/base64"
	"strings"

	"webhook_relay_backend/platform/apperr"

	"github.com/golang-jwt/jwt/v5"
)

// KeyEncoding names the form a configured private key was supplied in.
type KeyEncoding int

const (
	// KeyEncodingBase64 is a base64-encoded PEM block.
	KeyEncodingBase64 KeyEncoding = iota
	// KeyEncodingQuoted is a PEM block wrapped in quotes, usually with escaped newlines.
	KeyEncodingQuoted
	// KeyEncodingEscapedNewlines is a PEM block whose newlines were written as `\n`.
	KeyEncodingEscapedNewlines
	// KeyEncodingRaw is a PEM block used exactly as given.
	KeyEncodingRaw
)

func (e KeyEncoding) String() string {
	switch e {
	case KeyEncodingBase64:
		return "base64"
	case KeyEncodingQuoted:
		return "quoted"
	case KeyEncodingEscapedNewlines:
		return "escaped_newlines"
	default:
		return "raw"
	}
}

type keyCandidate struct {
	encoding KeyEncoding
	decode   func(string) (string, bool)
}

// keyCandidates is the preference order; the first candidate that parses wins.
var keyCandidates = []keyCandidate{
	{KeyEncodingBase64, decodeBase64Key},
	{KeyEncodingQuoted, stripQuotes},
	{KeyEncodingEscapedNewlines, unescapeNewlines},
	{KeyEncodingRaw, func(v string) (string, bool) { return v, true }},
}

// PrivateKey is a service-account key in PEM form together with its parsed value.
type PrivateKey struct {
	PEM      []byte
	Key      *rsa.PrivateKey
	Encoding KeyEncoding
}

// ResolvePrivateKey decodes a service-account private key supplied in any of
// the accepted encodings: base64, quoted, escaped newlines, or as-is.
func ResolvePrivateKey(value string) (PrivateKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return PrivateKey{}, apperr.Config([]string{envPrivateKey})
	}

	var lastErr error
	for _, candidate := range keyCandidates {
		pem, ok := candidate.decode(value)
		if !ok {
			continue
		}
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pem))
		if err == nil {
			return PrivateKey{PEM: []byte(pem), Key: key, Encoding: candidate.encoding}, nil
		}
		lastErr = err
	}

	return PrivateKey{}, &apperr.Error{
		Kind:    apperr.KindConfig,
		Message: envPrivateKey + " is not a usable RSA private key",
		Err:     lastErr,
		Details: []string{envPrivateKey},
	}
}

func decodeBase64Key(value string) (string, bool) {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", false
	}
	pem, _ := unescapeNewlines(string(decoded))
	return pem, strings.Contains(pem, "-----BEGIN")
}

func stripQuotes(value string) (string, bool) {
	if len(value) < 2 {
		return "", false
	}
	first, last := value[0], value[len(value)-1]
	if first != last || (first != '"' && first != '\'') {
		return "", false
	}
	pem, _ := unescapeNewlines(value[1 : len(value)-1])
	return pem, true
}

func unescapeNewlines(value string) (string, bool) {
	if !strings.Contains(value, `\n`) {
		return value, false
	}
	return strings.ReplaceAll(value, `\n`, "\n"), true
}
