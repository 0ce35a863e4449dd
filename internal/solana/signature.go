package solana

import (
	"crypto/ed25519"
	"encoding/base64"

	"github.com/mr-tron/base58"
)

const (
	PublicKeyLength = ed25519.PublicKeySize // 32
	SignatureLength = ed25519.SignatureSize // 64

	// Base58 length bounds for a 32-byte Solana public key.
	MinAddressLength = 32
	MaxAddressLength = 44
)

// IsValidAddressLength is the cheap pre-check applied before any decoding.
func IsValidAddressLength(address string) bool {
	return len(address) >= MinAddressLength && len(address) <= MaxAddressLength
}

// VerifySignature checks an Ed25519 signature over the UTF-8 message bytes.
// The public key is base58-encoded, the signature base64-encoded. Every
// decode error, length mismatch, or signature mismatch returns false; nothing
// escapes this boundary as an error.
func VerifySignature(publicKeyBase58, signatureBase64, message string) bool {
	pubKey, err := base58.Decode(publicKeyBase58)
	if err != nil || len(pubKey) != PublicKeyLength {
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(signatureBase64)
	if err != nil || len(sig) != SignatureLength {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pubKey), []byte(message), sig)
}
