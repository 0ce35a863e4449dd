package solana

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/mr-tron/base58"
)

func signedFixture(t *testing.T, message string) (pubKeyBase58, sigBase64 string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	sig := ed25519.Sign(priv, []byte(message))
	return base58.Encode(pub), base64.StdEncoding.EncodeToString(sig)
}

func TestVerifySignature_Valid(t *testing.T) {
	msg := "Sign this message to authenticate with WORLDBINDER.\n\nPublic Key: x\nNonce: abc\nTimestamp: now"
	pub, sig := signedFixture(t, msg)

	if !VerifySignature(pub, sig, msg) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifySignature_TamperedMessage(t *testing.T) {
	pub, sig := signedFixture(t, "original message")

	if VerifySignature(pub, sig, "original message!") {
		t.Fatal("tampered message must not verify")
	}
}

func TestVerifySignature_WrongKey(t *testing.T) {
	_, sig := signedFixture(t, "message")
	otherPub, _ := signedFixture(t, "message")

	if VerifySignature(otherPub, sig, "message") {
		t.Fatal("signature must not verify under a different key")
	}
}

func TestVerifySignature_MalformedInputs(t *testing.T) {
	msg := "message"
	pub, sig := signedFixture(t, msg)

	tests := []struct {
		name    string
		pubKey  string
		sig     string
		message string
	}{
		{"bad base58 pubkey", "0OIl-not-base58", sig, msg},
		{"short pubkey", base58.Encode([]byte{1, 2, 3}), sig, msg},
		{"bad base64 signature", pub, "%%%not-base64%%%", msg},
		{"short signature", pub, base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), msg},
		{"empty pubkey", "", sig, msg},
		{"empty signature", pub, "", msg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifySignature(tt.pubKey, tt.sig, tt.message) {
				t.Error("expected verification to fail")
			}
		})
	}
}

func TestIsValidAddressLength(t *testing.T) {
	if IsValidAddressLength("short") {
		t.Error("short address accepted")
	}
	if IsValidAddressLength("") {
		t.Error("empty address accepted")
	}
	if !IsValidAddressLength("So11111111111111111111111111111111111111112") {
		t.Error("well-formed address rejected")
	}
}
