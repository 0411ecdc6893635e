package core

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestRandomCredentialIssuerGenerate(t *testing.T) {
	issuer := RandomCredentialIssuer{}

	first, err := issuer.Generate()
	if err != nil {
		t.Fatalf("generate first credential: %v", err)
	}
	if len(first.Username) != defaultCredentialTokenBytes*2 {
		t.Fatalf("expected %d hex chars, got %d", defaultCredentialTokenBytes*2, len(first.Username))
	}
	if len(first.Password) != defaultCredentialTokenBytes*2 {
		t.Fatalf("expected %d hex chars, got %d", defaultCredentialTokenBytes*2, len(first.Password))
	}
	if first.Username == first.Password {
		t.Fatalf("expected independently drawn username and password")
	}

	second, err := issuer.Generate()
	if err != nil {
		t.Fatalf("generate second credential: %v", err)
	}
	if first.Username == second.Username || first.Password == second.Password {
		t.Fatalf("expected distinct tokens across calls")
	}
}

func TestRandomCredentialIssuerGenerateHonorsTokenBytes(t *testing.T) {
	issuer := RandomCredentialIssuer{TokenBytes: 8}

	credential, err := issuer.Generate()
	if err != nil {
		t.Fatalf("generate credential: %v", err)
	}
	if len(credential.Username) != 16 {
		t.Fatalf("expected 16 hex chars for 8 token bytes, got %d", len(credential.Username))
	}
}

func TestRandomCredentialIssuerHashAndVerify(t *testing.T) {
	issuer := RandomCredentialIssuer{HashCost: bcrypt.MinCost}

	hashed, err := issuer.Hash("sup3rs3cret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hashed == "sup3rs3cret" {
		t.Fatalf("expected one-way hash, got plaintext back")
	}
	if !issuer.Verify("sup3rs3cret", hashed) {
		t.Fatalf("expected matching plaintext to verify")
	}
	if issuer.Verify("wrong", hashed) {
		t.Fatalf("expected mismatched plaintext to fail verification")
	}
	if issuer.Verify("", hashed) {
		t.Fatalf("expected empty plaintext to fail verification")
	}

	again, err := issuer.Hash("sup3rs3cret")
	if err != nil {
		t.Fatalf("hash password again: %v", err)
	}
	if hashed == again {
		t.Fatalf("expected per-call salting to produce distinct hashes")
	}
}

func TestRandomCredentialIssuerHashRequiresPlaintext(t *testing.T) {
	issuer := RandomCredentialIssuer{}
	if _, err := issuer.Hash(""); err == nil {
		t.Fatalf("expected error hashing empty plaintext")
	}
}
