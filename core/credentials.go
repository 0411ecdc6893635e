package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const defaultCredentialTokenBytes = 16

// RandomCredentialIssuer draws username and password independently from a
// cryptographically strong source and hashes passwords with bcrypt, which
// salts per call.
type RandomCredentialIssuer struct {
	// TokenBytes is the raw length of each generated token before hex
	// encoding. Zero means defaultCredentialTokenBytes.
	TokenBytes int
	// HashCost is the bcrypt cost. Zero means bcrypt.DefaultCost.
	HashCost int
}

func (issuer RandomCredentialIssuer) Generate() (BindingCredential, error) {
	username, err := issuer.randomToken()
	if err != nil {
		return BindingCredential{}, fmt.Errorf("core: generate username: %w", err)
	}
	password, err := issuer.randomToken()
	if err != nil {
		return BindingCredential{}, fmt.Errorf("core: generate password: %w", err)
	}
	return BindingCredential{
		Username: username,
		Password: password,
	}, nil
}

func (issuer RandomCredentialIssuer) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("core: plaintext password is required")
	}
	cost := issuer.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("core: hash password: %w", err)
	}
	return string(hashed), nil
}

func (RandomCredentialIssuer) Verify(plaintext string, passwordHash string) bool {
	if plaintext == "" || passwordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(plaintext)) == nil
}

func (issuer RandomCredentialIssuer) randomToken() (string, error) {
	size := issuer.TokenBytes
	if size <= 0 {
		size = defaultCredentialTokenBytes
	}
	raw := make([]byte, size)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

var _ CredentialIssuer = RandomCredentialIssuer{}
