package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// artifactSalt is a fixed application salt for deterministic artifact
// digests. The digested values are high-entropy random tokens, so the
// salt only namespaces the digest, it does not need to be secret.
const artifactSalt = "ssogate-artifact-v1"

// CryptoRandomBytes generates cryptographically secure random bytes
func CryptoRandomBytes(length int64) ([]byte, error) {
	buf := make([]byte, length)
	_, err := rand.Read(buf)
	return buf, err
}

// CryptoRandomString generates a random hex string for salts
func CryptoRandomString(length int) (string, error) {
	bytes, err := CryptoRandomBytes(int64((length + 1) / 2))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:length], nil
}

// CryptoRandomToken generates an unguessable base64url token of the
// given byte length. Used for authorization codes and refresh tokens.
func CryptoRandomToken(length int64) (string, error) {
	buf, err := CryptoRandomBytes(length)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ArtifactDigest returns the PBKDF2 digest of a presented code or token
// value. Artifacts are stored keyed by this digest so the raw secret
// never touches the database.
func ArtifactDigest(value string) string {
	hash := pbkdf2.Key([]byte(value), []byte(artifactSalt), 10000, 50, sha256.New)
	return hex.EncodeToString(hash)
}

// SHA256Hex returns the SHA-256 hash of s as a lowercase hex string.
// Intended for use with high-entropy, unguessable values (e.g., randomly
// generated tokens); for such inputs, a salt is not required for security.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
