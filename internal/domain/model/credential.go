package model

// PublicKey is a repository's Actions secrets public key. Key holds the raw
// Curve25519 bytes decoded from the API's base64 representation; KeyID is the
// opaque identifier that must accompany any value sealed with it.
type PublicKey struct {
	KeyID string
	Key   [32]byte
}

// SealedSecret is a credential encrypted to a repository's public key, ready to
// be stored under Name. EncryptedValue is the base64 (standard encoding) of the
// sealed-box ciphertext.
type SealedSecret struct {
	Name           string
	KeyID          string
	EncryptedValue string
}
