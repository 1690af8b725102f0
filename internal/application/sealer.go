package application

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/box"

	"github.com/ericfisherdev/forgekit/internal/domain/model"
)

// SealValue encrypts plaintext to key with an anonymous sealed box
// (X25519 + XSalsa20-Poly1305 under a fresh ephemeral key pair) and returns the
// base64 ciphertext. Only the holder of the matching private key can open it.
// Output is randomized: sealing the same value twice yields different ciphertexts.
func SealValue(plaintext []byte, key model.PublicKey) (string, error) {
	return sealValue(rand.Reader, plaintext, key)
}

func sealValue(random io.Reader, plaintext []byte, key model.PublicKey) (string, error) {
	sealed, err := box.SealAnonymous(nil, plaintext, &key.Key, random)
	if err != nil {
		return "", fmt.Errorf("sealing value: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}
