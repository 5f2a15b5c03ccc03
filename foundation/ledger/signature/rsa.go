package signature

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
)

// defaultRSABits is the key size used when RSA.Bits is not set.
const defaultRSABits = 2048

// RSA implements the Scheme interface using RSA PKCS #1 v1.5 signatures
// over a SHA-256 digest.
type RSA struct {
	Bits int
}

// Name returns the name of the scheme.
func (RSA) Name() string {
	return "rsa"
}

// GenerateKey constructs a new random private key.
func (r RSA) GenerateKey() (PrivateKey, error) {
	bits := r.Bits
	if bits == 0 {
		bits = defaultRSABits
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}

	return RSAKey{key: key}, nil
}

// Verify checks the signature was produced over the data by the private key
// associated with the hex encoded PKIX public key.
func (RSA) Verify(publicKey string, data []byte, sig []byte) error {
	der, err := hex.DecodeString(publicKey)
	if err != nil {
		return fmt.Errorf("%w: decoding public key: %s", ErrInvalidSignature, err)
	}

	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return fmt.Errorf("%w: parsing public key: %s", ErrInvalidSignature, err)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: public key is not rsa", ErrInvalidSignature)
	}

	digest := sha256.Sum256(data)
	if err := rsa.VerifyPKCS1v15(rsaPub, crypto.SHA256, digest[:], sig); err != nil {
		return ErrInvalidSignature
	}

	return nil
}

// =============================================================================

// RSAKey is an RSA private key that implements the PrivateKey interface.
type RSAKey struct {
	key *rsa.PrivateKey
}

// PublicKey returns the hex encoded PKIX form of the public key.
func (k RSAKey) PublicKey() string {
	der, err := x509.MarshalPKIXPublicKey(&k.key.PublicKey)
	if err != nil {
		return ""
	}

	return hex.EncodeToString(der)
}

// Sign produces a PKCS #1 v1.5 signature of the SHA-256 digest of the data.
func (k RSAKey) Sign(data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	return rsa.SignPKCS1v15(rand.Reader, k.key, crypto.SHA256, digest[:])
}
