package identity

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"log/slog"

	"github.com/keepldr/keepldr/attestation"
)

const (
	// freshKeyBits is the modulus size used when generating a fresh key.
	freshKeyBits = 2048

	// maxRecoverableKeyLength bounds the expected key length reported by
	// the attestation channel to a single byte of magnitude. Longer
	// reports are treated as not recoverable.
	maxRecoverableKeyLength = 255
)

// ProvisionKey produces the service's private key. It first asks the
// attestation channel whether previously sealed key material can be
// recovered; on any failure along that path it generates a fresh
// RSA-2048 key pair. Fresh generation is a path choice, not an error:
// the only error this function can return is an entropy failure during
// generation itself.
func ProvisionKey(ch attestation.Channel, log *slog.Logger) (crypto.Signer, error) {
	if key := recoverExistingKey(ch, log); key != nil {
		log.Info("Recovered identity key from attestation channel")
		return key, nil
	}

	log.Info("Generating fresh identity key", "bits", freshKeyBits)
	key, err := rsa.GenerateKey(rand.Reader, freshKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generating identity key: %w", err)
	}
	return key, nil
}

// recoverExistingKey runs the probe-then-fetch protocol against the
// attestation channel. It returns nil whenever anything along the way
// says no: channel error, non-SEV technology, zero or oversized
// expected length, or key bytes that do not parse as DER.
func recoverExistingKey(ch attestation.Channel, log *slog.Logger) crypto.Signer {
	probe := make([]byte, 1)
	res, err := ch.Attest(nil, probe)
	if err != nil {
		log.Debug("Attestation probe failed, falling back to fresh key", "err", err)
		return nil
	}

	var expected uint32
	switch res.Tech {
	case attestation.TechSev:
		expected = res.ExpectedKeyLength
	case attestation.TechSgx:
		// Quote-family channels carry no sealed key material yet.
		expected = 0
	case attestation.TechNone:
		expected = 0
	}

	if expected == 0 || expected > maxRecoverableKeyLength {
		log.Debug("No recoverable key material", "tech", res.Tech.String(), "expectedKeyLength", expected)
		return nil
	}

	keyBytes := make([]byte, expected)
	if _, err := ch.Attest(nil, keyBytes); err != nil {
		log.Debug("Attestation fetch failed, falling back to fresh key", "err", err)
		return nil
	}

	key, err := parseDERKey(keyBytes)
	if err != nil {
		log.Debug("Recovered bytes did not parse as a private key", "err", err)
		return nil
	}
	return key
}

func parseDERKey(der []byte) (crypto.Signer, error) {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("unsupported key type %T", key)
		}
		return signer, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("parsing private key DER: %w", err)
	}
	return key, nil
}
