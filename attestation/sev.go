package attestation

import (
	"fmt"
	"os"
)

// DefaultSevSecretPath is where the kernel exposes secrets injected
// during SEV pre-launch attestation.
const DefaultSevSecretPath = "/sys/kernel/security/secrets/coco/keepldr-identity-key"

// SevChannel recovers key material sealed into the guest during SEV
// pre-launch attestation. The hypervisor injects the secret before
// boot; the kernel exposes it as a read-only file inside the guest.
type SevChannel struct {
	// SecretPath overrides DefaultSevSecretPath when non-empty.
	SecretPath string
}

func (c *SevChannel) path() string {
	if c.SecretPath != "" {
		return c.SecretPath
	}
	return DefaultSevSecretPath
}

// Attest reports the sealed secret. A probe call with an undersized out
// buffer only learns the expected length; a call with a buffer at least
// as large as the secret also receives a copy of its bytes.
func (c *SevChannel) Attest(evidence []byte, out []byte) (Result, error) {
	blob, err := os.ReadFile(c.path())
	if err != nil {
		return Result{}, fmt.Errorf("reading sev injected secret: %w", err)
	}
	if len(blob) == 0 {
		return Result{Tech: TechSev}, nil
	}

	if len(out) >= len(blob) {
		copy(out, blob)
	}
	return Result{Tech: TechSev, ExpectedKeyLength: uint32(len(blob))}, nil
}
