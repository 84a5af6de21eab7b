package attestation

// NoneChannel is the stub channel for hosts without any attestation
// hardware. It always reports that nothing is recoverable.
type NoneChannel struct{}

// Attest reports TechNone with no recoverable key material.
func (c *NoneChannel) Attest(evidence []byte, out []byte) (Result, error) {
	return Result{Tech: TechNone}, nil
}
