package attestation

// Tech identifies the attestation technology a channel speaks.
type Tech int

const (
	// TechNone means no hardware attestation source is present.
	TechNone Tech = iota

	// TechSev is AMD SEV pre-launch attestation with secret injection.
	// A SEV channel can report previously sealed key material.
	TechSev

	// TechSgx covers the SGX/TDX quote-based family. The channel yields
	// opaque evidence only; key recovery over this channel is not
	// implemented in this core.
	TechSgx
)

// String returns the canonical lower-case name of the technology.
func (t Tech) String() string {
	switch t {
	case TechSev:
		return "sev"
	case TechSgx:
		return "sgx"
	default:
		return "none"
	}
}

// Result is what an attestation channel asserts is recoverable.
//
// For TechSev, ExpectedKeyLength is the size in bytes of the sealed key
// material the channel can produce. For TechSgx, Opaque carries the raw
// quote. For TechNone both are zero values.
type Result struct {
	Tech              Tech
	ExpectedKeyLength uint32
	Opaque            []byte
}

// Channel is the hardware attestation adapter.
//
// Attest is called twice per provisioning cycle: once with a probe
// buffer (typically a single byte) to learn the technology and the
// expected key length, and once with a buffer sized to that length to
// fetch the actual bytes. Implementations must tolerate an undersized
// out buffer on the probe call and must not fail because of it.
//
// The channel performs no validation of the key material; it only
// reports what the attestation mechanism asserts is recoverable. Any
// error must be treated by callers as "no key available", never as
// fatal.
type Channel interface {
	Attest(evidence []byte, out []byte) (Result, error)
}
