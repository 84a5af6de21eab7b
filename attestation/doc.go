/*
Package attestation adapts hardware attestation sources behind a single
Channel interface used by identity provisioning.

A channel is asked twice per provisioning cycle: a probe call with a
one-byte buffer learns which technology is present and how many bytes of
sealed key material (if any) it promises, and a second call with a
buffer of the promised size fetches the bytes. This two-phase protocol
exists because evidence length is not known a priori.

Three technologies are modelled:

  - SEV pre-launch attestation with secret injection (SevChannel) — the
    only channel that can currently report recoverable key material.
  - The SGX/TDX quote family (SgxChannel) — produces opaque quote
    evidence; a key recovery path over this channel is still pending its
    own sealing mechanism.
  - No attestation (NoneChannel) — the stub for bare hosts and tests.

Channel errors always mean "no key available". Callers fall back to
fresh key generation and never treat a channel failure as fatal.
*/
package attestation
