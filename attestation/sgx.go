package attestation

import (
	"fmt"

	tdx_client "github.com/google/go-tdx-guest/client"
)

// SgxChannel speaks to the SGX/TDX quote-based attestation family via
// the configfs TSM interface or the guest device. It produces opaque
// quote evidence; no sealed key material is recoverable over this
// channel yet, so its expected key length is always zero.
type SgxChannel struct{}

// Supported reports whether the host exposes a quote provider.
func (c *SgxChannel) Supported() bool {
	qp := &tdx_client.LinuxConfigFsQuoteProvider{}
	if qp.IsSupported() == nil {
		return true
	}
	qd, err := tdx_client.OpenDevice()
	if err != nil {
		return false
	}
	qd.Close()
	return true
}

// Attest fetches a raw quote over the evidence bytes. The out buffer is
// ignored: this channel never produces key material.
func (c *SgxChannel) Attest(evidence []byte, out []byte) (Result, error) {
	var reportData [64]byte
	copy(reportData[:], evidence)

	quote, err := c.rawQuote(reportData)
	if err != nil {
		return Result{}, fmt.Errorf("fetching quote: %w", err)
	}
	return Result{Tech: TechSgx, Opaque: quote}, nil
}

func (c *SgxChannel) rawQuote(reportData [64]byte) ([]byte, error) {
	qp := &tdx_client.LinuxConfigFsQuoteProvider{}
	if qp.IsSupported() == nil {
		return qp.GetRawQuote(reportData)
	}

	qd, err := tdx_client.OpenDevice()
	if err != nil {
		return nil, err
	}
	defer qd.Close()

	return tdx_client.GetRawQuote(qd, reportData)
}
