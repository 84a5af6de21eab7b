package envelope

import "github.com/fxamacker/cbor/v2"

// CommsComplete signals the outcome of a workload delivery exchange.
//
// The server's success path terminates the process before any reply can
// be written, so this marker currently only travels client-side; it is
// kept on the wire format in case the surrounding system ever starts
// expecting an application-level reply.
type CommsComplete string

const (
	CommsSuccess CommsComplete = "Success"
	CommsFailure CommsComplete = "Failure"
)

// EncodeCommsComplete serializes the marker to CBOR.
func EncodeCommsComplete(c CommsComplete) ([]byte, error) {
	return cbor.Marshal(c)
}

// DecodeCommsComplete parses a CBOR-encoded exchange outcome marker.
func DecodeCommsComplete(data []byte) (CommsComplete, error) {
	var c CommsComplete
	if err := cbor.Unmarshal(data, &c); err != nil {
		return "", NewRejection(RejectionDiagnostic)
	}
	switch c {
	case CommsSuccess, CommsFailure:
		return c, nil
	default:
		return "", NewRejection(RejectionDiagnostic)
	}
}
