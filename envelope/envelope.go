package envelope

import (
	"github.com/fxamacker/cbor/v2"
)

// RejectionDiagnostic is the fixed diagnostic carried by every decode
// rejection. Clients receive it verbatim; it deliberately reveals
// nothing about the payload.
const RejectionDiagnostic = "payload parsing problem"

// Workload is the decoded request body: a descriptive label and the
// opaque wasm module bytes to run. The payload is validated only at the
// framing level and never interpreted here.
type Workload struct {
	HumanReadableInfo string `cbor:"human_readable_info"`
	WasmBinary        []byte `cbor:"wasm_binary"`
}

// Rejection is the typed, non-fatal error signalling a malformed
// workload envelope back through the network layer. It carries no
// recovery information.
type Rejection struct {
	details string
}

// NewRejection wraps a diagnostic message in a Rejection.
func NewRejection(msg string) *Rejection {
	return &Rejection{details: msg}
}

func (r *Rejection) Error() string {
	return r.details
}

// Encode serializes a workload envelope to its CBOR wire form.
func Encode(w *Workload) ([]byte, error) {
	return cbor.Marshal(w)
}

// Decode deserializes a request body into a Workload. On any structural
// or type mismatch it returns a *Rejection with the fixed diagnostic;
// the envelope is never partially populated and missing fields are
// never guessed.
func Decode(data []byte) (*Workload, error) {
	var fields map[string]cbor.RawMessage
	if err := cbor.Unmarshal(data, &fields); err != nil {
		return nil, NewRejection(RejectionDiagnostic)
	}

	infoRaw, ok := fields["human_readable_info"]
	if !ok {
		return nil, NewRejection(RejectionDiagnostic)
	}
	binRaw, ok := fields["wasm_binary"]
	if !ok {
		return nil, NewRejection(RejectionDiagnostic)
	}

	var w Workload
	if err := cbor.Unmarshal(infoRaw, &w.HumanReadableInfo); err != nil {
		return nil, NewRejection(RejectionDiagnostic)
	}
	if err := cbor.Unmarshal(binRaw, &w.WasmBinary); err != nil {
		return nil, NewRejection(RejectionDiagnostic)
	}
	return &w, nil
}
