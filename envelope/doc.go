// Package envelope defines the CBOR wire format of the workload
// delivery exchange: the Workload envelope posted to the keep and the
// CommsComplete outcome marker, plus the typed Rejection returned for
// malformed input.
package envelope
