/*
Package httpserver implements the keep's secure ingestion server.

The server terminates TLS with the attestation-gated service identity
and exposes exactly one application route, POST /workload, which accepts
a CBOR-encoded workload envelope. The first valid envelope is handed to
the dispatcher, which runs the payload and terminates the process —
exit code 0 on success, 1 on failure. This single-shot behavior is the
intended mechanism for enforcing the one-workload-per-process contract,
not a defect.

Because the process exits inside the handler, a successfully delivered
workload is never answered at the HTTP level; clients observe a
connection reset and read the outcome from the process exit code and
logs. Malformed envelopes are answered with HTTP 400 carrying the fixed
rejection diagnostic, leaving the process free to accept a corrected
retry.

Concurrent requests racing the first dispatch are implementation
defined: they are either serviced before the exit or reset by it.
Nothing may rely on either outcome.

Endpoints:

  - POST /workload - ingest one workload envelope
  - GET /livez     - liveness check
  - GET /readyz    - readiness check

A Prometheus metrics sidecar is started alongside when configured, and
pprof can be mounted under /debug for diagnostics.
*/
package httpserver
