package httpserver

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/keepldr/keepldr/envelope"
	"github.com/keepldr/keepldr/workload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRunner records Run invocations and returns a scripted outcome.
type stubRunner struct {
	calls    int
	payloads [][]byte
	args     []string
	env      map[string]string
	result   *workload.Result
	err      error
}

func (s *stubRunner) Run(ctx context.Context, payload []byte, args []string, env map[string]string) (*workload.Result, error) {
	s.calls++
	s.payloads = append(s.payloads, payload)
	s.args = args
	s.env = env
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// exitRecorder captures the exit codes the dispatcher would terminate
// the process with.
type exitRecorder struct {
	codes []int
}

func (e *exitRecorder) exit(code int) {
	e.codes = append(e.codes, code)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(runner workload.Runner) (*Handler, *exitRecorder) {
	rec := &exitRecorder{}
	dispatcher := NewDispatcher(runner, testLogger(), rec.exit)
	return NewHandler(dispatcher, testLogger()), rec
}

func TestHandleWorkloadRejectsMalformedBody(t *testing.T) {
	runner := &stubRunner{}
	handler, rec := newTestHandler(runner)

	req := httptest.NewRequest(http.MethodPost, "/workload", strings.NewReader("junk that is not cbor"))
	w := httptest.NewRecorder()
	handler.HandleWorkload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), envelope.RejectionDiagnostic)
	assert.Zero(t, runner.calls, "malformed input must never reach the runner")
	assert.Empty(t, rec.codes, "malformed input must not terminate the process")
}

func TestHandleWorkloadDispatchSuccess(t *testing.T) {
	payload := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	runner := &stubRunner{result: &workload.Result{Values: []uint64{1}}}
	handler, rec := newTestHandler(runner)

	body, err := envelope.Encode(&envelope.Workload{HumanReadableInfo: "t", WasmBinary: payload})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/workload", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.HandleWorkload(w, req)

	require.Equal(t, 1, runner.calls)
	assert.Equal(t, payload, runner.payloads[0])
	assert.Equal(t, []string{""}, runner.args, "single empty-string placeholder argument")
	assert.NotEmpty(t, runner.env, "inherited environment must be forwarded")
	assert.Equal(t, []int{0}, rec.codes)
}

func TestHandleWorkloadDispatchFailure(t *testing.T) {
	runner := &stubRunner{err: assert.AnError}
	handler, rec := newTestHandler(runner)

	body, err := envelope.Encode(&envelope.Workload{HumanReadableInfo: "t", WasmBinary: []byte{1, 2, 3}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/workload", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.HandleWorkload(w, req)

	assert.Equal(t, []int{1}, rec.codes, "execution failure maps to exit code 1, not an abort")
}

func TestHandleWorkloadRunsWasmPayload(t *testing.T) {
	// Full decode-and-execute path with the real WASI runner and a
	// module returning the integer 1.
	return1Wasm := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f,
		0x03, 0x02, 0x01, 0x00,
		0x07, 0x0a, 0x01, 0x06, 0x5f, 0x73, 0x74, 0x61, 0x72, 0x74, 0x00, 0x00,
		0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x01, 0x0b,
	}
	handler, rec := newTestHandler(workload.NewWasmRunner(workload.WasmConfig{}))

	body, err := envelope.Encode(&envelope.Workload{HumanReadableInfo: "return 1", WasmBinary: return1Wasm})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/workload", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.HandleWorkload(w, req)

	assert.Equal(t, []int{0}, rec.codes)
}
