package httpserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/keepldr/keepldr/envelope"
	"github.com/keepldr/keepldr/metrics"
)

// Handler processes the keep's single workload endpoint.
type Handler struct {
	dispatcher *Dispatcher
	log        *slog.Logger
}

// NewHandler creates the workload request handler.
func NewHandler(dispatcher *Dispatcher, log *slog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		log:        log,
	}
}

// HandleWorkload ingests one CBOR-encoded workload envelope.
//
// The body size is unbounded; receipt time is bounded by the server's
// read timeout. A malformed envelope is answered with HTTP 400 carrying
// the rejection diagnostic, and the process keeps serving. A valid
// envelope is handed to the dispatcher, which terminates the process —
// the client observes a connection reset, not a success response. Any
// code after the dispatch call only runs in tests, where termination is
// stubbed out.
func (h *Handler) HandleWorkload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Error("Failed to read workload body", "err", err)
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	metrics.WorkloadsReceived.Inc()

	wl, err := envelope.Decode(body)
	if err != nil {
		metrics.EnvelopeRejections.Inc()

		var rejection *envelope.Rejection
		if errors.As(err, &rejection) {
			h.log.Info("Rejected malformed workload envelope", "reason", rejection.Error())
			http.Error(w, rejection.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.log.Info("Received workload", "info", wl.HumanReadableInfo, "payloadBytes", len(wl.WasmBinary))
	h.dispatcher.Dispatch(wl.WasmBinary, inheritedEnv())
}

// inheritedEnv returns the full process environment, forwarded to the
// execution subsystem verbatim.
func inheritedEnv() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	return env
}
