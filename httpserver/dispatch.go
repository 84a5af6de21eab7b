package httpserver

import (
	"context"
	"log/slog"

	"github.com/keepldr/keepldr/metrics"
	"github.com/keepldr/keepldr/workload"
)

// Dispatcher hands a decoded payload to the execution subsystem and
// terminates the process with a status code reflecting the outcome.
type Dispatcher struct {
	runner workload.Runner
	log    *slog.Logger
	exit   func(int)
}

// NewDispatcher creates a dispatcher. exit is the process termination
// function, os.Exit in production and a recorder in tests.
func NewDispatcher(runner workload.Runner, log *slog.Logger, exit func(int)) *Dispatcher {
	return &Dispatcher{
		runner: runner,
		log:    log,
		exit:   exit,
	}
}

// Dispatch runs the payload with a single empty-string positional
// argument placeholder and the given environment, then terminates the
// process: exit code 0 with the result logged on success, exit code 1
// with the error logged on failure. Execution failure is an exit path,
// never an uncontrolled abort.
func (d *Dispatcher) Dispatch(payload []byte, env map[string]string) {
	result, err := d.runner.Run(context.Background(), payload, []string{""}, env)
	if err != nil {
		metrics.DispatchFailures.Inc()
		d.log.Error("Workload execution failed", "err", err)
		d.exit(1)
		return
	}

	metrics.DispatchSuccesses.Inc()
	d.log.Info("got result", "result", result.String())
	d.exit(0)
}
