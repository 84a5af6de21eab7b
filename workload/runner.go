package workload

import (
	"context"
	"fmt"
	"strings"
)

// Result is what an executed workload produced: the typed return values
// of its entry function and whatever it wrote to stdout. It exists to
// be logged; nothing in the keep interprets it.
type Result struct {
	Values []uint64
	Output []byte
}

func (r *Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "values=%v", r.Values)
	if len(r.Output) > 0 {
		fmt.Fprintf(&b, " output=%q", r.Output)
	}
	return b.String()
}

// Runner is the execution subsystem collaborator. It receives the
// opaque payload bytes, positional arguments, and environment variables
// and runs the workload to completion.
type Runner interface {
	Run(ctx context.Context, payload []byte, args []string, env map[string]string) (*Result, error)
}
