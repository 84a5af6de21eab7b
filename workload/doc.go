/*
Package workload runs the decoded binary payload.

The Runner interface is the boundary to the execution subsystem; the
keep core hands it payload bytes, positional arguments, and the
inherited environment and only observes the outcome. WasmRunner is the
in-process implementation: a wazero WASI sandbox with no filesystem and
no network, bounded (optionally) by a memory ceiling and a run deadline.

A run blocks its caller for its full duration. That is acceptable here
because the process hosts exactly one workload and exits as soon as the
run completes.
*/
package workload
