//go:build (js && wasm) || wasip1

package evaluator

// On WebAssembly targets EvalMany runs scripts one after another by default.
//
// js/wasm schedules every goroutine on the single JavaScript thread, so a
// worker blocked on a channel can starve the caller that would drain it.
// wasip1 has no threads in the Go runtime either.
func init() {
	defaultConcurrency = false
}
