// Package bridge is the C-callable surface of the pubky SDK expressed in
// plain Go. cmd/pubkyffi converts C arguments into calls on this package
// and converts the returned envelopes back into C structs.
//
// # Handles
//
// Every SDK object crossing the boundary is registered and exposed as a
// Handle: a 64-bit value whose top byte records the object kind. The zero
// Handle is null. Constructors return a fresh handle owned by the caller;
// the matching *Free function releases it. Freeing null, an unknown handle
// or an already released handle is a no-op. Using a released handle yields
// CodeInvalidInput; with PUBKY_FFI_DEBUG_HANDLES set the message says
// "used after release".
//
// # Results
//
// Fallible operations return Result, BytesResult or HTTPResponse. Code 0
// means success and the error is empty; any other code carries a non-empty
// error and no data. Absent objects are successes with empty data.
//
// # Execution
//
// Operations that reach the network run on a process-wide Executor that is
// built on first use. The calling goroutine blocks until the operation
// finishes. Panics are recovered and reported as CodeBuild.
package bridge
