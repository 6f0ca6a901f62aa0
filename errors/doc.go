// Package errors provides structured error types for the merkleized-metadata module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the failing Step, the File it touched, a Detail message and
// the Cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseInline, errors.KindIO).
//		Step("read-payload").
//		File("pkg/merkleized_metadata_sys_bg.wasm").
//		Cause(err).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotConsumed(errors.PhaseDecode, "OpaqueMetadata", 3)
//	err := errors.BadMagic(0x6174656d, got)
//
// AttemptsError reports an ordered list of alternatives that all failed, such as
// the envelope shapes tried by the metadata decoder.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
