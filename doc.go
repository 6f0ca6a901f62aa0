// Package merkleizedmetadata holds the Go side of the merkleized metadata
// bindings: decoding runtime metadata in whatever envelope a node or tool
// produced, the digest engine boundary, and the tooling that ships the
// wasm bindings as a single self-contained module.
//
// # Packages
//
//	merkleizedmetadata/
//	├── metadata/        Envelope detection and the canonical metadata record
//	├── digest/          Engine boundary, metadata digest and proof values
//	├── scale/           SCALE codec primitives
//	├── inline/          Embeds a wasm-bindgen payload into its JS loader
//	├── bootstrap/       Single-flight instantiation of an inlined payload on wazero
//	├── wasm/            Core wasm header, import and export inspection
//	├── errors/          Structured error types
//	└── cmd/
//	    ├── inline-wasm/ CLI for inline
//	    └── metadata/    CLI for inspecting and re-wrapping metadata
//
// # Decoding metadata
//
// Metadata arrives as Option<OpaqueMetadata> from the versioned runtime
// call, as OpaqueMetadata from the legacy RPC, or as a bare
// RuntimeMetadataPrefixed. FromHex accepts all three:
//
//	md, err := metadata.FromHex(hexFromNode)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(md.Shape, md.Version())
//
// # Inlining the bindings
//
//	if err := inline.Run("pkg"); err != nil {
//	    log.Fatal(err)
//	}
//
// After the rewrite the package's entry module exports init(), which
// instantiates the embedded wasm once no matter how many callers race on
// it. bootstrap.Loader gives Go hosts the same contract.
//
// # Errors
//
// Errors are *errors.Error values with a Phase and Kind, so callers can
// match them with errors.Is:
//
//	if errors.Is(err, &errs.Error{Phase: errs.PhaseValidate, Kind: errs.KindBadMagic}) {
//	    // not runtime metadata
//	}
package merkleizedmetadata
