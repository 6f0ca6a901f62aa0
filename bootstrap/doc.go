// Package bootstrap runs an inlined metadata package from Go.
//
// The inliner embeds the wasm in the package's loader module as base64.
// A Loader reads that payload back, instantiates it on wazero with the
// Binding's host functions registered under the binding module name, and
// hands the instance to the Binding. Init is single-flight:
//
//	l, err := bootstrap.LoadFile("pkg/merkleized_metadata_sys.js", binding, nil)
//	if err != nil {
//	    return err
//	}
//	defer l.Close(ctx)
//	if err := l.Init(ctx); err != nil {
//	    return err
//	}
//
// Cell is the underlying primitive and can be used on its own.
package bootstrap
