// Package inline collapses a wasm-bindgen bundler build into one
// self-contained module.
//
// wasm-bindgen writes the compiled wasm next to a JS loader that expects
// the host to fetch and instantiate it. Inline embeds the wasm in the
// loader as base64 and replaces the loader with one that exports a
// memoized init():
//
//	pkg/
//	  merkleized_metadata_sys.js          rewritten: embeds wasm, exports init()
//	  merkleized_metadata_sys.d.ts        appended: init(): Promise<void>
//	  merkleized_metadata_sys_bg.js       untouched binding glue
//	  merkleized_metadata_sys_bg.wasm     deleted
//	  merkleized_metadata_sys_bg.wasm.d.ts deleted (extended variant)
//	  package.json                        "type": "module", "main" set (extended variant)
//
// Usage:
//
//	if err := inline.Run("pkg"); err != nil {
//	    log.Fatal(err)
//	}
//
// The rewrite is not transactional. Errors name the step that failed;
// earlier steps stay applied.
package inline
