// Package wasm inspects WebAssembly core module binaries.
//
// Only the module interface is decoded: the header, the section layout,
// and the import and export sections. Everything else is skipped after
// its length has been checked. This is enough to confirm that a build
// artifact really is a wasm module and to see which host modules it
// expects to be instantiated against.
//
//	data, _ := os.ReadFile("pkg/merkleized_metadata_sys_bg.wasm")
//	mod, err := wasm.Inspect(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, name := range mod.ImportModules() {
//	    fmt.Println(name) // "./merkleized_metadata_sys_bg.js"
//	}
package wasm
