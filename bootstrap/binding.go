package bootstrap

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Binding is the Go side of a wasm-bindgen glue module. It provides the
// host functions the wasm imports and receives the instance once it is
// running.
type Binding interface {
	// Register adds the binding's host functions to b. The host module is
	// instantiated under the configured binding module name.
	Register(b wazero.HostModuleBuilder)

	// SetWasm hands the instantiated module to the binding.
	SetWasm(ctx context.Context, mod api.Module) error
}

// HostFunc is a raw host function exported by a FuncBinding.
type HostFunc struct {
	Fn      api.GoModuleFunc
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// FuncBinding is a Binding assembled from a list of host functions.
type FuncBinding struct {
	// OnSet, if set, is called with the instantiated module.
	OnSet func(ctx context.Context, mod api.Module) error
	Funcs []HostFunc
}

// Register implements Binding.
func (fb *FuncBinding) Register(b wazero.HostModuleBuilder) {
	for _, f := range fb.Funcs {
		b.NewFunctionBuilder().
			WithGoModuleFunction(f.Fn, f.Params, f.Results).
			WithName(f.Name).
			Export(f.Name)
	}
}

// SetWasm implements Binding.
func (fb *FuncBinding) SetWasm(ctx context.Context, mod api.Module) error {
	if fb.OnSet == nil {
		return nil
	}
	return fb.OnSet(ctx, mod)
}
