package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tetratelabs/wazero/api"

	mmerrors "github.com/wippyai/merkleized-metadata/errors"
	"github.com/wippyai/merkleized-metadata/inline"
	"github.com/wippyai/merkleized-metadata/internal/wasmtest"
)

const (
	testBinding = "./merkleized_metadata_sys_bg.js"
	testExport  = "generate_metadata_digest"
	testImport  = "__wbindgen_throw"
)

// guestModule imports one host function from module and exports a
// function that calls it.
func guestModule(module string) []byte {
	b := wasmtest.NewBuilder()
	sig := b.FuncType(nil, nil)
	host := b.ImportFunc(module, testImport, sig)
	fn := b.Func(sig, []byte{wasmtest.OpCall, byte(host)})
	b.ExportFunc(testExport, fn)
	b.Memory(1, "memory")
	return b.Encode()
}

type countingBinding struct {
	FuncBinding
	setErr   error
	mod      api.Module
	sets     atomic.Int32
	hostHits atomic.Int32
}

func newCountingBinding() *countingBinding {
	cb := &countingBinding{}
	cb.Funcs = []HostFunc{{
		Name: testImport,
		Fn: func(context.Context, api.Module, []uint64) {
			cb.hostHits.Add(1)
		},
	}}
	cb.OnSet = func(_ context.Context, mod api.Module) error {
		cb.sets.Add(1)
		cb.mod = mod
		return cb.setErr
	}
	return cb
}

func TestLoaderInitOnce(t *testing.T) {
	ctx := context.Background()
	cb := newCountingBinding()
	l := NewLoader(inline.EncodePayload(guestModule(testBinding)), cb, nil)
	defer l.Close(ctx)

	if _, err := l.Module(); err == nil {
		t.Error("Module before Init should fail")
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Init(ctx); err != nil {
				t.Errorf("Init: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := cb.sets.Load(); n != 1 {
		t.Fatalf("SetWasm called %d times, want 1", n)
	}

	mod, err := l.Module()
	if err != nil {
		t.Fatalf("Module: %v", err)
	}
	if mod != cb.mod {
		t.Error("binding received a different instance")
	}

	fn := mod.ExportedFunction(testExport)
	if fn == nil {
		t.Fatalf("export %s missing", testExport)
	}
	if _, err := fn.Call(ctx); err != nil {
		t.Fatalf("call: %v", err)
	}
	if n := cb.hostHits.Load(); n != 1 {
		t.Errorf("host function hit %d times, want 1", n)
	}
}

func TestLoaderErrorMemoized(t *testing.T) {
	ctx := context.Background()
	cb := newCountingBinding()
	cb.setErr = errors.New("glue rejected instance")
	l := NewLoader(inline.EncodePayload(guestModule(testBinding)), cb, nil)
	defer l.Close(ctx)

	first := l.Init(ctx)
	second := l.Init(ctx)
	if first == nil || second == nil {
		t.Fatal("expected errors")
	}
	if first != second {
		t.Error("second Init should return the memoized error")
	}
	if !errors.Is(first, cb.setErr) {
		t.Errorf("err = %v, want cause %v", first, cb.setErr)
	}
	if n := cb.sets.Load(); n != 1 {
		t.Errorf("SetWasm called %d times, want 1", n)
	}
	if _, err := l.Module(); err == nil {
		t.Error("Module after failed Init should fail")
	}
}

func TestLoaderInitErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		cfg     *Config
		phase   mmerrors.Phase
		kind    mmerrors.Kind
	}{
		{
			name:    "bad base64",
			payload: "@@@",
			phase:   mmerrors.PhaseLoad,
			kind:    mmerrors.KindInvalidData,
		},
		{
			name:    "not wasm",
			payload: inline.EncodePayload([]byte("not wasm")),
			phase:   mmerrors.PhaseRuntime,
			kind:    mmerrors.KindInstantiation,
		},
		{
			name:    "unresolved import",
			payload: inline.EncodePayload(guestModule("env")),
			phase:   mmerrors.PhaseRuntime,
			kind:    mmerrors.KindInstantiation,
		},
		{
			name:    "binding module renamed",
			payload: inline.EncodePayload(guestModule(testBinding)),
			cfg:     &Config{BindingModule: "./other_bg.js"},
			phase:   mmerrors.PhaseRuntime,
			kind:    mmerrors.KindInstantiation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			l := NewLoader(tt.payload, newCountingBinding(), tt.cfg)
			defer l.Close(ctx)

			err := l.Init(ctx)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, &mmerrors.Error{Phase: tt.phase, Kind: tt.kind}) {
				t.Errorf("err = %v, want %s/%s", err, tt.phase, tt.kind)
			}
		})
	}
}

func TestLoaderNilBinding(t *testing.T) {
	l := NewLoader(inline.EncodePayload(guestModule(testBinding)), nil, nil)
	err := l.Init(context.Background())
	if !errors.Is(err, &mmerrors.Error{Phase: mmerrors.PhaseRuntime, Kind: mmerrors.KindInvalidInput}) {
		t.Errorf("err = %v", err)
	}
}

func TestLoaderFromInlinedPackage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	layout := inline.DefaultLayout()

	payload := guestModule(layout.BindingSpecifier())
	files := map[string][]byte{
		layout.Loader():       []byte("export * from \"./merkleized_metadata_sys_bg.js\";\n"),
		layout.Types():        []byte("export function generate_metadata_digest(metadata: string): string;\n"),
		layout.Payload():      payload,
		layout.PayloadTypes(): []byte("export const memory: WebAssembly.Memory;\n"),
		layout.Binding():      []byte("export function __wbg_set_wasm(val) {}\n"),
		layout.Manifest():     []byte(`{"name": "merkleized-metadata-sys"}`),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := inline.Run(dir); err != nil {
		t.Fatalf("inline: %v", err)
	}

	cb := newCountingBinding()
	l, err := LoadFile(filepath.Join(dir, layout.Loader()), cb, &Config{MemoryLimitPages: 16})
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	defer l.Close(ctx)

	if s := l.State(); s != StateNotStarted {
		t.Errorf("state before Init = %s", s)
	}
	if err := l.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s := l.State(); s != StateDone {
		t.Errorf("state after Init = %s", s)
	}

	mod, err := l.Module()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mod.ExportedFunction(testExport).Call(ctx); err != nil {
		t.Fatalf("call: %v", err)
	}
	if cb.hostHits.Load() != 1 {
		t.Error("host function not reached through the inlined payload")
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "missing.js"), nil, nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}

	plain := filepath.Join(dir, "plain.js")
	if err := os.WriteFile(plain, []byte("export {};\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(plain, nil, nil); err == nil {
		t.Error("expected error for loader without payload")
	}
}

func TestLoaderClose(t *testing.T) {
	ctx := context.Background()
	l := NewLoader(inline.EncodePayload(guestModule(testBinding)), newCountingBinding(), nil)
	if err := l.Close(ctx); err != nil {
		t.Fatalf("Close before Init: %v", err)
	}
	if err := l.Init(ctx); err == nil {
		t.Error("Init after Close should fail")
	}
	if err := l.Close(ctx); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
