package bootstrap

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/merkleized-metadata/errors"
	"github.com/wippyai/merkleized-metadata/inline"
)

// Config holds configuration for a Loader
type Config struct {
	// BindingModule is the import module name the wasm uses for its host
	// functions. Empty means the default layout's binding specifier.
	BindingModule string

	// ModuleName names the guest instance in the runtime. Empty leaves it
	// anonymous.
	ModuleName string

	// MemoryLimitPages sets the maximum memory in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32
}

func (c *Config) bindingModule() string {
	if c == nil || c.BindingModule == "" {
		return inline.DefaultLayout().BindingSpecifier()
	}
	return c.BindingModule
}

// Loader instantiates an embedded wasm payload once, no matter how many
// goroutines call Init.
type Loader struct {
	binding Binding
	runtime wazero.Runtime
	module  api.Module
	payload string
	cfg     Config
	cell    Cell
	mu      sync.Mutex
	closed  bool
}

// NewLoader creates a loader for base64 payload text. Nothing is decoded
// until Init.
func NewLoader(payload string, binding Binding, cfg *Config) *Loader {
	l := &Loader{payload: payload, binding: binding}
	if cfg != nil {
		l.cfg = *cfg
	}
	return l
}

// LoadFile creates a loader from a loader module written by the inliner.
func LoadFile(path string, binding Binding, cfg *Config) (*Loader, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseLoad, "read-loader", path, err)
	}
	text, err := inline.EmbeddedText(src)
	if err != nil {
		return nil, err
	}
	return NewLoader(text, binding, cfg), nil
}

// Init decodes and instantiates the payload. The first call does the
// work; concurrent and later calls return its result.
func (l *Loader) Init(ctx context.Context) error {
	return l.cell.Do(ctx, l.instantiate)
}

// State reports whether Init has started or finished.
func (l *Loader) State() State {
	return l.cell.State()
}

// Module returns the guest instance after a successful Init.
func (l *Loader) Module() (api.Module, error) {
	if l.cell.State() != StateDone {
		return nil, errors.NotInitialized(errors.PhaseRuntime, "wasm module")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.module == nil {
		return nil, errors.NotInitialized(errors.PhaseRuntime, "wasm module")
	}
	return l.module, nil
}

// Close releases the runtime and everything instantiated in it.
func (l *Loader) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.module = nil
	if l.runtime == nil {
		return nil
	}
	r := l.runtime
	l.runtime = nil
	return r.Close(ctx)
}

func (l *Loader) instantiate(ctx context.Context) error {
	if l.binding == nil {
		return errors.InvalidInput(errors.PhaseRuntime, "binding is nil")
	}

	wasm, err := inline.DecodePayload(l.payload)
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "decode wasm payload")
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if l.cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(l.cfg.MemoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	mod, err := l.link(ctx, r, wasm)
	if err != nil {
		_ = r.Close(ctx)
		return err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		_ = r.Close(ctx)
		return errors.New(errors.PhaseRuntime, errors.KindInstantiation).
			Detail("loader closed during init").Build()
	}
	l.runtime = r
	l.module = mod
	l.mu.Unlock()

	Logger().Info("wasm payload instantiated",
		zap.String("binding", l.cfg.bindingModule()),
		zap.Int("wasm_bytes", len(wasm)),
	)
	return nil
}

func (l *Loader) link(ctx context.Context, r wazero.Runtime, wasm []byte) (api.Module, error) {
	name := l.cfg.bindingModule()

	hb := r.NewHostModuleBuilder(name)
	l.binding.Register(hb)
	if _, err := hb.Instantiate(ctx); err != nil {
		return nil, errors.New(errors.PhaseRuntime, errors.KindInstantiation).
			Detail("instantiate binding module %q", name).Cause(err).Build()
	}
	Logger().Debug("binding module registered", zap.String("module", name))

	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.New(errors.PhaseRuntime, errors.KindInstantiation).
			Detail("compile wasm payload").Cause(err).Build()
	}

	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(l.cfg.ModuleName))
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	if err := l.binding.SetWasm(ctx, mod); err != nil {
		return nil, errors.New(errors.PhaseRuntime, errors.KindInstantiation).
			Detail("hand instance to binding").Cause(fmt.Errorf("set wasm: %w", err)).Build()
	}
	return mod, nil
}
