package inline

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/merkleized-metadata/errors"
	"github.com/wippyai/merkleized-metadata/wasm"
)

// Step names, in execution order. They appear in errors and logs.
const (
	StepReadPayload        = "read-payload"
	StepInspectPayload     = "inspect-payload"
	StepWriteLoader        = "write-loader"
	StepDeletePayload      = "delete-payload"
	StepDeletePayloadTypes = "delete-payload-types"
	StepAppendTypes        = "append-types"
	StepPatchManifest      = "patch-manifest"
)

// Manifest keys forced by the patch step.
const (
	ManifestKeyType = "type"
	ManifestKeyMain = "main"

	moduleTypeESM = "module"
)

// Inliner turns a wasm-bindgen output directory into a single module
// with the wasm embedded as base64.
type Inliner struct {
	Layout  Layout
	Variant Variant
	// Verify rejects a payload that is not a wasm module, or that imports
	// from modules other than the binding module, before anything is
	// written.
	Verify bool
}

// New returns an Inliner for the default layout and the extended
// variant, with payload verification on.
func New() *Inliner {
	return &Inliner{
		Layout:  DefaultLayout(),
		Variant: VariantExtended,
		Verify:  true,
	}
}

// Run inlines dir with the defaults of New.
func Run(dir string) error {
	return New().Inline(dir)
}

// Inline rewrites the package in dir. Steps run in order and the first
// failure stops the run. Steps already done are not undone, so a failure
// after the loader is written leaves dir partially converted.
func (in *Inliner) Inline(dir string) error {
	l := in.Layout
	log := Logger().With(zap.String("dir", dir), zap.String("variant", in.Variant.String()))

	payloadPath := In(dir, l.Payload())
	log.Debug("reading payload", zap.String("step", StepReadPayload), zap.String("file", payloadPath))
	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		return errors.IO(errors.PhaseInline, StepReadPayload, payloadPath, err)
	}

	if err := in.inspect(payload, payloadPath, log); err != nil {
		return err
	}

	text := EncodePayload(payload)

	loaderPath := In(dir, l.Loader())
	log.Debug("writing loader", zap.String("step", StepWriteLoader), zap.String("file", loaderPath))
	src, err := RenderLoader(l.BindingSpecifier(), text)
	if err != nil {
		return errors.New(errors.PhaseInline, errors.KindInvalidData).
			Step(StepWriteLoader).File(loaderPath).Detail("render loader template").Cause(err).Build()
	}
	if err := os.WriteFile(loaderPath, src, 0o644); err != nil {
		return errors.IO(errors.PhaseInline, StepWriteLoader, loaderPath, err)
	}

	log.Debug("deleting payload", zap.String("step", StepDeletePayload))
	if err := os.Remove(payloadPath); err != nil {
		return errors.IO(errors.PhaseInline, StepDeletePayload, payloadPath, err)
	}

	if in.Variant == VariantExtended {
		payloadTypesPath := In(dir, l.PayloadTypes())
		log.Debug("deleting payload declarations", zap.String("step", StepDeletePayloadTypes))
		if err := os.Remove(payloadTypesPath); err != nil {
			return errors.IO(errors.PhaseInline, StepDeletePayloadTypes, payloadTypesPath, err)
		}
	}

	typesPath := In(dir, l.Types())
	log.Debug("appending init declaration", zap.String("step", StepAppendTypes))
	if err := appendFile(typesPath, initDeclaration); err != nil {
		return errors.IO(errors.PhaseInline, StepAppendTypes, typesPath, err)
	}

	if in.Variant == VariantExtended {
		if err := in.patchManifest(In(dir, l.Manifest()), log); err != nil {
			return err
		}
	}

	log.Info("inlined wasm payload",
		zap.Int("wasm_bytes", len(payload)),
		zap.Int("loader_bytes", len(src)),
	)
	return nil
}

func (in *Inliner) inspect(payload []byte, path string, log *zap.Logger) error {
	mod, err := wasm.Inspect(payload)
	if err != nil {
		if in.Verify {
			return errors.New(errors.PhaseInline, errors.KindInvalidData).
				Step(StepInspectPayload).File(path).Detail("payload is not a wasm module").Cause(err).Build()
		}
		log.Warn("payload is not a wasm module", zap.Error(err))
		return nil
	}

	want := in.Layout.BindingSpecifier()
	for _, name := range mod.ImportModules() {
		if name == want {
			continue
		}
		if in.Verify {
			return errors.New(errors.PhaseInline, errors.KindInvalidData).
				Step(StepInspectPayload).File(path).
				Detail("payload imports from %q, but the loader only provides %q", name, want).
				Build()
		}
		log.Warn("payload imports from a module the loader does not provide", zap.String("module", name))
	}

	log.Debug("inspected payload",
		zap.String("step", StepInspectPayload),
		zap.Int("imports", len(mod.Imports)),
		zap.Int("exports", len(mod.Exports)),
	)
	return nil
}

func (in *Inliner) patchManifest(path string, log *zap.Logger) error {
	log.Debug("patching manifest", zap.String("step", StepPatchManifest), zap.String("file", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.IO(errors.PhaseInline, StepPatchManifest, path, err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return errors.New(errors.PhaseInline, errors.KindInvalidData).
			Step(StepPatchManifest).File(path).Cause(err).Build()
	}

	err = m.Merge([]string{ManifestKeyType, ManifestKeyMain}, map[string]any{
		ManifestKeyType: moduleTypeESM,
		ManifestKeyMain: in.Layout.Loader(),
	})
	if err != nil {
		return errors.New(errors.PhaseInline, errors.KindInvalidData).
			Step(StepPatchManifest).File(path).Cause(err).Build()
	}

	if err := os.WriteFile(path, m.Marshal(), 0o644); err != nil {
		return errors.IO(errors.PhaseInline, StepPatchManifest, path, err)
	}
	return nil
}

// appendFile appends s to an existing file. A missing file is an error.
func appendFile(path, s string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(s); err != nil {
		f.Close()
		return fmt.Errorf("append: %w", err)
	}
	return f.Close()
}
