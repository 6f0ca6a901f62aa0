package inline

import "path/filepath"

// DefaultStem is the crate stem wasm-bindgen uses for the metadata
// bindings package.
const DefaultStem = "merkleized_metadata_sys"

// ManifestName is the npm manifest file name.
const ManifestName = "package.json"

// Layout names the files of a wasm-bindgen output directory. All names
// derive from the crate stem.
type Layout struct {
	Stem string
}

// DefaultLayout returns the layout for DefaultStem.
func DefaultLayout() Layout {
	return Layout{Stem: DefaultStem}
}

// Loader is the entry module that gets rewritten.
func (l Layout) Loader() string { return l.Stem + ".js" }

// Types is the declaration file for the loader.
func (l Layout) Types() string { return l.Stem + ".d.ts" }

// Payload is the compiled wasm binary.
func (l Layout) Payload() string { return l.Stem + "_bg.wasm" }

// PayloadTypes is the declaration file for the raw wasm exports.
func (l Layout) PayloadTypes() string { return l.Stem + "_bg.wasm.d.ts" }

// Binding is the generated JS glue the wasm imports from. It is
// referenced by the loader but never modified.
func (l Layout) Binding() string { return l.Stem + "_bg.js" }

// BindingSpecifier is the relative import specifier of Binding, which is
// also the import module name the wasm uses.
func (l Layout) BindingSpecifier() string { return "./" + l.Binding() }

// Manifest is the npm manifest.
func (l Layout) Manifest() string { return ManifestName }

// In joins name onto dir.
func In(dir, name string) string {
	return filepath.Join(dir, name)
}

// Variant selects which rewrite steps run.
type Variant int

const (
	// VariantExtended also deletes the payload declarations and patches
	// the manifest. It is the default.
	VariantExtended Variant = iota
	// VariantBasic rewrites the loader and declarations only, for package
	// layouts without a manifest.
	VariantBasic
)

func (v Variant) String() string {
	switch v {
	case VariantExtended:
		return "extended"
	case VariantBasic:
		return "basic"
	default:
		return "unknown"
	}
}
