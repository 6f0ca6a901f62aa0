// Package wasmtest writes small WebAssembly core modules for tests.
package wasmtest

import (
	"encoding/binary"

	"github.com/wippyai/merkleized-metadata/wasm"
)

// Opcodes used by Builder callers to write small function bodies.
const (
	OpCall byte = 0x10
	OpDrop byte = 0x1a
	OpI32  byte = 0x41 // i32.const
	OpEnd  byte = 0x0b
)

// Value types for Builder signatures.
const (
	ValI32 byte = 0x7f
	ValI64 byte = 0x7e
)

const funcTypeByte byte = 0x60

type funcType struct {
	params  []byte
	results []byte
}

type funcBody struct {
	code    []byte
	typeIdx uint32
}

type export struct {
	name string
	kind byte
	idx  uint32
}

type importFunc struct {
	module  string
	name    string
	typeIdx uint32
}

type custom struct {
	name string
	data []byte
}

// Builder assembles a small core module. Imports must be added before
// functions so the function index space lines up.
type Builder struct {
	types    []funcType
	imports  []importFunc
	funcs    []funcBody
	exports  []export
	customs  []custom
	memories []uint32
}

// NewBuilder creates an empty module builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// FuncType adds a function signature and returns its type index.
func (b *Builder) FuncType(params, results []byte) uint32 {
	b.types = append(b.types, funcType{params: params, results: results})
	return uint32(len(b.types) - 1)
}

// ImportFunc adds a function import and returns its function index.
func (b *Builder) ImportFunc(module, name string, typeIdx uint32) uint32 {
	b.imports = append(b.imports, importFunc{module: module, name: name, typeIdx: typeIdx})
	return uint32(len(b.imports) - 1)
}

// Func adds a function whose body is code (without locals or the final
// end opcode) and returns its function index.
func (b *Builder) Func(typeIdx uint32, code []byte) uint32 {
	b.funcs = append(b.funcs, funcBody{typeIdx: typeIdx, code: code})
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

// ExportFunc exports function idx under name.
func (b *Builder) ExportFunc(name string, idx uint32) {
	b.exports = append(b.exports, export{name: name, kind: wasm.KindFunc, idx: idx})
}

// Memory adds a memory with the given minimum page count and exports it
// under name when name is non-empty.
func (b *Builder) Memory(minPages uint32, name string) {
	b.memories = append(b.memories, minPages)
	if name != "" {
		b.exports = append(b.exports, export{name: name, kind: wasm.KindMemory, idx: uint32(len(b.memories) - 1)})
	}
}

// Custom adds a custom section.
func (b *Builder) Custom(name string, data []byte) {
	b.customs = append(b.customs, custom{name: name, data: data})
}

// Encode returns the module binary.
func (b *Builder) Encode() []byte {
	out := binary.LittleEndian.AppendUint32(nil, wasm.Magic)
	out = binary.LittleEndian.AppendUint32(out, wasm.Version)

	if len(b.types) > 0 {
		sec := appendU32(nil, uint32(len(b.types)))
		for _, t := range b.types {
			sec = append(sec, funcTypeByte)
			sec = appendU32(sec, uint32(len(t.params)))
			sec = append(sec, t.params...)
			sec = appendU32(sec, uint32(len(t.results)))
			sec = append(sec, t.results...)
		}
		out = appendSection(out, wasm.SectionType, sec)
	}

	if len(b.imports) > 0 {
		sec := appendU32(nil, uint32(len(b.imports)))
		for _, imp := range b.imports {
			sec = appendName(sec, imp.module)
			sec = appendName(sec, imp.name)
			sec = append(sec, wasm.KindFunc)
			sec = appendU32(sec, imp.typeIdx)
		}
		out = appendSection(out, wasm.SectionImport, sec)
	}

	if len(b.funcs) > 0 {
		sec := appendU32(nil, uint32(len(b.funcs)))
		for _, f := range b.funcs {
			sec = appendU32(sec, f.typeIdx)
		}
		out = appendSection(out, wasm.SectionFunction, sec)
	}

	if len(b.memories) > 0 {
		sec := appendU32(nil, uint32(len(b.memories)))
		for _, minPages := range b.memories {
			sec = append(sec, 0x00)
			sec = appendU32(sec, minPages)
		}
		out = appendSection(out, wasm.SectionMemory, sec)
	}

	if len(b.exports) > 0 {
		sec := appendU32(nil, uint32(len(b.exports)))
		for _, e := range b.exports {
			sec = appendName(sec, e.name)
			sec = append(sec, e.kind)
			sec = appendU32(sec, e.idx)
		}
		out = appendSection(out, wasm.SectionExport, sec)
	}

	if len(b.funcs) > 0 {
		sec := appendU32(nil, uint32(len(b.funcs)))
		for _, f := range b.funcs {
			body := append([]byte{0x00}, f.code...) // no locals
			body = append(body, OpEnd)
			sec = appendU32(sec, uint32(len(body)))
			sec = append(sec, body...)
		}
		out = appendSection(out, wasm.SectionCode, sec)
	}

	for _, c := range b.customs {
		sec := appendName(nil, c.name)
		sec = append(sec, c.data...)
		out = appendSection(out, wasm.SectionCustom, sec)
	}

	return out
}

// AppendU32 appends v as unsigned LEB128, for writing instruction immediates.
func AppendU32(buf []byte, v uint32) []byte {
	return appendU32(buf, v)
}

func appendU32(buf []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if v == 0 {
			return buf
		}
	}
}

func appendName(buf []byte, s string) []byte {
	buf = appendU32(buf, uint32(len(s)))
	return append(buf, s...)
}

func appendSection(buf []byte, id byte, content []byte) []byte {
	buf = append(buf, id)
	buf = appendU32(buf, uint32(len(content)))
	return append(buf, content...)
}
