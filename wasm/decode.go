package wasm

import (
	"errors"
	"fmt"
)

// Parsing errors returned by Inspect.
var (
	ErrInvalidMagic   = errors.New("invalid wasm magic number")
	ErrInvalidVersion = errors.New("invalid wasm version")
)

// Import is one entry of the import section.
type Import struct {
	Module string
	Name   string
	Kind   byte
}

// Export is one entry of the export section.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// Module is the interface of a core module: what it imports and exports.
// Function bodies and other sections are skipped.
type Module struct {
	Imports        []Import
	Exports        []Export
	CustomSections []string
	Size           int
}

// IsModule reports whether data starts with the wasm magic and version.
func IsModule(data []byte) bool {
	r := newReader(data)
	magic, err := r.readU32LE()
	if err != nil || magic != Magic {
		return false
	}
	version, err := r.readU32LE()
	return err == nil && version == Version
}

// Inspect parses the header and section layout of a core module and
// decodes its import and export sections.
func Inspect(data []byte) (*Module, error) {
	r := newReader(data)

	magic, err := r.readU32LE()
	if err != nil {
		return nil, r.parseError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	version, err := r.readU32LE()
	if err != nil {
		return nil, r.parseError("header", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	m := &Module{Size: len(data)}

	// Track section ordering using canonical order, not section IDs
	var lastSectionOrder int

	for r.remaining() > 0 {
		sectionID, err := r.readByte()
		if err != nil {
			return nil, r.parseError("section header", err)
		}

		if sectionID != SectionCustom {
			order := sectionOrder(sectionID)
			if order == 0 {
				return nil, fmt.Errorf("unknown section ID: 0x%02x", sectionID)
			}
			if order <= lastSectionOrder {
				return nil, fmt.Errorf("section %d appears out of order", sectionID)
			}
			lastSectionOrder = order
		}

		sectionSize, err := r.readU32()
		if err != nil {
			return nil, r.parseError("section size", err)
		}

		sectionData, err := r.readBytes(int(sectionSize))
		if err != nil {
			return nil, r.parseError("section data", err)
		}

		sr := newReader(sectionData)

		switch sectionID {
		case SectionCustom:
			name, err := sr.readName()
			if err != nil {
				return nil, fmt.Errorf("custom section: %w", err)
			}
			m.CustomSections = append(m.CustomSections, name)
		case SectionImport:
			if err := parseImportSection(sr, m); err != nil {
				return nil, fmt.Errorf("import section: %w", err)
			}
		case SectionExport:
			if err := parseExportSection(sr, m); err != nil {
				return nil, fmt.Errorf("export section: %w", err)
			}
		}
	}

	return m, nil
}

// sectionOrder returns the canonical ordering for a section ID, or 0
// for an unknown ID.
func sectionOrder(id byte) int {
	switch id {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionTable:
		return 4
	case SectionMemory:
		return 5
	case SectionTag:
		return 6 // Tag comes after Memory, before Global
	case SectionGlobal:
		return 7
	case SectionExport:
		return 8
	case SectionStart:
		return 9
	case SectionElement:
		return 10
	case SectionDataCount:
		return 11 // DataCount must come before Code
	case SectionCode:
		return 12
	case SectionData:
		return 13
	default:
		return 0
	}
}

// Smallest encodings: two empty names, a kind and a one-byte index for an
// import; one empty name, a kind and an index for an export.
const (
	minImportSize = 4
	minExportSize = 3
)

func parseImportSection(r *reader, m *Module) error {
	count, err := r.readCount(minImportSize)
	if err != nil {
		return err
	}
	m.Imports = make([]Import, 0, count)
	for i := uint32(0); i < count; i++ {
		module, err := r.readName()
		if err != nil {
			return err
		}
		name, err := r.readName()
		if err != nil {
			return err
		}
		kind, err := r.readByte()
		if err != nil {
			return err
		}

		switch kind {
		case KindFunc:
			err = r.skipLEB(5)
		case KindTable:
			err = skipTableType(r)
		case KindMemory:
			err = skipLimits(r)
		case KindGlobal:
			err = skipGlobalType(r)
		case KindTag:
			if _, err = r.readByte(); err == nil {
				err = r.skipLEB(5)
			}
		default:
			return fmt.Errorf("invalid import kind: 0x%02x", kind)
		}
		if err != nil {
			return fmt.Errorf("import %s.%s: %w", module, name, err)
		}

		m.Imports = append(m.Imports, Import{Module: module, Name: name, Kind: kind})
	}
	return nil
}

func parseExportSection(r *reader, m *Module) error {
	count, err := r.readCount(minExportSize)
	if err != nil {
		return err
	}
	m.Exports = make([]Export, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.readName()
		if err != nil {
			return err
		}
		kind, err := r.readByte()
		if err != nil {
			return err
		}
		if kind > KindTag {
			return fmt.Errorf("invalid export kind: 0x%02x", kind)
		}
		idx, err := r.readU32()
		if err != nil {
			return err
		}
		m.Exports = append(m.Exports, Export{Name: name, Kind: kind, Idx: idx})
	}
	return nil
}

func skipLimits(r *reader) error {
	flags, err := r.readByte()
	if err != nil {
		return err
	}
	width := 5
	if flags&limitsMemory64 != 0 {
		width = 10
	}
	if err := r.skipLEB(width); err != nil {
		return err
	}
	if flags&limitsHasMax != 0 {
		return r.skipLEB(width)
	}
	return nil
}

func skipRefType(r *reader) error {
	b, err := r.readByte()
	if err != nil {
		return err
	}
	if b == valRefNull || b == valRef {
		return r.skipLEB(5)
	}
	return nil
}

func skipTableType(r *reader) error {
	if err := skipRefType(r); err != nil {
		return err
	}
	return skipLimits(r)
}

func skipGlobalType(r *reader) error {
	if err := skipRefType(r); err != nil {
		return err
	}
	_, err := r.readByte()
	return err
}

// ImportModules returns the distinct module names imported from, in
// first-seen order.
func (m *Module) ImportModules() []string {
	seen := make(map[string]bool)
	var out []string
	for _, imp := range m.Imports {
		if !seen[imp.Module] {
			seen[imp.Module] = true
			out = append(out, imp.Module)
		}
	}
	return out
}
