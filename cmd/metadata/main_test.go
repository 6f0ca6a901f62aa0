package main

import (
	"encoding/hex"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/merkleized-metadata/metadata"
)

func testRecord() *metadata.Prefixed {
	return &metadata.Prefixed{Magic: metadata.Magic, Version: 15, Payload: []byte{1, 2, 3, 4}}
}

func TestFromFileContents(t *testing.T) {
	raw := metadata.Encode(testRecord(), metadata.ShapeOpaque)

	tests := []struct {
		name string
		data []byte
	}{
		{"hex", []byte(hex.EncodeToString(raw))},
		{"hex with prefix and newline", []byte("0x" + hex.EncodeToString(raw) + "\n")},
		{"raw bytes", raw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := fromFileContents(tt.data)
			if err != nil {
				t.Fatal(err)
			}
			if md.Shape != metadata.ShapeOpaque {
				t.Errorf("shape = %s", md.Shape)
			}
			if md.Version() != 15 {
				t.Errorf("version = %d", md.Version())
			}
		})
	}
}

func TestLoadConflictingSources(t *testing.T) {
	if _, err := load(options{hex: "00", file: "x"}, strings.NewReader("")); err == nil {
		t.Error("expected error for --hex with --file")
	}
}

func TestLoadStdin(t *testing.T) {
	raw := testRecord().Encode()
	md, err := load(options{}, strings.NewReader("0x"+hex.EncodeToString(raw)+"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if md.Shape != metadata.ShapePrefixed {
		t.Errorf("shape = %s", md.Shape)
	}
}

func TestRenderReportPlain(t *testing.T) {
	md := &metadata.RuntimeMetadata{Record: testRecord(), Shape: metadata.ShapeOptionOpaque}
	out := renderReport(describe(md), false)

	for _, want := range []string{
		"shape:   Option<OpaqueMetadata>",
		"magic:   0x6174656d",
		"version: V15",
		"payload: 4 bytes",
		"record:  9 bytes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRewrapHex(t *testing.T) {
	md := &metadata.RuntimeMetadata{Record: testRecord(), Shape: metadata.ShapePrefixed}
	for _, shape := range metadata.Shapes {
		got, err := metadata.FromHex(rewrapHex(md, shape))
		if err != nil {
			t.Fatalf("%s: %v", shape, err)
		}
		if got.Shape != shape {
			t.Errorf("rewrapped as %s, decoded as %s", shape, got.Shape)
		}
	}
}

func TestInteractiveDecode(t *testing.T) {
	m := newInteractiveModel()
	m.input.SetValue("0x" + hex.EncodeToString(testRecord().Encode()))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should start decoding")
	}
	m.Update(cmd())

	if m.state != stateShowResult || m.err != nil || m.md == nil {
		t.Fatalf("state=%d err=%v", m.state, m.err)
	}
	if !strings.Contains(m.View(), "RuntimeMetadataPrefixed") {
		t.Error("view should show the decoded shape")
	}

	for i := range metadata.Shapes {
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		if m.rewrap != i {
			t.Errorf("rewrap = %d, want %d", m.rewrap, i)
		}
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.rewrap != -1 {
		t.Errorf("rewrap should cycle back to off, got %d", m.rewrap)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateInput || m.input.Value() != "" {
		t.Error("esc should return to an empty input")
	}
}

func TestInteractiveDecodeError(t *testing.T) {
	m := newInteractiveModel()
	m.input.SetValue("zz")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(cmd())
	if m.err == nil {
		t.Fatal("expected decode error")
	}
	if !strings.Contains(m.View(), "Error:") {
		t.Error("view should show the error")
	}
}
