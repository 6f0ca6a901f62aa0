package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/merkleized-metadata/metadata"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type field struct {
	label string
	value string
}

func describe(md *metadata.RuntimeMetadata) []field {
	rec := md.Record
	return []field{
		{"shape", md.Shape.String()},
		{"magic", fmt.Sprintf("%#x", rec.Magic)},
		{"version", fmt.Sprintf("V%d", rec.Version)},
		{"payload", fmt.Sprintf("%d bytes", len(rec.Payload))},
		{"record", fmt.Sprintf("%d bytes", len(rec.Encode()))},
	}
}

func renderReport(fields []field, styled bool) string {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.label))
	}

	var b strings.Builder
	if styled {
		b.WriteString(titleStyle.Render("Runtime metadata"))
		b.WriteString("\n")
	}
	for _, f := range fields {
		label := fmt.Sprintf("%-*s", width+1, f.label+":")
		if styled {
			b.WriteString(labelStyle.Render(label))
			b.WriteString(" ")
			b.WriteString(valueStyle.Render(f.value))
		} else {
			b.WriteString(label)
			b.WriteString(" ")
			b.WriteString(f.value)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func rewrapHex(md *metadata.RuntimeMetadata, shape metadata.Shape) string {
	return "0x" + hex.EncodeToString(metadata.Encode(md.Record, shape))
}
