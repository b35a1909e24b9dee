package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type Format string

const (
	FormatJSON   Format = "json"
	FormatText   Format = "text"
	FormatPretty Format = "pretty"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	case "pretty":
		return FormatPretty, nil
	default:
		return "", fmt.Errorf("invalid format: %s (valid: json, text, pretty)", s)
	}
}

// Renderer prints a list of rows in one of the output formats.
type Renderer[T any] struct {
	Data       []T
	TextFormat func(T) string
	// Headers and Row describe the pretty table.
	Headers []string
	Row     func(T) []string
}

func (r Renderer[T]) Render(format Format) (string, error) {
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(r.Data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	case FormatText:
		lines := make([]string, 0, len(r.Data))
		for _, item := range r.Data {
			lines = append(lines, r.TextFormat(item))
		}
		return strings.Join(lines, "\n"), nil
	case FormatPretty:
		t := makeTable().Headers(r.Headers...)
		for _, item := range r.Data {
			t.Row(r.Row(item)...)
		}
		return t.Render(), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

var (
	tableStyle  = lipgloss.NewStyle().PaddingRight(1)
	headerStyle = tableStyle.Bold(true)
	errorStyle  = tableStyle.Foreground(lipgloss.Color("196"))
)

func makeTable() *table.Table {
	return table.New().
		Width(120).
		Wrap(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return tableStyle
		})
}
