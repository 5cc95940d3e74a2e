package ir

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Line-quads text format: one quad per line as four whitespace-separated
// tokens (subject predicate object graph). '#' starts a comment; blank
// lines are ignored. This is the interchange format for the load command,
// harness scenarios, and the reasoner subprocess protocol.

// ParseLineQuads reads quads from the line-quads format.
func ParseLineQuads(r io.Reader) ([]Quad, error) {
	var quads []Quad
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: expected 4 fields, got %d", lineNo, len(fields))
		}
		quads = append(quads, Quad{
			Subject:   fields[0],
			Predicate: fields[1],
			Object:    fields[2],
			Graph:     fields[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read quads: %w", err)
	}
	return quads, nil
}

// FormatLineQuads renders quads in the line-quads format, one per line in
// canonical order.
func FormatLineQuads(quads []Quad) string {
	sorted := DedupeQuads(quads)
	var b strings.Builder
	for _, q := range sorted {
		b.WriteString(q.String())
		b.WriteByte('\n')
	}
	return b.String()
}
