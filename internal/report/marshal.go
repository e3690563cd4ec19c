package report

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/phaseflow/phaseflow/internal/ir"
)

// Marshal serializes a report into the artifact layout documented in the
// package comment. Phase kind names originate in the host compiler, so
// they are NFC normalized at this boundary for stable artifact bytes.
func Marshal(r Report) []byte {
	var buf bytes.Buffer
	for _, k := range r.Phases {
		buf.WriteString(norm.NFC.String(string(k)))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	for _, c := range r.Cells {
		fmt.Fprintf(&buf, "%s\t%s\t%d\t%d\t%d\n",
			norm.NFC.String(string(c.Row)),
			norm.NFC.String(string(c.Col)),
			c.SeenNodes,
			c.TotalNodesInPhase,
			c.PhaseInvocations,
		)
	}
	return buf.Bytes()
}

// Parse reads an artifact back into its structured form. The returned
// report's Event is empty; callers attach the identity the artifact was
// stored under.
func Parse(data []byte) (Report, error) {
	var r Report

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	inHeader := true
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()

		if inHeader {
			if text == "" {
				inHeader = false
				continue
			}
			r.Phases = append(r.Phases, ir.PhaseKind(text))
			continue
		}

		if text == "" {
			continue // tolerate a trailing blank line
		}
		cell, err := parseCell(text)
		if err != nil {
			return Report{}, fmt.Errorf("artifact line %d: %w", line, err)
		}
		r.Cells = append(r.Cells, cell)
	}
	if err := sc.Err(); err != nil {
		return Report{}, fmt.Errorf("read artifact: %w", err)
	}
	if inHeader {
		return Report{}, fmt.Errorf("artifact has no header/body separator")
	}
	if len(r.Phases) < 2 {
		return Report{}, fmt.Errorf("artifact header is missing the sentinel phases")
	}
	return r, nil
}

// parseCell parses one tab-delimited matrix body line.
func parseCell(text string) (Cell, error) {
	fields := strings.Split(text, "\t")
	if len(fields) != 5 {
		return Cell{}, fmt.Errorf("expected 5 tab-separated fields, got %d", len(fields))
	}
	cell := Cell{
		Row: ir.PhaseKind(fields[0]),
		Col: ir.PhaseKind(fields[1]),
	}
	for i, dst := range []*uint64{&cell.SeenNodes, &cell.TotalNodesInPhase, &cell.PhaseInvocations} {
		v, err := strconv.ParseUint(fields[i+2], 10, 64)
		if err != nil {
			return Cell{}, fmt.Errorf("field %d: %w", i+3, err)
		}
		*dst = v
	}
	return cell, nil
}
