package isa

import (
	"fmt"
	"strings"
)

// PipelinePrinter renders a TraceEvent stream into the teacher debug
// monitor's per-cycle trace line format: a bracketed phase tag
// followed by the event's detail, one line per event.
type PipelinePrinter struct{}

func (PipelinePrinter) Render(events []TraceEvent) string {
	var sb strings.Builder
	for i, ev := range events {
		if i > 0 {
			sb.WriteByte('\n')
		}
		switch ev.Kind {
		case EventFetch:
			fmt.Fprintf(&sb, "[Fetch] addr=%#x", ev.Value)
		case EventRegisterRead:
			fmt.Fprintf(&sb, "[ Read] %s=%#x", ev.Register, ev.Value)
		case EventRegisterWrite:
			fmt.Fprintf(&sb, "[Write] %s=%#x", ev.Register, ev.Value)
		case EventHostOp:
			fmt.Fprintf(&sb, "[IntOp] %s(%#x, %#x)=%#x", ev.HostOp, operandAt(ev.Operands, 0), operandAt(ev.Operands, 1), ev.Result)
		}
	}
	return sb.String()
}

func operandAt(ops []uint64, i int) uint64 {
	if i < 0 || i >= len(ops) {
		return 0
	}
	return ops[i]
}
