package symauth

import (
	"fmt"
	"strings"
)

// HexDump formats "p" for debug output. The first "f" bytes go on the line
// with "msg", the rest follows in rows of 32 bytes split into two groups of
// 16. A separator line ends the dump.
func HexDump(f int, msg string, p []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ", msg)
	for ; f > 0 && len(p) > 0; f-- {
		fmt.Fprintf(&b, "%02x ", p[0])
		p = p[1:]
	}
	b.WriteString("\n")
	nl := true
	for i, c := range p {
		fmt.Fprintf(&b, "%02x ", c)
		nl = false
		if (i+1)%16 == 0 {
			b.WriteString("  ")
		}
		if (i+1)%32 == 0 {
			b.WriteString("\n")
			nl = true
		}
	}
	if !nl {
		b.WriteString("\n")
	}
	b.WriteString("----------------\n")
	return b.String()
}
