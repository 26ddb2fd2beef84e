package vtype

import (
	"fmt"
	"os"
)

// Trace, when set, makes FitsIn log every top-level subtype check it's
// asked to decide (SPEC_FULL.md §1 "trace_fits_in" config setting) —
// useful when a match/switch exhaustiveness error doesn't look right
// and you want to see which singles the oracle actually rejected.
var Trace bool

func traceFitsIn(t, rhs Type, uncovered []Single, info *Info) {
	if !Trace {
		return
	}
	if len(uncovered) == 0 {
		fmt.Fprintf(os.Stderr, "fits_in: %s fits in %s\n", t.String(info), rhs.String(info))
		return
	}
	fmt.Fprintf(os.Stderr, "fits_in: %s does NOT fit in %s (uncovered: %s)\n", t.String(info), rhs.String(info), Type{Singles: uncovered}.String(info))
}
