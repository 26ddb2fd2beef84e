package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/mers/internal/vtype"
)

// String renders the cell's current value the way `debug` displays it
// (`print` matches it except that a top-level string is shown
// unquoted; spec GLOSSARY "value display"), mirroring the original's
// Display impl for VDataEnum.
func String(c *Cell, info *vtype.Info) string {
	return OperateImmutValue(c, func(d *Data) string { return d.String(info) })
}

func (d *Data) String(info *vtype.Info) string {
	switch d.Kind {
	case vtype.KBool:
		return strconv.FormatBool(d.Bool)
	case vtype.KInt:
		return strconv.Itoa(d.Int)
	case vtype.KFloat:
		return strconv.FormatFloat(d.Float, 'g', -1, 64)
	case vtype.KString:
		return `"` + d.Str + `"`
	case vtype.KTuple:
		parts := make([]string, len(d.Tuple))
		for i, c := range d.Tuple {
			parts[i] = String(c, info)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case vtype.KList:
		var b strings.Builder
		b.WriteString("[")
		for _, c := range d.List.Elems {
			b.WriteString(String(c, info))
			b.WriteString(" ")
		}
		b.WriteString("...]")
		return b.String()
	case vtype.KFunction:
		return d.Fn.Signature().String(info)
	case vtype.KThread:
		if _, ok := d.Thread.TryGet(); ok {
			return "(thread finished)"
		}
		return "(thread running)"
	case vtype.KReference:
		return "&" + String(d.Ref, info)
	case vtype.KEnumVariant:
		name, ok := info.EnumVariantName(d.EnumID)
		if !ok {
			name = fmt.Sprintf("%d", d.EnumID)
		}
		return name + ": " + String(d.EnumPayload, info)
	default:
		return "<invalid>"
	}
}
