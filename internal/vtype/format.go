package vtype

import "strings"

// String renders t the way diagnostics and `debug`/`to_string` expect
// to see it (spec §3.1 "Display", GLOSSARY "type display"): singles
// joined by " | ", sorted by nothing in particular — insertion order,
// matching the original's Vec-backed VType.
func (t Type) String(info *Info) string {
	if t.IsEmpty() {
		return "<empty>"
	}
	parts := make([]string, len(t.Singles))
	for i, s := range t.Singles {
		parts[i] = s.String(info)
	}
	return strings.Join(parts, " | ")
}

func (s Single) String(info *Info) string {
	switch s.Kind {
	case KBool:
		return "bool"
	case KInt:
		return "int"
	case KFloat:
		return "float"
	case KString:
		return "string"
	case KTuple:
		parts := make([]string, len(s.Tuple))
		for i, e := range s.Tuple {
			parts[i] = e.String(info)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KList:
		return "list<" + s.List.String(info) + ">"
	case KFunction:
		rows := make([]string, len(s.Rows))
		for i, row := range s.Rows {
			ins := make([]string, len(row.Ins))
			for j, in := range row.Ins {
				ins[j] = in.String(info)
			}
			rows[i] = "(" + strings.Join(ins, ", ") + ") -> " + row.Out.String(info)
		}
		return "fn{" + strings.Join(rows, "; ") + "}"
	case KThread:
		return "thread<" + s.Thread.String(info) + ">"
	case KReference:
		return "&" + s.Ref.String(info)
	case KEnumVariant:
		name, ok := info.EnumVariantName(s.EnumID)
		if !ok {
			name = "<unknown-enum>"
		}
		if s.EnumPayload.IsEmpty() {
			return name
		}
		return name + "(" + s.EnumPayload.String(info) + ")"
	case KCustomType:
		name, ok := info.CustomTypeName(s.CustomID)
		if !ok {
			return "<unknown-custom-type>"
		}
		return name
	default:
		return "<invalid>"
	}
}
