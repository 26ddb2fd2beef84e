package library

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// Wire tags (spec §6.3): "single-byte tags (b/B = bool, i = int,
// f = float, " = string, t = tuple, l = list, R = ref, E/e = enum,
// T = thread, F = function)". Integers are big-endian fixed-width
// (usize -> u64, isize -> i64).
const (
	tagBoolFalse byte = 'b'
	tagBoolTrue  byte = 'B'
	tagInt       byte = 'i'
	tagFloat     byte = 'f'
	tagString    byte = '"'
	tagTuple     byte = 't'
	tagList      byte = 'l'
	tagRef       byte = 'R'
	tagEnum      byte = 'e'
	tagEnumNamed byte = 'E'
	tagThread    byte = 'T'
	tagFunction  byte = 'F'
)

func writeU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func writeI64(w io.Writer, v int64) error { return writeU64(w, uint64(v)) }
func readI64(r io.Reader) (int64, error) {
	u, err := readU64(r)
	return int64(u), err
}

func writeBytes(w io.Writer, data []byte) error {
	if err := writeU64(w, uint64(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	n, err := readU64(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeValue writes a value onto the wire for a RunFunction request
// or response (spec "Values ... serialize with single-byte tags").
// Custom types are not representable across the bridge (§6.3); values
// never carry one by construction (internal/value has no CustomType
// variant), so nothing special is needed to reject it here.
func EncodeValue(w io.Writer, c *value.Cell) error {
	var encErr error
	value.OperateImmut(c, func(d *value.Data) {
		encErr = encodeData(w, d)
	})
	return encErr
}

func encodeData(w io.Writer, d *value.Data) error {
	switch d.Kind {
	case vtype.KBool:
		tag := tagBoolFalse
		if d.Bool {
			tag = tagBoolTrue
		}
		_, err := w.Write([]byte{tag})
		return err
	case vtype.KInt:
		if _, err := w.Write([]byte{tagInt}); err != nil {
			return err
		}
		return writeI64(w, int64(d.Int))
	case vtype.KFloat:
		if _, err := w.Write([]byte{tagFloat}); err != nil {
			return err
		}
		return writeU64(w, math.Float64bits(d.Float))
	case vtype.KString:
		if _, err := w.Write([]byte{tagString}); err != nil {
			return err
		}
		return writeBytes(w, []byte(d.Str))
	case vtype.KTuple:
		if _, err := w.Write([]byte{tagTuple}); err != nil {
			return err
		}
		if err := writeU64(w, uint64(len(d.Tuple))); err != nil {
			return err
		}
		for _, elem := range d.Tuple {
			if err := EncodeValue(w, elem); err != nil {
				return err
			}
		}
		return nil
	case vtype.KList:
		if _, err := w.Write([]byte{tagList}); err != nil {
			return err
		}
		if err := writeU64(w, uint64(len(d.List.Elems))); err != nil {
			return err
		}
		for _, elem := range d.List.Elems {
			if err := EncodeValue(w, elem); err != nil {
				return err
			}
		}
		return nil
	case vtype.KEnumVariant:
		if _, err := w.Write([]byte{tagEnum}); err != nil {
			return err
		}
		if err := writeU64(w, uint64(d.EnumID)); err != nil {
			return err
		}
		return EncodeValue(w, d.EnumPayload)
	case vtype.KReference:
		if _, err := w.Write([]byte{tagRef}); err != nil {
			return err
		}
		return EncodeValue(w, d.Ref)
	case vtype.KFunction, vtype.KThread:
		return fmt.Errorf("library: %s values cannot cross the library bridge (spec §6.3)", d.Kind)
	default:
		return fmt.Errorf("library: unknown value kind %s", d.Kind)
	}
}

// DecodeValue reads a value off the wire (the response half of a
// RunFunction call, or an argument a library sends back for a
// callback — not used by this core, kept symmetrical with encode).
func DecodeValue(r io.Reader) (*value.Cell, error) {
	var tagBuf [1]byte
	if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
		return nil, err
	}
	switch tagBuf[0] {
	case tagBoolFalse:
		return value.NewCell(value.NewBool(false)), nil
	case tagBoolTrue:
		return value.NewCell(value.NewBool(true)), nil
	case tagInt:
		v, err := readI64(r)
		if err != nil {
			return nil, err
		}
		return value.NewCell(value.NewInt(int(v))), nil
	case tagFloat:
		bits, err := readU64(r)
		if err != nil {
			return nil, err
		}
		return value.NewCell(value.NewFloat(math.Float64frombits(bits))), nil
	case tagString:
		b, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		return value.NewCell(value.NewString(string(b))), nil
	case tagTuple:
		n, err := readU64(r)
		if err != nil {
			return nil, err
		}
		elems := make([]*value.Cell, n)
		for i := range elems {
			elems[i], err = DecodeValue(r)
			if err != nil {
				return nil, err
			}
		}
		return value.NewCell(value.NewTuple(elems...)), nil
	case tagList:
		n, err := readU64(r)
		if err != nil {
			return nil, err
		}
		elems := make([]*value.Cell, n)
		for i := range elems {
			elems[i], err = DecodeValue(r)
			if err != nil {
				return nil, err
			}
		}
		elemType := vtype.Empty()
		for _, e := range elems {
			elemType.AddTypes(e.Out().ToType(), nil)
		}
		return value.NewCell(value.NewList(elemType, elems...)), nil
	case tagEnum:
		id, err := readU64(r)
		if err != nil {
			return nil, err
		}
		payload, err := DecodeValue(r)
		if err != nil {
			return nil, err
		}
		return value.NewCell(value.NewEnumVariant(int(id), payload)), nil
	case tagRef:
		inner, err := DecodeValue(r)
		if err != nil {
			return nil, err
		}
		return value.NewCell(value.NewReference(inner)), nil
	default:
		return nil, fmt.Errorf("library: unknown wire tag %q", tagBuf[0])
	}
}
