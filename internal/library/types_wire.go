package library

import (
	"fmt"
	"io"

	"github.com/funvibe/mers/internal/vtype"
)

// EncodeType writes a VType onto the wire, for the registration
// exchange's function signatures (spec §6.3 "a list of (fn_name,
// List<input-VType>, output-VType)"). Function is encoded with zero
// rows of detail beyond its tag: the original likewise never needs a
// library to describe higher-order function shapes over the bridge.
func EncodeType(w io.Writer, t vtype.Type) error {
	if err := writeU64(w, uint64(len(t.Singles))); err != nil {
		return err
	}
	for _, s := range t.Singles {
		if err := encodeSingle(w, s); err != nil {
			return err
		}
	}
	return nil
}

func encodeSingle(w io.Writer, s vtype.Single) error {
	switch s.Kind {
	case vtype.KBool:
		_, err := w.Write([]byte{tagBoolFalse})
		return err
	case vtype.KInt:
		_, err := w.Write([]byte{tagInt})
		return err
	case vtype.KFloat:
		_, err := w.Write([]byte{tagFloat})
		return err
	case vtype.KString:
		_, err := w.Write([]byte{tagString})
		return err
	case vtype.KTuple:
		if _, err := w.Write([]byte{tagTuple}); err != nil {
			return err
		}
		if err := writeU64(w, uint64(len(s.Tuple))); err != nil {
			return err
		}
		for _, elem := range s.Tuple {
			if err := EncodeType(w, elem); err != nil {
				return err
			}
		}
		return nil
	case vtype.KList:
		if _, err := w.Write([]byte{tagList}); err != nil {
			return err
		}
		return EncodeType(w, *s.List)
	case vtype.KThread:
		if _, err := w.Write([]byte{tagThread}); err != nil {
			return err
		}
		return EncodeType(w, *s.Thread)
	case vtype.KReference:
		if _, err := w.Write([]byte{tagRef}); err != nil {
			return err
		}
		return encodeSingle(w, *s.Ref)
	case vtype.KEnumVariant:
		if _, err := w.Write([]byte{tagEnum}); err != nil {
			return err
		}
		if err := writeU64(w, uint64(s.EnumID)); err != nil {
			return err
		}
		return EncodeType(w, *s.EnumPayload)
	case vtype.KFunction:
		_, err := w.Write([]byte{tagFunction})
		return err
	case vtype.KCustomType:
		return fmt.Errorf("library: custom types cannot cross the library bridge (spec §6.3)")
	default:
		return fmt.Errorf("library: unknown single-type kind %s", s.Kind)
	}
}

// DecodeType reads a VType off the wire.
func DecodeType(r io.Reader) (vtype.Type, error) {
	n, err := readU64(r)
	if err != nil {
		return vtype.Type{}, err
	}
	t := vtype.Empty()
	for i := uint64(0); i < n; i++ {
		s, err := decodeSingle(r)
		if err != nil {
			return vtype.Type{}, err
		}
		t.Singles = append(t.Singles, s)
	}
	return t, nil
}

func decodeSingle(r io.Reader) (vtype.Single, error) {
	var tagBuf [1]byte
	if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
		return vtype.Single{}, err
	}
	switch tagBuf[0] {
	case tagBoolFalse:
		return vtype.Bool(), nil
	case tagInt:
		return vtype.Int(), nil
	case tagFloat:
		return vtype.Float(), nil
	case tagString:
		return vtype.String(), nil
	case tagTuple:
		n, err := readU64(r)
		if err != nil {
			return vtype.Single{}, err
		}
		elems := make([]vtype.Type, n)
		for i := range elems {
			elems[i], err = DecodeType(r)
			if err != nil {
				return vtype.Single{}, err
			}
		}
		return vtype.Tuple(elems...), nil
	case tagList:
		inner, err := DecodeType(r)
		if err != nil {
			return vtype.Single{}, err
		}
		return vtype.List(inner), nil
	case tagThread:
		inner, err := DecodeType(r)
		if err != nil {
			return vtype.Single{}, err
		}
		return vtype.Thread(inner), nil
	case tagRef:
		inner, err := decodeSingle(r)
		if err != nil {
			return vtype.Single{}, err
		}
		return vtype.Reference(inner), nil
	case tagEnum:
		id, err := readU64(r)
		if err != nil {
			return vtype.Single{}, err
		}
		payload, err := DecodeType(r)
		if err != nil {
			return vtype.Single{}, err
		}
		return vtype.EnumVariant(int(id), payload), nil
	case tagFunction:
		return vtype.Function(), nil
	default:
		return vtype.Single{}, fmt.Errorf("library: unknown wire type tag %q", tagBuf[0])
	}
}
