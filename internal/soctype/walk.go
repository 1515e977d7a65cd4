package soctype

import (
	"fmt"

	"github.com/intuitionamiga/socrt/internal/socbus"
	"github.com/intuitionamiga/socrt/internal/socbus/ext"
)

// Value is a decoded instance of a TypeRecord: a scalar integer, an
// enum's underlying value with its matched name, or a nested aggregate
// field map.
type Value struct {
	Type   TypeID
	Scalar int64
	Float  float64
	IsFloat bool
	Name   string // resolved enum name, empty if unmatched
	Fields map[string]Value
	Elems  []Value
}

// Walker decodes TypeRecord instances from a bus cursor in a single
// depth-first pass, mirroring how the teacher's disassembler walks an
// instruction's operand list left to right without backtracking.
type Walker struct {
	Arena  *Arena
	Cursor *socbus.BusCursor
}

func NewWalker(arena *Arena, cursor *socbus.BusCursor) *Walker {
	return &Walker{Arena: arena, Cursor: cursor}
}

// Sizeof returns the byte size of a fixed-shape type, used by
// OpSizeof in expression evaluation and by sequence/aggregate layout.
// Dynamic aggregates and length-expression sequences have no static
// size and return an error.
func (w *Walker) Sizeof(id TypeID) (int64, error) {
	rec, ok := w.Arena.Record(id)
	if !ok {
		return 0, fmt.Errorf("soctype: unknown type id %d", id)
	}
	switch rec.Kind {
	case KindScalar, KindBitField:
		return int64((rec.BitWidth + 7) / 8), nil
	case KindEnum:
		return w.Sizeof(rec.Underlying)
	case KindFixed:
		elemSize, err := w.Sizeof(rec.ElemType)
		if err != nil {
			return 0, err
		}
		return elemSize * rec.FixedLen, nil
	case KindPointer:
		return 4, nil
	case KindOpaque:
		return rec.FixedLen, nil
	case KindAggregate:
		var total int64
		for _, m := range rec.Members {
			sz, err := w.Sizeof(m.Type)
			if err != nil {
				return 0, err
			}
			total += sz
		}
		return total, nil
	default:
		return 0, fmt.Errorf("soctype: type %q has no static size", w.Arena.String(rec.Ident))
	}
}

// Decode reads one instance of id from the current cursor position,
// advancing the cursor as it consumes bytes. Sequence length and
// dynamic-aggregate selector expressions are evaluated with only the
// arena and Sizeof bound: members decoded earlier in the walk are not
// visible to them, so OpReadMember, OpCountOf and OpReadVariable fail.
func (w *Walker) Decode(id TypeID) (Value, error) {
	rec, ok := w.Arena.Record(id)
	if !ok {
		return Value{}, fmt.Errorf("soctype: unknown type id %d", id)
	}

	switch rec.Kind {
	case KindScalar:
		return w.decodeScalar(id, rec)
	case KindBitField:
		bits, err := w.Cursor.ReadBits(0, uint8(rec.BitWidth))
		if err != nil {
			return Value{}, err
		}
		return Value{Type: id, Scalar: int64(bits)}, nil
	case KindEnum:
		base, err := w.Decode(rec.Underlying)
		if err != nil {
			return Value{}, err
		}
		name := ""
		for _, ev := range rec.Enumerators {
			if ev.Value == base.Scalar {
				name = w.Arena.String(ev.Name)
				break
			}
		}
		base.Type = id
		base.Name = name
		return base, nil
	case KindFixed:
		return w.decodeRepeated(id, rec.ElemType, rec.FixedLen)
	case KindSequence:
		n := rec.FixedLen
		if rec.LenExpr != nil {
			v, err := rec.LenExpr.Eval(EvalContext{Arena: w.Arena, Sizeof: w.Sizeof})
			if err != nil {
				return Value{}, err
			}
			n = v
		}
		return w.decodeRepeated(id, rec.ElemType, n)
	case KindPointer:
		addr, err := w.Cursor.ReadU32()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: id, Scalar: int64(addr)}, nil
	case KindAggregate:
		return w.decodeAggregate(id, rec.Members)
	case KindDynamicAggregate:
		return w.decodeDynamicAggregate(id, rec)
	case KindOpaque:
		raw, err := ext.ReadHex(w.Cursor, int(rec.FixedLen))
		if err != nil {
			return Value{}, err
		}
		return Value{Type: id, Name: raw}, nil
	default:
		return Value{}, fmt.Errorf("soctype: cannot decode type kind %s", rec.Kind)
	}
}

func (w *Walker) decodeScalar(id TypeID, rec TypeRecord) (Value, error) {
	if rec.Float {
		switch rec.BitWidth {
		case 32:
			f, err := ext.ReadF32(w.Cursor)
			return Value{Type: id, Float: float64(f), IsFloat: true}, err
		case 64:
			f, err := ext.ReadF64(w.Cursor)
			return Value{Type: id, Float: f, IsFloat: true}, err
		default:
			return Value{}, fmt.Errorf("soctype: unsupported float width %d", rec.BitWidth)
		}
	}
	if rec.Signed {
		v, err := ext.ReadSigned(w.Cursor, int(rec.BitWidth)/8)
		return Value{Type: id, Scalar: v}, err
	}
	v, err := w.Cursor.ReadUnsigned(int(rec.BitWidth) / 8)
	return Value{Type: id, Scalar: int64(v)}, err
}

func (w *Walker) decodeRepeated(id, elemType TypeID, n int64) (Value, error) {
	if n < 0 {
		return Value{}, fmt.Errorf("soctype: negative element count %d", n)
	}
	elems := make([]Value, 0, n)
	for i := int64(0); i < n; i++ {
		v, err := w.Decode(elemType)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	return Value{Type: id, Elems: elems}, nil
}

func (w *Walker) decodeAggregate(id TypeID, members []Member) (Value, error) {
	fields := make(map[string]Value, len(members))
	scalarsByName := make(map[StringID]int64, len(members))
	for _, m := range members {
		v, err := w.Decode(m.Type)
		if err != nil {
			return Value{}, fmt.Errorf("soctype: decoding member %q: %w", w.Arena.String(m.Name), err)
		}
		fields[w.Arena.String(m.Name)] = v
		scalarsByName[m.Name] = v.Scalar
	}
	return Value{Type: id, Fields: fields}, nil
}

func (w *Walker) decodeDynamicAggregate(id TypeID, rec TypeRecord) (Value, error) {
	if rec.SelectorExpr == nil {
		return Value{}, fmt.Errorf("soctype: dynamic aggregate %q has no selector", w.Arena.String(rec.Ident))
	}
	sel, err := rec.SelectorExpr.Eval(EvalContext{Arena: w.Arena, Sizeof: w.Sizeof})
	if err != nil {
		return Value{}, err
	}
	variantType, ok := rec.Variants[sel]
	if !ok {
		return Value{}, fmt.Errorf("soctype: dynamic aggregate %q has no variant for selector %d", w.Arena.String(rec.Ident), sel)
	}
	v, err := w.Decode(variantType)
	if err != nil {
		return Value{}, err
	}
	v.Type = id
	return v, nil
}
