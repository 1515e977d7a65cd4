// Package soctype implements the type arena: an interned-string pool
// plus a dense record/member arena describing scalar, enum, bitfield,
// sequence, pointer, aggregate, dynamic-aggregate and callable types.
//
// Types are addressed by TypeID, a dense index into the arena rather
// than a pointer, the way the teacher's generated opcode table indexes
// into a flat immutable slice instead of chasing pointers between
// instruction records.
package soctype

// TypeID indexes a TypeRecord within an Arena. IDs are dense and start
// at 0, so the zero value names the first record defined; 0 is not
// reserved as a sentinel. NoType (-1) is the value that names no type.
type TypeID int32

const NoType TypeID = -1

// Kind discriminates the shape of a TypeRecord.
type Kind uint8

const (
	KindScalar Kind = iota
	KindEnum
	KindBitField
	KindFixed
	KindSequence
	KindPointer
	KindAggregate
	KindDynamicAggregate
	KindCallable
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindEnum:
		return "enum"
	case KindBitField:
		return "bitfield"
	case KindFixed:
		return "fixed"
	case KindSequence:
		return "sequence"
	case KindPointer:
		return "pointer"
	case KindAggregate:
		return "aggregate"
	case KindDynamicAggregate:
		return "dynamic_aggregate"
	case KindCallable:
		return "callable"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Member describes one field of an aggregate or dynamic aggregate: its
// interned name, the type it holds, and its bit offset within the
// enclosing record (meaningful for bitfield-packed aggregates).
type Member struct {
	Name      StringID
	Type      TypeID
	BitOffset uint32
}

// EnumValue pairs an interned enumerator name with its integer value.
type EnumValue struct {
	Name  StringID
	Value int64
}

// TypeRecord is one entry in the arena. Only the fields relevant to
// Kind are populated; the rest are zero.
type TypeRecord struct {
	Kind Kind

	Ident StringID

	// Scalar / BitField
	BitWidth uint16
	Signed   bool
	Float    bool

	// BitField
	BaseType TypeID

	// Enum
	Underlying TypeID
	Enumerators []EnumValue

	// Fixed / Sequence / Pointer (Opaque stores its byte size in FixedLen)
	ElemType TypeID
	FixedLen int64 // -1 when length is dynamic (see LenExpr)
	LenExpr  *ExprProgram

	// Aggregate / DynamicAggregate
	Members []Member
	// SelectorExpr chooses a DynamicAggregate record's variant; its
	// result is the key into Variants. The walker evaluates it with no
	// decoded members bound, so it cannot read earlier fields.
	SelectorExpr *ExprProgram
	Variants     map[int64]TypeID

	// Callable
	Params  []TypeID
	Returns TypeID
}

// Arena owns the interned string pool and the dense type record slice.
type Arena struct {
	strings   []string
	internIdx map[string]StringID
	records   []TypeRecord
}

// StringID indexes the interned string pool.
type StringID int32

func NewArena() *Arena {
	return &Arena{
		internIdx: make(map[string]StringID),
	}
}

// Intern returns the StringID for s, allocating a new slot only the
// first time s is seen.
func (a *Arena) Intern(s string) StringID {
	if id, ok := a.internIdx[s]; ok {
		return id
	}
	id := StringID(len(a.strings))
	a.strings = append(a.strings, s)
	a.internIdx[s] = id
	return id
}

// String resolves an interned StringID back to its text.
func (a *Arena) String(id StringID) string {
	if int(id) < 0 || int(id) >= len(a.strings) {
		return ""
	}
	return a.strings[id]
}

// add appends rec and returns its newly allocated TypeID.
func (a *Arena) add(rec TypeRecord) TypeID {
	id := TypeID(len(a.records))
	a.records = append(a.records, rec)
	return id
}

// Record returns the TypeRecord for id. The caller must not mutate
// slice fields (Members, Enumerators, ...) in place; Arena methods
// exist to build records before they are sealed.
func (a *Arena) Record(id TypeID) (TypeRecord, bool) {
	if int(id) < 0 || int(id) >= len(a.records) {
		return TypeRecord{}, false
	}
	return a.records[id], true
}

// Len returns the number of type records in the arena.
func (a *Arena) Len() int { return len(a.records) }

func (a *Arena) DefineScalar(name string, bitWidth uint16, signed, float bool) TypeID {
	return a.add(TypeRecord{
		Kind:     KindScalar,
		Ident:    a.Intern(name),
		BitWidth: bitWidth,
		Signed:   signed,
		Float:    float,
	})
}

func (a *Arena) DefineBitField(name string, base TypeID, bitWidth uint16) TypeID {
	return a.add(TypeRecord{
		Kind:     KindBitField,
		Ident:    a.Intern(name),
		BaseType: base,
		BitWidth: bitWidth,
	})
}

func (a *Arena) DefineEnum(name string, underlying TypeID, values []EnumValue) TypeID {
	return a.add(TypeRecord{
		Kind:        KindEnum,
		Ident:       a.Intern(name),
		Underlying:  underlying,
		Enumerators: values,
	})
}

func (a *Arena) DefineFixedArray(name string, elem TypeID, length int64) TypeID {
	return a.add(TypeRecord{
		Kind:     KindFixed,
		Ident:    a.Intern(name),
		ElemType: elem,
		FixedLen: length,
	})
}

func (a *Arena) DefineSequence(name string, elem TypeID, lenExpr *ExprProgram) TypeID {
	return a.add(TypeRecord{
		Kind:     KindSequence,
		Ident:    a.Intern(name),
		ElemType: elem,
		FixedLen: -1,
		LenExpr:  lenExpr,
	})
}

func (a *Arena) DefinePointer(name string, target TypeID) TypeID {
	return a.add(TypeRecord{
		Kind:     KindPointer,
		Ident:    a.Intern(name),
		ElemType: target,
	})
}

func (a *Arena) DefineAggregate(name string, members []Member) TypeID {
	return a.add(TypeRecord{
		Kind:    KindAggregate,
		Ident:   a.Intern(name),
		Members: members,
	})
}

func (a *Arena) DefineDynamicAggregate(name string, selector *ExprProgram, variants map[int64]TypeID) TypeID {
	return a.add(TypeRecord{
		Kind:         KindDynamicAggregate,
		Ident:        a.Intern(name),
		SelectorExpr: selector,
		Variants:     variants,
	})
}

func (a *Arena) DefineCallable(name string, params []TypeID, returns TypeID) TypeID {
	return a.add(TypeRecord{
		Kind:    KindCallable,
		Ident:   a.Intern(name),
		Params:  params,
		Returns: returns,
	})
}

func (a *Arena) DefineOpaque(name string, byteSize int64) TypeID {
	return a.add(TypeRecord{
		Kind:     KindOpaque,
		Ident:    a.Intern(name),
		FixedLen: byteSize,
	})
}
