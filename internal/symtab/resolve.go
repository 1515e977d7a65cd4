package symtab

import (
	"fmt"

	"github.com/intuitionamiga/socrt/internal/socbus"
	"github.com/intuitionamiga/socrt/internal/soctype"
)

// Resolver reads a symbol's current value off the device bus by
// positioning a cursor at the symbol's runtime address and walking its
// bound type, dispatching on type kind (scalar, enum, aggregate,
// dynamic aggregate) the way the teacher's debug monitor dispatches on
// a watch expression's declared width when rendering its value.
type Resolver struct {
	Arena *soctype.Arena
	Bus   *socbus.DeviceBus
}

// ResolveValue decodes rec's current value from the bus. Symbols with
// StorageAbsent or no bound type cannot be resolved.
func (r *Resolver) ResolveValue(rec SymbolRecord, ctx socbus.AccessContext) (soctype.Value, error) {
	if rec.Storage == StorageAbsent {
		return soctype.Value{}, fmt.Errorf("symtab: symbol has no backing storage")
	}
	if rec.TypeID == soctype.NoType {
		return soctype.Value{}, ErrNoTypeBound
	}

	cursor := socbus.AttachToBus(r.Bus, rec.RuntimeAddr, ctx)
	walker := soctype.NewWalker(r.Arena, cursor)
	return walker.Decode(rec.TypeID)
}
