package ecs

import (
	"reflect"
	"unsafe"

	"github.com/TheBitDrifter/mask"
)

// View describes how to populate a struct of component pointers from an
// archetype row, the same struct-of-pointers convention plus3-ooftn's
// View[T] uses. Every field must be a pointer to a registered component
// type; a field may be marked optional with an `ecs:"optional"` tag, in
// which case it is left nil when the archetype lacks that component instead
// of disqualifying the archetype entirely. Embedded fields are always
// required.
type View[T any] struct {
	registry     *Registry
	types        []DataTypeId
	optional     []bool
	fieldOffset  []uintptr
	requiredMask mask.Mask
}

// NewView builds a View for struct type T against registry. Panics (it is a
// programming error, not a runtime condition) if T is not a struct of
// pointer fields to registered components.
func NewView[T any](registry *Registry) *View[T] {
	var zero T
	structType := reflect.TypeOf(zero)
	if structType.Kind() != reflect.Struct {
		panic("ecs: View type parameter must be a struct")
	}

	v := &View[T]{registry: registry}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("ecs: View struct fields must be pointer types")
		}

		componentType := field.Type.Elem()
		typ, ok := registry.idForType(componentType)
		if !ok {
			panic(&ErrUnknownType{Type: componentType})
		}

		isOptional := false
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "", "required":
			case "optional":
				isOptional = true
			default:
				panic("ecs: invalid ecs tag value: \"" + tag + "\"")
			}
		}

		v.types = append(v.types, typ)
		v.optional = append(v.optional, isOptional)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
		if !isOptional {
			v.requiredMask.Mark(uint32(typ))
		}
	}
	return v
}

// matches reports whether archetype carries every required (non-optional)
// component this view needs. The bitmask comparison rejects most archetypes
// in one step; only a genuine candidate falls through to fill's per-column
// lookups.
func (v *View[T]) matches(archetype *Archetype) bool {
	return archetype.sig.ContainsAll(v.requiredMask)
}

// fill populates dst from archetype's row, returning false if a required
// component is missing. Optional fields are set to nil when absent.
func (v *View[T]) fill(archetype *Archetype, row uint32, dst *T) bool {
	base := unsafe.Pointer(dst)
	for i, typ := range v.types {
		fieldPtr := unsafe.Pointer(uintptr(base) + v.fieldOffset[i])
		col := archetype.column(typ)
		if col == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}
		value := col.get(row)
		*(*unsafe.Pointer)(fieldPtr) = pointerOf(value)
	}
	return true
}

// pointerOf extracts the data pointer carried by an `any` holding a pointer
// value, the same two-word-interface trick plus3-ooftn's iface.go used.
func pointerOf(value any) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&value))[1]
}

// Get_View populates and returns a view of e, or nil if e is dead or lacks
// a required component.
func Get_View[T any](w *World, v *View[T], e Entity) *T {
	if !w.entities.isLive(e) {
		return nil
	}
	loc := w.entities.location(e)
	archetype := w.archetypes[loc.archetype]
	if !v.matches(archetype) {
		return nil
	}
	var result T
	if !v.fill(archetype, loc.row, &result) {
		return nil
	}
	return &result
}
