package ecs

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/bark"
)

// DataTypeId is a compact numeric identifier assigned to every type known to
// a Registry, in registration order.
type DataTypeId uint32

// DataKind classifies a registered type the way spec.md §3 requires: a
// Component lives in dense tables, a Relation lives in sparse tables, a
// Resource is a singleton addressed by type rather than by entity.
type DataKind uint8

const (
	KindComponent DataKind = iota
	KindRelation
	KindResource
)

func (k DataKind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindRelation:
		return "relation"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

// RelationTraits carries the two relation-only flags from spec.md §3:
// Symmetric collapses (a,b) and (b,a) into one canonical row, TreeLike
// restricts a from-entity to at most one outgoing edge and tracks depth to
// reject cycles.
type RelationTraits struct {
	Symmetric bool
	TreeLike  bool
}

// typeInfo is the structural metadata the registry keeps per DataTypeId.
// Go's garbage collector and generics make the destructor/constructor
// machinery spec.md describes mostly unnecessary (there is no manual
// size/align bookkeeping, and copy/move/default construction falls out of
// assignment and zero values) — what the registry still must track is the
// *category* of each type and, for relations, their traits. The newFn
// factory is what stands in for "default constructor" in spec.md, since Go
// generics need a concrete constructor to build a type-erased column.
type typeInfo struct {
	id       DataTypeId
	rtype    reflect.Type
	kind     DataKind
	traits   RelationTraits
	newFn    func() column
}

// Registry catalogs every data type known to a World: components, relations,
// and resources. It assigns each a compact DataTypeId and exposes structural
// metadata, generalizing plus3-ooftn's ComponentRegistry (which only handled
// one category) to all three spec.md categories.
type Registry struct {
	byType map[reflect.Type]*typeInfo
	byId   []*typeInfo
}

// NewRegistry creates an empty type registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*typeInfo),
	}
}

// ErrAlreadyRegistered is the panic value (wrapped by bark.AddTrace) when a
// type is registered a second time under a different category than its
// first registration.
type ErrAlreadyRegistered struct {
	Type reflect.Type
}

func (e *ErrAlreadyRegistered) Error() string {
	return fmt.Sprintf("data type %s is already registered", e.Type)
}

// ErrUnknownType is the panic value (wrapped by bark.AddTrace in TypeId)
// when a lookup targets a type the registry has never seen.
type ErrUnknownType struct {
	Type reflect.Type
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("data type %s is not registered", e.Type)
}

func registerType[T any](r *Registry, kind DataKind, traits RelationTraits) DataTypeId {
	rtype := reflect.TypeFor[T]()
	if existing, ok := r.byType[rtype]; ok {
		if existing.kind != kind {
			panic(bark.AddTrace(&ErrAlreadyRegistered{Type: rtype}))
		}
		return existing.id
	}

	info := &typeInfo{
		id:     DataTypeId(len(r.byId)),
		rtype:  rtype,
		kind:   kind,
		traits: traits,
		newFn: func() column {
			return newBlockColumn[T]()
		},
	}
	r.byType[rtype] = info
	r.byId = append(r.byId, info)
	return info.id
}

// RegisterComponent registers T as a component type, returning its id.
// Safe to call more than once for the same T; later calls are no-ops that
// return the existing id.
func RegisterComponent[T any](r *Registry) DataTypeId {
	return registerType[T](r, KindComponent, RelationTraits{})
}

// RegisterRelation registers T as a relation type with the given traits.
func RegisterRelation[T any](r *Registry, traits RelationTraits) DataTypeId {
	return registerType[T](r, KindRelation, traits)
}

// RegisterResource registers T as a resource (singleton) type.
func RegisterResource[T any](r *Registry) DataTypeId {
	return registerType[T](r, KindResource, RelationTraits{})
}

// TypeId returns the id assigned to T, panicking with ErrUnknownType if T
// was never registered — fatal per spec.md §7 ("Unknown type ... indicates
// a programming error").
func TypeId[T any](r *Registry) DataTypeId {
	rtype := reflect.TypeFor[T]()
	info, ok := r.byType[rtype]
	if !ok {
		panic(bark.AddTrace(&ErrUnknownType{Type: rtype}))
	}
	return info.id
}

// info looks up the metadata for id, panicking if it is out of range.
func (r *Registry) info(id DataTypeId) *typeInfo {
	if int(id) >= len(r.byId) {
		panic(bark.AddTrace(fmt.Errorf("data type id %d is not registered", id)))
	}
	return r.byId[id]
}

// IsComponent reports whether id identifies a component type.
func (r *Registry) IsComponent(id DataTypeId) bool { return r.info(id).kind == KindComponent }

// IsRelation reports whether id identifies a relation type.
func (r *Registry) IsRelation(id DataTypeId) bool { return r.info(id).kind == KindRelation }

// IsResource reports whether id identifies a resource type.
func (r *Registry) IsResource(id DataTypeId) bool { return r.info(id).kind == KindResource }

// Traits returns the relation traits for id. Zero value for non-relations.
func (r *Registry) Traits(id DataTypeId) RelationTraits { return r.info(id).traits }

// Type returns the reflect.Type registered under id.
func (r *Registry) Type(id DataTypeId) reflect.Type { return r.info(id).rtype }

func (r *Registry) newColumn(id DataTypeId) column {
	return r.info(id).newFn()
}

// idForType returns the DataTypeId registered for t, if any.
func (r *Registry) idForType(t reflect.Type) (DataTypeId, bool) {
	info, ok := r.byType[t]
	if !ok {
		return 0, false
	}
	return info.id, true
}
