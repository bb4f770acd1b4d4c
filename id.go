package ecs

import "github.com/TheBitDrifter/bark"

// Id is a single packed integer inhabiting every identifier namespace: it
// is either invalid, a component, an entity, or a relation.
type Id int64

// Kind classifies an Id into one of the mutually exclusive id spaces.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindComponent
	KindEntity
	KindEntityRelation
	KindComponentRelation
	KindWildcardRelation
)

func (k Kind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindEntity:
		return "entity"
	case KindEntityRelation:
		return "entity-relation"
	case KindComponentRelation:
		return "component-relation"
	case KindWildcardRelation:
		return "wildcard-relation"
	default:
		return "invalid"
	}
}

// relationShift packs a component id into the high bits of a relation's
// magnitude, leaving room for a target id below C_MAX/E_START's combined
// range while staying inside the 53-bit safe integer range.
const relationShift = 42

// Wildcard is the sentinel target passed to Relation to build a wildcard
// relation id relation(C, *).
const Wildcard Id = 0

func componentMax() Id { return Id(Config.ComponentIDMax) }
func entityStart() Id  { return Id(Config.EntityIDStart) }

// newComponentId validates and returns id as a component id. It never
// allocates; callers that need a fresh id use the component allocator.
func newComponentId(raw int64) Id {
	id := Id(raw)
	if id < 1 || id > componentMax() {
		panic(bark.AddTrace(InvalidId{Reason: "component id out of range", Value: int64(id)}))
	}
	return id
}

// newEntityId validates and returns id as an entity id.
func newEntityId(raw int64) Id {
	id := Id(raw)
	if id < entityStart() {
		panic(bark.AddTrace(InvalidId{Reason: "entity id below E_START", Value: int64(id)}))
	}
	return id
}

// Relation packs component and target into a relation id. target of
// Wildcard (0) produces a wildcard relation. Relations cannot target other
// relations.
func Relation(component Id, target Id) Id {
	if Classify(component) != KindComponent {
		panic(bark.AddTrace(InvalidId{Reason: "relation head must be a component id", Value: int64(component)}))
	}
	if target != Wildcard && Classify(target) != KindComponent && Classify(target) != KindEntity {
		panic(bark.AddTrace(InvalidId{Reason: "relation target must be a component, an entity, or the wildcard", Value: int64(target)}))
	}
	packed := int64(component)<<relationShift + int64(target)
	if packed>>relationShift != int64(component) {
		panic(bark.AddTrace(InvalidId{Reason: "relation id overflowed the packed form", Value: packed}))
	}
	return Id(-packed)
}

// Classify determines which id space id inhabits.
func Classify(id Id) Kind {
	switch {
	case id == 0:
		return KindInvalid
	case id > 0 && id <= componentMax():
		return KindComponent
	case id >= entityStart():
		return KindEntity
	case id < 0:
		_, target := decodeRelation(id)
		switch {
		case target == Wildcard:
			return KindWildcardRelation
		case target < entityStart():
			return KindComponentRelation
		default:
			return KindEntityRelation
		}
	default:
		return KindInvalid
	}
}

// Decoded holds the result of decomposing a relation id.
type Decoded struct {
	Component Id
	Target    Id
	Kind      Kind
}

func decodeRelation(id Id) (component, target Id) {
	packed := -int64(id)
	component = Id(packed >> relationShift)
	target = Id(packed - int64(component)<<relationShift)
	return component, target
}

// Decode decomposes id. For non-relation ids, Target is zero and Component
// is id itself (for components) or invalid (for entities).
func Decode(id Id) Decoded {
	kind := Classify(id)
	switch kind {
	case KindComponent:
		return Decoded{Component: id, Kind: kind}
	case KindEntity:
		return Decoded{Kind: kind}
	case KindEntityRelation, KindComponentRelation, KindWildcardRelation:
		c, t := decodeRelation(id)
		return Decoded{Component: c, Target: t, Kind: kind}
	default:
		return Decoded{Kind: KindInvalid}
	}
}

// IsWildcard reports whether id is a wildcard relation relation(C, *).
func IsWildcard(id Id) bool {
	return Classify(id) == KindWildcardRelation
}

// IsRelation reports whether id is any kind of relation.
func IsRelation(id Id) bool {
	switch Classify(id) {
	case KindEntityRelation, KindComponentRelation, KindWildcardRelation:
		return true
	default:
		return false
	}
}

// IsEntityRelation reports whether id is a relation whose target is an
// entity (not the wildcard and not a component).
func IsEntityRelation(id Id) bool {
	return Classify(id) == KindEntityRelation
}

// RelationComponent returns the component head of a relation id, or the id
// itself if it is already a component id.
func RelationComponent(id Id) Id {
	switch Classify(id) {
	case KindComponent:
		return id
	case KindEntityRelation, KindComponentRelation, KindWildcardRelation:
		c, _ := decodeRelation(id)
		return c
	default:
		panic(bark.AddTrace(InvalidId{Reason: "id has no component head", Value: int64(id)}))
	}
}

// WildcardOf returns relation(RelationComponent(id), *) for any relation or
// component id.
func WildcardOf(id Id) Id {
	return Relation(RelationComponent(id), Wildcard)
}

// IsDontFragmentRelation reports whether id is a concrete (non-wildcard)
// relation whose component is flagged dontFragment.
func IsDontFragmentRelation(id Id) bool {
	switch Classify(id) {
	case KindEntityRelation, KindComponentRelation:
		return globalRegistry.isDontFragment(RelationComponent(id))
	default:
		return false
	}
}

// IsDontFragmentWildcard reports whether id is a wildcard relation whose
// component is flagged dontFragment.
func IsDontFragmentWildcard(id Id) bool {
	return Classify(id) == KindWildcardRelation && globalRegistry.isDontFragment(RelationComponent(id))
}

// IsExclusiveRelation reports whether id is a relation whose component is
// flagged exclusive.
func IsExclusiveRelation(id Id) bool {
	return IsRelation(id) && globalRegistry.isExclusive(RelationComponent(id))
}

// IsCascadeDeleteRelation reports whether id is an entity-relation whose
// component is flagged cascadeDelete.
func IsCascadeDeleteRelation(id Id) bool {
	return Classify(id) == KindEntityRelation && globalRegistry.isCascadeDelete(RelationComponent(id))
}
