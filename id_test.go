package ecs

import "testing"

func TestRelationRoundTrip(t *testing.T) {
	component := newComponentId(5)
	target := newComponentId(7)

	tests := []struct {
		name   string
		target Id
	}{
		{"wildcard target", Wildcard},
		{"component target", target},
		{"entity target", newEntityId(int64(Config.EntityIDStart) + 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel := Relation(component, tt.target)
			if rel >= 0 {
				t.Fatalf("Relation() = %d, want negative packed form", rel)
			}
			gotComp, gotTarget := decodeRelation(rel)
			if gotComp != component {
				t.Errorf("decodeRelation() component = %d, want %d", gotComp, component)
			}
			if gotTarget != tt.target {
				t.Errorf("decodeRelation() target = %d, want %d", gotTarget, tt.target)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	component := newComponentId(1)
	entity := newEntityId(int64(Config.EntityIDStart))
	wildcardRel := Relation(component, Wildcard)
	compRel := Relation(component, newComponentId(2))
	entRel := Relation(component, entity)

	tests := []struct {
		name string
		id   Id
		want Kind
	}{
		{"invalid zero", Id(0), KindInvalid},
		{"component", component, KindComponent},
		{"entity", entity, KindEntity},
		{"wildcard relation", wildcardRel, KindWildcardRelation},
		{"component relation", compRel, KindComponentRelation},
		{"entity relation", entRel, KindEntityRelation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.id); got != tt.want {
				t.Errorf("Classify(%d) = %s, want %s", tt.id, got, tt.want)
			}
		})
	}
}

func TestRelationRejectsBadOperands(t *testing.T) {
	component := newComponentId(1)
	entity := newEntityId(int64(Config.EntityIDStart))

	defer func() {
		if recover() == nil {
			t.Fatal("Relation(entity, component) did not panic")
		}
	}()
	Relation(entity, component)
}

func TestWildcardOf(t *testing.T) {
	component := newComponentId(3)
	rel := Relation(component, newComponentId(9))

	wc := WildcardOf(rel)
	if !IsWildcard(wc) {
		t.Fatalf("WildcardOf() = %d, not a wildcard relation", wc)
	}
	if RelationComponent(wc) != component {
		t.Errorf("RelationComponent(WildcardOf(rel)) = %d, want %d", RelationComponent(wc), component)
	}
}
