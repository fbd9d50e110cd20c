package world

import (
	"testing"
	"time"
)

func testBounds() AABB {
	return AABB{Min: Vec3{X: -100, Y: -10, Z: -100}, Max: Vec3{X: 100, Y: 100, Z: 100}}
}

func TestWorld_EntityOrder(t *testing.T) {
	w := New(testBounds())

	spawned := &Entity{ID: SpawnEntityID(1), Alive: true}
	if !w.PutEntity(spawned) {
		t.Fatal("PutEntity() = false")
	}
	a := w.AddEntity(&Entity{Alive: true})
	b := w.AddEntity(&Entity{Alive: true})

	if a != 1 || b != 2 {
		t.Errorf("level ids = %d, %d, want 1, 2", a, b)
	}
	got := w.Entities()
	if len(got) != 3 {
		t.Fatalf("Entities() len = %d, want 3", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 || got[2].ID != SpawnEntityID(1) {
		t.Errorf("order = %d, %d, %d", got[0].ID, got[1].ID, got[2].ID)
	}
	if w.PutEntity(&Entity{ID: SpawnEntityID(1)}) {
		t.Error("PutEntity() with duplicate id = true")
	}
}

func TestWorld_RemoveEntity_Idempotent(t *testing.T) {
	w := New(testBounds())
	id := w.AddEntity(&Entity{Alive: true})

	if !w.RemoveEntity(id) {
		t.Fatal("first RemoveEntity() = false")
	}
	if w.RemoveEntity(id) {
		t.Error("second RemoveEntity() = true, want no-op")
	}
	if w.EntityCount() != 0 {
		t.Errorf("EntityCount() = %d, want 0", w.EntityCount())
	}
}

func TestWorld_Live(t *testing.T) {
	w := New(testBounds())
	w.AddEntity(&Entity{Alive: true, Category: CategoryHostile})
	w.AddEntity(&Entity{Alive: false, Category: CategoryHostile})
	w.AddEntity(&Entity{Alive: true, Category: CategoryBoss})

	if n := len(w.Live(CategoryHostile)); n != 1 {
		t.Errorf("Live(hostile) = %d, want 1", n)
	}
	if n := len(w.Live(CategoryBoss)); n != 1 {
		t.Errorf("Live(boss) = %d, want 1", n)
	}
}

func TestWorld_Candidates(t *testing.T) {
	w := New(testBounds())
	*w.Avatar(SlotLocal) = Avatar{Slot: SlotLocal, Alive: true, Present: true}
	*w.Avatar(SlotRemote) = Avatar{Slot: SlotRemote, Alive: true, Present: false}
	*w.Avatar(SlotSplit) = Avatar{Slot: SlotSplit, Alive: true, Present: true}

	got := w.Candidates()
	if len(got) != 2 {
		t.Fatalf("Candidates() len = %d, want 2", len(got))
	}
	if got[0].Slot != SlotLocal || got[1].Slot != SlotSplit {
		t.Errorf("Candidates() = %v", got)
	}
}

func TestProjectile_Spent(t *testing.T) {
	p, ok := NewProjectile(OwnerLocal, 0, Vec3{}, Vec3{X: 1}, Weapon{Speed: 10, MaxDistance: 5})
	if !ok {
		t.Fatal("NewProjectile() = false")
	}
	p.Advance(400 * time.Millisecond)
	if p.Spent() {
		t.Errorf("Spent() at %f, want false", p.Traveled)
	}
	p.Advance(100 * time.Millisecond)
	if !p.Spent() {
		t.Errorf("Spent() at %f, want true", p.Traveled)
	}
}

func TestNewProjectile_Degenerate(t *testing.T) {
	if _, ok := NewProjectile(OwnerHostile, 1, Vec3{X: 1}, Vec3{X: 1}, Weapon{Speed: 10}); ok {
		t.Error("NewProjectile() with zero direction = true")
	}
}

func TestAABB_IntersectsSphere(t *testing.T) {
	b := AABB{Min: Vec3{X: 0, Y: 0, Z: 0}, Max: Vec3{X: 2, Y: 2, Z: 2}}
	if !b.IntersectsSphere(Vec3{X: 2.5, Y: 1, Z: 1}, 0.5) {
		t.Error("touching sphere not detected")
	}
	if b.IntersectsSphere(Vec3{X: 3, Y: 1, Z: 1}, 0.5) {
		t.Error("distant sphere detected")
	}
}

func TestKind_TextRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", k, err)
		}
		var got Kind
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if got != k {
			t.Errorf("round trip = %v, want %v", got, k)
		}
	}
	if _, err := ParseKind("dragon"); err == nil {
		t.Error("ParseKind(dragon) err = nil")
	}
}
