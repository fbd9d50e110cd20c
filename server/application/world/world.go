package world

import "slices"

// World は 1 ピア分のシミュレーション状態です。
// そのピアの tick からのみ変更されるのでロックは持ちません。
type World struct {
	Bounds    AABB
	Obstacles []AABB

	entities    map[EntityID]*Entity
	entityOrder []EntityID

	projectiles     map[ProjectileID]*Projectile
	projectileOrder []ProjectileID

	avatars [AvatarSlotCount]Avatar

	nextEntityID     EntityID
	nextProjectileID ProjectileID
}

func New(bounds AABB) *World {
	w := &World{
		Bounds:      bounds,
		entities:    make(map[EntityID]*Entity),
		projectiles: make(map[ProjectileID]*Projectile),
	}
	for i := range w.avatars {
		w.avatars[i].Slot = AvatarSlot(i)
	}
	return w
}

// AddEntity は次の連番 ID を割り当てて登録します。レベル初期配置用です。
func (w *World) AddEntity(e *Entity) EntityID {
	w.nextEntityID++
	e.ID = w.nextEntityID
	w.insert(e)
	return e.ID
}

// PutEntity は e.ID のまま登録します。既に同じ ID があれば false。
func (w *World) PutEntity(e *Entity) bool {
	if _, exists := w.entities[e.ID]; exists {
		return false
	}
	if e.ID < spawnIDBase && e.ID > w.nextEntityID {
		w.nextEntityID = e.ID
	}
	w.insert(e)
	return true
}

func (w *World) insert(e *Entity) {
	w.entities[e.ID] = e
	i, _ := slices.BinarySearch(w.entityOrder, e.ID)
	w.entityOrder = slices.Insert(w.entityOrder, i, e.ID)
}

// RemoveEntity は削除したかどうかを返します。存在しない ID は何もしません。
func (w *World) RemoveEntity(id EntityID) bool {
	if _, ok := w.entities[id]; !ok {
		return false
	}
	delete(w.entities, id)
	if i, found := slices.BinarySearch(w.entityOrder, id); found {
		w.entityOrder = slices.Delete(w.entityOrder, i, i+1)
	}
	return true
}

func (w *World) Entity(id EntityID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Entities は ID 昇順のスナップショットを返します。走査中の追加削除に影響されません。
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.entityOrder))
	for _, id := range w.entityOrder {
		out = append(out, w.entities[id])
	}
	return out
}

func (w *World) EntityCount() int { return len(w.entities) }

// Live は指定分類の生存中エンティティを ID 昇順で返します。
func (w *World) Live(c Category) []*Entity {
	var out []*Entity
	for _, id := range w.entityOrder {
		e := w.entities[id]
		if e.Alive && e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

func (w *World) Avatar(slot AvatarSlot) *Avatar {
	if slot >= AvatarSlotCount {
		return nil
	}
	return &w.avatars[slot]
}

// Candidates はターゲット候補を固定列挙順で返します。
func (w *World) Candidates() []Candidate {
	out := make([]Candidate, 0, AvatarSlotCount)
	for i := range w.avatars {
		a := &w.avatars[i]
		if a.Targetable() {
			out = append(out, Candidate{Slot: a.Slot, Position: a.Position})
		}
	}
	return out
}

func (w *World) AddProjectile(p *Projectile) ProjectileID {
	w.nextProjectileID++
	p.ID = w.nextProjectileID
	w.projectiles[p.ID] = p
	w.projectileOrder = append(w.projectileOrder, p.ID)
	return p.ID
}

func (w *World) RemoveProjectile(id ProjectileID) bool {
	if _, ok := w.projectiles[id]; !ok {
		return false
	}
	delete(w.projectiles, id)
	if i := slices.Index(w.projectileOrder, id); i >= 0 {
		w.projectileOrder = slices.Delete(w.projectileOrder, i, i+1)
	}
	return true
}

// Projectiles は生成順のスナップショットを返します。
func (w *World) Projectiles() []*Projectile {
	out := make([]*Projectile, 0, len(w.projectileOrder))
	for _, id := range w.projectileOrder {
		out = append(out, w.projectiles[id])
	}
	return out
}

func (w *World) InBounds(p Vec3) bool { return w.Bounds.Contains(p) }

// ClearEntities は全エンティティと弾を破棄します。スナップショット適用前に使います。
// アバターとレベル ID の連番は保持します。
func (w *World) ClearEntities() {
	w.entities = make(map[EntityID]*Entity)
	w.entityOrder = nil
	w.projectiles = make(map[ProjectileID]*Projectile)
	w.projectileOrder = nil
}
