package application

import (
	"log/slog"

	"skirmish/server/application/combat"
	"skirmish/server/application/loot"
	"skirmish/server/application/spawn"
	"skirmish/server/application/world"
)

// Visuals は戦闘と出現の両方が使う表示レイヤです。純粋に受け身で、状態を返すことはありません。
type Visuals interface {
	combat.Visuals
	spawn.Visuals
}

// LogVisuals は画面を持たないプロセス用の Visuals です。出来事をデバッグログに流します。
type LogVisuals struct {
	Logger *slog.Logger
}

var _ Visuals = LogVisuals{}

func (v LogVisuals) logger() *slog.Logger {
	if v.Logger == nil {
		return slog.Default()
	}
	return v.Logger
}

func (v LogVisuals) Impact(pos world.Vec3) {
	v.logger().Debug("impact", "pos", pos)
}

func (v LogVisuals) Hide(id world.EntityID) {
	v.logger().Debug("entity hidden", "id", id)
}

func (v LogVisuals) Loot(drops []loot.Drop) {
	v.logger().Debug("loot scattered", "count", len(drops))
}

// Warning は毎 tick 呼ばれるので何も出しません。
func (v LogVisuals) Warning(uint32, world.Vec3, float64) {}

func (v LogVisuals) Materialize(e *world.Entity) {
	v.logger().Debug("entity materialized", "id", e.ID, "kind", e.Kind, "pos", e.Position)
}

func (v LogVisuals) Remove(id world.EntityID) {
	v.logger().Debug("entity removed", "id", id)
}

// NopAudio は音を出さない combat.Audio です。
type NopAudio struct{}

func (NopAudio) Play(string) {}
