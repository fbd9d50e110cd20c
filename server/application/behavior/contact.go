package behavior

import "skirmish/server/application/world"

// contact はボス級との接触ダメージを判定します。アバターごとに独立したクールダウンを持ちます。
func contact(ctx *Context) {
	cfg := ctx.Config
	if cfg.ContactRadius <= 0 || cfg.ContactDamage <= 0 {
		return
	}
	for _, e := range ctx.World.Entities() {
		if !e.Alive || e.Hidden || !e.Category.IsBoss() {
			continue
		}
		radius := cfg.ContactRadius * scaleOf(e)
		for slot := world.AvatarSlot(0); slot < world.AvatarSlotCount; slot++ {
			a := ctx.World.Avatar(slot)
			if !a.Targetable() {
				continue
			}
			if e.Position.Dist(a.Position) >= radius {
				continue
			}
			if !e.ContactCooldown[slot].IsZero() && ctx.Now.Sub(e.ContactCooldown[slot]) < cfg.ContactCooldown {
				continue
			}
			e.ContactCooldown[slot] = ctx.Now
			ctx.Intents.Contacts = append(ctx.Intents.Contacts, ContactIntent{Entity: e.ID, Slot: slot, Damage: cfg.ContactDamage})
		}
	}
}

func scaleOf(e *world.Entity) float64 {
	if e.Scale <= 0 {
		return 1
	}
	return e.Scale
}
