package config

import (
	"errors"
	"fmt"
	"sort"

	"skirmish/server/application/world"
)

// Validate は全ての問題をまとめて返します。
func (l *Level) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if l.Tick <= 0 {
		add("tick must be positive, got %v", l.Tick)
	}
	if l.SnapshotInterval < 0 {
		add("snapshotInterval must not be negative, got %v", l.SnapshotInterval)
	}
	if !l.Bounds.Valid() {
		add("bounds min %v must be below max %v", l.Bounds.Min, l.Bounds.Max)
	}
	for i, o := range l.Obstacles {
		if !o.Valid() {
			add("obstacles[%d]: min %v must be below max %v", i, o.Min, o.Max)
		}
	}

	names := make([]string, 0, len(l.Kinds))
	for name := range l.Kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := world.ParseKind(name); err != nil {
			add("kinds.%s: %w", name, err)
			continue
		}
		if err := l.Kinds[name].validate(); err != nil {
			add("kinds.%s: %w", name, err)
		}
	}
	for _, k := range world.Kinds() {
		if _, ok := l.Kinds[k.String()]; !ok {
			add("kinds.%s: missing", k)
		}
	}

	for i, e := range l.Entities {
		if _, err := world.ParseKind(e.Kind); err != nil {
			add("entities[%d]: %w", i, err)
		}
		if e.Category != "" {
			if _, err := world.ParseCategory(e.Category); err != nil {
				add("entities[%d]: %w", i, err)
			}
		}
		if e.Patrol != nil && e.Patrol.Left > e.Patrol.Right {
			add("entities[%d]: patrol left %v exceeds right %v", i, e.Patrol.Left, e.Patrol.Right)
		}
		if !l.Bounds.Contains(e.Position) {
			add("entities[%d]: position %v outside bounds", i, e.Position)
		}
	}

	if err := l.Avatar.validate(); err != nil {
		add("avatar: %w", err)
	}
	if err := l.Spawn.validate(); err != nil {
		add("spawn: %w", err)
	}
	if l.Turret.Lifetime <= 0 {
		add("turret.lifetime must be positive")
	}
	if l.Flight.Chance < 0 || l.Flight.Chance > 1 {
		add("flight.chance %v outside [0, 1]", l.Flight.Chance)
	}
	if l.Flight.MinHeight > l.Flight.MaxHeight {
		add("flight: minHeight exceeds maxHeight")
	}
	if l.Flight.MinDuration <= 0 || l.Flight.MinDuration > l.Flight.MaxDuration {
		add("flight: durations must satisfy 0 < min <= max")
	}
	if l.Contact.Radius < 0 || l.Contact.Cooldown < 0 || l.Contact.Damage < 0 {
		add("contact: values must not be negative")
	}
	if l.Death.Bursts < 0 || l.Death.Stagger < 0 {
		add("death: values must not be negative")
	}
	if l.Loot.Min < 0 || l.Loot.Min > l.Loot.Max {
		add("loot: need 0 <= min <= max, got %d..%d", l.Loot.Min, l.Loot.Max)
	}
	for i, it := range l.Loot.Items {
		if it.Kind == "" || it.Weight <= 0 {
			add("loot.items[%d]: kind and positive weight required", i)
		}
	}
	d := l.Damage
	if d.Local < 0 || d.Remote < 0 || d.Split < 0 || d.Turret < 0 {
		add("damage: multipliers must not be negative")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidLevel, errors.Join(errs...))
}

func (k KindSpec) validate() error {
	var errs []error
	if _, err := world.ParseCategory(k.Category); err != nil {
		errs = append(errs, err)
	}
	if k.Health <= 0 {
		errs = append(errs, fmt.Errorf("health must be positive, got %d", k.Health))
	}
	if k.Speed < 0 || k.Radius < 0 || k.Scale < 0 {
		errs = append(errs, errors.New("speed, radius and scale must not be negative"))
	}
	if err := k.Weapon.validate(); err != nil {
		errs = append(errs, fmt.Errorf("weapon: %w", err))
	}
	return errors.Join(errs...)
}

func (w WeaponSpec) validate() error {
	if w.Interval < 0 {
		return fmt.Errorf("interval must not be negative, got %v", w.Interval)
	}
	if w.Interval == 0 {
		return nil
	}
	if w.Speed <= 0 || w.MaxDistance <= 0 || w.Damage <= 0 {
		return errors.New("armed weapon needs positive speed, maxDistance and damage")
	}
	return nil
}

func (a AvatarSpec) validate() error {
	if a.Health <= 0 {
		return fmt.Errorf("health must be positive, got %d", a.Health)
	}
	if a.Weapon.Speed <= 0 || a.Weapon.MaxDistance <= 0 {
		return errors.New("weapon needs positive speed and maxDistance")
	}
	return nil
}

func (s SpawnSpec) validate() error {
	var errs []error
	if s.Warning < 0 {
		errs = append(errs, errors.New("warning must not be negative"))
	}
	if s.InitialInterval <= 0 || s.MinInterval <= 0 {
		errs = append(errs, errors.New("intervals must be positive"))
	}
	if s.MinInterval > s.InitialInterval {
		errs = append(errs, fmt.Errorf("minInterval %v exceeds initialInterval %v", s.MinInterval, s.InitialInterval))
	}
	if s.IntervalDecrement < 0 || s.MaxConcurrent < 0 || s.MaxLifetime < 0 || s.TTL < 0 {
		errs = append(errs, errors.New("decrement, caps and ttl must not be negative"))
	}
	for i, e := range s.Table {
		k, err := world.ParseKind(e.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("table[%d]: %w", i, err))
			continue
		}
		if k == world.KindTurret {
			errs = append(errs, fmt.Errorf("table[%d]: turrets are placed, not spawned", i))
		}
		if e.Weight <= 0 {
			errs = append(errs, fmt.Errorf("table[%d]: weight must be positive", i))
		}
	}
	return errors.Join(errs...)
}
