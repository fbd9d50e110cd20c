package application

import (
	"math/rand/v2"
	"testing"

	"skirmish/server/application/clock"
	"skirmish/server/application/replication"
	"skirmish/server/application/world"
)

func newPilot() *AutoPilot {
	p := NewAutoPilot(rand.New(rand.NewPCG(3, 4)))
	p.CloseRange = 3
	p.MidRange = 10
	p.StrafeSign = 1
	p.RushChance = 0
	p.TurretChance = 0
	return p
}

func pilotWorld(entities ...*world.Entity) (*world.World, *world.Avatar) {
	w := world.New(world.AABB{Min: world.Vec3{X: -100, Y: -10, Z: -100}, Max: world.Vec3{X: 100, Y: 50, Z: 100}})
	for _, e := range entities {
		w.AddEntity(e)
	}
	a := w.Avatar(world.SlotLocal)
	a.Alive, a.Present, a.Health, a.MaxHealth = true, true, 10, 10
	return w, a
}

func hostile(pos world.Vec3) *world.Entity {
	return &world.Entity{Kind: world.KindPatroller, Category: world.CategoryHostile, Position: pos, Alive: true, Health: 3, MaxHealth: 3}
}

func TestAutoPilot_Decide(t *testing.T) {
	tests := []struct {
		name   string
		enemy  world.Vec3
		check  func(m world.Vec3) bool
		attack bool
	}{
		{name: "遠距離は接近", enemy: world.Vec3{Z: 50}, check: func(m world.Vec3) bool { return m.Z > 0 }},
		{name: "中距離は横移動", enemy: world.Vec3{Z: 5}, check: func(m world.Vec3) bool { return m.X < 0 }, attack: true},
		{name: "近距離は後退", enemy: world.Vec3{Z: 2}, check: func(m world.Vec3) bool { return m.Z < 0 }, attack: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, self := pilotWorld(hostile(tt.enemy))
			got := newPilot().Decide(self, w)
			if !tt.check(got.Move) {
				t.Errorf("Move = %v", got.Move)
			}
			if got.Attack != tt.attack {
				t.Errorf("Attack = %v, want %v", got.Attack, tt.attack)
			}
			if tt.attack && got.Target != tt.enemy {
				t.Errorf("Target = %v, want %v", got.Target, tt.enemy)
			}
		})
	}
}

func TestAutoPilot_EvadesIncomingProjectile(t *testing.T) {
	w, self := pilotWorld(hostile(world.Vec3{Z: 50}))
	w.AddProjectile(&world.Projectile{Owner: world.OwnerHostile, Position: world.Vec3{Z: 2}, Velocity: world.Vec3{Z: -10}})

	got := newPilot().Decide(self, w)
	if got.Move.X <= 0 {
		t.Errorf("Move = %v, want a sidestep along +X", got.Move)
	}
	if got.Attack {
		t.Error("attacked while evading")
	}
}

func TestAutoPilot_IgnoresFriendlyAndReceding(t *testing.T) {
	w, self := pilotWorld(hostile(world.Vec3{Z: 50}))
	w.AddProjectile(&world.Projectile{Owner: world.OwnerRemote, Position: world.Vec3{Z: 2}, Velocity: world.Vec3{Z: -10}})
	w.AddProjectile(&world.Projectile{Owner: world.OwnerHostile, Position: world.Vec3{Z: 2}, Velocity: world.Vec3{Z: 10}})

	if got := newPilot().Decide(self, w); got.Move.Z <= 0 {
		t.Errorf("Move = %v, want approach", got.Move)
	}
}

func TestAutoPilot_NoTarget(t *testing.T) {
	turret := &world.Entity{Kind: world.KindTurret, Category: world.CategoryStructure, Position: world.Vec3{Z: 5}, Alive: true, Health: 1}
	hidden := hostile(world.Vec3{Z: 6})
	hidden.Hidden = true
	w, self := pilotWorld(turret, hidden)

	if got := newPilot().Decide(self, w); got != (PilotAction{}) {
		t.Errorf("Decide = %+v, want zero action", got)
	}

	self.Alive = false
	w2, _ := pilotWorld(hostile(world.Vec3{Z: 5}))
	if got := newPilot().Decide(self, w2); got != (PilotAction{}) {
		t.Errorf("dead avatar Decide = %+v, want zero action", got)
	}
}

func TestAutoPilot_Drive(t *testing.T) {
	clk := clock.NewManual(epoch)
	s, _ := newSim(t, replication.ModeHost, testLevel(patroller(0, 50)), clk)
	s.SetConnected(true)
	run(clk, s, frame)

	p := newPilot()
	p.AttackRange = 60
	action := p.Drive(s, world.SlotLocal)
	if !action.Attack {
		t.Fatal("pilot did not attack")
	}
	if z := s.World().Avatar(world.SlotLocal).Position.Z; z <= 0 {
		t.Errorf("avatar z = %v, want > 0", z)
	}
	events := s.Tick()
	if len(events) != 1 || events[0].EventKind() != replication.KindProjectileFired {
		t.Errorf("events = %v, want [projectileFired]", kinds(events))
	}
}

func TestAutoPilot_PlacesTurret(t *testing.T) {
	level := testLevel(patroller(0, 50))
	for _, mode := range []replication.Mode{replication.ModeHost, replication.ModeClient} {
		t.Run(mode.String(), func(t *testing.T) {
			clk := clock.NewManual(epoch)
			s, _ := newSim(t, mode, level, clk)
			s.SetConnected(true)
			run(clk, s, frame)

			p := newPilot()
			p.TurretChance = 1
			if action := p.Drive(s, world.SlotLocal); !action.Turret {
				t.Fatal("Turret = false, want true")
			}
			var turrets int
			for _, ev := range s.Tick() {
				if sp, ok := ev.(replication.EntitySpawned); ok && sp.Kind == world.KindTurret {
					turrets++
				}
			}
			want := 1
			if mode == replication.ModeClient {
				want = 0
			}
			if turrets != want {
				t.Errorf("turret spawns = %d, want %d", turrets, want)
			}
		})
	}
}
