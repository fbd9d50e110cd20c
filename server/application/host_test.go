package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"skirmish/server/application/clock"
	"skirmish/server/application/config"
	"skirmish/server/application/replication"
	"skirmish/server/application/world"
	"skirmish/server/domain"
)

func newHost(t *testing.T, keyframe time.Duration, entities ...config.EntitySpec) (*CombatApplication, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(epoch)
	sim, _ := newSim(t, replication.ModeHost, testLevel(entities...), clk)
	app, err := NewCombatApplication(sim, keyframe)
	if err != nil {
		t.Fatalf("NewCombatApplication: %v", err)
	}
	return app, clk
}

func frameType(t *testing.T, data []byte) domain.DataType {
	t.Helper()
	_, payloadHeader, _, err := domain.ParseFrame(data)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	return payloadHeader.DataType
}

func TestNewCombatApplication_RequiresHost(t *testing.T) {
	sim, _ := newSim(t, replication.ModeClient, testLevel(), clock.NewManual(epoch))
	if _, err := NewCombatApplication(sim, 0); !errors.Is(err, ErrNotHost) {
		t.Errorf("err = %v, want %v", err, ErrNotHost)
	}
}

func TestCombatApplication_JoinSendsSnapshot(t *testing.T) {
	app, _ := newHost(t, 0, patroller(0, 10))
	sid := domain.NewSessionID()

	frames := app.Join(context.Background(), sid)
	if len(frames) != 1 {
		t.Fatalf("len(frames) = %d, want 1", len(frames))
	}
	if frames[0].To != sid {
		t.Errorf("To = %v, want %v", frames[0].To, sid)
	}
	if got := frameType(t, frames[0].Data); got != domain.DataTypeSnapshot {
		t.Errorf("DataType = %v, want %v", got, domain.DataTypeSnapshot)
	}
	if !app.Simulation().Connected() {
		t.Error("simulation not connected after join")
	}
	if !app.Simulation().World().Avatar(world.SlotRemote).Present {
		t.Error("remote avatar not present after join")
	}
}

func TestCombatApplication_LeaveHandsOver(t *testing.T) {
	ctx := context.Background()
	app, _ := newHost(t, 0)
	a, b := domain.NewSessionID(), domain.NewSessionID()
	app.Join(ctx, a)
	app.Join(ctx, b)

	app.Leave(ctx, b)
	if remote, _ := app.Remote(); remote != a {
		t.Errorf("remote = %v, want %v", remote, a)
	}
	app.Join(ctx, b)
	app.Leave(ctx, a)
	if remote, _ := app.Remote(); remote != b {
		t.Errorf("remote = %v, want %v", remote, b)
	}
	if !app.Simulation().Connected() {
		t.Error("disconnected while a peer remains")
	}

	app.Leave(ctx, b)
	if _, ok := app.Remote(); ok {
		t.Error("remote still assigned after everyone left")
	}
	if app.Simulation().Connected() {
		t.Error("still connected after everyone left")
	}
	if app.Simulation().World().Avatar(world.SlotRemote).Present {
		t.Error("remote avatar still present after everyone left")
	}
}

func TestCombatApplication_HandleMessage(t *testing.T) {
	ctx := context.Background()
	app, _ := newHost(t, 0)
	remote, spectator := domain.NewSessionID(), domain.NewSessionID()
	app.Join(ctx, remote)
	app.Join(ctx, spectator)

	report := &world.Avatar{Position: world.Vec3{X: 1, Z: 2}, Health: 7, Alive: true, Present: true}
	data, err := encodeAvatar(remote, 1, domain.AvatarSubTypeOwn, report)
	if err != nil {
		t.Fatalf("encodeAvatar: %v", err)
	}
	if err := app.HandleMessage(ctx, remote, data); err != nil {
		t.Fatalf("HandleMessage(input): %v", err)
	}
	got := app.Simulation().World().Avatar(world.SlotRemote)
	if got.Position != report.Position {
		t.Errorf("remote avatar position = %v, want %v", got.Position, report.Position)
	}
	if got.Health != 10 || !got.Alive {
		t.Errorf("remote avatar health = %d/%v, want the host's 10/true", got.Health, got.Alive)
	}

	dead := &world.Avatar{Position: world.Vec3{X: 1, Z: 2}}
	data, _ = encodeAvatar(remote, 2, domain.AvatarSubTypeOwn, dead)
	if err := app.HandleMessage(ctx, remote, data); err != nil {
		t.Fatalf("HandleMessage(input): %v", err)
	}
	if !got.Alive {
		t.Error("peer report killed the remote avatar")
	}

	moved := &world.Avatar{Position: world.Vec3{X: 9}, Health: 1, Alive: true}
	data, _ = encodeAvatar(spectator, 1, domain.AvatarSubTypeOwn, moved)
	if err := app.HandleMessage(ctx, spectator, data); err != nil {
		t.Errorf("HandleMessage(spectator input) = %v, want nil", err)
	}
	if got.Position != report.Position {
		t.Errorf("spectator moved the remote avatar to %v", got.Position)
	}

	shot, _ := encodeEvent(spectator, 2, replication.ProjectileFired{Target: world.Vec3{Z: 1}, Kind: "arrow"})
	if err := app.HandleMessage(ctx, spectator, shot); !errors.Is(err, ErrNotRemotePeer) {
		t.Errorf("spectator combat err = %v, want %v", err, ErrNotRemotePeer)
	}

	unknown, _ := domain.EncodeFrame(remote, 3, domain.DataType(99), 0, nil)
	if err := app.HandleMessage(ctx, remote, unknown); !errors.Is(err, ErrUnknownFrame) {
		t.Errorf("unknown frame err = %v, want %v", err, ErrUnknownFrame)
	}
	if err := app.HandleMessage(ctx, remote, []byte{1, 2}); err == nil {
		t.Error("truncated frame accepted")
	}
}

func TestCombatApplication_KeyframeCadence(t *testing.T) {
	ctx := context.Background()
	app, clk := newHost(t, time.Second, patroller(0, 10))
	app.Join(ctx, domain.NewSessionID())

	keyframes := 0
	for range 25 {
		clk.Advance(100 * time.Millisecond)
		for _, f := range app.Tick(ctx) {
			if f.To.IsEmpty() && frameType(t, f.Data) == domain.DataTypeSnapshot {
				keyframes++
			}
		}
	}
	if keyframes != 2 {
		t.Errorf("keyframes = %d, want 2", keyframes)
	}
}

func TestCombatApplication_Resync(t *testing.T) {
	ctx := context.Background()
	app, clk := newHost(t, 0)
	a, b := domain.NewSessionID(), domain.NewSessionID()
	app.Join(ctx, a)
	app.Join(ctx, b)

	if err := app.HandleMessage(ctx, b, domain.EncodeControlMessage(b, domain.ControlSubTypeResync)); err != nil {
		t.Fatalf("HandleMessage(resync): %v", err)
	}
	clk.Advance(frame)
	var snapshots []domain.SessionID
	for _, f := range app.Tick(ctx) {
		if frameType(t, f.Data) == domain.DataTypeSnapshot {
			snapshots = append(snapshots, f.To)
		}
	}
	if len(snapshots) != 1 || snapshots[0] != b {
		t.Errorf("snapshot recipients = %v, want [%v]", snapshots, b)
	}

	clk.Advance(frame)
	for _, f := range app.Tick(ctx) {
		if frameType(t, f.Data) == domain.DataTypeSnapshot {
			t.Error("resync snapshot sent twice")
		}
	}
}

func TestCombatApplication_TickWithoutPeers(t *testing.T) {
	app, clk := newHost(t, time.Second)
	clk.Advance(frame)
	if frames := app.Tick(context.Background()); frames != nil {
		t.Errorf("frames = %d, want none", len(frames))
	}
}

func TestCombatApplication_TurretRequest(t *testing.T) {
	ctx := context.Background()
	app, _ := newHost(t, 0)
	remote, spectator := domain.NewSessionID(), domain.NewSessionID()
	app.Join(ctx, remote)
	app.Join(ctx, spectator)

	data, err := encodeTurretRequest(spectator, 1, world.Vec3{X: 4, Z: 4})
	if err != nil {
		t.Fatalf("encodeTurretRequest: %v", err)
	}
	if err := app.HandleMessage(ctx, spectator, data); !errors.Is(err, ErrNotRemotePeer) {
		t.Errorf("spectator turret err = %v, want %v", err, ErrNotRemotePeer)
	}
	if n := app.Simulation().World().EntityCount(); n != 0 {
		t.Fatalf("entities = %d, want 0", n)
	}

	data, _ = encodeTurretRequest(remote, 2, world.Vec3{X: 4, Z: 4})
	if err := app.HandleMessage(ctx, remote, data); err != nil {
		t.Fatalf("HandleMessage(turret): %v", err)
	}
	turret, ok := app.Simulation().World().Entity(world.SpawnEntityID(1))
	if !ok || turret.Kind != world.KindTurret {
		t.Errorf("entity %d = %+v, want a turret", world.SpawnEntityID(1), turret)
	}
}

func TestCombatApplication_TickSendsAssignedHealth(t *testing.T) {
	ctx := context.Background()
	app, clk := newHost(t, 0)
	remote, spectator := domain.NewSessionID(), domain.NewSessionID()
	app.Join(ctx, remote)
	app.Join(ctx, spectator)
	app.Simulation().World().Avatar(world.SlotRemote).Damage(4)

	clk.Advance(frame)
	var assigned []domain.Frame
	for _, f := range app.Tick(ctx) {
		_, payloadHeader, body, err := domain.ParseFrame(f.Data)
		if err != nil {
			t.Fatalf("ParseFrame: %v", err)
		}
		if payloadHeader.DataType != domain.DataTypeInput || domain.AvatarSubType(payloadHeader.SubType) != domain.AvatarSubTypeAssigned {
			continue
		}
		assigned = append(assigned, f)
		st, err := domain.ParseAvatarState(body)
		if err != nil {
			t.Fatalf("ParseAvatarState: %v", err)
		}
		if st.Health != 6 || !st.Alive() {
			t.Errorf("assigned health = %d/%v, want 6/true", st.Health, st.Alive())
		}
	}
	if len(assigned) != 1 || assigned[0].To != remote {
		t.Errorf("assigned frames = %d, want 1 addressed to %v", len(assigned), remote)
	}
}

func TestCombatApplication_SplitPilot(t *testing.T) {
	ctx := context.Background()
	app, clk := newHost(t, 0, patroller(0, 20))
	app.Join(ctx, domain.NewSessionID())
	sim := app.Simulation()
	sim.SetAvatarPresent(world.SlotSplit, true)

	pilot := newPilot()
	pilot.AttackRange = 60
	app.SetPilot(world.SlotSplit, pilot)
	app.SetPilot(world.SlotRemote, newPilot())

	clk.Advance(frame)
	app.Tick(ctx)
	clk.Advance(frame)
	app.Tick(ctx)

	split := 0
	for _, pr := range sim.World().Projectiles() {
		if pr.Owner == world.OwnerSplit {
			split++
		}
	}
	if split != 1 {
		t.Errorf("split projectiles = %d, want 1", split)
	}
	if pos := sim.World().Avatar(world.SlotLocal).Position; pos != (world.Vec3{}) {
		t.Errorf("local avatar moved to %v without a pilot", pos)
	}
}
