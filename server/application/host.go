package application

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"skirmish/server/application/replication"
	"skirmish/server/application/world"
	"skirmish/server/domain"
)

var (
	ErrNotHost       = errors.New("combat application requires a host simulation")
	ErrUnknownFrame  = errors.New("unknown frame type")
	ErrNotRemotePeer = errors.New("frame from a session that does not own the remote avatar")
)

// CombatApplication はホスト側のシミュレーションをルームに載せる domain.Application です。
//
// 最初に参加したセッションがリモートアバターを操作します。以降のセッションは観戦者として
// 同じフレームを受け取り、操作者が抜けると参加順で昇格します。
type CombatApplication struct {
	sim      *Simulation
	pilots   [world.AvatarSlotCount]*AutoPilot
	keyframe time.Duration

	peers        []domain.SessionID // 参加順
	resync       map[domain.SessionID]struct{}
	lastKeyframe time.Time
	seq          uint16

	published atomic.Pointer[Stats]
}

var _ domain.Application = (*CombatApplication)(nil)

// NewCombatApplication は keyframe ごとに全体スナップショットを送ります。0 なら参加時だけです。
func NewCombatApplication(sim *Simulation, keyframe time.Duration) (*CombatApplication, error) {
	if sim == nil || sim.Mode() != replication.ModeHost {
		return nil, ErrNotHost
	}
	return &CombatApplication{
		sim:      sim,
		keyframe: keyframe,
		resync:   make(map[domain.SessionID]struct{}),
	}, nil
}

// SetPilot は slot のアバターを AI に操作させます。リモートアバターは指定できません。
func (a *CombatApplication) SetPilot(slot world.AvatarSlot, p *AutoPilot) {
	if slot == world.SlotRemote || slot >= world.AvatarSlotCount {
		return
	}
	a.pilots[slot] = p
}

func (a *CombatApplication) Simulation() *Simulation { return a.sim }

// Remote はリモートアバターを操作中のセッションです。
func (a *CombatApplication) Remote() (domain.SessionID, bool) {
	if len(a.peers) == 0 {
		return domain.SessionID{}, false
	}
	return a.peers[0], true
}

func (a *CombatApplication) HandleMessage(ctx context.Context, sessionID domain.SessionID, data []byte) error {
	_, payloadHeader, body, err := domain.ParseFrame(data)
	if err != nil {
		return err
	}

	switch payloadHeader.DataType {
	case domain.DataTypeInput:
		// 観戦者のアバターはシミュレーションに存在しない
		if !a.isRemote(sessionID) || domain.AvatarSubType(payloadHeader.SubType) != domain.AvatarSubTypeOwn {
			return nil
		}
		// 体力と生死はホストが確定するので位置だけ受け取る
		return applyAvatarPosition(a.sim, world.SlotRemote, body)
	case domain.DataTypeCombat:
		if !a.isRemote(sessionID) {
			return ErrNotRemotePeer
		}
		ev, err := decodeEvent(payloadHeader.SubType, body)
		if err != nil {
			return err
		}
		if !a.sim.Apply(ev) {
			slog.DebugContext(ctx, "combat event ignored", "sessionID", sessionID, "kind", ev.EventKind())
		}
		return nil
	case domain.DataTypeControl:
		switch domain.ControlSubType(payloadHeader.SubType) {
		case domain.ControlSubTypeResync:
			a.resync[sessionID] = struct{}{}
		case domain.ControlSubTypeTurret:
			if !a.isRemote(sessionID) {
				return ErrNotRemotePeer
			}
			pos, err := parseTurretRequest(body)
			if err != nil {
				return err
			}
			if _, ok := a.sim.PlaceTurret(pos); !ok {
				slog.DebugContext(ctx, "turret request rejected", "sessionID", sessionID, "pos", pos)
			}
		}
		return nil
	default:
		return ErrUnknownFrame
	}
}

func (a *CombatApplication) isRemote(sessionID domain.SessionID) bool {
	remote, ok := a.Remote()
	return ok && remote == sessionID
}

// Join は参加者を登録し、最初のスナップショットを返します。
func (a *CombatApplication) Join(ctx context.Context, sessionID domain.SessionID) []domain.Frame {
	if !slices.Contains(a.peers, sessionID) {
		a.peers = append(a.peers, sessionID)
	}
	if len(a.peers) == 1 {
		a.sim.SetConnected(true)
		a.lastKeyframe = a.sim.Now()
		slog.InfoContext(ctx, "remote avatar connected", "sessionID", sessionID)
	}
	delete(a.resync, sessionID)

	data, err := encodeSnapshot(domain.SessionID{}, a.nextSeq(), a.sim.Snapshot())
	if err != nil {
		slog.ErrorContext(ctx, "snapshot encode failed", "sessionID", sessionID, "err", err)
		return nil
	}
	return []domain.Frame{{To: sessionID, Data: data}}
}

// Leave は参加者を外します。操作者がいなくなればホストは単独で進み続けます。
func (a *CombatApplication) Leave(ctx context.Context, sessionID domain.SessionID) {
	i := slices.Index(a.peers, sessionID)
	if i < 0 {
		return
	}
	a.peers = slices.Delete(a.peers, i, i+1)
	delete(a.resync, sessionID)
	if i != 0 {
		return
	}
	if next, ok := a.Remote(); ok {
		slog.InfoContext(ctx, "remote avatar handed over", "from", sessionID, "to", next)
		return
	}
	a.sim.SetConnected(false)
	slog.InfoContext(ctx, "remote avatar disconnected", "sessionID", sessionID)
}

// Tick はシミュレーションを 1 tick 進め、参加者へ送るフレームを返します。
func (a *CombatApplication) Tick(ctx context.Context) []domain.Frame {
	for slot, p := range a.pilots {
		if p != nil {
			p.Drive(a.sim, world.AvatarSlot(slot))
		}
	}
	events := a.sim.Tick()
	stats := a.sim.Stats()
	a.published.Store(&stats)
	if len(a.peers) == 0 {
		return nil
	}

	frames := make([]domain.Frame, 0, len(events)+2)
	for _, ev := range events {
		data, err := encodeEvent(domain.SessionID{}, a.nextSeq(), ev)
		if err != nil {
			slog.WarnContext(ctx, "event encode failed", "kind", ev.EventKind(), "err", err)
			continue
		}
		frames = append(frames, domain.Frame{Data: data})
	}
	w := a.sim.World()
	if data, err := encodeAvatar(domain.SessionID{}, a.nextSeq(), domain.AvatarSubTypeOwn, w.Avatar(world.SlotLocal)); err == nil {
		frames = append(frames, domain.Frame{Data: data})
	}
	remote, _ := a.Remote()
	if data, err := encodeAvatar(domain.SessionID{}, a.nextSeq(), domain.AvatarSubTypeAssigned, w.Avatar(world.SlotRemote)); err == nil {
		frames = append(frames, domain.Frame{To: remote, Data: data})
	}

	now := a.sim.Now()
	keyframe := a.keyframe > 0 && now.Sub(a.lastKeyframe) >= a.keyframe
	if !keyframe && len(a.resync) == 0 {
		return frames
	}
	snap, err := encodeSnapshot(domain.SessionID{}, a.nextSeq(), a.sim.Snapshot())
	if err != nil {
		slog.ErrorContext(ctx, "snapshot encode failed", "err", err)
		return frames
	}
	if keyframe {
		a.lastKeyframe = now
		clear(a.resync)
		return append(frames, domain.Frame{Data: snap})
	}
	for _, id := range a.peers {
		if _, ok := a.resync[id]; ok {
			frames = append(frames, domain.Frame{To: id, Data: snap})
		}
	}
	clear(a.resync)
	return frames
}

// Published は直近の tick 終了時の集計です。ルーム以外のゴルーチンから読めます。
func (a *CombatApplication) Published() Stats {
	if st := a.published.Load(); st != nil {
		return *st
	}
	return Stats{}
}

func (a *CombatApplication) nextSeq() uint16 {
	a.seq++
	return a.seq
}
