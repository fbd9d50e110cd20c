package application

import (
	"errors"
	"log/slog"

	"skirmish/server/application/replication"
	"skirmish/server/application/world"
	"skirmish/server/domain"
)

var ErrNotClient = errors.New("peer link requires a client simulation")

// resyncThreshold だけ無視イベントが増えたら、手元の状態がずれたとみなして再送を頼みます。
const resyncThreshold = 8

// PeerLink は参加側のシミュレーションとホストの間のフレームを変換します。
// 接続そのものは持たず、受信フレームを HandleFrame に渡し、戻り値と Tick の結果を送るだけです。
type PeerLink struct {
	sim   *Simulation
	room  domain.RoomID
	pilot *AutoPilot

	session    domain.SessionID
	joined     bool
	seq        uint16
	staleMark  int
	resyncSent bool
}

func NewPeerLink(sim *Simulation, room domain.RoomID) (*PeerLink, error) {
	if sim == nil || sim.Mode() != replication.ModeClient {
		return nil, ErrNotClient
	}
	return &PeerLink{sim: sim, room: room}, nil
}

// SetPilot は自アバターを AI に操作させます。
func (l *PeerLink) SetPilot(p *AutoPilot) { l.pilot = p }

func (l *PeerLink) Simulation() *Simulation { return l.sim }

func (l *PeerLink) SessionID() domain.SessionID { return l.session }

// Joined はスナップショットを受け取り、同期が始まっているかどうかです。
func (l *PeerLink) Joined() bool { return l.joined }

// HandleFrame はホストからのフレームを 1 つ処理し、返信すべきフレームを返します。
func (l *PeerLink) HandleFrame(data []byte) ([][]byte, error) {
	header, payloadHeader, body, err := domain.ParseFrame(data)
	if err != nil {
		return nil, err
	}

	switch payloadHeader.DataType {
	case domain.DataTypeControl:
		return l.handleControl(header, domain.ControlSubType(payloadHeader.SubType))
	case domain.DataTypeSnapshot:
		snap, err := replication.UnmarshalSnapshot(body)
		if err != nil {
			return nil, err
		}
		l.sim.Restore(snap)
		l.sim.SetConnected(true)
		l.joined = true
		l.staleMark = l.sim.Stats().Stale
		l.resyncSent = false
		slog.Debug("snapshot applied", "entities", len(snap.Entities), "pending", len(snap.Pending))
		return nil, nil
	case domain.DataTypeCombat:
		if !l.joined {
			return nil, nil
		}
		ev, err := decodeEvent(payloadHeader.SubType, body)
		if err != nil {
			return nil, err
		}
		l.sim.Apply(ev)
		return nil, nil
	case domain.DataTypeInput:
		switch domain.AvatarSubType(payloadHeader.SubType) {
		case domain.AvatarSubTypeOwn:
			return nil, applyAvatar(l.sim, world.SlotRemote, body)
		case domain.AvatarSubTypeAssigned:
			if !l.joined {
				return nil, nil
			}
			return nil, applyAvatarHealth(l.sim, world.SlotLocal, body)
		default:
			return nil, ErrUnknownFrame
		}
	default:
		return nil, ErrUnknownFrame
	}
}

func (l *PeerLink) handleControl(header *domain.Header, subType domain.ControlSubType) ([][]byte, error) {
	switch subType {
	case domain.ControlSubTypeAssign:
		l.session = domain.SessionIDFromBytes(header.SessionID)
		join, err := domain.EncodeJoinMessage(l.session, l.nextSeq(), l.room)
		if err != nil {
			return nil, err
		}
		return [][]byte{join}, nil
	case domain.ControlSubTypePing:
		return [][]byte{domain.EncodeControlMessage(l.session, domain.ControlSubTypePong)}, nil
	case domain.ControlSubTypeKick:
		l.Disconnect()
		return nil, nil
	default:
		return nil, nil
	}
}

// Tick はシミュレーションを 1 tick 進め、ホストへ送るフレームを返します。
func (l *PeerLink) Tick() [][]byte {
	var action PilotAction
	if l.pilot != nil && l.joined {
		action = l.pilot.Drive(l.sim, world.SlotLocal)
	}
	events := l.sim.Tick()
	if !l.joined {
		return nil
	}

	out := make([][]byte, 0, len(events)+3)
	for _, ev := range events {
		data, err := encodeEvent(l.session, l.nextSeq(), ev)
		if err != nil {
			slog.Warn("event encode failed", "kind", ev.EventKind(), "err", err)
			continue
		}
		out = append(out, data)
	}
	self := l.sim.World().Avatar(world.SlotLocal)
	if data, err := encodeAvatar(l.session, l.nextSeq(), domain.AvatarSubTypeOwn, self); err == nil {
		out = append(out, data)
	}
	if action.Turret {
		if data, err := l.RequestTurret(self.Position); err == nil {
			out = append(out, data)
		}
	}
	if !l.resyncSent && l.sim.Stats().Stale-l.staleMark >= resyncThreshold {
		out = append(out, l.RequestResync())
	}
	return out
}

// RequestTurret はホストに pos へのタレット設置を頼むフレームを返します。
func (l *PeerLink) RequestTurret(pos world.Vec3) ([]byte, error) {
	return encodeTurretRequest(l.session, l.nextSeq(), pos)
}

// RequestResync はホストにスナップショットの再送を頼むフレームを返します。
func (l *PeerLink) RequestResync() []byte {
	l.resyncSent = true
	return domain.EncodeControlMessage(l.session, domain.ControlSubTypeResync)
}

// Disconnect は接続断を反映します。シミュレーションは見た目の再現だけを続け、
// 次に Assign を受けたら参加し直します。
func (l *PeerLink) Disconnect() {
	l.sim.SetConnected(false)
	l.joined = false
	l.session = domain.SessionID{}
}

func (l *PeerLink) nextSeq() uint16 {
	l.seq++
	return l.seq
}
