package application

import (
	"fmt"
	"math"

	"skirmish/server/application/replication"
	"skirmish/server/application/world"
	"skirmish/server/domain"
)

func encodeEvent(from domain.SessionID, seq uint16, ev replication.Event) ([]byte, error) {
	body, err := replication.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return domain.EncodeFrame(from, seq, domain.DataTypeCombat, uint8(ev.EventKind()), body)
}

func decodeEvent(subType uint8, body []byte) (replication.Event, error) {
	return replication.Unmarshal(replication.Kind(subType), body)
}

func encodeSnapshot(from domain.SessionID, seq uint16, snap replication.Snapshot) ([]byte, error) {
	body, err := replication.MarshalSnapshot(snap)
	if err != nil {
		return nil, err
	}
	data, err := domain.EncodeFrame(from, seq, domain.DataTypeSnapshot, 0, body)
	if err != nil {
		return nil, fmt.Errorf("snapshot of %d entities: %w", len(snap.Entities), err)
	}
	return data, nil
}

func encodeAvatar(from domain.SessionID, seq uint16, sub domain.AvatarSubType, a *world.Avatar) ([]byte, error) {
	st := domain.AvatarState{
		X:      float32(a.Position.X),
		Y:      float32(a.Position.Y),
		Z:      float32(a.Position.Z),
		Health: uint16(min(max(a.Health, 0), math.MaxUint16)),
	}
	if a.Alive {
		st.Flags |= domain.AvatarFlagAlive
	}
	if a.Present {
		st.Flags |= domain.AvatarFlagPresent
	}
	return domain.EncodeFrame(from, seq, domain.DataTypeInput, uint8(sub), st.Encode())
}

func parseAvatar(body []byte) (*domain.AvatarState, world.Vec3, error) {
	st, err := domain.ParseAvatarState(body)
	if err != nil {
		return nil, world.Vec3{}, err
	}
	return st, world.Vec3{X: float64(st.X), Y: float64(st.Y), Z: float64(st.Z)}, nil
}

// applyAvatar はホストが報告したホスト自身のアバターを slot にそのまま写します。
func applyAvatar(s *Simulation, slot world.AvatarSlot, body []byte) error {
	st, pos, err := parseAvatar(body)
	if err != nil {
		return err
	}
	if !s.SetAvatar(slot, pos, int(st.Health), st.Alive()) {
		return fmt.Errorf("avatar state out of range: %v", pos)
	}
	return nil
}

// applyAvatarPosition は参加側の報告から位置だけを取り込みます。
func applyAvatarPosition(s *Simulation, slot world.AvatarSlot, body []byte) error {
	_, pos, err := parseAvatar(body)
	if err != nil {
		return err
	}
	if !s.SetAvatarPosition(slot, pos) {
		return fmt.Errorf("avatar position out of range: %v", pos)
	}
	return nil
}

// applyAvatarHealth はホストが確定した体力と生死を slot に反映します。位置は手元の入力のままです。
func applyAvatarHealth(s *Simulation, slot world.AvatarSlot, body []byte) error {
	st, _, err := parseAvatar(body)
	if err != nil {
		return err
	}
	s.SetAvatarHealth(slot, int(st.Health), st.Alive())
	return nil
}

func encodeTurretRequest(from domain.SessionID, seq uint16, pos world.Vec3) ([]byte, error) {
	return domain.EncodeTurretRequest(from, seq, float32(pos.X), float32(pos.Y), float32(pos.Z))
}

func parseTurretRequest(body []byte) (world.Vec3, error) {
	x, y, z, err := domain.ParseTurretRequest(body)
	if err != nil {
		return world.Vec3{}, err
	}
	return world.Vec3{X: float64(x), Y: float64(y), Z: float64(z)}, nil
}
