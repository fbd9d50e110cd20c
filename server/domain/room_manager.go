package domain

import (
	"context"
	"errors"
)

//go:generate go tool mockgen -destination=./mocks/room_manager_mock.go -package=mocks . RoomManager

var ErrNoRoom = errors.New("no room available")

// RoomManager は参加先を指定しなかったセッションの割り当て先を決めます。
type RoomManager interface {
	GetRoom(ctx context.Context, sessionID SessionID) (RoomID, error)
}

// SimpleRoomManager は常に同じルームを返します。
type SimpleRoomManager struct {
	defaultRoom RoomID
}

func NewSimpleRoomManager(defaultRoom RoomID) *SimpleRoomManager {
	return &SimpleRoomManager{defaultRoom: defaultRoom}
}

func (m *SimpleRoomManager) GetRoom(ctx context.Context, sessionID SessionID) (RoomID, error) {
	if m.defaultRoom.IsEmpty() {
		return "", ErrNoRoom
	}
	return m.defaultRoom, nil
}
