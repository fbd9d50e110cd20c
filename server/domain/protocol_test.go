package domain

import (
	"bytes"
	"errors"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	original := &Header{
		Version:   1,
		SessionID: [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		Seq:       100,
		Length:    256,
		Timestamp: 1234567890,
	}

	encoded := original.Encode()
	if len(encoded) != HeaderSize {
		t.Errorf("encoded size = %d, want %d", len(encoded), HeaderSize)
	}

	decoded, err := ParseHeader(encoded)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if *decoded != *original {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
}

func TestEncodeFrame(t *testing.T) {
	id := NewSessionID()
	body := []byte{0xde, 0xad, 0xbe, 0xef}

	data, err := EncodeFrame(id, 7, DataTypeCombat, 3, body)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	if len(data) != HeaderSize+PayloadHeaderSize+len(body) {
		t.Fatalf("frame size = %d, want %d", len(data), HeaderSize+PayloadHeaderSize+len(body))
	}

	header, payloadHeader, got, err := ParseFrame(data)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	if SessionIDFromBytes(header.SessionID) != id {
		t.Errorf("SessionID = %v, want %v", SessionIDFromBytes(header.SessionID), id)
	}
	if header.Seq != 7 || header.Version != ProtocolVersion {
		t.Errorf("header = %+v", header)
	}
	if int(header.Length) != PayloadHeaderSize+len(body) {
		t.Errorf("Length = %d, want %d", header.Length, PayloadHeaderSize+len(body))
	}
	if payloadHeader.DataType != DataTypeCombat || payloadHeader.SubType != 3 {
		t.Errorf("payload header = %+v", payloadHeader)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("body = %x, want %x", got, body)
	}
}

func TestEncodeFrame_TooLarge(t *testing.T) {
	_, err := EncodeFrame(SessionID{}, 0, DataTypeSnapshot, 0, make([]byte, MaxBodySize+1))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestControlMessages(t *testing.T) {
	id := NewSessionID()
	tests := []struct {
		name string
		data []byte
		want ControlSubType
	}{
		{"assign", EncodeAssignMessage(id), ControlSubTypeAssign},
		{"leave", EncodeLeaveMessage(id), ControlSubTypeLeave},
		{"ping", EncodePingMessage(id), ControlSubTypePing},
		{"resync", EncodeControlMessage(id, ControlSubTypeResync), ControlSubTypeResync},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.data) != HeaderSize+PayloadHeaderSize {
				t.Fatalf("size = %d, want %d", len(tt.data), HeaderSize+PayloadHeaderSize)
			}
			_, ph, _, err := ParseFrame(tt.data)
			if err != nil {
				t.Fatalf("ParseFrame failed: %v", err)
			}
			if ph.DataType != DataTypeControl || ControlSubType(ph.SubType) != tt.want {
				t.Errorf("payload header = %+v, want control/%d", ph, tt.want)
			}
		})
	}
}

func TestJoinPayload(t *testing.T) {
	tests := []struct {
		name string
		room RoomID
	}{
		{"named", "arena"},
		{"auto", ""},
		{"full width", "0123456789abcdef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := (&JoinPayload{RoomID: tt.room}).Encode()
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if len(encoded) != JoinPayloadSize {
				t.Fatalf("size = %d, want %d", len(encoded), JoinPayloadSize)
			}
			decoded, err := ParseJoinPayload(encoded)
			if err != nil {
				t.Fatalf("ParseJoinPayload failed: %v", err)
			}
			if decoded.RoomID != tt.room {
				t.Errorf("RoomID = %q, want %q", decoded.RoomID, tt.room)
			}
		})
	}
}

func TestJoinPayload_NameTooLong(t *testing.T) {
	if _, err := (&JoinPayload{RoomID: "0123456789abcdefg"}).Encode(); !errors.Is(err, ErrRoomNameTooLong) {
		t.Errorf("err = %v, want ErrRoomNameTooLong", err)
	}
}

func TestAvatarState(t *testing.T) {
	original := &AvatarState{X: 1.5, Y: -2.25, Z: 30, Health: 7, Flags: AvatarFlagAlive}

	encoded := original.Encode()
	if len(encoded) != AvatarStateSize {
		t.Fatalf("encoded size = %d, want %d", len(encoded), AvatarStateSize)
	}
	decoded, err := ParseAvatarState(encoded)
	if err != nil {
		t.Fatalf("ParseAvatarState failed: %v", err)
	}
	if *decoded != *original {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
	if !decoded.Alive() || decoded.Present() {
		t.Errorf("Alive() = %v, Present() = %v, want true, false", decoded.Alive(), decoded.Present())
	}
}

func TestTurretRequest(t *testing.T) {
	id := NewSessionID()
	data, err := EncodeTurretRequest(id, 3, 1.5, 0, -4)
	if err != nil {
		t.Fatalf("EncodeTurretRequest failed: %v", err)
	}
	header, payloadHeader, body, err := ParseFrame(data)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	if SessionIDFromBytes(header.SessionID) != id || payloadHeader.DataType != DataTypeControl || ControlSubType(payloadHeader.SubType) != ControlSubTypeTurret {
		t.Fatalf("header = %+v, payload header = %+v", header, payloadHeader)
	}
	x, y, z, err := ParseTurretRequest(body)
	if err != nil {
		t.Fatalf("ParseTurretRequest failed: %v", err)
	}
	if x != 1.5 || y != 0 || z != -4 {
		t.Errorf("position = (%v, %v, %v), want (1.5, 0, -4)", x, y, z)
	}
}

func TestParseInvalidSizes(t *testing.T) {
	tests := []struct {
		name  string
		parse func() error
		want  error
	}{
		{"header", func() error { _, err := ParseHeader(make([]byte, HeaderSize-1)); return err }, ErrInvalidHeaderSize},
		{"payload header", func() error { _, err := ParsePayloadHeader([]byte{1}); return err }, ErrInvalidPayloadSize},
		{"frame without payload header", func() error { _, _, _, err := ParseFrame(make([]byte, HeaderSize)); return err }, ErrInvalidPayloadSize},
		{"join", func() error { _, err := ParseJoinPayload(make([]byte, JoinPayloadSize-1)); return err }, ErrInvalidJoinPayloadSize},
		{"avatar state", func() error { _, err := ParseAvatarState(make([]byte, AvatarStateSize-1)); return err }, ErrInvalidAvatarStateSize},
		{"turret request", func() error { _, _, _, err := ParseTurretRequest(make([]byte, TurretRequestSize-1)); return err }, ErrInvalidTurretRequestSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.parse(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
