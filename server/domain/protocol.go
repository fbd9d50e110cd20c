package domain

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// バイトオーダー: リトルエンディアン
var byteOrder = binary.LittleEndian

const (
	ProtocolVersion   = 1
	HeaderSize        = 25
	PayloadHeaderSize = 2
	JoinPayloadSize   = 16
	AvatarStateSize   = 15
	TurretRequestSize = 12

	// MaxBodySize は Header.Length (u16) に収まる本文の上限です。
	MaxBodySize = math.MaxUint16 - PayloadHeaderSize
)

// Header はメッセージヘッダー (25バイト)
//
//	version    u8      (1)
//	sessionID  [16]byte (16)
//	seq        u16     (2)
//	length     u16     (2)  - ペイロード長
//	timestamp  u32     (4)
type Header struct {
	Version   uint8
	SessionID [16]byte
	Seq       uint16
	Length    uint16
	Timestamp uint32
}

// DataType はメッセージの種別
type DataType uint8

const (
	DataTypeInput    DataType = 1 // アバター状態 (AvatarState)
	DataTypeControl  DataType = 4
	DataTypeCombat   DataType = 6 // subtype は replication.Kind、本文は msgpack
	DataTypeSnapshot DataType = 7 // 本文は msgpack
)

// ControlSubType はcontrolメッセージのサブタイプ
type ControlSubType uint8

const (
	ControlSubTypeJoin   ControlSubType = 1
	ControlSubTypeLeave  ControlSubType = 2
	ControlSubTypeKick   ControlSubType = 3
	ControlSubTypePing   ControlSubType = 4
	ControlSubTypePong   ControlSubType = 5
	ControlSubTypeError  ControlSubType = 6
	ControlSubTypeAssign ControlSubType = 7
	ControlSubTypeResync ControlSubType = 8 // スナップショットの再送要求
	ControlSubTypeTurret ControlSubType = 9 // タレット設置要求。本文は位置 (float32 x3)
)

// AvatarSubType は DataTypeInput のサブタイプ
type AvatarSubType uint8

const (
	AvatarSubTypeOwn      AvatarSubType = 0 // 送信者自身のアバター
	AvatarSubTypeAssigned AvatarSubType = 1 // 受信者のアバターについてホストが確定した体力と生死
)

// PayloadHeader はペイロードヘッダー (2バイト)
//
//	datatype  u8 (1)
//	subtype   u8 (1)
type PayloadHeader struct {
	DataType DataType
	SubType  uint8
}

var (
	ErrInvalidHeaderSize        = errors.New("invalid header size")
	ErrInvalidPayloadSize       = errors.New("invalid payload size")
	ErrPayloadTooLarge          = errors.New("payload exceeds frame length field")
	ErrInvalidJoinPayloadSize   = errors.New("invalid join payload size")
	ErrInvalidAvatarStateSize   = errors.New("invalid avatar state size")
	ErrInvalidTurretRequestSize = errors.New("invalid turret request size")
	ErrRoomNameTooLong          = errors.New("room name longer than join payload")
)

// ParseHeader はバイト列からHeaderをパースする
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrInvalidHeaderSize
	}

	var sessionID [16]byte
	copy(sessionID[:], data[1:17])

	return &Header{
		Version:   data[0],
		SessionID: sessionID,
		Seq:       byteOrder.Uint16(data[17:19]),
		Length:    byteOrder.Uint16(data[19:21]),
		Timestamp: byteOrder.Uint32(data[21:25]),
	}, nil
}

// Encode はHeaderをバイト列にエンコードする
func (h *Header) Encode() []byte {
	data := make([]byte, HeaderSize)
	data[0] = h.Version
	copy(data[1:17], h.SessionID[:])
	byteOrder.PutUint16(data[17:19], h.Seq)
	byteOrder.PutUint16(data[19:21], h.Length)
	byteOrder.PutUint32(data[21:25], h.Timestamp)
	return data
}

// ParsePayloadHeader はバイト列からPayloadHeaderをパースする
func ParsePayloadHeader(data []byte) (*PayloadHeader, error) {
	if len(data) < PayloadHeaderSize {
		return nil, ErrInvalidPayloadSize
	}

	return &PayloadHeader{
		DataType: DataType(data[0]),
		SubType:  data[1],
	}, nil
}

// Encode はPayloadHeaderをバイト列にエンコードする
func (p *PayloadHeader) Encode() []byte {
	return []byte{byte(p.DataType), p.SubType}
}

// ParseFrame はフレームをヘッダー、ペイロードヘッダー、本文に分けます。
func ParseFrame(data []byte) (*Header, *PayloadHeader, []byte, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, nil, nil, err
	}
	payloadHeader, err := ParsePayloadHeader(data[HeaderSize:])
	if err != nil {
		return nil, nil, nil, err
	}
	return header, payloadHeader, data[HeaderSize+PayloadHeaderSize:], nil
}

// EncodeFrame はヘッダー付きのフレームを組み立てます。
func EncodeFrame(sessionID SessionID, seq uint16, dataType DataType, subType uint8, body []byte) ([]byte, error) {
	if len(body) > MaxBodySize {
		return nil, ErrPayloadTooLarge
	}
	header := Header{
		Version:   ProtocolVersion,
		SessionID: sessionID.Bytes(),
		Seq:       seq,
		Length:    uint16(PayloadHeaderSize + len(body)),
		Timestamp: timestamp(),
	}
	payloadHeader := PayloadHeader{DataType: dataType, SubType: subType}

	data := make([]byte, 0, HeaderSize+PayloadHeaderSize+len(body))
	data = append(data, header.Encode()...)
	data = append(data, payloadHeader.Encode()...)
	data = append(data, body...)
	return data, nil
}

func timestamp() uint32 {
	return uint32(time.Now().UnixMilli() & 0xFFFFFFFF)
}

// EncodeControlMessage は本文なしの制御メッセージをエンコードする
func EncodeControlMessage(sessionID SessionID, subType ControlSubType) []byte {
	data, _ := EncodeFrame(sessionID, 0, DataTypeControl, uint8(subType), nil)
	return data
}

// EncodeAssignMessage はセッションID通知メッセージをエンコードする
// クライアントに自分のセッションIDを通知するために使用
func EncodeAssignMessage(sessionID SessionID) []byte {
	return EncodeControlMessage(sessionID, ControlSubTypeAssign)
}

// EncodeLeaveMessage はルーム離脱メッセージをエンコードする
// 異常切断時にclose()からRoom離脱を通知するために使用
func EncodeLeaveMessage(sessionID SessionID) []byte {
	return EncodeControlMessage(sessionID, ControlSubTypeLeave)
}

// EncodePingMessage はPingメッセージをエンコードする
func EncodePingMessage(sessionID SessionID) []byte {
	return EncodeControlMessage(sessionID, ControlSubTypePing)
}

// JoinPayload はルーム参加メッセージのペイロード (16バイト)
//
//	room  [16]byte  - ルーム名 (NUL 詰め)。全て 0 なら自動割り当て
type JoinPayload struct {
	RoomID RoomID
}

// ParseJoinPayload はバイト列からJoinPayloadをパースする
func ParseJoinPayload(data []byte) (*JoinPayload, error) {
	if len(data) < JoinPayloadSize {
		return nil, ErrInvalidJoinPayloadSize
	}
	name := bytes.TrimRight(data[:JoinPayloadSize], "\x00")
	return &JoinPayload{RoomID: RoomID(name)}, nil
}

// Encode はJoinPayloadをバイト列にエンコードする
func (j *JoinPayload) Encode() ([]byte, error) {
	if len(j.RoomID) > JoinPayloadSize {
		return nil, ErrRoomNameTooLong
	}
	data := make([]byte, JoinPayloadSize)
	copy(data, j.RoomID)
	return data, nil
}

// EncodeJoinMessage は参加要求をエンコードする。room が空なら自動割り当て
func EncodeJoinMessage(sessionID SessionID, seq uint16, room RoomID) ([]byte, error) {
	body, err := (&JoinPayload{RoomID: room}).Encode()
	if err != nil {
		return nil, err
	}
	return EncodeFrame(sessionID, seq, DataTypeControl, uint8(ControlSubTypeJoin), body)
}

// AvatarState のフラグ
const (
	AvatarFlagAlive   uint8 = 1 << 0
	AvatarFlagPresent uint8 = 1 << 1
)

// AvatarState は各ピアが自分のアバターについて毎 tick 送る状態 (15バイト)
//
//	x, y, z  float32 (12) - 位置
//	health   u16     (2)
//	flags    u8      (1)  - AvatarFlag*
type AvatarState struct {
	X, Y, Z float32
	Health  uint16
	Flags   uint8
}

// ParseAvatarState はバイト列からAvatarStateをパースする
func ParseAvatarState(data []byte) (*AvatarState, error) {
	if len(data) < AvatarStateSize {
		return nil, ErrInvalidAvatarStateSize
	}

	return &AvatarState{
		X:      math.Float32frombits(byteOrder.Uint32(data[0:4])),
		Y:      math.Float32frombits(byteOrder.Uint32(data[4:8])),
		Z:      math.Float32frombits(byteOrder.Uint32(data[8:12])),
		Health: byteOrder.Uint16(data[12:14]),
		Flags:  data[14],
	}, nil
}

// Encode はAvatarStateをバイト列にエンコードする
func (a *AvatarState) Encode() []byte {
	data := make([]byte, AvatarStateSize)
	byteOrder.PutUint32(data[0:4], math.Float32bits(a.X))
	byteOrder.PutUint32(data[4:8], math.Float32bits(a.Y))
	byteOrder.PutUint32(data[8:12], math.Float32bits(a.Z))
	byteOrder.PutUint16(data[12:14], a.Health)
	data[14] = a.Flags
	return data
}

// EncodeTurretRequest はタレット設置要求を組み立てる
func EncodeTurretRequest(sessionID SessionID, seq uint16, x, y, z float32) ([]byte, error) {
	body := make([]byte, TurretRequestSize)
	byteOrder.PutUint32(body[0:4], math.Float32bits(x))
	byteOrder.PutUint32(body[4:8], math.Float32bits(y))
	byteOrder.PutUint32(body[8:12], math.Float32bits(z))
	return EncodeFrame(sessionID, seq, DataTypeControl, uint8(ControlSubTypeTurret), body)
}

// ParseTurretRequest はタレット設置要求の本文から位置を取り出す
func ParseTurretRequest(body []byte) (x, y, z float32, err error) {
	if len(body) < TurretRequestSize {
		return 0, 0, 0, ErrInvalidTurretRequestSize
	}
	x = math.Float32frombits(byteOrder.Uint32(body[0:4]))
	y = math.Float32frombits(byteOrder.Uint32(body[4:8]))
	z = math.Float32frombits(byteOrder.Uint32(body[8:12]))
	return x, y, z, nil
}

func (a *AvatarState) Alive() bool { return a.Flags&AvatarFlagAlive != 0 }

func (a *AvatarState) Present() bool { return a.Flags&AvatarFlagPresent != 0 }
