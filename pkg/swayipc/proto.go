// Package swayipc implements the client side of the i3/sway IPC protocol:
// length-prefixed JSON frames over a unix domain socket.
//
// Wire format, little-endian:
//
//	"i3-ipc" <uint32 payload length> <uint32 message type> <payload>
//
// Replies carry the type of the request they answer. Event frames set the
// high bit of the type field. The compositor owns the payload schema; this
// package decodes only the fields the adapters consume.
package swayipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const magic = "i3-ipc"

const headerLen = len(magic) + 8 // magic + payload length + message type

// maxPayload bounds a single frame. Real compositor trees are well under
// this; anything larger means a corrupt stream.
const maxPayload = 16 << 20

// Request message types.
const (
	msgRunCommand    uint32 = 0
	msgGetWorkspaces uint32 = 1
	msgSubscribe     uint32 = 2
	msgGetOutputs    uint32 = 3
	msgGetTree       uint32 = 4
	msgGetInputs     uint32 = 100
)

// eventFlag marks event frames in the type field.
const eventFlag uint32 = 1 << 31

// Event types as delivered on a subscribed connection.
const (
	EventWorkspace uint32 = eventFlag | 0
	EventOutput    uint32 = eventFlag | 1
	EventWindow    uint32 = eventFlag | 3
	EventShutdown  uint32 = eventFlag | 6
	EventInput     uint32 = eventFlag | 21
)

// ErrNoSocket is returned when neither SWAYSOCK nor I3SOCK points at a
// compositor socket.
var ErrNoSocket = errors.New("swayipc: no compositor socket (SWAYSOCK/I3SOCK unset)")

// SocketPath discovers the compositor socket from the environment.
func SocketPath() (string, error) {
	if p := os.Getenv("SWAYSOCK"); p != "" {
		return p, nil
	}
	if p := os.Getenv("I3SOCK"); p != "" {
		return p, nil
	}
	return "", ErrNoSocket
}

// writeFrame writes one framed message.
func writeFrame(w io.Writer, msgType uint32, payload []byte) error {
	buf := make([]byte, headerLen+len(payload))
	copy(buf, magic)
	binary.LittleEndian.PutUint32(buf[6:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[10:], msgType)
	copy(buf[headerLen:], payload)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// readFrame reads one framed message.
func readFrame(r io.Reader) (msgType uint32, payload []byte, err error) {
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, fmt.Errorf("read header: %w", err)
	}
	if string(header[:6]) != magic {
		return 0, nil, fmt.Errorf("bad magic %q", header[:6])
	}
	n := binary.LittleEndian.Uint32(header[6:])
	msgType = binary.LittleEndian.Uint32(header[10:])
	if n > maxPayload {
		return 0, nil, fmt.Errorf("frame of %d bytes exceeds limit", n)
	}
	payload = make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("read payload: %w", err)
	}
	return msgType, payload, nil
}

// isEvent reports whether a frame type is an event rather than a reply.
func isEvent(msgType uint32) bool { return msgType&eventFlag != 0 }
