package websocket

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	opText  byte = 0x1
	opClose byte = 0x8
	opPing  byte = 0x9
	opPong  byte = 0xA
)

const maxMessageSize = 1 << 20

var (
	errConnectionClosed = errors.New("connection closed by peer")
	errMessageTooLarge  = errors.New("message too large")
)

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	opCode  byte
	length  uint64
	payload []byte
}

func (that *Server) sendMessage(conn *connection, action string, payload Payload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response := Message{
		Action:  action,
		Payload: payloadBytes,
	}

	responseBytes, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	return conn.write(frame{
		isFin:   true,
		opCode:  opText,
		length:  uint64(len(responseBytes)),
		payload: responseBytes,
	})
}

func writeFrame(writer *bufio.Writer, frameData frame) error {
	header := make([]byte, 2, 10)
	header[0] = frameData.opCode

	if frameData.isFin {
		header[0] |= 0x80
	}

	switch {
	case frameData.length < 126:
		header[1] = byte(frameData.length)
	case frameData.length < 1<<16:
		header[1] = 126
		header = binary.BigEndian.AppendUint16(header, uint16(frameData.length))
	default:
		header[1] = 127
		header = binary.BigEndian.AppendUint64(header, frameData.length)
	}

	if _, err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}

	if _, err := writer.Write(frameData.payload); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

// readRequest reads one complete text message, joining continuation frames and
// answering pings on the way.
func (that *Server) readRequest(conn *connection) ([]byte, error) {
	var message []byte

	for {
		f, err := readFrame(conn.rw.Reader)
		if err != nil {
			return nil, err
		}

		switch f.opCode {
		case opClose:
			return nil, errConnectionClosed
		case opPing:
			if err = conn.write(frame{isFin: true, opCode: opPong, length: f.length, payload: f.payload}); err != nil {
				return nil, err
			}
			continue
		case opPong:
			continue
		}

		if uint64(len(message))+f.length > maxMessageSize {
			return nil, errMessageTooLarge
		}

		message = append(message, f.payload...)

		if f.isFin {
			return message, nil
		}
	}
}

func readFrame(reader io.Reader) (frame, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(reader, header); err != nil {
		return frame{}, fmt.Errorf("failed to read header: %w", err)
	}

	f := frame{
		isFin:  header[0]>>7 == 1,
		opCode: header[0] & 0x0f,
	}

	masked := header[1]>>7 == 1

	length, err := readPayloadLength(reader, header[1]&0x7f)
	if err != nil {
		return frame{}, err
	}

	if length > maxMessageSize {
		return frame{}, errMessageTooLarge
	}

	mask, err := readMask(reader, masked)
	if err != nil {
		return frame{}, err
	}

	f.length = length
	f.payload, err = readData(reader, length, mask)
	if err != nil {
		return frame{}, err
	}

	return f, nil
}

func readPayloadLength(reader io.Reader, payloadLen byte) (uint64, error) {
	switch payloadLen {
	case 126:
		length := make([]byte, 2)
		if _, err := io.ReadFull(reader, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return uint64(binary.BigEndian.Uint16(length)), nil
	case 127:
		length := make([]byte, 8)
		if _, err := io.ReadFull(reader, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return binary.BigEndian.Uint64(length), nil
	default:
		return uint64(payloadLen), nil
	}
}

func readMask(reader io.Reader, masked bool) ([]byte, error) {
	if !masked {
		return nil, nil
	}

	mask := make([]byte, 4)
	if _, err := io.ReadFull(reader, mask); err != nil {
		return nil, fmt.Errorf("failed to read mask: %w", err)
	}

	return mask, nil
}

func readData(reader io.Reader, size uint64, mask []byte) ([]byte, error) {
	payload := make([]byte, size)
	if _, err := io.ReadFull(reader, payload); err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	if mask != nil {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}

	return payload, nil
}
