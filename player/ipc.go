package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcResponse is the JSON structure received from mpv's IPC socket.
// Lines carrying Event are broadcasts and never answer a command.
type ipcResponse struct {
	Data      any    `json:"data"`
	Error     string `json:"error"`
	Event     string `json:"event"`
	RequestID int64  `json:"request_id"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 1 * time.Second
	maxLineSize  = 1 << 20
)

// errPropertyUnavailable is what mpv answers for a property of media that is not loaded.
var errPropertyUnavailable = errors.New("mpv error: property unavailable")

var requestIDs atomic.Int64

// sendCommand sends a JSON-IPC command to mpv via Unix domain socket,
// retrying transient connection errors.
func (m *MPV) sendCommand(command []any) (any, error) {
	return m.sendCommandContext(context.Background(), command)
}

// sendCommandContext is sendCommand that stops retrying once ctx is done.
func (m *MPV) sendCommandContext(ctx context.Context, command []any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		result, err := doSendCommand(m.socketPath, command)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, errPropertyUnavailable) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

// doSendCommand performs a single IPC command attempt on a fresh connection.
func doSendCommand(socketPath string, command []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	id, err := writeCommand(conn, command)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxLineSize)

	// mpv may broadcast events to every client before it answers
	for scanner.Scan() {
		var resp ipcResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}
		if resp.Event != "" || resp.RequestID != id {
			continue
		}
		return resp.result()
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, errors.New("read: connection closed before response")
}

// writeCommand sends command on conn tagged with a fresh request id.
func writeCommand(conn net.Conn, command []any) (int64, error) {
	id := requestIDs.Add(1)

	payload, err := json.Marshal(ipcCommand{Command: command, RequestID: id})
	if err != nil {
		return 0, fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}

	return id, nil
}

func (r ipcResponse) result() (any, error) {
	switch r.Error {
	case "", "success":
		return r.Data, nil
	case "property unavailable":
		return nil, errPropertyUnavailable
	default:
		return nil, fmt.Errorf("mpv error: %s", r.Error)
	}
}
