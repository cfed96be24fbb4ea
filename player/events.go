package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/panorama-cli/panorama/log"
)

// observedProperties are watched on the event connection. The id is echoed back by mpv.
var observedProperties = []string{
	"duration",
	"pause",
	"paused-for-cache",
	"eof-reached",
}

// EventCallback receives a property name with its new value, or an mpv event name with the raw event.
type EventCallback func(name string, data any)

// EventListener provides real-time mpv event monitoring via observe_property.
type EventListener struct {
	socketPath string
	callback   EventCallback

	mu        sync.Mutex
	conn      net.Conn
	listening bool
	done      chan struct{}
}

// NewEventListener creates a new event listener for the given socket.
func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
	}
}

// Start opens a persistent connection, registers the property observers on it and
// starts the read loop. mpv only delivers property-change events to the client that
// asked for them, so both must share the connection.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observedProperties {
		if _, err := writeCommand(conn, []any{"observe_property", i + 1, name}); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true
	el.done = make(chan struct{})

	go el.readLoop(conn, el.done)

	log.WithField("socket", el.socketPath).Infof("mpv event listener started, observing %v", observedProperties)
	return nil
}

// Stop closes the connection and waits for the read loop to exit.
func (el *EventListener) Stop() {
	el.mu.Lock()
	if !el.listening {
		el.mu.Unlock()
		return
	}
	el.listening = false
	conn, done := el.conn, el.done
	el.mu.Unlock()

	conn.Close()
	<-done
}

// readLoop reads newline-delimited JSON events until the connection closes.
func (el *EventListener) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxLineSize)

	for scanner.Scan() {
		el.processEvent(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warnf("event listener read error: %v", err)
	}
}

// processEvent parses and dispatches a single mpv event line. Command replies are ignored.
func (el *EventListener) processEvent(line []byte) {
	var event map[string]any
	if err := json.Unmarshal(line, &event); err != nil {
		return
	}

	eventType, ok := event["event"].(string)
	if !ok || el.callback == nil {
		return
	}

	switch eventType {
	case "property-change":
		if name, _ := event["name"].(string); name != "" {
			el.callback(name, event["data"])
		}
	default:
		// e.g. "end-file", "seek", "playback-restart"
		el.callback(eventType, event)
	}
}
