// Package ctl exposes a control socket for scripting the running shell.
//
// Protocol: the client sends one text line, the server answers with one
// JSON line and closes the connection. Commands:
//
//	status                     -> pipeline and adapter health
//	state                      -> full view model snapshot
//	workspace <id>             -> focus workspace
//	volume set <channel> <lvl> -> set channel volume
//	volume mute <channel>      -> toggle channel mute ("toggle" also accepted)
//	layout next | layout <idx> -> switch keyboard layout
package ctl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"gitlab.com/tinyland/lab/swaypulse/pkg/adapters"
	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
)

// Backend is the slice of the engine the control surface needs.
type Backend interface {
	Submit(cmd command.Command) error
	Snapshot() state.Snapshot
	Revision() uint64
	Adapters() []adapters.Status
	Drops() uint64
	Pending() int
}

// Reply is the JSON answer for command requests.
type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// StatusReply is the JSON answer for the status command.
type StatusReply struct {
	OK       bool            `json:"ok"`
	Revision uint64          `json:"revision"`
	Pending  int             `json:"pending"`
	Drops    uint64          `json:"drops"`
	Adapters []AdapterStatus `json:"adapters"`
}

// AdapterStatus is one adapter's health as reported by status.
type AdapterStatus struct {
	Name      string `json:"name"`
	Domain    string `json:"domain"`
	Healthy   bool   `json:"healthy"`
	Restarts  int64  `json:"restarts"`
	LastError string `json:"last_error,omitempty"`
}

// Server listens on a Unix domain socket for control commands.
type Server struct {
	socketPath string
	backend    Backend
	logger     *slog.Logger
	listener   net.Listener
	wg         sync.WaitGroup
	done       chan struct{}
}

// NewServer creates a control server on socketPath.
func NewServer(socketPath string, backend Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		backend:    backend,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start listens on the socket. A stale socket file is removed first; the
// fresh one is restricted to the owner.
func (s *Server) Start() error {
	os.Remove(s.socketPath)

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.socketPath, err)
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("chmod socket: %w", err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener, waits for in-flight requests, and removes the
// socket file. Safe to call more than once.
func (s *Server) Stop() {
	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				s.logger.Debug("control accept failed", "error", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// handleConn serves one request: a line in, a JSON line out.
func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		return
	}
	line := strings.TrimSpace(scanner.Text())
	if line == "" {
		return
	}

	payload, err := s.dispatch(line)
	if err != nil {
		payload, _ = json.Marshal(Reply{Error: err.Error()})
	}
	fmt.Fprintf(conn, "%s\n", payload)
}

// dispatch parses a request line and produces the JSON answer.
func (s *Server) dispatch(line string) ([]byte, error) {
	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])

	switch verb {
	case "status":
		return json.Marshal(s.status())

	case "state":
		return json.Marshal(s.backend.Snapshot())

	case "workspace":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: workspace <id>")
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("workspace id %q: not a number", fields[1])
		}
		return s.submit(&command.FocusWorkspace{ID: id})

	case "volume":
		return s.dispatchVolume(fields[1:])

	case "layout":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: layout next | layout <index>")
		}
		return s.dispatchLayout(fields[1])

	default:
		return nil, fmt.Errorf("unknown command %q", verb)
	}
}

func (s *Server) dispatchVolume(args []string) ([]byte, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("usage: volume set <channel> <level> | volume mute <channel>")
	}
	ch := event.Channel(args[1])

	switch strings.ToLower(args[0]) {
	case "set":
		if len(args) != 3 {
			return nil, fmt.Errorf("usage: volume set <channel> <level>")
		}
		level, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("volume level %q: not a number", args[2])
		}
		return s.submit(&command.SetVolume{Channel: ch, Level: level})
	case "mute", "toggle":
		if len(args) != 2 {
			return nil, fmt.Errorf("usage: volume mute <channel>")
		}
		return s.submit(&command.ToggleMute{Channel: ch})
	default:
		return nil, fmt.Errorf("unknown volume action %q", args[0])
	}
}

// dispatchLayout resolves "next" against the current layout list before
// submitting, so the command sent to the compositor is always absolute.
func (s *Server) dispatchLayout(arg string) ([]byte, error) {
	if strings.ToLower(arg) == "next" {
		layout := s.backend.Snapshot().Layout
		if len(layout.Names) == 0 {
			return nil, fmt.Errorf("no keyboard layouts known yet")
		}
		next := (layout.Active + 1) % len(layout.Names)
		return s.submit(&command.SwitchLayout{Index: next})
	}

	idx, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("layout index %q: not a number", arg)
	}
	return s.submit(&command.SwitchLayout{Index: idx})
}

func (s *Server) submit(cmd command.Command) ([]byte, error) {
	if err := s.backend.Submit(cmd); err != nil {
		return nil, err
	}
	return json.Marshal(Reply{OK: true})
}

func (s *Server) status() StatusReply {
	reply := StatusReply{
		OK:       true,
		Revision: s.backend.Revision(),
		Pending:  s.backend.Pending(),
		Drops:    s.backend.Drops(),
	}
	for _, st := range s.backend.Adapters() {
		as := AdapterStatus{
			Name:     st.Name,
			Domain:   string(st.Domain),
			Healthy:  st.Healthy,
			Restarts: st.Restarts,
		}
		if st.LastError != nil {
			as.LastError = st.LastError.Error()
		}
		reply.Adapters = append(reply.Adapters, as)
	}
	return reply
}

// Client sends one-shot commands to a running shell.
type Client struct {
	socketPath string
}

// NewClient returns a client for the control socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Send writes one command line and returns the JSON answer line. Each call
// opens a fresh connection.
func (c *Client) Send(line string) (string, error) {
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return "", fmt.Errorf("connect control socket: %w", err)
	}
	defer conn.Close()

	fmt.Fprintf(conn, "%s\n", line)

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read reply: %w", err)
		}
		return "", fmt.Errorf("empty reply")
	}
	return scanner.Text(), nil
}
