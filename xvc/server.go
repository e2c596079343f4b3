package xvc

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gremwell/jtagctl/jerr"
	"github.com/gremwell/jtagctl/pin"
)

// protocolVersion is the XVC 1.0 getinfo response, advertising a 2048-bit
// maximum vector length per spec.md §4.7.
const protocolVersion = "xvcServer_v1.0:2048\n"

// maxShiftBytes bounds a single shift payload's TMS+TDI buffer size; a
// client asking for more is a ProtocolError and the connection is dropped.
const maxShiftBytes = 4096

// readTimeout keeps the accept/read loop responsive to shutdown signals
// without spinning, mirroring the original's 1-second socket timeout.
const readTimeout = time.Second

// Server is an XVC v1.0 TCP server driving a pin.Driver directly, one
// client at a time, per spec.md §4.7's single-threaded cooperative model.
type Server struct {
	Driver  pin.Driver
	Delay   Delay
	Port    int
	Verbose bool
	log     *log.Logger
	done    chan struct{}
}

// NewServer returns a Server ready to ListenAndServe. logger may be nil, in
// which case log.Default is used.
func NewServer(drv pin.Driver, delay Delay, port int, verbose bool, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{Driver: drv, Delay: delay, Port: port, Verbose: verbose, log: logger}
}

// ListenAndServe opens the TCP listener and accepts clients, one at a time,
// until sig delivers SIGINT or SIGTERM or the listener errors.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.Port))
	if err != nil {
		return &jerr.IoError{Msg: "xvc: listen", Err: err}
	}
	defer ln.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	done := make(chan struct{})
	s.done = done
	go func() {
		<-sig
		s.log.Println("[info] shutting down")
		close(done)
		ln.Close()
	}()

	s.log.Printf("[info] XVC server listening on port %d", s.Port)

	for {
		select {
		case <-done:
			return nil
		default:
		}
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-done:
				return nil
			default:
			}
			return &jerr.IoError{Msg: "xvc: accept", Err: err}
		}
		s.handleClient(conn)
	}
}

// handleClient serves XVC commands on conn until the client disconnects, a
// framing error occurs, an unknown command prefix is seen, or shutdown is
// signaled. Since the accept loop calls this synchronously (spec.md §4.7's
// one-client-at-a-time model), an idle connection must notice s.done itself
// on every read timeout, or SIGINT/SIGTERM would never close its socket.
func (s *Server) handleClient(conn net.Conn) {
	defer conn.Close()
	if s.Verbose {
		s.log.Printf("[info] connection accepted from %s", conn.RemoteAddr())
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		prefix, err := readExact(conn, 2)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				select {
				case <-s.done:
					return
				default:
					continue
				}
			}
			return
		}
		conn.SetReadDeadline(time.Time{})

		switch string(prefix) {
		case "ge":
			if _, err := readExact(conn, 6); err != nil { // "tinfo:"
				return
			}
			if s.Verbose {
				s.log.Println("[debug] received command: getinfo")
			}
			if _, err := conn.Write([]byte(protocolVersion)); err != nil {
				return
			}

		case "se":
			rest, err := readExact(conn, 9) // "ttck:" + 4 bytes
			if err != nil {
				return
			}
			period := rest[5:]
			if s.Verbose {
				s.log.Printf("[debug] received command: settck, period=%dns", binary.LittleEndian.Uint32(period))
			}
			if _, err := conn.Write(period); err != nil {
				return
			}

		case "sh":
			if err := s.handleShift(conn); err != nil {
				s.log.Printf("[warn] %v", err)
				return
			}

		default:
			s.log.Printf("[warn] xvc: unknown command prefix %q", prefix)
			return
		}
	}
}

// handleShift reads one shift command's framing (after the "sh" prefix has
// already been consumed), bounds-checks the payload per spec.md §4.7, runs
// the bit-level transfer, and writes the TDO reply.
func (s *Server) handleShift(conn net.Conn) error {
	if _, err := readExact(conn, 4); err != nil { // "ift:"
		return err
	}
	lenBytes, err := readExact(conn, 4)
	if err != nil {
		return err
	}
	nbits := int(binary.LittleEndian.Uint32(lenBytes))
	numBytes := (nbits + 7) / 8
	payloadSize := numBytes * 2
	if payloadSize > maxShiftBytes {
		return &jerr.ProtocolError{Msg: fmt.Sprintf("xvc: shift payload %d bytes exceeds %d byte cap", payloadSize, maxShiftBytes)}
	}

	payload, err := readExact(conn, payloadSize)
	if err != nil {
		return err
	}
	tms := payload[:numBytes]
	tdi := payload[numBytes:]

	if s.Verbose {
		s.log.Printf("[debug] received command: shift, nbits=%d tms=% x tdi=% x", nbits, tms, tdi)
	}

	tdo := Shift(s.Driver, s.Delay, nbits, tms, tdi)
	if s.Verbose {
		s.log.Printf("[debug] tdo=% x", tdo)
	}
	_, err = conn.Write(tdo)
	return err
}

// readExact reads exactly n bytes or returns the first read error, a
// deadline timeout included; it does not retry. handleClient checks for a
// timeout on the prefix read so the shutdown signal stays responsive.
func readExact(conn net.Conn, n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := io.ReadFull(conn, buf)
	if err != nil {
		return nil, err
	}
	return buf, nil
}
