// Package reqrep implements a strict request/reply transport: every TCP connection carries
// exactly one request followed by exactly one reply.
package reqrep

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrNoReply = errors.New("handler produced no reply")

// RoundTrip is one inbound request waiting for its reply.
type RoundTrip struct {
	Remote net.Addr
	dec    Decoder
	after  []func()
}

// Decode reads the request body into v. It may be called once.
func (rt *RoundTrip) Decode(v any) error {
	return rt.dec.Decode(v)
}

// AfterReply schedules f to run once the reply has been written, whether or not the write
// succeeded. Callbacks run in registration order on the serving goroutine.
func (rt *RoundTrip) AfterReply(f func()) {
	rt.after = append(rt.after, f)
}

// Handler serves a single round trip. The returned reply is always sent when non-nil.
// A non-nil error marks the round trip as failed; it is logged and the server keeps going.
type Handler interface {
	ServeRoundTrip(ctx context.Context, rt *RoundTrip) (reply any, err error)
}

type HandlerFunc func(ctx context.Context, rt *RoundTrip) (any, error)

func (f HandlerFunc) ServeRoundTrip(ctx context.Context, rt *RoundTrip) (any, error) {
	return f(ctx, rt)
}

// Result is the outcome of one served connection.
type Result struct {
	Remote net.Addr
	Err    error // nil when the reply was delivered and the handler succeeded
}

type Server struct {
	listener net.Listener
	codec    Codec
	handler  Handler
	timeout  time.Duration
	results  func(Result)
}

func NewServer(listener net.Listener, codec Codec, handler Handler) *Server {
	return &Server{
		listener: listener,
		codec:    codec,
		handler:  handler,
	}
}

// SetRequestTimeout bounds the time a single connection may take to deliver its request
// and accept its reply. Zero disables the deadline.
func (srv *Server) SetRequestTimeout(d time.Duration) {
	srv.timeout = d
}

// OnResult installs a callback invoked after every served connection.
func (srv *Server) OnResult(f func(Result)) {
	srv.results = f
}

func (srv *Server) Addr() net.Addr {
	return srv.listener.Addr()
}

// Serve accepts connections and serves them one at a time, in arrival order, until ctx is
// cancelled or the listener fails permanently.
func (srv *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		log.Debugf("reqrep.Server: context cancelled, closing listener %s", srv.listener.Addr())
		if err := srv.listener.Close(); err != nil {
			log.Warnf("reqrep.Server: error closing listener %s: %v", srv.listener.Addr(), err)
		}
	})
	defer stop()

	var tempDelay time.Duration // how long to sleep on accept failure
	for {
		conn, err := srv.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				log.Debugf("reqrep.Server: shutting down listener %s", srv.listener.Addr())
				return ctx.Err()
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				log.Warnf("reqrep.Server: accept error on %s: %v; retrying in %v", srv.listener.Addr(), err, tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			log.Errorf("reqrep.Server: critical accept error on %s: %v", srv.listener.Addr(), err)
			return err
		}
		tempDelay = 0

		res := srv.serveConn(ctx, conn)
		if res.Err != nil {
			log.Warnf("reqrep.Server: round trip with %s failed: %v", res.Remote, res.Err)
		}
		if srv.results != nil {
			srv.results(res)
		}
	}
}

func (srv *Server) serveConn(ctx context.Context, conn net.Conn) (res Result) {
	defer conn.Close()

	res.Remote = conn.RemoteAddr()
	log.Debugf("reqrep.Server: accepted connection from %s", res.Remote)

	if srv.timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(srv.timeout)); err != nil {
			log.Debugf("reqrep.Server: failed to set deadline on %s: %v", res.Remote, err)
			res.Err = fmt.Errorf("failed to set deadline: %w", err)
			return res
		}
	}

	rt := &RoundTrip{
		Remote: res.Remote,
		dec:    srv.codec.NewDecoder(conn),
	}

	var reply any
	func() {
		defer func() {
			if r := recover(); r != nil {
				reply = nil
				res.Err = fmt.Errorf("reqrep: panic while serving %s: %v", res.Remote, r)
			}
		}()
		reply, res.Err = srv.handler.ServeRoundTrip(ctx, rt)
	}()

	if reply == nil {
		if res.Err == nil {
			res.Err = ErrNoReply
		}
		return res
	}

	if err := srv.codec.NewEncoder(conn).Encode(reply); err != nil {
		res.Err = errors.Join(res.Err, fmt.Errorf("failed to write reply: %w", err))
	}

	for _, f := range rt.after {
		func() {
			defer func() {
				if r := recover(); r != nil {
					res.Err = errors.Join(res.Err, fmt.Errorf("reqrep: panic after replying to %s: %v", res.Remote, r))
				}
			}()
			f()
		}()
	}
	return res
}
