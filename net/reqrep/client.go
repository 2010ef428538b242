package reqrep

import (
	"context"
	"fmt"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
)

// OpError reports which stage of an outbound round trip failed.
type OpError struct {
	Op   string // "dial", "send" or "receive"
	Addr string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

type Client struct {
	codec  Codec
	dialer net.Dialer
}

func NewClient(codec Codec) *Client {
	return &Client{codec: codec}
}

// Call opens a connection to address, sends req, waits for a single reply into rep and
// closes the connection. It blocks until the reply arrives, the connection fails or ctx ends.
func (c *Client) Call(ctx context.Context, address string, req any, rep any) (err error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return &OpError{Op: "dial", Addr: address, Err: err}
	}
	defer conn.Close()

	// Unblock pending reads and writes once the context is done
	stop := context.AfterFunc(ctx, func() {
		if err := conn.SetDeadline(time.Now()); err != nil {
			log.Debugf("reqrep.Client: failed to interrupt call to %s: %v", address, err)
		}
	})
	defer stop()

	defer func() {
		if err != nil && ctx.Err() != nil {
			err.(*OpError).Err = ctx.Err()
		}
	}()

	if err := c.codec.NewEncoder(conn).Encode(req); err != nil {
		return &OpError{Op: "send", Addr: address, Err: err}
	}

	if err := c.codec.NewDecoder(conn).Decode(rep); err != nil {
		return &OpError{Op: "receive", Addr: address, Err: err}
	}

	return nil
}
