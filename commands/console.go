package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"peerchat/datamodel/peer"
	"peerchat/helper/format"
	"peerchat/swarm/node"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Console is the interactive operator front end of a node. It also receives the node's
// inbound events, so all writes to out go through mu.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	lines chan string

	// Closed when Run returns; the reader closes stopped once it gives up
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	node        *node.Node
	dir         peer.Directory
	callTimeout time.Duration
}

var _ node.Observer = (*Console)(nil)

func NewConsole(in io.Reader, out io.Writer, dir peer.Directory, callTimeout time.Duration) *Console {
	c := &Console{
		out:         out,
		lines:       make(chan string),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
		dir:         dir,
		callTimeout: callTimeout,
	}
	go c.readLines(in)
	return c
}

// Attach binds the console to the node it drives. It must be called before Run.
func (c *Console) Attach(n *node.Node) {
	c.node = n
}

// readLines feeds input lines to Run. After Run returns it exits on the next line read or
// at end of input; a read that never completes keeps it blocked.
func (c *Console) readLines(in io.Reader) {
	defer close(c.stopped)
	defer close(c.lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case c.lines <- scanner.Text():
		case <-c.done:
			return
		}
	}
}

func (c *Console) printf(f string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, f, args...)
}

// readLine returns the next input line. It returns false once input ends or ctx is done.
func (c *Console) readLine(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-c.lines:
		return strings.TrimSpace(line), ok
	}
}

func (c *Console) ask(ctx context.Context, prompt string) (string, bool) {
	c.printf("%s", prompt)
	return c.readLine(ctx)
}

func (c *Console) writeMenu() {
	fmt.Fprint(c.out, "\nOptions:\n")
	fmt.Fprint(c.out, "1. Register with a peer\n")
	fmt.Fprint(c.out, "2. Send a message\n")
	fmt.Fprint(c.out, "3. Display connected peers\n")
	fmt.Fprint(c.out, "4. Exit\n")
	fmt.Fprint(c.out, "5. Save a contact\n")
	fmt.Fprint(c.out, "6. List contacts\n")
	fmt.Fprint(c.out, "Choose an option: ")
}

func (c *Console) Welcome() {
	c.printf("Welcome to the P2P Chat System!\nYour assigned IP and Port: %s\nShare this with others to connect with you.\n", c.node.Self())
}

// Observer: a peer registered with us
func (c *Console) PeerRegistered(from peer.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "\n\n--- New Peer Registered ---\n%s\n----------------------------\n", from)
	c.writeMenu()
}

// Observer: a chat message arrived
func (c *Console) MessageReceived(from peer.Address, text string) {
	c.printf("\n--- New Message ---\n%s\n-------------------\n", format.Message(from.String(), text, time.Now()))
}

// Run drives the menu until the operator exits, input ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	defer c.stopOnce.Do(func() { close(c.done) })

	for {
		c.mu.Lock()
		c.writeMenu()
		c.mu.Unlock()

		choice, ok := c.readLine(ctx)
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			c.register(ctx)
		case "2":
			c.send(ctx)
		case "3":
			c.listPeers()
		case "4":
			c.printf("Exiting...\n")
			return nil
		case "5":
			c.saveContact(ctx)
		case "6":
			c.listContacts()
		default:
			c.printf("Invalid option. Please try again.\n")
		}
	}
}

// readPeer asks for a peer given as a contact name, "ip:port", or an IP followed by a port.
func (c *Console) readPeer(ctx context.Context, what string) (peer.Address, bool) {
	input, ok := c.ask(ctx, fmt.Sprintf("Enter IP or contact name of the peer %s: ", what))
	if !ok {
		return peer.Address{}, false
	}

	if addr, err := c.dir.Get(input); err == nil {
		return *addr, true
	} else if !errors.Is(err, peer.ErrNotFound) {
		c.printf("Error reading contacts: %v\n", err)
		return peer.Address{}, false
	}

	if addr, err := peer.ParseAddress(input); err == nil {
		return addr, true
	}

	portStr, ok := c.ask(ctx, "Enter port of the peer: ")
	if !ok {
		return peer.Address{}, false
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		c.printf("Invalid port %q\n", portStr)
		return peer.Address{}, false
	}

	addr := peer.Address{IP: input, Port: port}
	if err := addr.Validate(); err != nil {
		c.printf("Invalid peer: %v\n", err)
		return peer.Address{}, false
	}
	return addr, true
}

func (c *Console) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout > 0 {
		return context.WithTimeout(ctx, c.callTimeout)
	}
	return context.WithCancel(ctx)
}

func (c *Console) register(ctx context.Context) {
	addr, ok := c.readPeer(ctx, "to register with")
	if !ok {
		return
	}

	cctx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.node.RegisterWith(cctx, addr); err != nil {
		c.reportFailure("registering with peer", err)
		return
	}
	c.printf("\n--- New Peer Registered ---\n%s\n----------------------------\n", addr)
}

func (c *Console) send(ctx context.Context) {
	addr, ok := c.readPeer(ctx, "to message")
	if !ok {
		return
	}
	text, ok := c.ask(ctx, "Enter your message: ")
	if !ok {
		return
	}

	cctx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.node.SendMessage(cctx, addr, text); err != nil {
		c.reportFailure("sending message", err)
		return
	}
	c.printf("Message sent to %s\n", addr)
}

func (c *Console) reportFailure(action string, err error) {
	var rejected *node.RejectedError
	if errors.As(err, &rejected) {
		c.printf("Error %s: %s\n", action, rejected.Detail)
		return
	}
	c.printf("Error %s: %v\n", action, err)
}

func (c *Console) listPeers() {
	peers := c.node.Peers()

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(peers) == 0 {
		fmt.Fprint(c.out, "No peers connected.\n")
		return
	}
	fmt.Fprint(c.out, "\n--- Connected Peers ---\n")
	for _, p := range peers {
		fmt.Fprintf(c.out, "%s\n", p)
	}
	fmt.Fprint(c.out, "-----------------------\n")
}

func (c *Console) saveContact(ctx context.Context) {
	name, ok := c.ask(ctx, "Enter contact name: ")
	if !ok {
		return
	}
	if name == "" {
		c.printf("Contact name cannot be empty\n")
		return
	}
	raw, ok := c.ask(ctx, "Enter address (ip:port): ")
	if !ok {
		return
	}
	addr, err := peer.ParseAddress(raw)
	if err != nil {
		c.printf("Invalid address: %v\n", err)
		return
	}
	if err := c.dir.Put(name, addr); err != nil {
		c.printf("Error saving contact: %v\n", err)
		return
	}
	c.printf("Saved %s -> %s\n", name, addr)
}

func (c *Console) listContacts() {
	entries, err := c.dir.Enumerate()
	if err != nil {
		c.printf("Error reading contacts: %v\n", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(entries) == 0 {
		fmt.Fprint(c.out, "No contacts saved.\n")
		return
	}
	fmt.Fprint(c.out, "\n--- Contacts ---\n")
	for _, e := range entries {
		fmt.Fprintf(c.out, "%s: %s\n", e.Name, e.Address)
	}
	fmt.Fprint(c.out, "----------------\n")
}
