package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"peerchat/config"
	"peerchat/datamodel/peer"
	"peerchat/datastore/memory"
	"peerchat/swarm/node"
	"strings"
	"sync"
	"testing"
	"time"
)

type inbox struct {
	mu    sync.Mutex
	texts []string
}

func (i *inbox) PeerRegistered(from peer.Address) {}

func (i *inbox) MessageReceived(from peer.Address, text string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.texts = append(i.texts, text)
}

func (i *inbox) Texts() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.texts...)
}

func loopbackConfig() *config.Config {
	cfg := config.NewEmptyConfig("")
	cfg.Network.ListenIP = "127.0.0.1"
	cfg.Network.CallTimeout = config.Duration{Duration: 5 * time.Second}
	return cfg
}

// startPeer runs a remote node for the console under test to talk to.
func startPeer(t *testing.T) (*node.Node, *inbox) {
	t.Helper()

	in := &inbox{}
	n, err := node.New(loopbackConfig(), in)
	if err != nil {
		t.Fatalf("Failed to create peer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return n, in
}

// serveScript runs the interactive console on a fresh node with the given input lines.
func serveScript(t *testing.T, cfg *config.Config, lines ...string) string {
	t.Helper()

	out := &bytes.Buffer{}
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := runServe(ctx, cfg, in, out); err != nil {
		t.Fatalf("runServe failed: %v", err)
	}
	return out.String()
}

func TestServeRegisterAndList(t *testing.T) {
	remote, _ := startPeer(t)

	out := serveScript(t, loopbackConfig(),
		"1", remote.Self().IP, fmt.Sprint(remote.Self().Port),
		"3",
		"4",
	)

	for _, want := range []string{
		"Your assigned IP and Port: 127.0.0.1:",
		"--- New Peer Registered ---\n" + remote.Self().String(),
		"--- Connected Peers ---\n" + remote.Self().String() + "\n",
		"Exiting...",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("Output does not contain %q:\n%s", want, out)
		}
	}

	if len(remote.Peers()) != 1 {
		t.Fatalf("Remote should know exactly one peer, got %v", remote.Peers())
	}
}

func TestServeSendMessage(t *testing.T) {
	remote, in := startPeer(t)

	out := serveScript(t, loopbackConfig(),
		"2", remote.Self().String(), "hello there",
		"4",
	)

	if !strings.Contains(out, "Message sent to "+remote.Self().String()) {
		t.Fatalf("Missing confirmation:\n%s", out)
	}
	if texts := in.Texts(); len(texts) != 1 || texts[0] != "hello there" {
		t.Fatalf("Remote received %v", texts)
	}
	if len(remote.Peers()) != 0 {
		t.Fatalf("Sending must not register: %v", remote.Peers())
	}
}

func TestServeContacts(t *testing.T) {
	remote, in := startPeer(t)

	cfg := loopbackConfig()
	cfg.Directory.Path = filepath.Join(t.TempDir(), "contacts")

	out := serveScript(t, cfg,
		"5", "alice", remote.Self().String(),
		"6",
		"2", "alice", "hi alice",
		"4",
	)

	if !strings.Contains(out, "alice: "+remote.Self().String()) {
		t.Fatalf("Contact not listed:\n%s", out)
	}
	if texts := in.Texts(); len(texts) != 1 || texts[0] != "hi alice" {
		t.Fatalf("Remote received %v", texts)
	}

	// The contact survives in the directory
	buf := &bytes.Buffer{}
	if err := runContacts(cfg, []string{"list"}, buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "alice\t"+remote.Self().String()) {
		t.Fatalf("Contact was not persisted: %q", buf.String())
	}
}

func TestServeReportsFailures(t *testing.T) {
	port, err := node.ReserveEphemeralPort("127.0.0.1")
	if err != nil {
		t.Fatal(err)
	}

	out := serveScript(t, loopbackConfig(),
		"9",
		"2", fmt.Sprintf("127.0.0.1:%d", port), "anyone?",
		"3",
		"4",
	)

	for _, want := range []string{"Invalid option. Please try again.", "Error sending message:", "No peers connected."} {
		if !strings.Contains(out, want) {
			t.Fatalf("Output does not contain %q:\n%s", want, out)
		}
	}
}

func TestConsoleRendersInboundMessage(t *testing.T) {
	out := &bytes.Buffer{}
	c := NewConsole(strings.NewReader(""), out, memory.NewDirectory(), 0)

	c.MessageReceived(peer.Address{IP: "10.0.0.5", Port: 40001}, "hello")

	if !strings.Contains(out.String(), "--- New Message ---\n10.0.0.5:40001: hello [") {
		t.Fatalf("Unexpected rendering:\n%s", out.String())
	}
}

func TestConsoleRendersRegistrationWithPrompt(t *testing.T) {
	out := &bytes.Buffer{}
	c := NewConsole(strings.NewReader(""), out, memory.NewDirectory(), 0)

	c.PeerRegistered(peer.Address{IP: "10.0.0.6", Port: 40002})

	s := out.String()
	if !strings.Contains(s, "--- New Peer Registered ---\n10.0.0.6:40002\n") {
		t.Fatalf("Missing notification:\n%s", s)
	}
	if !strings.HasSuffix(s, "Choose an option: ") {
		t.Fatalf("Prompt was not re-rendered:\n%s", s)
	}
}

func TestRunContacts(t *testing.T) {
	cfg := config.NewEmptyConfig("")

	if err := runContacts(cfg, []string{"list"}, &bytes.Buffer{}); err == nil {
		t.Fatal("Expected an error without a directory path")
	}

	cfg.Directory.Path = filepath.Join(t.TempDir(), "contacts")

	out := &bytes.Buffer{}
	if err := runContacts(cfg, []string{"add", "bob", "10.0.0.2:2002"}, out); err != nil {
		t.Fatal(err)
	}
	if err := runContacts(cfg, []string{"add", "bob", "not-an-address"}, out); err == nil {
		t.Fatal("Expected an error for an invalid address")
	}
	if err := runContacts(cfg, []string{"remove", "bob"}, out); err != errUsage {
		t.Fatalf("Expected errUsage, got %v", err)
	}

	out.Reset()
	if err := runContacts(cfg, []string{"list"}, out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "bob\t10.0.0.2:2002\n" {
		t.Fatalf("Unexpected listing: %q", out.String())
	}
}

func TestConsoleReaderStopsAfterExit(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	go pw.Write([]byte("4\nleft over\n"))

	c := NewConsole(pr, io.Discard, memory.NewDirectory(), 0)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	select {
	case <-c.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Input reader still blocked after the console exited")
	}
}
