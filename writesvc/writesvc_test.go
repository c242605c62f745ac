package writesvc_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/nabbar/networkd/config"
	"github.com/nabbar/networkd/flatjson"
	"github.com/nabbar/networkd/frame"
	"github.com/nabbar/networkd/logger"
	"github.com/nabbar/networkd/writesvc"
)

func serve(t *testing.T, dir string) (*frame.Channel, func()) {
	t.Helper()
	cfg := config.Default()
	cfg.WriteDir = dir

	client, server := net.Pipe()
	h := writesvc.New(cfg, logger.New(logger.DebugLevel))
	done := make(chan error, 1)
	go func() { done <- h.Serve(context.Background(), frame.NewChannel(server)) }()

	return frame.NewChannel(client), func() {
		client.Close()
		server.Close()
		<-done
	}
}

func payload(elems ...string) []byte {
	var buf []byte
	for _, e := range elems {
		buf = append(buf, '"')
		buf = append(buf, []byte(flatjson.Escape(e))...)
		buf = append(buf, '"')
	}
	return buf
}

func TestWriteSkipsInvalidStanzas(t *testing.T) {
	dir := t.TempDir()
	ch, cleanup := serve(t, dir)
	defer cleanup()

	reply, err := ch.Call(writesvc.Write, payload("em0", "dhcp", "!run /bin/sh", "rtsol"))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if reply.Type != writesvc.ResponseOK {
		t.Fatalf("status = %d, want ResponseOK", reply.Type)
	}

	data, err := os.ReadFile(filepath.Join(dir, "hostname.em0"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "dhcp\nrtsol\n" {
		t.Errorf("file contents = %q, want %q", string(data), "dhcp\nrtsol\n")
	}
}

func TestWriteRejectsInvalidIface(t *testing.T) {
	dir := t.TempDir()
	ch, cleanup := serve(t, dir)
	defer cleanup()

	reply, err := ch.Call(writesvc.Write, payload(".bad", "dhcp"))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if reply.Type != writesvc.ResponseError {
		t.Errorf("status = %d, want ResponseError", reply.Type)
	}
}

func TestAutoconfigureCreatesOnlyWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	ch, cleanup := serve(t, dir)
	defer cleanup()

	reply, err := ch.Call(writesvc.Autoconfigure, payload("em0"))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if reply.Type != writesvc.ResponseOK {
		t.Fatalf("status = %d, want ResponseOK", reply.Type)
	}

	data, err := os.ReadFile(filepath.Join(dir, "hostname.em0"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "dhcp\n" {
		t.Errorf("file contents = %q, want dhcp\\n", string(data))
	}

	if err := os.WriteFile(filepath.Join(dir, "hostname.em0"), []byte("nwid office\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	reply, err = ch.Call(writesvc.Autoconfigure, payload("em0"))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if reply.Type != writesvc.ResponseOK {
		t.Fatalf("status = %d, want ResponseOK on existing file", reply.Type)
	}

	data, err = os.ReadFile(filepath.Join(dir, "hostname.em0"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "nwid office\n" {
		t.Errorf("existing file was overwritten: got %q", string(data))
	}
}
