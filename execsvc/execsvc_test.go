package execsvc_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/nabbar/networkd/config"
	"github.com/nabbar/networkd/execsvc"
	"github.com/nabbar/networkd/flatjson"
	"github.com/nabbar/networkd/frame"
	"github.com/nabbar/networkd/logger"
)

func fakeProgram(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDispatchListInterfaces(t *testing.T) {
	cfg := config.Default()
	cfg.IfconfigPath = fakeProgram(t, "echo 'em0: flags=1<UP> mtu 1500'")

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	h := execsvc.New(cfg, logger.New(logger.DebugLevel))
	done := make(chan error, 1)
	go func() { done <- h.Serve(context.Background(), frame.NewChannel(server)) }()

	reply, err := frame.NewChannel(client).Call(execsvc.ListInterfaces, nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if reply.Type != execsvc.ResponseOK {
		t.Errorf("status = %d, want ResponseOK", reply.Type)
	}
	client.Close()
	server.Close()
	<-done
}

func TestDispatchIfconfigDownRequiresValidIface(t *testing.T) {
	cfg := config.Default()
	cfg.IfconfigPath = fakeProgram(t, "echo down")

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	h := execsvc.New(cfg, logger.New(logger.DebugLevel))
	done := make(chan error, 1)
	go func() { done <- h.Serve(context.Background(), frame.NewChannel(server)) }()

	var payload []byte
	var err error
	payload, err = encodeArgs(".badiface")
	if err != nil {
		t.Fatalf("encodeArgs: %v", err)
	}
	reply, err := frame.NewChannel(client).Call(execsvc.IfconfigDown, payload)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if reply.Type != execsvc.ResponseError {
		t.Errorf("status = %d, want ResponseError for invalid iface", reply.Type)
	}
	client.Close()
	server.Close()
	<-done
}

func TestDispatchUnknownType(t *testing.T) {
	cfg := config.Default()
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	h := execsvc.New(cfg, logger.New(logger.DebugLevel))
	done := make(chan error, 1)
	go func() { done <- h.Serve(context.Background(), frame.NewChannel(server)) }()

	reply, err := frame.NewChannel(client).Call(999, nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if reply.Type != execsvc.ResponseError {
		t.Errorf("status = %d, want ResponseError for unknown type", reply.Type)
	}
	client.Close()
	server.Close()
	<-done
}

func encodeArgs(elems ...string) ([]byte, error) {
	var buf []byte
	for _, e := range elems {
		buf = append(buf, '"')
		buf = append(buf, []byte(flatjson.Escape(e))...)
		buf = append(buf, '"')
	}
	return buf, nil
}
