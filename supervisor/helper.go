// Package supervisor owns the event loop: it forks the exec and write
// helper children, binds and chmods the listening socket, drops
// privileges, and multiplexes client connections, helper channels and the
// routing watcher until told to shut down.
//
// Go gives a process no safe fork(2) without exec once goroutines are
// running, so where the original daemon forks and immediately branches to
// a handler function in the child, this package instead re-execs its own
// binary with the HelperEnvVar environment variable telling the new process
// which helper to run, passing the helper's end of a socketpair in as an
// inherited file descriptor. cmd/networkd's main() checks that variable
// before anything else and, if set, never reaches the supervisor at all.
package supervisor

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/nabbar/networkd/config"
	"github.com/nabbar/networkd/frame"
)

// HelperEnvVar is set in a spawned helper's environment to tell main() which
// helper loop to run instead of starting the supervisor.
const HelperEnvVar = "NETWORKD_HELPER"

const (
	HelperExec  = "exec"
	HelperWrite = "write"
)

// spawnHelper creates a stream socketpair, re-execs the current binary with
// HelperEnvVar set to kind and the child's end of the socketpair inherited
// as fd 3, sends cfg as the helper's first frame, and returns a
// frame.Channel wrapping the parent's end.
//
// The re-exec'd process never parses os.Args itself — cobra only runs in
// the supervisor's own process — so cfg is the one copy of the resolved
// configuration (flags, environment and config file already merged) the
// helper will ever see. Without this handoff the helper would silently
// fall back to config.Default() and ignore every non-default
// --ifconfig-path/--netstart-path/--logevent-path/--write-dir/--socket-mode
// the operator configured.
func spawnHelper(kind string, cfg config.Config) (*frame.Channel, *os.Process, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("supervisor: socketpair for %s helper: %w", kind, err)
	}

	parentFD, childFD := fds[0], fds[1]

	childFile := os.NewFile(uintptr(childFD), kind+"-helper-child")
	defer childFile.Close()

	exe, err := os.Executable()
	if err != nil {
		unix.Close(parentFD)
		unix.Close(childFD)
		return nil, nil, fmt.Errorf("supervisor: resolving executable path: %w", err)
	}

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), HelperEnvVar+"="+kind)
	cmd.ExtraFiles = []*os.File{childFile}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		unix.Close(parentFD)
		unix.Close(childFD)
		return nil, nil, fmt.Errorf("supervisor: spawning %s helper: %w", kind, err)
	}

	parentFile := os.NewFile(uintptr(parentFD), kind+"-helper-parent")
	ch := frame.NewChannel(parentFile)

	if err := sendConfig(ch, cfg); err != nil {
		_ = cmd.Process.Kill()
		return nil, nil, fmt.Errorf("supervisor: handing off config to %s helper: %w", kind, err)
	}

	return ch, cmd.Process, nil
}

// HelperConn returns fd 3 wrapped as a frame.Channel: the socketpair end a
// spawned helper process inherits from its parent. Called from a helper's
// own entrypoint, never from the supervisor.
func HelperConn() *frame.Channel {
	return frame.NewChannel(os.NewFile(3, "helper-conn"))
}

// sendConfig writes cfg as the very first frame a freshly spawned helper
// reads. Its type field carries no meaning: this frame is never routed
// through a helper's own request dispatch, only consumed directly by
// RecvConfig before the helper enters its serve loop.
func sendConfig(ch *frame.Channel, cfg config.Config) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("supervisor: encoding helper config: %w", err)
	}
	return ch.Send(0, payload)
}

// RecvConfig reads the one config handoff frame a helper's entrypoint must
// consume before entering its request-serving loop.
func RecvConfig(ch *frame.Channel) (config.Config, error) {
	f, err := ch.Recv()
	if err != nil {
		return config.Config{}, fmt.Errorf("supervisor: receiving helper config: %w", err)
	}
	var cfg config.Config
	if err := json.Unmarshal(f.Payload, &cfg); err != nil {
		return config.Config{}, fmt.Errorf("supervisor: decoding helper config: %w", err)
	}
	return cfg, nil
}
