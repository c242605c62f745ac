// Package execsvc implements the exec helper child: the half of the
// privilege-separated daemon that retains the capability to spawn
// processes. It never touches the filesystem beyond the well-known,
// allow-listed program paths its operations are bound to.
package execsvc

import (
	"bytes"
	"context"
	"io"
	"os/exec"

	"github.com/nabbar/networkd/config"
	"github.com/nabbar/networkd/flatjson"
	"github.com/nabbar/networkd/frame"
	"github.com/nabbar/networkd/logger"
	"github.com/nabbar/networkd/validate"
)

// Request/status type constants shared with the supervisor over the
// frame.Channel; the same small enum doubles as command type on requests
// and status code on replies.
const (
	ListInterfaces uint32 = iota
	ListPseudoInterfaces
	IfconfigDown
	Netstart
	LogEvent

	ResponseOK
	ResponseError
)

// MaxOutput bounds the captured stdout of any spawned program, matching the
// original daemon's EXEC_BUF_LEN.
const MaxOutput = frame.MaxPayload

// Helper runs the allow-listed operations this daemon's exec helper child
// is trusted with.
type Helper struct {
	ifconfigPath string
	netstartPath string
	logEventPath string
	log          logger.Logger
}

// New builds a Helper bound to the program paths in cfg.
func New(cfg config.Config, log logger.Logger) *Helper {
	return &Helper{
		ifconfigPath: cfg.IfconfigPath,
		netstartPath: cfg.NetstartPath,
		logEventPath: cfg.LogEventPath,
		log:          log,
	}
}

// Serve reads one request frame at a time from ch, dispatches it, and
// writes back exactly one reply frame per request, enforcing the strict
// one-outstanding-request discipline the supervisor depends on. It returns
// when ch's underlying channel is closed (io.EOF).
func (h *Helper) Serve(ctx context.Context, ch *frame.Channel) error {
	for {
		req, err := ch.Recv()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		status, output := h.dispatch(ctx, req.Type, req.Payload)
		if err := ch.Send(status, output); err != nil {
			return err
		}
	}
}

func (h *Helper) dispatch(ctx context.Context, typ uint32, payload []byte) (status uint32, output []byte) {
	iface, haveIface := firstValidIface(payload)

	switch typ {
	case ListInterfaces:
		return h.run(ctx, h.ifconfigPath)

	case ListPseudoInterfaces:
		return h.run(ctx, h.ifconfigPath, "-C")

	case IfconfigDown:
		if !haveIface {
			return ResponseError, nil
		}
		return h.run(ctx, h.ifconfigPath, iface, "down")

	case Netstart:
		if !haveIface {
			return ResponseError, nil
		}
		return h.run(ctx, "/bin/sh", h.netstartPath, iface)

	case LogEvent:
		msg, _, ok, err := flatjson.Next(string(payload))
		if err != nil || !ok {
			msg = string(payload)
		}
		return h.run(ctx, h.logEventPath, msg)

	default:
		h.log.Warning("unknown exec request type", logger.Fields{"type": typ})
		return ResponseError, nil
	}
}

// firstValidIface extracts the first flatjson string element of payload and
// reports whether it passes validate.ValidateIface, mirroring the exec
// helper's "have_iface" precondition check.
func firstValidIface(payload []byte) (iface string, ok bool) {
	v, _, found, err := flatjson.Next(string(payload))
	if err != nil || !found {
		return "", false
	}
	return v, validate.ValidateIface(v)
}

// run executes name with args, capturing up to MaxOutput bytes combined
// from stdout and stderr, and reports ResponseOK iff the process exits
// zero.
func (h *Helper) run(ctx context.Context, name string, args ...string) (uint32, []byte) {
	cmd := exec.CommandContext(ctx, name, args...)

	var out bytes.Buffer
	limited := &limitedWriter{w: &out, remaining: MaxOutput}
	cmd.Stdout = limited
	cmd.Stderr = limited

	if err := cmd.Run(); err != nil {
		h.log.Warning("exec helper command failed", logger.Fields{"program": name, "error": err.Error()})
		return ResponseError, out.Bytes()
	}

	return ResponseOK, out.Bytes()
}

// limitedWriter discards bytes past its remaining budget instead of
// erroring, mirroring the original daemon's fixed-size capture buffer:
// overflow truncates output rather than failing the request.
type limitedWriter struct {
	w         io.Writer
	remaining int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	total := len(p)
	if l.remaining <= 0 {
		return total, nil
	}
	if len(p) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.w.Write(p)
	l.remaining -= n
	return total, err
}
