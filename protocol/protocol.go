// Package protocol dispatches one client command line at a time against the
// exec and write helper channels and encodes the JSON-array reply, per the
// client command protocol in this daemon's interface contract. Each command
// handler receives the helper channels as ordinary parameters rather than
// reaching into process-wide state.
package protocol

import (
	"fmt"
	"strings"

	"github.com/nabbar/networkd/execsvc"
	"github.com/nabbar/networkd/flatjson"
	"github.com/nabbar/networkd/frame"
	"github.com/nabbar/networkd/logger"
	"github.com/nabbar/networkd/validate"
	"github.com/nabbar/networkd/writesvc"
)

// Helpers bundles the two helper channels one Dispatch call needs. The
// supervisor owns both channels for the life of the process and passes this
// value into every command handler instead of exposing global state.
type Helpers struct {
	Exec  *frame.Channel
	Write *frame.Channel
}

// Dispatch parses one client command line (a flatjson array whose first
// element is the command name) and returns the encoded reply line to send
// back, including its trailing newline. An unrecognized command is logged as
// a warning here and returns an empty string with handled=false: callers
// send no reply at all, per this protocol's "unknown command is ignored"
// rule.
func Dispatch(h Helpers, line string, log logger.Logger) (reply string, handled bool) {
	elems, err := flatjson.Elements(line)
	if err != nil || len(elems) == 0 {
		return errorReply(), true
	}

	cmd, args := elems[0], elems[1:]

	switch cmd {
	case "list":
		return list(h, log), true
	case "configure":
		return configure(h, args), true
	case "connect":
		return connect(h, args), true
	case "disconnect":
		return disconnect(h, args), true
	default:
		log.Warning("unknown client command", logger.Fields{"cmd": cmd})
		return "", false
	}
}

func okReply() string    { return "[\"ok\"]\n" }
func errorReply() string { return "[\"error\"]\n" }

func singleIfaceArgs(iface string) []byte {
	return []byte(fmt.Sprintf("%q", iface))
}

// configure posts WRITE to the write helper with the whole argument list
// (interface name followed by stanzas) and replies ok iff it returns OK.
func configure(h Helpers, args []string) string {
	if len(args) == 0 {
		return errorReply()
	}

	var sb strings.Builder
	for _, a := range args {
		sb.WriteByte('"')
		sb.WriteString(flatjson.Escape(a))
		sb.WriteByte('"')
	}

	reply, err := h.Write.Call(writesvc.Write, []byte(sb.String()))
	if err != nil || reply.Type != writesvc.ResponseOK {
		return errorReply()
	}
	return okReply()
}

// connect autoconfigures the interface (ignoring the result) and then asks
// the exec helper to run netstart on it, replying ok iff that succeeds.
func connect(h Helpers, args []string) string {
	if len(args) != 1 || !validate.ValidateIface(args[0]) {
		return errorReply()
	}
	iface := args[0]

	_, _ = h.Write.Call(writesvc.Autoconfigure, singleIfaceArgs(iface))

	reply, err := h.Exec.Call(execsvc.Netstart, singleIfaceArgs(iface))
	if err != nil || reply.Type != execsvc.ResponseOK {
		return errorReply()
	}
	return okReply()
}

// disconnect posts IFCONFIG_DOWN to the exec helper. The original source's
// write-helper routing for this command is treated as a defect, not
// intended behavior: it is always routed to the exec helper here.
func disconnect(h Helpers, args []string) string {
	if len(args) != 1 || !validate.ValidateIface(args[0]) {
		return errorReply()
	}

	reply, err := h.Exec.Call(execsvc.IfconfigDown, singleIfaceArgs(args[0]))
	if err != nil || reply.Type != execsvc.ResponseOK {
		return errorReply()
	}
	return okReply()
}

// list requests the pseudo-interface class list, then the full interface
// listing, from the exec helper, parses the latter with the ifconfig
// parsers, and emits every non-pseudo interface's flags/mtu/key-value pairs
// as one flat reply array.
func list(h Helpers, log logger.Logger) string {
	pseudoReply, err := h.Exec.Call(execsvc.ListPseudoInterfaces, nil)
	if err != nil || pseudoReply.Type != execsvc.ResponseOK {
		return errorReply()
	}

	ifacesReply, err := h.Exec.Call(execsvc.ListInterfaces, nil)
	if err != nil || ifacesReply.Type != execsvc.ResponseOK {
		return errorReply()
	}

	classList := string(pseudoReply.Payload)

	var sb strings.Builder
	sender := flatjson.NewSender(&sb)
	sender.Send("ok")

	skip := false
	var iface string
	for _, line := range strings.Split(string(ifacesReply.Payload), "\n") {
		if hdr, ok := validate.ParseIfconfigHeader(line); ok {
			iface = hdr.Iface
			skip = validate.IfaceIsPseudo(hdr.Iface, classList)
			if skip {
				continue
			}
			sender.Send(fmt.Sprintf("%s.flags", iface))
			sender.Send(hdr.Flags)
			sender.Send(fmt.Sprintf("%s.mtu", iface))
			sender.Send(fmt.Sprintf("%d", hdr.MTU))
			continue
		}

		if skip {
			continue
		}

		if key, value, ok := validate.ParseIfconfigKV(line); ok {
			sender.Send(fmt.Sprintf("%s.%s", iface, key))
			sender.Send(value)
		}
	}

	if err := sender.Finish(); err != nil {
		log.Warning("encoding list reply failed", logger.Fields{"error": err.Error()})
		return errorReply()
	}

	return sb.String()
}
