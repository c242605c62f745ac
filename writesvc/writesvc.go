// Package writesvc implements the write helper child: the half of the
// privilege-separated daemon that retains write/create capability,
// confined to one directory, for the per-interface configuration files
// the supervisor's "configure" and "connect" commands produce.
package writesvc

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nabbar/networkd/config"
	"github.com/nabbar/networkd/flatjson"
	"github.com/nabbar/networkd/frame"
	"github.com/nabbar/networkd/logger"
	"github.com/nabbar/networkd/validate"
)

// Request/status type constants shared with the supervisor over the
// frame.Channel.
const (
	Write uint32 = iota
	Autoconfigure

	ResponseOK
	ResponseError
)

// Helper writes the per-interface configuration files this daemon manages,
// confined to one directory.
type Helper struct {
	dir string
	log logger.Logger
}

// New builds a Helper confined to cfg.WriteDir.
func New(cfg config.Config, log logger.Logger) *Helper {
	return &Helper{dir: cfg.WriteDir, log: log}
}

// Serve reads one request frame at a time from ch and writes back exactly
// one reply frame per request, until ch's underlying channel is closed.
func (h *Helper) Serve(_ context.Context, ch *frame.Channel) error {
	for {
		req, err := ch.Recv()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		status := h.dispatch(req.Type, req.Payload)
		if err := ch.Send(status, nil); err != nil {
			return err
		}
	}
}

func (h *Helper) dispatch(typ uint32, payload []byte) uint32 {
	elems, err := flatjson.Elements(string(payload))
	if err != nil || len(elems) == 0 {
		return ResponseError
	}

	iface := elems[0]
	if !validate.ValidateIface(iface) {
		return ResponseError
	}

	switch typ {
	case Write:
		return h.write(iface, elems[1:])
	case Autoconfigure:
		return h.autoconfigure(iface)
	default:
		h.log.Warning("unknown write request type", logger.Fields{"type": typ})
		return ResponseError
	}
}

func (h *Helper) path(iface string) string {
	return filepath.Join(h.dir, fmt.Sprintf("hostname.%s", iface))
}

// write overwrites the interface's configuration file with stanzas, one per
// line. A stanza failing validate.ValidateStanza is skipped — the whole
// write is never aborted because one bad line appeared.
func (h *Helper) write(iface string, stanzas []string) uint32 {
	f, err := os.Create(h.path(iface))
	if err != nil {
		h.log.Warning("opening configuration file failed", logger.Fields{"iface": iface, "error": err.Error()})
		return ResponseError
	}
	defer f.Close()

	var sb strings.Builder
	for _, stanza := range stanzas {
		if !validate.ValidateStanza(stanza) {
			h.log.Warning("skipping illegal stanza", logger.Fields{"iface": iface})
			continue
		}
		sb.WriteString(stanza)
		sb.WriteByte('\n')
	}

	if _, err := f.WriteString(sb.String()); err != nil {
		h.log.Warning("writing configuration file failed", logger.Fields{"iface": iface, "error": err.Error()})
	}

	return ResponseOK
}

// autoconfigure creates the interface's configuration file with a single
// "dhcp" line only if it does not already exist. An existing file is left
// untouched and still reports success.
func (h *Helper) autoconfigure(iface string) uint32 {
	f, err := os.OpenFile(h.path(iface), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return ResponseOK
		}
		h.log.Warning("creating configuration file failed", logger.Fields{"iface": iface, "error": err.Error()})
		return ResponseError
	}
	defer f.Close()

	if _, err := f.WriteString("dhcp\n"); err != nil {
		h.log.Warning("writing configuration file failed", logger.Fields{"iface": iface, "error": err.Error()})
	}

	return ResponseOK
}
