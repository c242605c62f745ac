package protocol_test

import (
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/networkd/execsvc"
	"github.com/nabbar/networkd/frame"
	"github.com/nabbar/networkd/logger"
	"github.com/nabbar/networkd/protocol"
	"github.com/nabbar/networkd/writesvc"
)

// fakeHelper spins up a goroutine answering every request on one end of a
// net.Pipe with whatever respond returns, and hands back the client-side
// *frame.Channel the unit under test talks through.
func fakeHelper(respond func(typ uint32, payload []byte) (uint32, []byte)) (*frame.Channel, func()) {
	client, server := net.Pipe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		ch := frame.NewChannel(server)
		for {
			req, err := ch.Recv()
			if err != nil {
				return
			}
			status, out := respond(req.Type, req.Payload)
			if err := ch.Send(status, out); err != nil {
				return
			}
		}
	}()

	return frame.NewChannel(client), func() {
		client.Close()
		server.Close()
		<-done
	}
}

var _ = Describe("Dispatch", func() {
	var log logger.Logger

	BeforeEach(func() {
		log = logger.New(logger.DebugLevel)
	})

	It("replies error for a blank line", func() {
		reply, handled := protocol.Dispatch(protocol.Helpers{}, "", log)
		Expect(handled).To(BeTrue())
		Expect(reply).To(Equal("[\"error\"]\n"))
	})

	It("reports unknown commands as unhandled", func() {
		_, handled := protocol.Dispatch(protocol.Helpers{}, `["frobnicate"]`, log)
		Expect(handled).To(BeFalse())
	})

	Context("configure", func() {
		It("replies ok when the write helper accepts the stanzas", func() {
			write, cleanup := fakeHelper(func(typ uint32, payload []byte) (uint32, []byte) {
				Expect(typ).To(Equal(writesvc.Write))
				return writesvc.ResponseOK, nil
			})
			defer cleanup()

			reply, handled := protocol.Dispatch(protocol.Helpers{Write: write}, `["configure", "em0", "dhcp"]`, log)
			Expect(handled).To(BeTrue())
			Expect(reply).To(Equal("[\"ok\"]\n"))
		})

		It("replies error when the write helper rejects the request", func() {
			write, cleanup := fakeHelper(func(typ uint32, payload []byte) (uint32, []byte) {
				return writesvc.ResponseError, nil
			})
			defer cleanup()

			reply, handled := protocol.Dispatch(protocol.Helpers{Write: write}, `["configure", "em0", "dhcp"]`, log)
			Expect(handled).To(BeTrue())
			Expect(reply).To(Equal("[\"error\"]\n"))
		})

		It("replies error with no arguments", func() {
			reply, handled := protocol.Dispatch(protocol.Helpers{}, `["configure"]`, log)
			Expect(handled).To(BeTrue())
			Expect(reply).To(Equal("[\"error\"]\n"))
		})
	})

	Context("connect", func() {
		It("autoconfigures then netstarts, replying ok on success", func() {
			var sawAutoconfigure, sawNetstart bool

			write, cleanupWrite := fakeHelper(func(typ uint32, payload []byte) (uint32, []byte) {
				sawAutoconfigure = typ == writesvc.Autoconfigure
				return writesvc.ResponseOK, nil
			})
			defer cleanupWrite()

			exec, cleanupExec := fakeHelper(func(typ uint32, payload []byte) (uint32, []byte) {
				sawNetstart = typ == execsvc.Netstart
				return execsvc.ResponseOK, nil
			})
			defer cleanupExec()

			reply, handled := protocol.Dispatch(protocol.Helpers{Write: write, Exec: exec}, `["connect", "em0"]`, log)
			Expect(handled).To(BeTrue())
			Expect(reply).To(Equal("[\"ok\"]\n"))
			Expect(sawAutoconfigure).To(BeTrue())
			Expect(sawNetstart).To(BeTrue())
		})

		It("replies error for an invalid interface name", func() {
			reply, handled := protocol.Dispatch(protocol.Helpers{}, `["connect", ".bad"]`, log)
			Expect(handled).To(BeTrue())
			Expect(reply).To(Equal("[\"error\"]\n"))
		})
	})

	Context("disconnect", func() {
		It("routes to the exec helper, not the write helper", func() {
			exec, cleanupExec := fakeHelper(func(typ uint32, payload []byte) (uint32, []byte) {
				Expect(typ).To(Equal(execsvc.IfconfigDown))
				return execsvc.ResponseOK, nil
			})
			defer cleanupExec()

			reply, handled := protocol.Dispatch(protocol.Helpers{Exec: exec}, `["disconnect", "em0"]`, log)
			Expect(handled).To(BeTrue())
			Expect(reply).To(Equal("[\"ok\"]\n"))
		})
	})

	Context("list", func() {
		It("skips pseudo interfaces and emits iface-scoped key/value pairs", func() {
			exec, cleanupExec := fakeHelper(func(typ uint32, payload []byte) (uint32, []byte) {
				switch typ {
				case execsvc.ListPseudoInterfaces:
					return execsvc.ResponseOK, []byte("vlan bridge")
				case execsvc.ListInterfaces:
					body := "vlan0: flags=1<UP> mtu 1500\n" +
						"\tstatus: active\n" +
						"em0: flags=8863<UP,BROADCAST,RUNNING> mtu 1500\n" +
						"\tstatus: active\n"
					return execsvc.ResponseOK, []byte(body)
				default:
					return execsvc.ResponseError, nil
				}
			})
			defer cleanupExec()

			reply, handled := protocol.Dispatch(protocol.Helpers{Exec: exec}, `["list"]`, log)
			Expect(handled).To(BeTrue())
			Expect(reply).To(ContainSubstring(`"ok"`))
			Expect(reply).To(ContainSubstring(`"em0.flags"`))
			Expect(reply).To(ContainSubstring(`"em0.mtu"`))
			Expect(reply).To(ContainSubstring(`"em0.status"`))
			Expect(reply).ToNot(ContainSubstring("vlan0"))
		})
	})
})
