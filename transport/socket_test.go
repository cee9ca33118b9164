package transport_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/m2handler/transport"
)

var _ = Describe("transport", func() {
	Describe("ValidateAddr()", func() {
		It("accepts tcp, ipc and inproc endpoints", func() {
			Expect(transport.ValidateAddr("tcp://127.0.0.1:9997")).To(Succeed())
			Expect(transport.ValidateAddr("tcp://localhost:9996")).To(Succeed())
			Expect(transport.ValidateAddr("ipc:///tmp/handler")).To(Succeed())
			Expect(transport.ValidateAddr("inproc://handler")).To(Succeed())
		})

		It("rejects malformed endpoints", func() {
			for _, addr := range []string{
				"",
				"127.0.0.1:9997",
				"tcp://",
				"tcp://127.0.0.1",
				"tcp://:9997",
				"tcp://127.0.0.1:*",
				"http://127.0.0.1:80",
			} {
				err := transport.ValidateAddr(addr)
				Expect(errors.Is(err, transport.ErrInvalidAddr)).To(BeTrue(), "addr %q", addr)
			}
		})
	})

	Describe("ValidateIdentity()", func() {
		It("accepts an empty identity", func() {
			Expect(transport.ValidateIdentity("")).To(Succeed())
		})

		It("accepts a uuid", func() {
			Expect(transport.ValidateIdentity("F0D32575-2ABB-4957-BC8B-12DAC8AFF13A")).To(Succeed())
		})

		It("rejects reserved and oversized identities", func() {
			Expect(transport.ValidateIdentity("\x00abc")).To(MatchError(transport.ErrInvalidIdentity))
			Expect(transport.ValidateIdentity(strings.Repeat("x", 256))).To(MatchError(transport.ErrInvalidIdentity))
		})
	})

	Describe("Kind", func() {
		It("has readable names", func() {
			Expect(transport.Pull.String()).To(Equal("PULL"))
			Expect(transport.Pub.String()).To(Equal("PUB"))
			Expect(transport.Kind(7).String()).To(Equal("Kind(7)"))
		})
	})
})
