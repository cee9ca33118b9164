package client_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/m2handler/client"
	"github.com/luma/m2handler/internal/testutil/fakesock"
	"github.com/luma/m2handler/protocol"
	"github.com/luma/m2handler/transport"
)

const senderID = "F0D32575-2ABB-4957-BC8B-12DAC8AFF13A"

var _ = Describe("client / Conn", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		network *fakesock.Network
		options client.Options
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		network = &fakesock.Network{}

		log, err := zap.NewDevelopment()
		Expect(err).To(Succeed())

		options = client.Options{
			SenderID: senderID,
			ReqAddrs: []string{"tcp://127.0.0.1:9998"},
			RepAddrs: []string{"tcp://127.0.0.1:9999", "ipc:///tmp/replies"},
			Open:     network.Open,
			Log:      log,
		}
	})

	AfterEach(func() {
		cancel()
	})

	connect := func() (*client.Conn, *fakesock.Socket, *fakesock.Socket) {
		conn, err := client.Connect(ctx, options)
		Expect(err).To(Succeed())

		pulls := network.Sockets(transport.Pull)
		pubs := network.Sockets(transport.Pub)
		Expect(pulls).To(HaveLen(1))
		Expect(pubs).To(HaveLen(1))

		return conn, pulls[0], pubs[0]
	}

	Describe("Connect()", func() {
		It("connects a pull socket and an identified pub socket", func() {
			conn, req, rep := connect()
			defer conn.Close()

			Expect(req.Addrs()).To(Equal([]string{"tcp://127.0.0.1:9998"}))
			Expect(rep.Addrs()).To(Equal([]string{"tcp://127.0.0.1:9999", "ipc:///tmp/replies"}))
			Expect(rep.Identity).To(Equal(senderID))
			Expect(req.Identity).To(BeEmpty())

			Expect(conn.SenderID()).To(Equal(senderID))
			Expect(conn.ReqAddrs()).To(Equal(options.ReqAddrs))
			Expect(conn.RepAddrs()).To(Equal(options.RepAddrs))
		})

		It("does not require a sender id", func() {
			options.SenderID = ""
			conn, _, rep := connect()
			defer conn.Close()

			Expect(rep.Identity).To(BeEmpty())
		})

		It("returns a configuration error for invalid addresses before opening sockets", func() {
			options.RepAddrs = []string{"not an address"}

			_, err := client.Connect(ctx, options)
			Expect(errors.Is(err, client.ErrConfiguration)).To(BeTrue())
			Expect(errors.Is(err, transport.ErrInvalidAddr)).To(BeTrue())
			Expect(network.Sockets(transport.Pull)).To(BeEmpty())
		})

		It("returns a configuration error when addresses are missing", func() {
			options.ReqAddrs = nil

			_, err := client.Connect(ctx, options)
			Expect(errors.Is(err, client.ErrConfiguration)).To(BeTrue())
		})

		It("returns a configuration error for invalid identities", func() {
			options.SenderID = "\x00nope"

			_, err := client.Connect(ctx, options)
			Expect(errors.Is(err, client.ErrConfiguration)).To(BeTrue())
			Expect(errors.Is(err, transport.ErrInvalidIdentity)).To(BeTrue())
		})

		It("closes the request socket if the reply socket fails to connect", func() {
			network.Prepare = func(s *fakesock.Socket) {
				if s.Kind == transport.Pub {
					s.DialErr = errors.New("connection refused")
				}
			}

			_, err := client.Connect(ctx, options)
			Expect(errors.Is(err, transport.ErrTransport)).To(BeTrue())
			Expect(network.Sockets(transport.Pull)[0].Closed()).To(BeTrue())
			Expect(network.Sockets(transport.Pub)[0].Closed()).To(BeTrue())
		})

		It("closes the request socket if the reply socket cannot be opened", func() {
			network.OpenErr = map[transport.Kind]error{transport.Pub: errors.New("too many files")}

			_, err := client.Connect(ctx, options)
			Expect(errors.Is(err, transport.ErrTransport)).To(BeTrue())
			Expect(network.Sockets(transport.Pull)[0].Closed()).To(BeTrue())
		})
	})

	Describe("Recv()", func() {
		It("parses the next request", func() {
			conn, req, _ := connect()
			defer conn.Close()

			req.Push([]byte("abCD-123 56 / 13:{\"foo\":\"bar\"},11:hello world,"))

			r, err := conn.Recv()
			Expect(err).To(Succeed())
			Expect(r.UUID).To(Equal("abCD-123"))
			Expect(r.ID).To(Equal("56"))
			Expect(r.Headers.Values("foo")).To(Equal([]string{"bar"}))
			Expect(string(r.Body)).To(Equal("hello world"))
		})

		It("keeps the connection usable after a malformed message", func() {
			conn, req, _ := connect()
			defer conn.Close()

			req.Push([]byte("garbage"))
			req.Push([]byte("abCD-123 56 / 0:}0:,"))

			_, err := conn.Recv()
			Expect(errors.Is(err, protocol.ErrFormat)).To(BeTrue())

			r, err := conn.Recv()
			Expect(err).To(Succeed())
			Expect(r.ID).To(Equal("56"))
		})

		It("breaks the connection on transport failures", func() {
			conn, req, _ := connect()

			Expect(req.Close()).To(Succeed())

			_, err := conn.Recv()
			Expect(errors.Is(err, transport.ErrTransport)).To(BeTrue())

			_, err = conn.Recv()
			Expect(errors.Is(err, client.ErrConnBroken)).To(BeTrue())

			err = conn.Send("abCD-123", []string{"56"}, []byte("x"))
			Expect(errors.Is(err, client.ErrConnBroken)).To(BeTrue())
		})
	})

	Describe("replies", func() {
		var (
			conn *client.Conn
			rep  *fakesock.Socket
			req  *protocol.Request
		)

		BeforeEach(func() {
			var pull *fakesock.Socket
			conn, pull, rep = connect()

			pull.Push([]byte("abCD-123 56 / 13:{\"foo\":\"bar\"},0:,"))

			var err error
			req, err = conn.Recv()
			Expect(err).To(Succeed())
		})

		AfterEach(func() {
			Expect(conn.Close()).To(Succeed())
		})

		It("Send() addresses several connections", func() {
			Expect(conn.Send("abCD-123", []string{"1", "2"}, []byte("hi"))).To(Succeed())
			Expect(rep.Sent()).To(Equal([][]byte{[]byte("abCD-123 3:1 2, hi")}))
		})

		It("Send() rejects invalid replies without breaking the connection", func() {
			err := conn.Send("abCD-123", nil, []byte("hi"))
			Expect(err).To(MatchError(protocol.ErrNoConnectionIDs))
			Expect(rep.Sent()).To(BeEmpty())

			Expect(conn.Reply(req, []byte("ok"))).To(Succeed())
		})

		It("Reply() answers the sending connection", func() {
			Expect(conn.Reply(req, []byte("hello"))).To(Succeed())
			Expect(rep.Sent()).To(Equal([][]byte{[]byte("abCD-123 2:56, hello")}))
		})

		It("ReplyJSON() sends the document as is", func() {
			Expect(conn.ReplyJSON(req, []byte(`{"type":"ok"}`))).To(Succeed())
			Expect(rep.Sent()).To(Equal([][]byte{[]byte(`abCD-123 2:56, {"type":"ok"}`)}))
		})

		It("ReplyHTTP() frames an HTTP response", func() {
			headers := protocol.NewHeaders()
			headers.Add("Content-Type", "text/plain")

			Expect(conn.ReplyHTTP(req, 200, "OK", headers, []byte("hello"))).To(Succeed())
			Expect(rep.Sent()).To(HaveLen(1))
			Expect(string(rep.Sent()[0])).To(Equal("abCD-123 2:56, HTTP/1.1 200 OK\r\n" +
				"Content-Length: 5\r\n" +
				"Content-Type: text/plain\r\n" +
				"\r\n" +
				"hello"))
		})

		It("Hangup() sends an empty body", func() {
			Expect(conn.Hangup(req)).To(Succeed())
			Expect(rep.Sent()).To(Equal([][]byte{[]byte("abCD-123 2:56, ")}))
		})

		It("breaks the connection when a send fails", func() {
			rep.SendErr = errors.New("boom")

			err := conn.Reply(req, []byte("x"))
			Expect(errors.Is(err, transport.ErrTransport)).To(BeTrue())

			rep.SendErr = nil
			err = conn.Reply(req, []byte("x"))
			Expect(errors.Is(err, client.ErrConnBroken)).To(BeTrue())
		})
	})

	Describe("Close()", func() {
		It("closes both sockets and combines their errors", func() {
			conn, req, rep := connect()
			req.CloseErr = errors.New("req")
			rep.CloseErr = errors.New("rep")

			err := conn.Close()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("req"))
			Expect(err.Error()).To(ContainSubstring("rep"))
			Expect(req.Closed()).To(BeTrue())
			Expect(rep.Closed()).To(BeTrue())
		})
	})
})
