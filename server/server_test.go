package server_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/m2handler/client"
	"github.com/luma/m2handler/internal/testutil/fakesock"
	"github.com/luma/m2handler/protocol"
	"github.com/luma/m2handler/server"
	"github.com/luma/m2handler/transport"
)

type recorder struct {
	mu   sync.Mutex
	reqs []*protocol.Request
}

func (r *recorder) add(req *protocol.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}

func (r *recorder) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := make([]string, 0, len(r.reqs))
	for _, req := range r.reqs {
		paths = append(paths, req.Path)
	}

	return paths
}

var _ = Describe("server", func() {
	var (
		network *fakesock.Network
		options server.Options
		handled *recorder
	)

	BeforeEach(func() {
		network = &fakesock.Network{}
		handled = &recorder{}

		log, err := zap.NewDevelopment()
		Expect(err).To(Succeed())

		options = server.Options{
			Client: client.Options{
				SenderID: "F0D32575-2ABB-4957-BC8B-12DAC8AFF13A",
				ReqAddrs: []string{"tcp://127.0.0.1:9997"},
				RepAddrs: []string{"tcp://127.0.0.1:9996"},
				Open:     network.Open,
			},
			NumWorkers: 2,
			Handler: server.HandlerFunc(func(ctx context.Context, rep server.Replier, req *protocol.Request) error {
				handled.add(req)
				return rep.ReplyHTTP(req, 200, "OK", nil, []byte(req.Path))
			}),
			Log: log,
		}
	})

	start := func() *server.Server {
		s := server.New(options)
		Expect(s.Start(context.Background())).To(Succeed())
		return s
	}

	It("opens one connection per worker", func() {
		s := start()
		defer s.Close()

		Expect(network.Sockets(transport.Pull)).To(HaveLen(2))
		Expect(network.Sockets(transport.Pub)).To(HaveLen(2))
	})

	It("replies on the connection the request arrived on", func() {
		s := start()
		defer s.Close()

		network.Sockets(transport.Pull)[1].Push([]byte("abCD-123 56 /hello 0:}0:,"))

		rep := network.Sockets(transport.Pub)[1]
		Eventually(rep.Sent).Should(HaveLen(1))
		Expect(string(rep.Sent()[0])).To(Equal(
			"abCD-123 2:56, HTTP/1.1 200 OK\r\nContent-Length: 6\r\n\r\n/hello"))
		Expect(network.Sockets(transport.Pub)[0].Sent()).To(BeEmpty())
	})

	It("keeps serving after a malformed request", func() {
		s := start()
		defer s.Close()

		pull := network.Sockets(transport.Pull)[0]
		pull.Push([]byte("abCD-123 56 / 99:truncated"))
		pull.Push([]byte("abCD-123 56 /after 0:}0:,"))

		Eventually(handled.paths).Should(Equal([]string{"/after"}))
	})

	It("keeps serving after the handler fails", func() {
		calls := 0
		options.NumWorkers = 1
		options.Handler = server.HandlerFunc(func(ctx context.Context, rep server.Replier, req *protocol.Request) error {
			calls++
			handled.add(req)
			if calls == 1 {
				return errors.New("handler bug")
			}
			return nil
		})

		s := start()
		defer s.Close()

		pull := network.Sockets(transport.Pull)[0]
		pull.Push([]byte("abCD-123 56 /one 0:}0:,"))
		pull.Push([]byte("abCD-123 56 /two 0:}0:,"))

		Eventually(handled.paths).Should(Equal([]string{"/one", "/two"}))
	})

	It("stops a worker whose connection breaks", func() {
		options.NumWorkers = 1
		network.Prepare = func(s *fakesock.Socket) {
			if s.Kind == transport.Pub {
				s.SendErr = errors.New("gone")
			}
		}

		s := start()
		defer s.Close()

		pull := network.Sockets(transport.Pull)[0]
		pull.Push([]byte("abCD-123 56 /one 0:}0:,"))
		Eventually(handled.paths).Should(Equal([]string{"/one"}))

		pull.Push([]byte("abCD-123 56 /two 0:}0:,"))
		Consistently(handled.paths, 200*time.Millisecond).Should(Equal([]string{"/one"}))
	})

	It("throttles dispatch when a rate limit is set", func() {
		options.NumWorkers = 1
		options.RateLimit = 1000
		options.Burst = 1

		s := start()
		defer s.Close()

		pull := network.Sockets(transport.Pull)[0]
		pull.Push([]byte("abCD-123 56 /one 0:}0:,"))
		pull.Push([]byte("abCD-123 56 /two 0:}0:,"))

		Eventually(handled.paths).Should(Equal([]string{"/one", "/two"}))
	})

	It("closes every connection when stopped", func() {
		s := start()

		Expect(s.Close()).To(Succeed())

		for _, sock := range append(network.Sockets(transport.Pull), network.Sockets(transport.Pub)...) {
			Expect(sock.Closed()).To(BeTrue())
		}
	})

	It("closes already connected workers when one fails to connect", func() {
		opened := 0
		network.Prepare = func(s *fakesock.Socket) {
			if s.Kind == transport.Pull {
				opened++
				if opened == 2 {
					s.DialErr = errors.New("connection refused")
				}
			}
		}

		s := server.New(options)
		err := s.Start(context.Background())
		Expect(errors.Is(err, transport.ErrTransport)).To(BeTrue())

		for _, sock := range append(network.Sockets(transport.Pull), network.Sockets(transport.Pub)...) {
			Expect(sock.Closed()).To(BeTrue())
		}
	})

	It("returns configuration errors from Start", func() {
		options.Client.ReqAddrs = []string{"nope"}

		s := server.New(options)
		err := s.Start(context.Background())
		Expect(errors.Is(err, client.ErrConfiguration)).To(BeTrue())
	})
})
