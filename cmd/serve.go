package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/m2handler/client"
	"github.com/luma/m2handler/internal/echo"
	"github.com/luma/m2handler/internal/env"
	"github.com/luma/m2handler/server"
	"github.com/luma/m2handler/session"
)

// autoSenderID asks for a freshly generated sender id
const autoSenderID = "auto"

var (
	// Path to an optional TOML config file
	configPath string

	// The host to listen for http requests on
	host string

	// The port to listen for http requests on
	httpPort string

	senderID string
	reqAddrs []string
	repAddrs []string
	workers  int
)

func init() {
	flags := ServeCmd.PersistentFlags()

	flags.StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	flags.StringVar(&httpPort, "http-port", "7362", "The port to serve health checks and metrics on")
	flags.StringVarP(&host, "host", "a", "0.0.0.0", "The host to serve health checks and metrics on")
	flags.StringVar(&senderID, "sender-id", "", `Identity of the reply socket, "auto" generates one`)
	flags.StringSliceVar(&reqAddrs, "req-addr", nil, "Front end address to pull requests from, may be repeated")
	flags.StringSliceVar(&repAddrs, "rep-addr", nil, "Front end address to publish replies to, may be repeated")
	flags.IntVarP(&workers, "workers", "w", 0, "Number of connections serving requests, defaults to the number of CPUs")
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start serving requests from the front end",
	Long: `Start serving requests from the front end

Usage
	m2handler serve --req-addr tcp://127.0.0.1:9997 --rep-addr tcp://127.0.0.1:9996

`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer signalStop()

		conf, err := env.LoadConfig(ctx, configPath)
		if err != nil {
			return err
		}

		applyFlags(cmd, conf)

		log, err := env.MakeLogger(conf.Debug)
		if err != nil {
			return err
		}

		defer log.Sync() //nolint:errcheck

		fileLimit, err := setFileLimit()
		if err != nil {
			return err
		}

		log.Info("Set file limit", zap.Uint64("fileLimit", fileLimit))

		if conf.SenderID == autoSenderID {
			conf.SenderID = uuid.NewString()
		}

		router := setupRouter(conf.DebugHTTP, log)

		// Ping test
		router.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		router.GET("/metrics", gin.WrapH(promhttp.Handler()))

		s := &http.Server{
			Addr:    net.JoinHostPort(host, httpPort),
			Handler: router,
		}

		// Initializing the server in a goroutine so that
		// it won't block the graceful shutdown handling below
		go func() {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Http server errored", zap.Error(err))
			}
		}()

		sessions := session.NewInmemoryStore()
		defer sessions.Close()

		handlers := server.New(server.Options{
			Client: client.Options{
				SenderID: conf.SenderID,
				ReqAddrs: conf.ReqAddrs,
				RepAddrs: conf.RepAddrs,
				Trace:    conf.Trace,
			},
			NumWorkers: conf.Workers,
			Handler:    echo.New(sessions, log.Named("echo")),
			RateLimit:  conf.RateLimit,
			Burst:      conf.Burst,
			Log:        log.Named("server"),
		})

		if err := handlers.Start(ctx); err != nil {
			return err
		}

		log.Info("Serving",
			zap.Any("config", conf),
			zap.String("host", host),
			zap.String("httpPort", httpPort))

		// Listen for the interrupt signal.
		<-ctx.Done()

		// Restore default behavior on the interrupt signal and notify user of shutdown.
		signalStop()
		log.Info("Shutting down gracefully, press Ctrl+C again to force")

		// The context is used to inform the server it has 5 seconds to finish
		// the request it is currently handling
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.SetKeepAlivesEnabled(false)

		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Error("Http server forced to shutdown", zap.Error(err))
		}

		if err := handlers.Close(); err != nil {
			log.Error("Handlers did not close cleanly", zap.Error(err))
		}

		log.Info("Exiting")
		return nil
	},
}

// applyFlags overrides the loaded config with any flags that were set
func applyFlags(cmd *cobra.Command, conf *env.Config) {
	flags := cmd.Flags()

	if flags.Changed("sender-id") {
		conf.SenderID = senderID
	}

	if flags.Changed("req-addr") {
		conf.ReqAddrs = reqAddrs
	}

	if flags.Changed("rep-addr") {
		conf.RepAddrs = repAddrs
	}

	if flags.Changed("workers") {
		conf.Workers = workers
	}
}

func setupRouter(debugHTTP bool, log *zap.Logger) *gin.Engine {
	gin.DisableConsoleColor()
	if !debugHTTP {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Logs all requests, like a combined access and error log, with
	// RFC3339 UTC timestamps. Health checks are too noisy to log.
	r.Use(ginzap.GinzapWithConfig(log.Named("http"), &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/ping", "/metrics"},
	}))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	r.Use(ginzap.RecoveryWithZap(log, true))

	return r
}

// setFileLimit raises the open file limit, every front end connection costs
// a file descriptor.
func setFileLimit() (uint64, error) {
	var rLimit syscall.Rlimit

	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	rLimit.Cur = rLimit.Max
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	return rLimit.Cur, nil
}
