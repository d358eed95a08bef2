package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/nodeguard/internal/bootstrap"
	"github.com/Aman-CERP/nodeguard/internal/config"
	"github.com/Aman-CERP/nodeguard/internal/metrics"
	"github.com/Aman-CERP/nodeguard/internal/probe"
)

// shutdownTimeout bounds how long HTTP shutdown waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// memoryLocker is implemented by probes that can lock process memory.
type memoryLocker interface {
	LockMemory() error
}

// Node is a single nodeguard node.
type Node struct {
	cfg      *config.Config
	root     string
	logger   *slog.Logger
	probe    probe.Probe
	metrics  *metrics.Gate
	pidPath  string
	platform bootstrap.Platform

	mu        sync.Mutex
	lock      *DataLock
	pidFile   *PIDFile
	transport []net.Listener
	http      []net.Listener
	bound     bootstrap.BoundAddress
	ready     chan struct{}
	readyOnce sync.Once
}

// Option configures a Node.
type Option func(*Node)

// WithLogger sets the node logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Node) {
		n.logger = logger
	}
}

// WithProbe replaces the live system probe.
func WithProbe(p probe.Probe) Option {
	return func(n *Node) {
		n.probe = p
	}
}

// WithPIDFile writes the PID to path once the gate passes.
func WithPIDFile(path string) Option {
	return func(n *Node) {
		n.pidPath = path
	}
}

// WithPlatform overrides the platform the check catalog is built for.
func WithPlatform(platform bootstrap.Platform) Option {
	return func(n *Node) {
		n.platform = platform
	}
}

// WithMetrics sets the gate metrics exposed on /metrics.
func WithMetrics(m *metrics.Gate) Option {
	return func(n *Node) {
		n.metrics = m
	}
}

// New creates a Node for cfg. Relative data paths resolve against root.
func New(cfg *config.Config, root string, opts ...Option) *Node {
	n := &Node{
		cfg:      cfg,
		root:     root,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		platform: bootstrap.CurrentPlatform(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.probe == nil {
		n.probe = probe.NewSystem(cfg.InitialHeapBytes())
	}
	if n.metrics == nil {
		n.metrics = metrics.NewGate()
	}
	return n
}

// Start prepares the node and serves until ctx is cancelled. If the bootstrap
// gate fails the listeners are closed and the fatal error is returned without
// serving.
func (n *Node) Start(ctx context.Context) error {
	if err := n.Prepare(ctx); err != nil {
		return err
	}
	defer n.Close()
	return n.Serve(ctx)
}

// Prepare runs every startup step up to, but not including, serving:
// data lock, heap limit, memory lock, bind, bootstrap gate, PID file.
// On failure everything acquired so far is released.
func (n *Node) Prepare(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			n.Close()
		}
	}()

	lock := NewDataLock(n.cfg.ResolveDataPath(n.root))
	if err := lock.Acquire(); err != nil {
		return err
	}
	n.mu.Lock()
	n.lock = lock
	n.mu.Unlock()
	n.logger.Debug("data path locked", slog.String("lock", lock.Path()))

	if maxHeap := n.cfg.MaxHeapBytes(); maxHeap > 0 {
		debug.SetMemoryLimit(maxHeap)
	}

	if n.cfg.Bootstrap.MemoryLock {
		if locker, ok := n.probe.(memoryLocker); ok {
			if err := locker.LockMemory(); err != nil {
				n.logger.Warn("unable to lock process memory", slog.String("error", err.Error()))
			}
		}
	}

	transport, transportAddrs, err := Bind(ctx, n.cfg.Network.BindHosts, n.cfg.Network.Port)
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.transport = transport
	n.mu.Unlock()

	httpListeners, httpAddrs, err := Bind(ctx, n.cfg.Network.BindHosts, n.cfg.Network.HTTPPort)
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.http = httpListeners
	n.mu.Unlock()

	publish, err := PublishAddress(ctx, n.cfg.Network.PublishHost, transportAddrs)
	if err != nil {
		return err
	}

	bound := bootstrap.BoundAddress{
		Bound:   append(append([]netip.AddrPort{}, transportAddrs...), httpAddrs...),
		Publish: publish,
	}
	n.mu.Lock()
	n.bound = bound
	n.mu.Unlock()

	n.logger.Info("bound node addresses",
		slog.String("node", n.cfg.Node.Name),
		slog.Any("transport", transportAddrs),
		slog.Any("http", httpAddrs),
		slog.String("publish", publish.String()),
		slog.Bool("enforce_limits", bootstrap.EnforceLimits(bound)))

	if err := bootstrap.Validate(n.cfg.Settings(), bound, n.probe,
		bootstrap.WithLogger(n.logger),
		bootstrap.WithNodeName(n.cfg.Node.Name),
		bootstrap.WithPlatform(n.platform),
		bootstrap.WithRecorder(n.metrics),
	); err != nil {
		return err
	}

	if n.pidPath != "" {
		pf := NewPIDFile(n.pidPath)
		if err := pf.Write(); err != nil {
			return err
		}
		n.mu.Lock()
		n.pidFile = pf
		n.mu.Unlock()
		n.logger.Info("PID file written", slog.String("path", pf.Path()))
	}

	return nil
}

// Serve accepts on the prepared listeners until ctx is cancelled.
func (n *Node) Serve(ctx context.Context) error {
	n.mu.Lock()
	transport := n.transport
	httpListeners := n.http
	n.mu.Unlock()
	if len(transport) == 0 || len(httpListeners) == 0 {
		return fmt.Errorf("node is not prepared")
	}

	srv := &http.Server{
		Handler:           n.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, l := range httpListeners {
		g.Go(func() error {
			if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http listener %s: %w", l.Addr(), err)
			}
			return nil
		})
	}
	for _, l := range transport {
		g.Go(func() error {
			return acceptAndClose(gctx, l)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		closeAll(transport)
		return srv.Shutdown(shutdownCtx)
	})

	n.logger.Info("node started",
		slog.String("node", n.cfg.Node.Name),
		slog.Any("http", n.HTTPAddrs()))
	n.readyOnce.Do(func() { close(n.ready) })

	err := g.Wait()
	n.logger.Info("node stopped", slog.String("node", n.cfg.Node.Name))
	return err
}

// acceptAndClose accepts transport connections and closes them immediately.
// Cluster transport is out of scope; the port exists so the bound address is real.
func acceptAndClose(ctx context.Context, l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("transport listener %s: %w", l.Addr(), err)
		}
		_ = conn.Close()
	}
}

// Handler returns the node's HTTP handler.
func (n *Node) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, "{\"status\":\"ok\",\"node\":%q}\n", n.cfg.Node.Name)
	})
	mux.Handle("GET /metrics", n.metrics.Handler())
	return mux
}

// Ready is closed once the node is serving.
func (n *Node) Ready() <-chan struct{} {
	return n.ready
}

// Bound returns the addresses checked by the gate.
func (n *Node) Bound() bootstrap.BoundAddress {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.bound
}

// HTTPAddrs returns the HTTP listener addresses.
func (n *Node) HTTPAddrs() []net.Addr {
	n.mu.Lock()
	defer n.mu.Unlock()
	addrs := make([]net.Addr, 0, len(n.http))
	for _, l := range n.http {
		addrs = append(addrs, l.Addr())
	}
	return addrs
}

// Close releases listeners, the PID file and the data lock. It is idempotent.
func (n *Node) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	closeAll(n.transport)
	closeAll(n.http)
	n.transport, n.http = nil, nil

	if n.pidFile != nil {
		if err := n.pidFile.Remove(); err != nil {
			n.logger.Warn("failed to remove PID file", slog.String("error", err.Error()))
		}
		n.pidFile = nil
	}
	if n.lock != nil {
		if err := n.lock.Release(); err != nil {
			n.logger.Warn("failed to release data lock", slog.String("error", err.Error()))
		}
		n.lock = nil
	}
}
