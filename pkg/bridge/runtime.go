package bridge

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/pubky/pubky-ffi-go/pkg/pubky"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/logging"
)

// Executor runs SDK operations for blocked callers. At most maxInflight
// operations run at once; further callers wait for a slot. There is no
// ordering between calls and no cancellation.
type Executor struct {
	sem    *semaphore.Weighted
	logger logging.Logger
}

func newExecutor(maxInflight int64, logger logging.Logger) *Executor {
	return &Executor{sem: semaphore.NewWeighted(maxInflight), logger: logger}
}

// Run executes fn on its own goroutine and waits for it. A panic in fn is
// returned as an error.
func (e *Executor) Run(fn func(ctx context.Context) error) error {
	ctx := context.Background()
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	stats.inflight.Inc()
	done := make(chan error, 1)
	go func() {
		defer func() {
			stats.inflight.Dec()
			e.sem.Release(1)
		}()
		defer func() {
			if r := recover(); r != nil {
				done <- panicError{value: r}
			}
		}()
		done <- fn(ctx)
	}()
	return <-done
}

// state is everything built on first use.
type state struct {
	cfg    Config
	logger logging.Logger
	exec   *Executor

	mainnet *pubky.Pubky
	testnet *pubky.Pubky
}

var (
	stateMu sync.Mutex
	current *state
	inits   int
)

// runtimeState returns the process-wide state, building it once.
func runtimeState() *state {
	stateMu.Lock()
	defer stateMu.Unlock()
	if current != nil {
		return current
	}
	cfg, cfgErr := LoadConfig()
	logger := logging.Build(os.Stderr, cfg.LogLevel, cfg.LogFormat).With("component", "pubky-ffi")
	if cfgErr != nil {
		logger.Warn(context.Background(), "invalid configuration, using defaults", "error", cfgErr)
	}
	handles.setDebug(cfg.DebugHandles)
	current = &state{cfg: cfg, logger: logger, exec: newExecutor(cfg.MaxInflight, logger)}
	inits++
	return current
}

// facade returns the shared mainnet or testnet SDK instance.
func (s *state) facade(testnet bool) (*pubky.Pubky, error) {
	stateMu.Lock()
	defer stateMu.Unlock()
	if testnet && s.testnet != nil {
		return s.testnet, nil
	}
	if !testnet && s.mainnet != nil {
		return s.mainnet, nil
	}
	opts := []pubky.Option{
		pubky.WithHTTPClient(&http.Client{Timeout: s.cfg.HTTPTimeout}),
		pubky.WithLogger(s.logger),
		pubky.WithPublishTimeout(s.cfg.PublishTimeout),
	}
	if testnet {
		p, err := pubky.Testnet(s.cfg.TestnetRelay, opts...)
		if err != nil {
			return nil, err
		}
		s.testnet = p
		return p, nil
	}
	p, err := pubky.New(append(opts, pubky.WithRelays(s.cfg.RelayList()))...)
	if err != nil {
		return nil, err
	}
	s.mainnet = p
	return p, nil
}

// call tracks one boundary operation: a call id, duration, result code.
type call struct {
	op     string
	start  time.Time
	logger logging.Logger
}

func (s *state) begin(op string) *call {
	return &call{op: op, start: time.Now(), logger: s.logger.With("op", op, "call_id", uuid.NewString())}
}

func (c *call) end(err error) Code {
	code := codeOf(err)
	elapsed := time.Since(c.start)
	stats.observe(c.op, code, elapsed.Seconds())
	ctx := context.Background()
	if err != nil {
		c.logger.Warn(ctx, "call failed", "code", int32(code), "duration", elapsed, "error", err)
	} else {
		c.logger.Debug(ctx, "call finished", "duration", elapsed)
	}
	return code
}

// blocking runs fn on the executor and waits for its value.
func blocking[T any](op string, fn func(ctx context.Context) (T, error)) (T, error) {
	s := runtimeState()
	c := s.begin(op)
	var out T
	err := s.exec.Run(func(ctx context.Context) error {
		v, err := fn(ctx)
		out = v
		return err
	})
	c.end(err)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// local runs a non-blocking operation on the calling goroutine.
func local[T any](op string, fn func() (T, error)) (v T, err error) {
	c := runtimeState().begin(op)
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, panicError{value: r}
		}
		c.end(err)
	}()
	return fn()
}

// Init forces the executor and the mainnet instance. It always returns 0.
func Init() int32 {
	s := runtimeState()
	if _, err := s.facade(false); err != nil {
		s.logger.Warn(context.Background(), "mainnet init failed", "error", err)
	}
	return 0
}

// InitTestnet forces the executor and the testnet instance. It always returns 0.
func InitTestnet() int32 {
	s := runtimeState()
	if _, err := s.facade(true); err != nil {
		s.logger.Warn(context.Background(), "testnet init failed", "error", err)
	}
	return 0
}

// Version reports the bridge version as a text result.
func Version() Result { return okText(pubky.Version) }

// Metrics renders the bridge metrics in the Prometheus text format.
func Metrics() Result {
	text, err := stats.text()
	return textResult(text, err)
}
