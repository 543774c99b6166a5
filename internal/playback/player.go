package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/pkg/metrics"
	"go.uber.org/zap"
)

type State string

const (
	StateIdle       State = "idle"
	StateRequesting State = "requesting"
	StatePlaying    State = "playing"
	StateFailed     State = "failed"
)

const (
	defaultSynthesisTimeout = 45 * time.Second
	defaultMaxPlayback      = 10 * time.Minute
)

// Synthesizer turns text into speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*entity.Audio, error)
}

// Clip is a decoded audio clip bound to the transcript item it voices.
type Clip struct {
	Key         string
	Data        []byte
	ContentType string
}

// Sink is the single output slot. Play blocks until the clip has ended or ctx is done.
type Sink interface {
	Play(ctx context.Context, clip *Clip) error
	Stop()
}

// Player drives one Sink. Starting a clip supersedes whatever was requested or playing before.
type Player struct {
	synth  Synthesizer
	sink   Sink
	logger *zap.Logger

	synthesisTimeout time.Duration
	maxPlayback      time.Duration
	metrics          *metrics.Metrics
	onDone           func(key string)

	mu      sync.Mutex
	state   State
	key     string
	gen     uint64
	cancel  context.CancelFunc
	lastErr error
	wg      sync.WaitGroup
}

type Option func(*Player)

func WithSynthesisTimeout(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.synthesisTimeout = d
		}
	}
}

// WithMaxPlayback bounds how long a clip may stay in the sink without ending.
func WithMaxPlayback(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.maxPlayback = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Player) {
		p.metrics = m
	}
}

// WithOnDone registers a callback invoked with the clip key when a clip ends on its own or fails.
// It is not invoked for clips that were stopped or superseded.
func WithOnDone(fn func(key string)) Option {
	return func(p *Player) {
		p.onDone = fn
	}
}

func NewPlayer(synth Synthesizer, sink Sink, logger *zap.Logger, opts ...Option) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Player{
		synth:            synth,
		sink:             sink,
		logger:           logger,
		synthesisTimeout: defaultSynthesisTimeout,
		maxPlayback:      defaultMaxPlayback,
		state:            StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play requests speech for text and plays it under key. It returns immediately.
func (p *Player) Play(key, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	p.gen++
	p.cancel = cancel
	p.key = key
	p.state = StateRequesting
	p.lastErr = nil

	gen := p.gen
	p.wg.Add(1)
	go p.run(ctx, gen, key, text)
}

// Stop cancels any pending request and silences the sink.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Close stops playback and waits for the worker goroutine to exit.
func (p *Player) Close() {
	p.Stop()
	p.wg.Wait()
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current returns the key of the clip being requested or played.
func (p *Player) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key
}

// Err returns the error that moved the player into StateFailed.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Player) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.state == StatePlaying {
		p.sink.Stop()
	}
	p.gen++
	p.key = ""
	p.state = StateIdle
	p.lastErr = nil
}

func (p *Player) run(ctx context.Context, gen uint64, key, text string) {
	defer p.wg.Done()

	synthCtx, cancelSynth := context.WithTimeout(ctx, p.synthesisTimeout)
	audio, err := p.synth.Synthesize(synthCtx, text)
	cancelSynth()
	if err == nil {
		var clip *Clip
		clip, err = decode(key, audio)
		if err == nil {
			err = p.play(ctx, gen, clip)
		}
	}

	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		p.metrics.Playback("superseded")
		return
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.key = ""
	if err != nil {
		p.state = StateFailed
		p.lastErr = err
	} else {
		p.state = StateIdle
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("audio playback failed", zap.String("key", key), zap.Error(err))
		p.metrics.Playback("failed")
	} else {
		p.metrics.Playback("ended")
	}

	if p.onDone != nil {
		p.onDone(key)
	}
}

func (p *Player) play(ctx context.Context, gen uint64, clip *Clip) error {
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return context.Canceled
	}
	p.state = StatePlaying
	p.mu.Unlock()

	playCtx, cancel := context.WithTimeout(ctx, p.maxPlayback)
	defer cancel()

	err := p.sink.Play(playCtx, clip)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		// Nobody reported the end of the clip; treat it as finished.
		p.sink.Stop()
		return nil
	}
	return err
}
