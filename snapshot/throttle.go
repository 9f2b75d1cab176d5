package snapshot

import (
	"context"
	"io"
	"math"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ThrottleConfig bounds snapshot resource usage.
type ThrottleConfig struct {
	// MaxConcurrentJobs is the maximum number of snapshot jobs running
	// at once. If 0, defaults to 1.
	MaxConcurrentJobs int64

	// IOLimitBytesPerSec caps snapshot IO throughput. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Throttle bounds concurrent snapshot jobs and their IO throughput.
// A nil *Throttle is valid and imposes no limits.
type Throttle struct {
	jobs      *semaphore.Weighted
	ioLimiter *rate.Limiter
}

// NewThrottle creates a throttle from cfg.
func NewThrottle(cfg ThrottleConfig) *Throttle {
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 1
	}

	t := &Throttle{
		jobs: semaphore.NewWeighted(cfg.MaxConcurrentJobs),
	}
	if cfg.IOLimitBytesPerSec > 0 {
		t.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return t
}

// Acquire blocks until a job slot is free or ctx is canceled.
func (t *Throttle) Acquire(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.jobs.Acquire(ctx, 1)
}

// Release returns a job slot.
func (t *Throttle) Release() {
	if t == nil {
		return
	}
	t.jobs.Release(1)
}

// waitIO blocks until the limiter admits n bytes.
func (t *Throttle) waitIO(ctx context.Context, n int) error {
	if t == nil || t.ioLimiter == nil || n <= 0 {
		return nil
	}
	burst := t.ioLimiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := t.ioLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Writer wraps w so that writes respect the IO limit.
func (t *Throttle) Writer(ctx context.Context, w io.Writer) io.Writer {
	if t == nil || t.ioLimiter == nil {
		return w
	}
	return &limitedWriter{t: t, ctx: ctx, w: w}
}

// Reader wraps r so that reads respect the IO limit.
func (t *Throttle) Reader(ctx context.Context, r io.Reader) io.Reader {
	if t == nil || t.ioLimiter == nil {
		return r
	}
	return &limitedReader{t: t, ctx: ctx, r: r}
}

type limitedWriter struct {
	t   *Throttle
	ctx context.Context
	w   io.Writer
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if err := w.t.waitIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

type limitedReader struct {
	t   *Throttle
	ctx context.Context
	r   io.Reader
}

func (r *limitedReader) Read(p []byte) (int, error) {
	// The read size is unknown up front, so admit the buffer size and
	// cap oversized buffers at the burst.
	n := len(p)
	if burst := r.t.ioLimiter.Burst(); n > burst && burst > 0 {
		n = burst
		p = p[:n]
	}
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	if err := r.t.waitIO(r.ctx, n); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
