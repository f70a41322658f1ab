package artwork

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 8.0
	DefaultWorkers   = 4
	maxWorkers       = 8
)

// Options configures a [Board].
type Options struct {
	Timeout   time.Duration         // Per-cover load timeout (default: 10s)
	RateLimit float64               // Fetches per second (default: 8)
	Workers   int                   // Concurrent loads (default: 4, max: 8)
	Logger    *log.Logger           // Defaults to a discarding logger
	Progress  chan<- ProgressUpdate // Optional; sends never block
}

// ProgressUpdate reports one finished cover load.
type ProgressUpdate struct {
	Step  int
	Total int
	URL   string
	Err   error
}

// Board holds one [Cover] per distinct cover URL of a track list.
type Board struct {
	covers map[string]*Cover
	order  []*Cover

	source   Source
	opts     Options
	limiter  *rate.Limiter
	finished atomic.Int32

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBoard creates a board for tracks and starts loading their covers.
//
// Loads run until they finish, time out or ctx is cancelled; [Board.Close] cancels them.
func NewBoard(ctx context.Context, tracks models.TrackList, src Source, opts Options) *Board {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Workers > maxWorkers {
		opts.Workers = maxWorkers
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	urls := tracks.CoverURLs()
	b := &Board{
		covers:  make(map[string]*Cover, len(urls)),
		order:   make([]*Cover, 0, len(urls)),
		source:  src,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}
	for _, u := range urls {
		c := NewCover(u)
		b.covers[u] = c
		b.order = append(b.order, c)
	}

	ctx, b.cancel = context.WithCancel(ctx)

	jobs := make(chan *Cover, len(b.order))
	for _, c := range b.order {
		jobs <- c
	}
	close(jobs)

	workers := min(opts.Workers, len(b.order))
	for range workers {
		b.wg.Add(1)
		go b.worker(ctx, jobs)
	}
	return b
}

// Cover returns the cover for url, or nil when the board has none.
func (b *Board) Cover(url string) *Cover {
	if b == nil {
		return nil
	}
	return b.covers[url]
}

// Covers returns every cover in track order.
func (b *Board) Covers() []*Cover {
	if b == nil {
		return nil
	}
	return b.order
}

// Close cancels loads still in flight and waits for the workers to stop.
// Covers that had not finished complete as failed.
func (b *Board) Close() {
	if b == nil {
		return
	}
	b.cancel()
	b.wg.Wait()
}

func (b *Board) worker(ctx context.Context, jobs <-chan *Cover) {
	defer b.wg.Done()

	for c := range jobs {
		if err := b.limiter.Wait(ctx); err != nil {
			b.finish(c, nil, fmt.Errorf("cover load cancelled: %w", err))
			continue
		}
		img, err := b.load(ctx, c.URL)
		b.finish(c, img, err)
	}
}

// load fetches and decodes one cover, giving up after the configured timeout even if the
// source ignores its context.
func (b *Board) load(ctx context.Context, url string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	type result struct {
		img image.Image
		err error
	}
	ch := make(chan result, 1)

	go func() {
		data, _, err := b.source.Fetch(ctx, url)
		if err != nil {
			ch <- result{err: err}
			return
		}
		img, err := Decode(data)
		ch <- result{img: img, err: err}
	}()

	select {
	case r := <-ch:
		return r.img, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: cover %s: %w", shared.ErrTimeout, url, ctx.Err())
	}
}

func (b *Board) finish(c *Cover, img image.Image, err error) {
	if !c.Complete(img, err) {
		return
	}

	step := int(b.finished.Add(1))
	if err != nil {
		b.opts.Logger.Warn("cover failed", "url", c.URL, "error", err)
	} else {
		b.opts.Logger.Debug("cover loaded", "url", c.URL)
	}
	b.sendProgress(ProgressUpdate{Step: step, Total: len(b.order), URL: c.URL, Err: err})
}

func (b *Board) sendProgress(update ProgressUpdate) {
	if b.opts.Progress == nil {
		return
	}
	select {
	case b.opts.Progress <- update:
	default:
	}
}
