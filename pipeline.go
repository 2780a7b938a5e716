package mipgen

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Settings configures a Pipeline. The struct is read once at creation and
// never mutated afterwards.
type Settings struct {
	// Compression enables BCn encoding of every generated level.
	Compression bool
	// CacheRoot is the directory for compressed level payloads. Empty
	// disables caching.
	CacheRoot string
	// Workers caps the number of concurrently processed images.
	// Values below 1 mean one worker per CPU.
	Workers int
	// MinLevelSize stops the chain before producing a level smaller than
	// this in either dimension. Values below 2 keep the full chain to 1x1.
	MinLevelSize int
	// MaxLevels caps the chain length including the base. 0 means no cap.
	MaxLevels int
	// Logf receives non-fatal diagnostics such as cache write failures.
	// Nil discards them.
	Logf func(format string, args ...any)
}

// SourceImage is one discovered image handed to the pipeline by the host.
// OptOut marks images the host excluded from processing.
type SourceImage struct {
	Ref    string
	Image  RasterImage
	OptOut bool
}

// ImageProvider exposes the images referenced by a material-like value.
// Hosts implement it per material type; the pipeline never walks the host's
// entity graph itself.
type ImageProvider interface {
	Images() []SourceImage
}

// JobState tracks one image through the pipeline.
type JobState uint8

const (
	// StateDiscovered is the initial state of a submitted image.
	StateDiscovered JobState = iota
	// StateClassified means the format classifier accepted the image.
	StateClassified
	// StatePyramidBuilt means the mip chain exists uncompressed.
	StatePyramidBuilt
	// StateCompressing means levels are being encoded or fetched from cache.
	StateCompressing
	// StateCompressed means every level has its encoded payload.
	StateCompressed
	// StateFinalized is the successful terminal state.
	StateFinalized
	// StateSkipped is the terminal state for ineligible or opted-out images.
	StateSkipped
	// StateFailed is the terminal state for abandoned images.
	StateFailed
)

func (s JobState) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateClassified:
		return "classified"
	case StatePyramidBuilt:
		return "pyramid-built"
	case StateCompressing:
		return "compressing"
	case StateCompressed:
		return "compressed"
	case StateFinalized:
		return "finalized"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Result reports the terminal state of one submitted image. Image is set
// only for finalized results; failed images are abandoned whole rather than
// substituted partially.
type Result struct {
	Ref   string
	State JobState
	Image *ProcessedImage
	Err   error
}

// Pipeline coordinates mip generation and compression over a fixed-size
// worker pool. Submission is fire-and-forget; the host observes completion
// through Poll on its own thread.
type Pipeline struct {
	settings Settings
	cache    *Cache
	sem      chan struct{}
	wg       sync.WaitGroup

	mu       sync.Mutex
	done     []Result
	inflight map[Fingerprint]chan struct{}

	cachedBytes atomic.Int64
}

// NewPipeline validates the configuration and prepares the cache root.
// Configuration errors surface here, before any job is dispatched.
func NewPipeline(settings Settings) (*Pipeline, error) {
	cache, err := OpenCache(settings.CacheRoot)
	if err != nil {
		return nil, err
	}

	workers := settings.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	return &Pipeline{
		settings: settings,
		cache:    cache,
		sem:      make(chan struct{}, workers),
		inflight: make(map[Fingerprint]chan struct{}),
	}, nil
}

// Submit dispatches one image to the worker pool and returns immediately.
func (p *Pipeline) Submit(src SourceImage) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		res := p.ProcessImage(src)

		p.mu.Lock()
		p.done = append(p.done, res)
		p.mu.Unlock()
	}()
}

// SubmitProvider dispatches every image a material-like value references.
func (p *Pipeline) SubmitProvider(provider ImageProvider) {
	for _, src := range provider.Images() {
		p.Submit(src)
	}
}

// Poll returns one finished result without blocking. The second return is
// false when nothing has finished since the last call.
func (p *Pipeline) Poll() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.done) == 0 {
		return Result{}, false
	}

	res := p.done[0]
	p.done = p.done[1:]

	return res, true
}

// Wait blocks until all submitted jobs finish and returns their results.
func (p *Pipeline) Wait() []Result {
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	results := p.done
	p.done = nil

	return results
}

// CachedBytes reports how many payload bytes this run newly wrote to the
// cache.
func (p *Pipeline) CachedBytes() int64 {
	return p.cachedBytes.Load()
}

// ProcessImage runs one image through the full state machine on the calling
// goroutine. Submit uses it internally; hosts may call it directly for
// synchronous processing.
func (p *Pipeline) ProcessImage(src SourceImage) Result {
	res := Result{Ref: src.Ref, State: StateDiscovered}

	if src.OptOut {
		res.State = StateSkipped
		return res
	}

	eligible, mode, target := Classify(src.Image.Format, p.settings.Compression)
	if !eligible {
		res.State = StateSkipped
		return res
	}
	res.State = StateClassified

	if err := src.Image.Validate(); err != nil {
		res.State = StateFailed
		res.Err = err
		return res
	}

	pyramid, err := BuildPyramidLimit(&src.Image, mode, p.settings.MinLevelSize, p.settings.MaxLevels)
	if err != nil {
		res.State = StateFailed
		res.Err = err
		return res
	}
	res.State = StatePyramidBuilt

	out := &ProcessedImage{
		Width:  src.Image.Width,
		Height: src.Image.Height,
		Format: src.Image.Format,
		Target: target,
	}

	if target == TargetNone {
		out.Levels = pyramid.Levels
		return p.finalize(res, out)
	}

	res.State = StateCompressing
	out.Levels = make([]MipLevel, 0, len(pyramid.Levels))

	for _, level := range pyramid.Levels {
		raster := RasterImage{
			Width:  level.Width,
			Height: level.Height,
			Format: pyramid.Format,
			Pix:    level.Data,
		}

		data, err := p.compressLevel(&raster, target)
		if err != nil {
			res.State = StateFailed
			res.Err = fmt.Errorf("level %d: %w", level.Index, err)
			return res
		}

		out.Levels = append(out.Levels, MipLevel{
			Index:  level.Index,
			Width:  level.Width,
			Height: level.Height,
			Data:   data,
		})
	}
	res.State = StateCompressed

	return p.finalize(res, out)
}

// finalize verifies the assembled chain before handing it to the host.
func (p *Pipeline) finalize(res Result, out *ProcessedImage) Result {
	if err := out.validateLevels(); err != nil {
		res.State = StateFailed
		res.Err = err
		return res
	}

	res.State = StateFinalized
	res.Image = out

	return res
}

// compressLevel fetches or computes the encoded payload of one level. A
// per-fingerprint in-flight set keeps concurrent jobs racing on identical
// content from duplicating the encode: the loser waits, then finds the
// winner's cache entry.
func (p *Pipeline) compressLevel(level *RasterImage, target CompressionTarget) ([]byte, error) {
	key := ComputeFingerprint(level.Pix, level.Width, level.Height, target)

	var ch chan struct{}
	for {
		p.mu.Lock()
		if busy, ok := p.inflight[key]; ok {
			p.mu.Unlock()
			<-busy
			continue
		}
		ch = make(chan struct{})
		p.inflight[key] = ch
		p.mu.Unlock()
		break
	}
	defer func() {
		p.mu.Lock()
		delete(p.inflight, key)
		p.mu.Unlock()
		close(ch)
	}()

	if data, ok := p.cache.Lookup(key); ok {
		return data, nil
	}

	data, err := Compress(level, target)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Store(key, data); err != nil {
		// Non-fatal: the run proceeds with the in-memory payload, only
		// future runs lose the benefit.
		p.logf("mipgen: cache write for %s failed: %v", key, err)
	} else if p.cache.Enabled() {
		p.accountCached(len(data))
	}

	return data, nil
}

// accountCached tracks newly cached bytes and warns at every GiB boundary.
// Steady growth across runs usually means some source image changes every
// run and defeats the cache.
func (p *Pipeline) accountCached(n int) {
	const gib = 1 << 30

	total := p.cachedBytes.Add(int64(n))
	if (total-int64(n))/gib != total/gib {
		p.logf("mipgen: cached texture data from this run exceeds %dGiB", total/gib)
	}
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.settings.Logf != nil {
		p.settings.Logf(format, args...)
	}
}
