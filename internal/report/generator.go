package report

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"time"

	"inspectoriq/internal/handoff"
	"inspectoriq/internal/logger"
	"inspectoriq/internal/model"
	"inspectoriq/internal/storage"
)

// Banner is the three-valued submission status shown to the user.
type Banner string

const (
	BannerHidden   Banner = "hidden"
	BannerProgress Banner = "progress"
	BannerSuccess  Banner = "success"
)

var (
	ErrNoSession = errors.New("session expired, sign in again")
	ErrNoImages  = errors.New("at least one image is required")
	ErrBusy      = errors.New("a submission is already in flight")
)

// Poster is the slice of the upstream client the generator needs.
type Poster interface {
	GenerateReport(ctx context.Context, token, endpoint, contentType string, form io.Reader) (*model.GenerateResult, error)
}

// Outcome is what a successful submission yields: the upstream result plus
// the template's download filename.
type Outcome struct {
	Result           *model.GenerateResult
	DownloadFilename string
}

// Generator runs one submission at a time: idle → submitting → succeeded,
// or idle → submitting → failed → idle. A failed attempt leaves the stored
// handoff keys exactly as they were.
type Generator struct {
	mu          sync.Mutex
	submitting  bool
	generated   bool
	banner      Banner
	bannerTimer *time.Timer
	resetDelay  time.Duration
	sim         *Simulator
	poster      Poster
}

func NewGenerator(poster Poster, sim *Simulator, resetDelay time.Duration) *Generator {
	if resetDelay <= 0 {
		resetDelay = 3 * time.Second
	}
	return &Generator{
		banner:     BannerHidden,
		resetDelay: resetDelay,
		sim:        sim,
		poster:     poster,
	}
}

func (g *Generator) Simulator() *Simulator { return g.sim }

// Banner returns the current banner state.
func (g *Generator) Banner() Banner {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.banner
}

// Generated reports whether any submission has succeeded this session.
func (g *Generator) Generated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generated
}

// Submitting reports whether a submission is in flight.
func (g *Generator) Submitting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.submitting
}

// Generate runs the submission state machine for the given draft.
// Preconditions, in order: a session token must be present (otherwise no
// request is issued at all) and at least one image must be uploaded. On
// success the handoff keys are written to both scopes before the outcome is
// returned, so a view action immediately after download sees the new URL.
func (g *Generator) Generate(ctx context.Context, sess *model.Session, d *Draft, tab, durable storage.Scope) (*Outcome, error) {
	if sess == nil || sess.Token == "" {
		return nil, ErrNoSession
	}
	if d.ImageCount() == 0 {
		return nil, ErrNoImages
	}

	g.mu.Lock()
	if g.submitting {
		g.mu.Unlock()
		return nil, ErrBusy
	}
	g.submitting = true
	g.banner = BannerProgress
	if g.bannerTimer != nil {
		g.bannerTimer.Stop()
		g.bannerTimer = nil
	}
	g.mu.Unlock()

	g.sim.Start()

	contentType, body, err := BuildForm(d)
	if err != nil {
		g.fail()
		return nil, err
	}

	result, err := g.poster.GenerateReport(ctx, sess.Token, d.Template().Endpoint, contentType, body)
	if err != nil {
		g.fail()
		logger.Error("generate.failed", "template", d.Template().ID, "err", err)
		return nil, err
	}

	// Storage writes happen before the caller sees the outcome.
	p := handoff.Payload{URL: result.S3URL}
	if result.ID != 0 {
		p.ID = strconv.Itoa(result.ID)
	}
	if err := handoff.Write(p, tab, durable); err != nil {
		g.fail()
		return nil, err
	}

	g.sim.Finish()
	g.mu.Lock()
	g.submitting = false
	g.generated = true
	g.banner = BannerSuccess
	g.bannerTimer = time.AfterFunc(g.resetDelay, func() {
		g.mu.Lock()
		g.banner = BannerHidden
		g.mu.Unlock()
	})
	g.mu.Unlock()

	logger.Info("generate.ok", "template", d.Template().ID, "report_id", result.ID)
	return &Outcome{Result: result, DownloadFilename: d.Template().DownloadFilename}, nil
}

// fail is the submitting → failed → idle transition: ticker stopped, banner
// hidden, handoff keys untouched. The last successful result stays valid.
func (g *Generator) fail() {
	g.sim.Stop()
	g.mu.Lock()
	g.submitting = false
	g.banner = BannerHidden
	g.mu.Unlock()
}
