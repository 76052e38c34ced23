package service

import (
	"context"
	"sync"

	"inspectoriq/internal/config"
	"inspectoriq/internal/model"
	"inspectoriq/internal/report"
	"inspectoriq/internal/storage"
)

// WorkflowService tracks one authoring workflow per user+tab pair. Each
// workflow carries its own per-template drafts, progress simulator and
// submission state machine.
type WorkflowService struct {
	poster  report.Poster
	cfg     config.ReportConfig
	durable storage.ScopeProvider
	tabs    *storage.Tabs

	mu    sync.Mutex
	flows map[flowKey]*Flow
}

type flowKey struct {
	userID int
	tabID  string
}

// Flow bundles the workflow state with its generator.
type Flow struct {
	Workflow  *report.Workflow
	Generator *report.Generator
}

func NewWorkflowService(poster report.Poster, cfg config.ReportConfig, durable storage.ScopeProvider, tabs *storage.Tabs) *WorkflowService {
	return &WorkflowService{
		poster:  poster,
		cfg:     cfg,
		durable: durable,
		tabs:    tabs,
		flows:   make(map[flowKey]*Flow),
	}
}

// Flow returns the workflow for one user+tab, creating it on first use.
func (s *WorkflowService) Flow(userID int, tabID string) *Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := flowKey{userID: userID, tabID: tabID}
	f, ok := s.flows[k]
	if !ok {
		maxBytes := s.cfg.MaxImageSizeMB << 20
		f = &Flow{
			Workflow: report.NewWorkflow(s.cfg.MaxImages, maxBytes),
			Generator: report.NewGenerator(s.poster,
				report.NewSimulator(s.cfg.ProgressTick), s.cfg.BannerResetDelay),
		}
		s.flows[k] = f
	}
	return f
}

// Generate submits the active draft, writing the handoff keys into both the
// tab scope and the durable scope on success.
func (s *WorkflowService) Generate(ctx context.Context, sess *model.Session, tabID string) (*report.Outcome, error) {
	f := s.Flow(sess.ID, tabID)
	d, err := f.Workflow.Draft()
	if err != nil {
		return nil, err
	}
	tab := s.tabs.For(sess.ID, tabID)
	durable := s.durable.For(sess.ID)
	return f.Generator.Generate(ctx, sess, d, tab, durable)
}
