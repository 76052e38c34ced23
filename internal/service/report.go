package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"inspectoriq/internal/handoff"
	"inspectoriq/internal/logger"
	"inspectoriq/internal/model"
	"inspectoriq/internal/storage"
	"inspectoriq/internal/upstream"
)

// ReportService fronts the remote report listing. The upstream service is
// the source of truth; every List call re-fetches, and concurrent fetches
// are last-write-wins on the caller's side (no cancellation needed).
type ReportService struct {
	upstream *upstream.Client
	durable  storage.ScopeProvider
}

func NewReportService(up *upstream.Client, durable storage.ScopeProvider) *ReportService {
	return &ReportService{upstream: up, durable: durable}
}

// ListQuery shapes the listing the way the reports page shows it.
type ListQuery struct {
	Status string // "", "draft" or "completed"
	Search string // substring of report_name, case-insensitive
	Sort   string // "recent" (default), "oldest" or "alphabetical"
	Page   int    // 1-based
}

const pageSize = 10

// ListPage is one page of shaped results.
type ListPage struct {
	Reports    []model.ReportSummary `json:"reports"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"total_pages"`
}

func (s *ReportService) List(ctx context.Context, sess *model.Session, q ListQuery) (*ListPage, error) {
	reports, err := s.upstream.ListReports(ctx, sess.Token, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	out := reports[:0:0]
	for _, r := range reports {
		if q.Status != "" && !strings.EqualFold(r.Status, q.Status) {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(r.ReportName), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, r)
	}

	switch q.Sort {
	case "oldest":
		sort.SliceStable(out, func(i, j int) bool {
			return parseCreated(out[i].CreatedAt).Before(parseCreated(out[j].CreatedAt))
		})
	case "alphabetical":
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].ReportName) < strings.ToLower(out[j].ReportName)
		})
	default: // recent
		sort.SliceStable(out, func(i, j int) bool {
			return parseCreated(out[i].CreatedAt).After(parseCreated(out[j].CreatedAt))
		})
	}

	total := len(out)
	totalPages := (total + pageSize - 1) / pageSize
	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &ListPage{Reports: out[start:end], Total: total, Page: page, TotalPages: totalPages}, nil
}

// Delete removes a report upstream. Callers drop the row from their view
// only on success.
func (s *ReportService) Delete(ctx context.Context, sess *model.Session, id int) error {
	if err := s.upstream.DeleteReport(ctx, sess.Token, id); err != nil {
		return fmt.Errorf("delete report %d: %w", id, err)
	}
	logger.Info("report.deleted", "uid", sess.ID, "report_id", id)
	return nil
}

// PrepareView stages a listed report for the viewer: stale handoff keys are
// cleared before the new pair is written, durable scope only, so a freshly
// opened tab resolves this report and never a stale id with a fresh URL.
func (s *ReportService) PrepareView(sess *model.Session, docURL string, id int) error {
	p := handoff.Payload{URL: docURL, ID: strconv.Itoa(id)}
	if err := handoff.Prepare(p, s.durable.For(sess.ID)); err != nil {
		return fmt.Errorf("prepare view: %w", err)
	}
	return nil
}

// Download proxies the stored document so the browser receives it as an
// attachment under the given name.
func (s *ReportService) Download(ctx context.Context, docURL string) (io.ReadCloser, string, error) {
	return s.upstream.FetchDocument(ctx, docURL)
}

func parseCreated(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
