// Package handoff passes a generated report's location from the submission
// flow (or the report list) to the viewer, which may live in another tab.
// The payload travels as a small set of fixed storage keys; the viewer reads
// the tab scope first and falls back to the durable scope.
package handoff

import (
	"errors"
	"net/url"
	"strings"

	"inspectoriq/internal/storage"
)

// ErrNoHandoff means no report was prepared for viewing.
var ErrNoHandoff = errors.New("no report selected to view")

// officeEmbed wraps non-PDF documents through the online Office viewer.
const officeEmbed = "https://view.officeapps.live.com/op/embed.aspx?src="

// Payload is the typed handoff: where the document lives and, when known,
// which report it is.
type Payload struct {
	URL string
	ID  string
}

// Write stores the payload into every given scope. The ID key is written
// only when the ID is known; the URL keys are always written.
func Write(p Payload, scopes ...storage.Scope) error {
	for _, s := range scopes {
		if err := s.Set(storage.KeyGeneratedReport, p.URL); err != nil {
			return err
		}
		if err := s.Set(storage.KeyViewReportURL, p.URL); err != nil {
			return err
		}
		if p.ID != "" {
			if err := s.Set(storage.KeyEditingReportID, p.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clear removes the view keys from every given scope. Callers preparing a
// different report's handoff must clear before writing so a stale id can
// never pair with a fresh URL.
func Clear(scopes ...storage.Scope) error {
	for _, s := range scopes {
		if err := s.Delete(storage.KeyViewReportURL); err != nil {
			return err
		}
		if err := s.Delete(storage.KeyEditingReportID); err != nil {
			return err
		}
	}
	return nil
}

// Prepare is the report-list flow: clear then write, durable scope only, so
// a freshly opened tab resolves the chosen report.
func Prepare(p Payload, durable storage.Scope) error {
	if err := Clear(durable); err != nil {
		return err
	}
	return Write(p, durable)
}

// ReadURL resolves just the document URL, earlier scopes taking priority.
// The generation response may omit the report id, so the download path
// works from the URL alone.
func ReadURL(scopes ...storage.Scope) (string, error) {
	for _, s := range scopes {
		if v, ok := s.Get(storage.KeyViewReportURL); ok && v != "" {
			return v, nil
		}
	}
	return "", ErrNoHandoff
}

// Read resolves the payload scope by scope, earlier scopes taking priority.
// Both the URL and the ID must be present somewhere for the viewer to open.
func Read(scopes ...storage.Scope) (Payload, error) {
	var p Payload
	for _, s := range scopes {
		if p.URL == "" {
			if v, ok := s.Get(storage.KeyViewReportURL); ok && v != "" {
				p.URL = v
			}
		}
		if p.ID == "" {
			if v, ok := s.Get(storage.KeyEditingReportID); ok && v != "" {
				p.ID = v
			}
		}
	}
	if p.URL == "" || p.ID == "" {
		return Payload{}, ErrNoHandoff
	}
	return p, nil
}

// FrameURL is the content-type dispatch: PDFs load directly into the
// embedded frame, everything else goes through the Office embed viewer with
// the original URL percent-encoded.
func FrameURL(docURL string) string {
	if strings.HasSuffix(strings.ToLower(docURL), ".pdf") {
		return docURL
	}
	return officeEmbed + url.QueryEscape(docURL)
}
