// Package report implements the report-authoring workflow: the per-template
// draft state, the cosmetic progress simulator and the submission state
// machine that turns a draft into a generated document.
package report

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"inspectoriq/internal/template"
)

// Step is the workflow tab the user is on.
type Step string

const (
	StepDetails  Step = "details"
	StepImages   Step = "images"
	StepGenerate Step = "generate"
)

var (
	ErrNoTemplate    = errors.New("no template selected")
	ErrTooManyImages = errors.New("too many images")
	ErrImageTooLarge = errors.New("image exceeds size limit")
	ErrBadIndex      = errors.New("image index out of range")
)

// isoDateFormat is how date field values are held in the draft; the wire
// format conversion happens at serialization time.
const isoDateFormat = "2006-01-02"

// Image is one uploaded attachment.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Draft is the in-progress form state for one template. Images and captions
// are parallel ordered sequences; every operation keeps them the same length.
// A draft is shared across a tab's request goroutines, so every method takes
// the mutex.
type Draft struct {
	mu        sync.Mutex
	tpl       *template.Template
	fields    map[string]string
	images    []Image
	captions  []string
	maxImages int
	maxBytes  int
}

func NewDraft(tpl *template.Template, maxImages, maxBytes int) *Draft {
	return &Draft{
		tpl:       tpl,
		fields:    make(map[string]string),
		maxImages: maxImages,
		maxBytes:  maxBytes,
	}
}

func (d *Draft) Template() *template.Template { return d.tpl }

// SetField stores a field value. Free-text fields accept anything (required
// markers are visual only and never block). Enumerated fields are checked
// for membership; date fields must be ISO yyyy-MM-dd or empty. For
// checkbox-single fields, setting a new option replaces the previous one.
func (d *Draft) SetField(key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.tpl.Field(key)
	if !ok {
		return fmt.Errorf("template %s has no field %q", d.tpl.ID, key)
	}
	switch f.Kind {
	case template.Date:
		if value != "" {
			if _, err := time.Parse(isoDateFormat, value); err != nil {
				return fmt.Errorf("field %s: bad date %q", key, value)
			}
		}
	case template.Select, template.CheckboxSingle:
		if value != "" && !contains(f.Options, value) {
			return fmt.Errorf("field %s: %q is not an option", key, value)
		}
	}
	d.fields[key] = value
	return nil
}

// Field returns the current value of a field, empty when unset.
func (d *Draft) Field(key string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fields[key]
}

// WireValue renders a field for the multipart body: dates become MM-dd-yyyy
// (empty when unset), everything else passes through.
func (d *Draft) WireValue(key string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wireValue(key)
}

// wireValue is WireValue with the lock already held.
func (d *Draft) wireValue(key string) string {
	v := d.fields[key]
	if f, ok := d.tpl.Field(key); ok && f.Kind == template.Date {
		if v == "" {
			return ""
		}
		t, err := time.Parse(isoDateFormat, v)
		if err != nil {
			return ""
		}
		return template.FormatDate(t)
	}
	return v
}

// AddImages appends the incoming files, all or nothing. If the result would
// exceed the cap, nothing is added. Each new image gets an empty caption;
// when the collection was previously empty and the template defines a first
// caption default, it is applied once (the user may overwrite it later).
func (d *Draft) AddImages(imgs ...Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.images)+len(imgs) > d.maxImages {
		return fmt.Errorf("%w: %d of %d used, %d incoming", ErrTooManyImages,
			len(d.images), d.maxImages, len(imgs))
	}
	for _, img := range imgs {
		if d.maxBytes > 0 && len(img.Data) > d.maxBytes {
			return fmt.Errorf("%w: %s is %d bytes", ErrImageTooLarge, img.Name, len(img.Data))
		}
	}
	wasEmpty := len(d.images) == 0
	for _, img := range imgs {
		d.images = append(d.images, img)
		d.captions = append(d.captions, "")
	}
	if wasEmpty && len(d.images) > 0 && d.tpl.FirstCaptionDefault != "" {
		d.captions[0] = d.tpl.FirstCaptionDefault
	}
	return nil
}

// RemoveImage drops the image and its caption at index, shifting later
// entries down by one. Out-of-range indexes are a no-op error.
func (d *Draft) RemoveImage(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.images) {
		return ErrBadIndex
	}
	d.images = append(d.images[:index], d.images[index+1:]...)
	d.captions = append(d.captions[:index], d.captions[index+1:]...)
	return nil
}

// SetCaption overwrites the caption at index.
func (d *Draft) SetCaption(index int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.captions) {
		return ErrBadIndex
	}
	d.captions[index] = text
	return nil
}

// Images returns a copy of the image list in upload order.
func (d *Draft) Images() []Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Image(nil), d.images...)
}

// Captions returns a copy of the caption list, aligned with Images.
func (d *Draft) Captions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.captions...)
}

func (d *Draft) ImageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.images)
}

func (d *Draft) MaxImages() int { return d.maxImages }

func (d *Draft) Fields() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string, len(d.fields))
	for k, v := range d.fields {
		out[k] = v
	}
	return out
}

func contains(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}

// Workflow is one authoring session: separate draft slots per template plus
// the active selection and step. Switching the template switches slots; the
// drafts are never merged. Like Draft, a workflow is shared across a tab's
// request goroutines.
type Workflow struct {
	mu        sync.Mutex
	maxImages int
	maxBytes  int
	active    string
	step      Step
	drafts    map[string]*Draft
}

func NewWorkflow(maxImages, maxBytes int) *Workflow {
	return &Workflow{
		maxImages: maxImages,
		maxBytes:  maxBytes,
		drafts:    make(map[string]*Draft),
	}
}

// SelectTemplate picks the active template and resets the step to details.
// Each template keeps its own draft slot across switches.
func (w *Workflow) SelectTemplate(id string) error {
	tpl, err := template.ByID(id)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.drafts[id]; !ok {
		w.drafts[id] = NewDraft(tpl, w.maxImages, w.maxBytes)
	}
	w.active = id
	w.step = StepDetails
	return nil
}

// Draft returns the active draft.
func (w *Workflow) Draft() (*Draft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == "" {
		return nil, ErrNoTemplate
	}
	return w.drafts[w.active], nil
}

func (w *Workflow) ActiveTemplate() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *Workflow) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// GoTo moves between steps. Navigation never loses draft data and is not
// gated on required fields (the required markers are soft).
func (w *Workflow) GoTo(step Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == "" {
		return ErrNoTemplate
	}
	switch step {
	case StepDetails, StepImages, StepGenerate:
		w.step = step
		return nil
	}
	return fmt.Errorf("unknown step %q", step)
}
