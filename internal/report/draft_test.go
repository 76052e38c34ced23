package report

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"inspectoriq/internal/template"
)

func newTestDraft(t *testing.T, tplID string) *Draft {
	t.Helper()
	tpl, err := template.ByID(tplID)
	if err != nil {
		t.Fatalf("ByID(%s): %v", tplID, err)
	}
	return NewDraft(tpl, 13, 0)
}

func img(name string) Image {
	return Image{Name: name, ContentType: "image/jpeg", Data: []byte("jpg")}
}

func checkAligned(t *testing.T, d *Draft) {
	t.Helper()
	if len(d.Images()) != len(d.Captions()) {
		t.Fatalf("images/captions misaligned: %d images, %d captions",
			len(d.Images()), len(d.Captions()))
	}
}

func TestImageCaptionAlignment(t *testing.T) {
	d := newTestDraft(t, template.PipingInspection)

	if err := d.AddImages(img("a.jpg"), img("b.jpg"), img("c.jpg")); err != nil {
		t.Fatalf("AddImages: %v", err)
	}
	checkAligned(t, d)

	d.SetCaption(0, "first")
	d.SetCaption(1, "second")
	d.SetCaption(2, "third")

	if err := d.RemoveImage(1); err != nil {
		t.Fatalf("RemoveImage: %v", err)
	}
	checkAligned(t, d)

	// Deletion shifts later captions left by one.
	if got := d.Captions()[1]; got != "third" {
		t.Errorf("caption after shift: got %q, want %q", got, "third")
	}
	if got := d.Images()[1].Name; got != "c.jpg" {
		t.Errorf("image after shift: got %q, want %q", got, "c.jpg")
	}

	if err := d.AddImages(img("d.jpg")); err != nil {
		t.Fatalf("AddImages: %v", err)
	}
	checkAligned(t, d)
	if got := d.Captions()[2]; got != "" {
		t.Errorf("appended caption: got %q, want empty", got)
	}
}

func TestAddImagesCapIsAllOrNothing(t *testing.T) {
	d := newTestDraft(t, template.PipingInspection)

	imgs := make([]Image, 12)
	for i := range imgs {
		imgs[i] = img(fmt.Sprintf("%d.jpg", i))
	}
	if err := d.AddImages(imgs...); err != nil {
		t.Fatalf("AddImages(12): %v", err)
	}
	d.SetCaption(0, "keep me")

	// 12 + 2 > 13: the whole batch is rejected, nothing changes.
	err := d.AddImages(img("x.jpg"), img("y.jpg"))
	if !errors.Is(err, ErrTooManyImages) {
		t.Fatalf("expected ErrTooManyImages, got %v", err)
	}
	if d.ImageCount() != 12 {
		t.Errorf("partial add happened: %d images", d.ImageCount())
	}
	if got := d.Captions()[0]; got != "keep me" {
		t.Errorf("captions mutated on rejection: got %q", got)
	}

	// Exactly reaching the cap is fine.
	if err := d.AddImages(img("z.jpg")); err != nil {
		t.Fatalf("AddImages to cap: %v", err)
	}
	if d.ImageCount() != 13 {
		t.Errorf("count: got %d, want 13", d.ImageCount())
	}
}

func TestRemoveImageOutOfRange(t *testing.T) {
	d := newTestDraft(t, template.PipingInspection)
	d.AddImages(img("a.jpg"))

	for _, idx := range []int{-1, 1, 99} {
		if err := d.RemoveImage(idx); !errors.Is(err, ErrBadIndex) {
			t.Errorf("RemoveImage(%d): got %v, want ErrBadIndex", idx, err)
		}
	}
	if d.ImageCount() != 1 {
		t.Errorf("no-op guard failed: %d images", d.ImageCount())
	}
}

func TestFirstCaptionDefaultOnlyOnBriefSurvey(t *testing.T) {
	d := newTestDraft(t, template.BriefSurvey)
	d.AddImages(img("a.jpg"), img("b.jpg"))
	if got := d.Captions()[0]; got != "Overview" {
		t.Errorf("first caption: got %q, want %q", got, "Overview")
	}
	if got := d.Captions()[1]; got != "" {
		t.Errorf("second caption: got %q, want empty", got)
	}

	// One-time default, not an invariant: the user may overwrite it,
	// and later removals do not reapply it.
	d.SetCaption(0, "custom")
	if got := d.Captions()[0]; got != "custom" {
		t.Errorf("overwrite: got %q", got)
	}
	d.RemoveImage(0)
	if got := d.Captions()[0]; got != "" {
		t.Errorf("default reapplied after removal: got %q", got)
	}

	// Other templates never default the first caption.
	d2 := newTestDraft(t, template.PipingInspection)
	d2.AddImages(img("a.jpg"))
	if got := d2.Captions()[0]; got != "" {
		t.Errorf("piping-inspection first caption: got %q, want empty", got)
	}
}

func TestCheckboxSingleSelect(t *testing.T) {
	d := newTestDraft(t, template.FacilitySurvey)

	if err := d.SetField("accessMethods", "Grade"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	// Checking B silently deselects A: exactly one value remains.
	if err := d.SetField("accessMethods", "Ladder"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if got := d.Field("accessMethods"); got != "Ladder" {
		t.Errorf("accessMethods: got %q, want %q", got, "Ladder")
	}

	if err := d.SetField("surfaceConditions", "Coated"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if err := d.SetField("surfaceConditions", "Insulated"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if got := d.Field("surfaceConditions"); got != "Insulated" {
		t.Errorf("surfaceConditions: got %q, want %q", got, "Insulated")
	}

	if err := d.SetField("accessMethods", "Helicopter"); err == nil {
		t.Error("expected rejection of non-option value")
	}
}

func TestSetFieldValidation(t *testing.T) {
	d := newTestDraft(t, template.PipingInspection)

	// Free text takes anything; required markers never block.
	if err := d.SetField("company", ""); err != nil {
		t.Errorf("empty required text field rejected: %v", err)
	}
	if err := d.SetField("unit", "U-100"); err != nil {
		t.Errorf("SetField: %v", err)
	}

	if err := d.SetField("pipeMaterial", "carbon_steel"); err != nil {
		t.Errorf("valid option rejected: %v", err)
	}
	if err := d.SetField("pipeMaterial", "wood"); err == nil {
		t.Error("invalid option accepted")
	}

	if err := d.SetField("inspectionDate", "2024-05-01"); err != nil {
		t.Errorf("valid date rejected: %v", err)
	}
	if err := d.SetField("inspectionDate", "05/01/2024"); err == nil {
		t.Error("malformed date accepted")
	}
	if err := d.SetField("inspectionDate", ""); err != nil {
		t.Errorf("clearing a date rejected: %v", err)
	}

	if err := d.SetField("nope", "x"); err == nil {
		t.Error("unknown field accepted")
	}
}

func TestWireValueFormatsDates(t *testing.T) {
	d := newTestDraft(t, template.PipingInspection)
	d.SetField("inspectionDate", "2024-05-01")
	if got := d.WireValue("inspectionDate"); got != "05-01-2024" {
		t.Errorf("wire date: got %q, want %q", got, "05-01-2024")
	}
	if got := d.WireValue("nextInspectionDate"); got != "" {
		t.Errorf("unset date: got %q, want empty", got)
	}
}

func TestWorkflowTemplateSlots(t *testing.T) {
	w := NewWorkflow(13, 0)

	if _, err := w.Draft(); !errors.Is(err, ErrNoTemplate) {
		t.Fatalf("draft before selection: got %v, want ErrNoTemplate", err)
	}
	if err := w.SelectTemplate("bogus"); err == nil {
		t.Fatal("bogus template accepted")
	}

	if err := w.SelectTemplate(template.PipingInspection); err != nil {
		t.Fatalf("SelectTemplate: %v", err)
	}
	if w.Step() != StepDetails {
		t.Errorf("step after selection: got %q, want details", w.Step())
	}

	d1, _ := w.Draft()
	d1.SetField("unit", "U-100")
	if err := w.GoTo(StepImages); err != nil {
		t.Fatalf("GoTo: %v", err)
	}

	// Switching templates switches slots and resets the step; the first
	// draft keeps its data and is never merged into the second.
	w.SelectTemplate(template.BriefSurvey)
	if w.Step() != StepDetails {
		t.Errorf("step after reselect: got %q, want details", w.Step())
	}
	d3, _ := w.Draft()
	if got := d3.Field("unit"); got != "" {
		t.Errorf("brief-survey draft inherited data: %q", got)
	}

	w.SelectTemplate(template.PipingInspection)
	d1again, _ := w.Draft()
	if got := d1again.Field("unit"); got != "U-100" {
		t.Errorf("slot not preserved: got %q, want U-100", got)
	}
}

// A field edit, a caption edit and an image change may all land while a
// submission is serializing the same draft; run them in parallel and check
// the draft comes out intact. The race detector covers the rest.
func TestDraftConcurrentEditAndSerialize(t *testing.T) {
	d := newTestDraft(t, template.PipingInspection)
	d.SetField("unit", "U-100")
	d.AddImages(img("a.jpg"), img("b.jpg"))

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			d.SetField("findings", fmt.Sprintf("pass %d", i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			d.SetCaption(i%2, fmt.Sprintf("caption %d", i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			d.AddImages(img("c.jpg"))
			d.RemoveImage(2)
		}
	}()

	for i := 0; i < 100; i++ {
		if _, _, err := BuildForm(d); err != nil {
			t.Fatalf("BuildForm: %v", err)
		}
	}
	wg.Wait()

	checkAligned(t, d)
	if d.ImageCount() != 2 {
		t.Errorf("count: got %d, want 2", d.ImageCount())
	}
	if got := d.Field("unit"); got != "U-100" {
		t.Errorf("unit: got %q", got)
	}
}
