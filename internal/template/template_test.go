package template

import (
	"testing"
	"time"
)

func TestFixedTemplateSet(t *testing.T) {
	all := All()
	if len(all) != 3 {
		t.Fatalf("template count: got %d, want 3", len(all))
	}

	want := map[string]struct {
		endpoint string
		filename string
	}{
		PipingInspection: {"/api/generate-report/", "Inspection_Report.docx"},
		FacilitySurvey:   {"/api/protect-piping/", "PROSURVE_External_Piping_Report.docx"},
		BriefSurvey:      {"/api/pro-surve/", "PROtect_External_Piping_Report.docx"},
	}
	for id, w := range want {
		tpl, err := ByID(id)
		if err != nil {
			t.Fatalf("ByID(%s): %v", id, err)
		}
		if tpl.Endpoint != w.endpoint {
			t.Errorf("%s endpoint: got %q, want %q", id, tpl.Endpoint, w.endpoint)
		}
		if tpl.DownloadFilename != w.filename {
			t.Errorf("%s filename: got %q, want %q", id, tpl.DownloadFilename, w.filename)
		}
	}

	if _, err := ByID("nope"); err == nil {
		t.Error("unknown id accepted")
	}
}

func TestOnlyBriefSurveyDefaultsFirstCaption(t *testing.T) {
	for _, tpl := range All() {
		want := ""
		if tpl.ID == BriefSurvey {
			want = "Overview"
		}
		if tpl.FirstCaptionDefault != want {
			t.Errorf("%s FirstCaptionDefault: got %q, want %q", tpl.ID, tpl.FirstCaptionDefault, want)
		}
	}
}

func TestSourceFieldMapping(t *testing.T) {
	tpl, _ := ByID(BriefSurvey)
	for wire, src := range map[string]string{
		"location":    "site",
		"signatures":  "inspector",
		"description": "spec",
		"unit":        "unit", // unmapped keys read themselves
	} {
		if got := tpl.SourceField(wire); got != src {
			t.Errorf("SourceField(%s): got %q, want %q", wire, got, src)
		}
	}
}

func TestWireOrderKeysResolveToFields(t *testing.T) {
	for _, tpl := range All() {
		for _, wire := range tpl.WireOrder {
			src := tpl.SourceField(wire)
			if _, ok := tpl.Field(src); !ok {
				t.Errorf("%s: wire key %q resolves to unknown field %q", tpl.ID, wire, src)
			}
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "05-01-2024" {
		t.Errorf("FormatDate: got %q, want 05-01-2024", got)
	}
	if got := FormatDate(time.Time{}); got != "" {
		t.Errorf("zero date: got %q, want empty", got)
	}
}

func TestYearRange(t *testing.T) {
	years := YearRange(2024)
	if len(years) != 11 {
		t.Fatalf("length: got %d, want 11", len(years))
	}
	if years[0] != 2019 || years[10] != 2029 {
		t.Errorf("range: got %d..%d, want 2019..2029", years[0], years[10])
	}
}
