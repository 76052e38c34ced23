// Package template holds the three fixed report templates as data. The
// workflow engine is generic; everything that differs between templates
// (field schema, upstream endpoint, multipart key mapping, download filename,
// caption defaults) lives here.
package template

import (
	"fmt"
	"time"
)

// FieldKind drives both editing behavior and validation.
type FieldKind int

const (
	// Text accepts any string, no validation.
	Text FieldKind = iota
	// Date is wire-formatted MM-dd-yyyy, empty string when unset.
	Date
	// Select is constrained to the field's option list.
	Select
	// CheckboxSingle renders as checkboxes but behaves as a single select:
	// checking a new option silently deselects the previous one.
	CheckboxSingle
)

// Field describes one form field of a template schema. Required is a visual
// marker only; it never blocks step navigation or generation.
type Field struct {
	Key      string
	Label    string
	Kind     FieldKind
	Options  []string
	Required bool
}

// Template binds a field schema to its upstream endpoint and the handful of
// per-template behavior flags.
type Template struct {
	ID               string
	Title            string
	Endpoint         string
	DownloadFilename string
	Fields           []Field
	// FirstCaptionDefault, when non-empty, is applied to the first image's
	// caption at upload time if the collection was previously empty.
	FirstCaptionDefault string
	// FormKeys maps multipart keys to schema field keys where they differ.
	// A multipart key absent from this map reads the schema field of the
	// same name.
	FormKeys map[string]string
	// WireOrder is the exact ordered multipart key list the upstream
	// endpoint expects, captions/images excluded.
	WireOrder []string
}

const (
	PipingInspection = "piping-inspection"
	FacilitySurvey   = "facility-survey"
	BriefSurvey      = "brief-survey"
)

// WireDateFormat is the upstream date layout (MM-dd-yyyy).
const WireDateFormat = "01-02-2006"

// FormatDate renders a date for the wire, empty when unset.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(WireDateFormat)
}

// YearRange returns the calendar jump list: five years before to five years
// after the given year.
func YearRange(year int) []int {
	years := make([]int, 0, 11)
	for y := year - 5; y <= year+5; y++ {
		years = append(years, y)
	}
	return years
}

var accessOptions = []string{
	"Grade", "Rope Access", "Ladder", "Manlift", "Scaffold",
	"Under Grating", "Harness & Lanyard", "Ground Level", "Blanket",
}

var surfaceOptions = []string{
	"Coated", "Soil Protective Wrap", "Un-Coated", "Insulated",
}

var templates = []*Template{
	{
		ID:               PipingInspection,
		Title:            "Piping Inspection Report",
		Endpoint:         "/api/generate-report/",
		DownloadFilename: "Inspection_Report.docx",
		Fields: []Field{
			{Key: "inspectionDate", Label: "Inspection Date", Kind: Date, Required: true},
			{Key: "company", Label: "Company", Kind: Text, Required: true},
			{Key: "unit", Label: "Unit", Kind: Text, Required: true},
			{Key: "location", Label: "Location", Kind: Text, Required: true},
			{Key: "circuitId", Label: "Circuit ID", Kind: Text, Required: true},
			{Key: "workOrder", Label: "Work Order", Kind: Text},
			{Key: "pipeSpecification", Label: "Pipe Specification", Kind: Text, Required: true},
			{Key: "description", Label: "Description", Kind: Text, Required: true},
			{Key: "serviceType", Label: "Service Type", Kind: Text, Required: true},
			{Key: "pipeMaterial", Label: "Pipe Material", Kind: Select, Options: []string{"carbon_steel", "stainless_steel", "pvc", "frp"}},
			{Key: "designCode", Label: "Design Code", Kind: Select, Options: []string{"ASME B31.3"}},
			{Key: "class", Label: "Class", Kind: Select, Options: []string{"Class 1", "Class 2", "Class 3"}},
			{Key: "pId", Label: "P&ID", Kind: Text},
			{Key: "lineNumbers", Label: "Line Numbers", Kind: Text},
			{Key: "typeOfInspection", Label: "Type of Inspection", Kind: Select, Options: []string{"External", "UT Survey"}},
			{Key: "nextInspectionDate", Label: "Next Inspection Date", Kind: Date},
			{Key: "nextUtInspectionDate", Label: "Next UT Inspection Date", Kind: Date},
			{Key: "locationAccess", Label: "Location / Access", Kind: Text},
			{Key: "route", Label: "Route (From - To)", Kind: Text},
			{Key: "insulationStatus", Label: "Insulation Status", Kind: Select, Options: []string{"Insulated", "Not Insulated", "Partial"}},
			{Key: "coatingStatus", Label: "Coating Status", Kind: Select, Options: []string{"Coated", "Uncoated", "Partial"}},
			{Key: "findings", Label: "Findings", Kind: Text},
		},
		// locationAccess is edited but never serialized, matching the
		// shipped behavior.
		WireOrder: []string{
			"unit", "inspectionDate", "company", "location", "class",
			"circuitId", "description", "designCode", "pipeSpecification",
			"workOrder", "pId", "nextInspectionDate", "typeOfInspection",
			"nextUtInspectionDate", "lineNumbers", "serviceType",
			"pipeMaterial", "route", "insulationStatus", "coatingStatus",
			"findings",
		},
	},
	{
		ID:               FacilitySurvey,
		Title:            "Facility Piping Survey",
		Endpoint:         "/api/protect-piping/",
		DownloadFilename: "PROSURVE_External_Piping_Report.docx",
		Fields: []Field{
			{Key: "clientName", Label: "Client Name", Kind: Text, Required: true},
			{Key: "facilitySite", Label: "Facility / Site", Kind: Text, Required: true},
			{Key: "systemId", Label: "System ID", Kind: Text},
			{Key: "pipeClass", Label: "Pipe Class", Kind: Text},
			{Key: "pIdNo", Label: "P&ID No.", Kind: Text},
			{Key: "inspectedBy", Label: "Inspected By", Kind: Text, Required: true},
			{Key: "certNo", Label: "Cert No.", Kind: Text},
			{Key: "inspectionDate", Label: "Inspection Date", Kind: Date, Required: true},
			{Key: "nextInspectionDate", Label: "Next Inspection Date", Kind: Date},
			{Key: "circuitId", Label: "Circuit ID", Kind: Text},
			{Key: "findings", Label: "Findings", Kind: Text},
			{Key: "accessMethods", Label: "Access Methods", Kind: CheckboxSingle, Options: accessOptions},
			{Key: "surfaceConditions", Label: "Surface Conditions", Kind: CheckboxSingle, Options: surfaceOptions},
			{Key: "pipeSpecification", Label: "Pipe Specification", Kind: Text},
			{Key: "service", Label: "Service", Kind: Text},
			{Key: "estimatedFootage", Label: "Estimated Footage", Kind: Text},
			{Key: "psv", Label: "PSV", Kind: Text},
			{Key: "primaryDiameter", Label: "Primary Diameter", Kind: Text},
			{Key: "setPressure", Label: "Set Pressure", Kind: Text},
		},
		WireOrder: []string{
			"clientName", "facilitySite", "systemId", "pipeClass", "pIdNo",
			"inspectedBy", "certNo", "inspectionDate", "nextInspectionDate",
			"circuitId", "findings", "accessMethods", "surfaceConditions",
			"pipeSpecification", "service", "estimatedFootage", "psv",
			"primaryDiameter", "setPressure",
		},
	},
	{
		ID:                  BriefSurvey,
		Title:               "Brief Field Survey",
		Endpoint:            "/api/pro-surve/",
		DownloadFilename:    "PROtect_External_Piping_Report.docx",
		FirstCaptionDefault: "Overview",
		Fields: []Field{
			{Key: "unit", Label: "Unit", Kind: Text, Required: true},
			{Key: "site", Label: "Site", Kind: Text, Required: true},
			{Key: "circuitId", Label: "Circuit ID", Kind: Text},
			{Key: "inspectionDate", Label: "Inspection Date", Kind: Date, Required: true},
			{Key: "service", Label: "Service", Kind: Text},
			{Key: "lineNumber", Label: "Line Number", Kind: Text},
			{Key: "inspector", Label: "Inspector", Kind: Text, Required: true},
			{Key: "spec", Label: "Spec", Kind: Text},
			{Key: "inspectionFinding", Label: "Inspection Finding", Kind: Text},
		},
		// This endpoint reuses several draft fields under more than one
		// wire key (site also feeds location, inspector also feeds
		// signatures, spec also feeds description).
		FormKeys: map[string]string{
			"location":          "site",
			"serviceType":       "service",
			"lineNumbers":       "lineNumber",
			"signatures":        "inspector",
			"pipeSpecification": "spec",
			"description":       "spec",
		},
		WireOrder: []string{
			"unit", "site", "location", "inspectionDate", "serviceType",
			"lineNumbers", "inspector", "pipeSpecification", "signatures",
			"description", "circuitId",
		},
	},
}

// All returns the fixed template set in display order.
func All() []*Template { return templates }

// ByID looks a template up by identifier.
func ByID(id string) (*Template, error) {
	for _, t := range templates {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unknown template %q", id)
}

// Field returns the schema field for key, if any.
func (t *Template) Field(key string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// SourceField resolves a wire key to the draft field that feeds it.
func (t *Template) SourceField(wireKey string) string {
	if src, ok := t.FormKeys[wireKey]; ok {
		return src
	}
	return wireKey
}
