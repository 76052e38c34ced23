package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSignInDerivesDisplayName(t *testing.T) {
	cases := []struct {
		first, last, want string
	}{
		{"Jane", "Doe", "Jane Doe"},
		{"Jane", "", "Jane"},
		{"", "", "No Name"},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/accounts/signin/" {
				t.Errorf("path: got %q", r.URL.Path)
			}
			w.Write([]byte(`{"token":"tok-1","user":{"id":5,"email":"j@x.io","first_name":"` +
				tc.first + `","last_name":"` + tc.last + `"}}`))
		}))
		sess, err := NewClient(srv.URL).SignIn(context.Background(), "j@x.io", "pw")
		srv.Close()
		if err != nil {
			t.Fatalf("SignIn: %v", err)
		}
		if sess.Name != tc.want {
			t.Errorf("name for %q/%q: got %q, want %q", tc.first, tc.last, sess.Name, tc.want)
		}
		if sess.ID != 5 || sess.Token != "tok-1" {
			t.Errorf("session: %+v", sess)
		}
	}
}

func TestListReportsSendsTokenHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token tok-9" {
			t.Errorf("auth header: got %q, want \"Token tok-9\"", got)
		}
		if r.URL.Path != "/api/user/12/reports/" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		w.Write([]byte(`[{"id":1,"report_name":"Unit 4 survey","s3_url":"https://x/1.docx","created_at":"2024-05-01T10:00:00Z","unit":"U-4"}]`))
	}))
	defer srv.Close()

	reports, err := NewClient(srv.URL).ListReports(context.Background(), "tok-9", 12)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 1 || reports[0].ReportName != "Unit 4 survey" {
		t.Errorf("reports: %+v", reports)
	}
}

func TestDeleteReport(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).DeleteReport(context.Background(), "tok", 42); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	if gotMethod != "DELETE" || gotPath != "/api/delete-report/42/" {
		t.Errorf("request: %s %s", gotMethod, gotPath)
	}
}

func TestDeleteReportFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).DeleteReport(context.Background(), "tok", 42); err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestGenerateReportPostsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate-report/" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Token tok" {
			t.Errorf("auth header: got %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("unit"); got != "U-1" {
			t.Errorf("unit: got %q", got)
		}
		w.Write([]byte(`{"s3_url":"https://x/out.docx","id":7}`))
	}))
	defer srv.Close()

	body := &strings.Builder{}
	boundary := "testboundary"
	body.WriteString("--" + boundary + "\r\nContent-Disposition: form-data; name=\"unit\"\r\n\r\nU-1\r\n--" + boundary + "--\r\n")

	result, err := NewClient(srv.URL).GenerateReport(context.Background(), "tok",
		"/api/generate-report/", "multipart/form-data; boundary="+boundary,
		strings.NewReader(body.String()))
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if result.S3URL != "https://x/out.docx" || result.ID != 7 {
		t.Errorf("result: %+v", result)
	}
}

func TestGenerateReportRejectsMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GenerateReport(context.Background(), "tok", "/api/generate-report/",
		"multipart/form-data; boundary=b", strings.NewReader(""))
	if err == nil || !strings.Contains(err.Error(), "s3_url") {
		t.Fatalf("got %v, want missing s3_url error", err)
	}
}

func TestGenerateReportNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GenerateReport(context.Background(), "tok", "/api/generate-report/",
		"multipart/form-data; boundary=b", strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error on 502")
	}
}
