package model

import "strings"

// Session is the signed-in user as persisted under the authUser key.
// Token is the opaque bearer token issued by the external identity service;
// it is the sole authorization signal.
type Session struct {
	ID    int    `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DisplayName joins first and last name, falling back to "No Name".
func DisplayName(first, last string) string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		return "No Name"
	}
	return name
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SignUpRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SignInResponse struct {
	Token string  `json:"token"`
	User  Session `json:"user"`
}

// ReportSummary is one row of the remote report listing. The upstream
// service is the source of truth; the client never caches these across runs.
type ReportSummary struct {
	ID         int    `json:"id"`
	ReportName string `json:"report_name"`
	S3URL      string `json:"s3_url"`
	CreatedAt  string `json:"created_at"`
	Unit       string `json:"unit"`
	Status     string `json:"status,omitempty"`
}

// GenerateResult is the upstream response to a report-generation POST.
type GenerateResult struct {
	S3URL string `json:"s3_url"`
	ID    int    `json:"id,omitempty"`
}

type AccountUpdateRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}
