package domain

// Phase distinguishes a view computed from local storage alone from one
// that has been through remote revalidation.
type Phase string

const (
	PhaseOptimistic Phase = "optimistic"
	PhaseConfirmed  Phase = "confirmed"
)

// AuthView is the derived authorization summary for one browser session.
// It is recomputed on every check and never persisted.
type AuthView struct {
	Phase            Phase  `json:"phase"`
	Loading          bool   `json:"loading"`
	IsAuthenticated  bool   `json:"isAuthenticated"`
	IsAdmin          bool   `json:"isAdmin"`
	IsProjectManager bool   `json:"isProjectManager"`
	IsCompanyUser    bool   `json:"isCompanyUser"`
	IsClient         bool   `json:"isClient"`
	IsFreelancer     bool   `json:"isFreelancer"`
	// CompanyRoleHolder is set when the company track holds a project_manager
	// or company_user role, with or without a company id.
	CompanyRoleHolder bool         `json:"companyRoleHolder"`
	Identity          IdentityKind `json:"-"`
	User              *User        `json:"user,omitempty"`
}

// Requirement is the static access declaration attached to a protected view.
type Requirement struct {
	RequireAdmin          bool
	RequireProjectManager bool
}

// OutcomeKind is the render decision taken by the access gate.
type OutcomeKind string

const (
	ShowLoadingPlaceholder OutcomeKind = "loading"
	RedirectToLogin        OutcomeKind = "redirect_to_login"
	ShowAccessDenied       OutcomeKind = "access_denied"
	RenderView             OutcomeKind = "render"
)

// DenialReason names the role a denied caller was missing.
type DenialReason string

const (
	ReasonAdminRequired          DenialReason = "admin_required"
	ReasonProjectManagerRequired DenialReason = "project_manager_required"
)

// Outcome is the gate's advisory result. ReturnTo is set for RedirectToLogin
// and Reason for ShowAccessDenied.
type Outcome struct {
	Kind     OutcomeKind
	Reason   DenialReason
	ReturnTo string
}

// Message returns the human-readable text shown alongside a denial.
func (o Outcome) Message() string {
	switch o.Reason {
	case ReasonAdminRequired:
		return "You don't have permission to access this page. Admin access required."
	case ReasonProjectManagerRequired:
		return "You don't have permission to access this page. Project Manager access required. " +
			"Please log in with a company account that has project manager role."
	}
	return ""
}
