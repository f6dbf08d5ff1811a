package service

import "github.com/payperproject/portal/internal/core/domain"

// Evaluate decides how a protected view renders for the given view state.
// It is pure: the same inputs always produce the same outcome. The first
// matching rule wins, and a loading view short-circuits everything else.
func Evaluate(req domain.Requirement, view domain.AuthView, requested string) domain.Outcome {
	switch {
	case view.Loading:
		return domain.Outcome{Kind: domain.ShowLoadingPlaceholder}
	case !view.IsAuthenticated:
		return domain.Outcome{Kind: domain.RedirectToLogin, ReturnTo: requested}
	case req.RequireAdmin && !view.IsAdmin:
		return domain.Outcome{Kind: domain.ShowAccessDenied, Reason: domain.ReasonAdminRequired}
	case req.RequireProjectManager && !(view.IsProjectManager || view.CompanyRoleHolder):
		return domain.Outcome{Kind: domain.ShowAccessDenied, Reason: domain.ReasonProjectManagerRequired}
	}
	return domain.Outcome{Kind: domain.RenderView}
}
