package constants

const (
	APIPrefix      = "api/v1"
	APIPrefixAdmin = APIPrefix + "/admin"

	// Token roles
	RoleAdmin   = "admin"
	RoleProject = "project"
	RoleInvite  = "invite"

	// Subject of admin tokens when no admin email is configured
	DefaultAdminSubject = "admin"

	// Paths on the public site used in outgoing mail
	SetPasswordPath = "/set-password"
	DashboardPath   = "/client"

	// Response notification outcomes for an approval
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)
