package service

import "context"

// Actions checked against the Authorizer before a handler runs.
const (
	ActionCreateTransfer = "transfer:create"
	ActionReadTransfer   = "transfer:read"
	ActionUpdateTransfer = "transfer:update"
	ActionDeleteTransfer = "transfer:delete"
)

// Authorizer is the authorization capability this service consumes. The
// actual authentication (JWT validation, roles) lives in the API layer; the
// core only asks whether the caller may perform an action.
type Authorizer interface {
	IsAuthorized(ctx context.Context, action string) bool
}

// AllowAll authorizes everything. Used in tests and when the deployment
// fronts the service with its own access control.
type AllowAll struct{}

func (AllowAll) IsAuthorized(ctx context.Context, action string) bool { return true }
