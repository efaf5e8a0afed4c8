// Package service contains application services for identity and reports.
package service

import (
	"context"
	"errors"

	"github.com/and161185/shiftreport/internal/api"
	"github.com/and161185/shiftreport/internal/errs"
	"github.com/and161185/shiftreport/internal/model"
)

// Backend is the remote API used by the services; *api.Client implements it.
type Backend interface {
	GetUser(ctx context.Context, tgID string) api.Result[model.User]
	RegisterUser(ctx context.Context, tgID, driverName, username string) api.Result[model.User]
	ChangeName(ctx context.Context, tgID, newName string) api.Result[api.ChangeNameResult]
	FormData(ctx context.Context) api.Result[model.FormReferenceData]
	SubmitReport(ctx context.Context, tgID string, p model.ReportPayload) api.Result[model.SubmitResult]
	Reports(ctx context.Context, tgID string) api.Result[[]model.Report]
	EditReport(ctx context.Context, reportID int64, tgID string, p model.ReportPayload, reason string) api.Result[model.SubmitResult]
}

var _ Backend = (*api.Client)(nil)

// UserError is a failure with a message meant for the user.
type UserError struct {
	Message string
	Cause   error
}

func (e *UserError) Error() string { return e.Message }

// Unwrap exposes the underlying api error.
func (e *UserError) Unwrap() error { return e.Cause }

// isTransport reports whether the call got no response.
func isTransport(e *api.Error) bool { return e != nil && errors.Is(e, errs.ErrTransport) }

// failure converts a failed result into a UserError: the server message when
// present, fallback otherwise, network for transport failures.
func failure(e *api.Error, fallback, network string) *UserError {
	if e == nil {
		return &UserError{Message: fallback}
	}
	if isTransport(e) {
		return &UserError{Message: network, Cause: e}
	}
	msg := e.Message
	if msg == "" {
		msg = fallback
	}
	return &UserError{Message: msg, Cause: e}
}
