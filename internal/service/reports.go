package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/and161185/shiftreport/internal/api"
	"github.com/and161185/shiftreport/internal/form"
	"github.com/and161185/shiftreport/internal/model"
)

const (
	titleError        = "Ошибка"
	titleNetworkError = "Ошибка сети"
	msgSubmitFailed   = "Не удалось отправить отчет."
	msgSubmitNetwork  = "Не удалось отправить отчет. Данные сохранены в черновике."
	msgReportsFailed  = "Не удалось загрузить отчеты."
)

// SubmitError is shown as a host popup after a failed submit or edit. The draft is kept.
type SubmitError struct {
	Title   string
	Message string
	Cause   error
}

func (e *SubmitError) Error() string { return e.Title + ": " + e.Message }

// Unwrap exposes the underlying api error.
func (e *SubmitError) Unwrap() error { return e.Cause }

// DraftResetter clears the persisted draft after a successful submission.
type DraftResetter interface {
	Reset(ctx context.Context) model.ReportPayload
}

// ReportService defines report operations.
type ReportService interface {
	// ReferenceData fetches vehicles, trailers and recent projects.
	ReferenceData(ctx context.Context) (model.FormReferenceData, error)
	// Submit sends a new report; never retried.
	Submit(ctx context.Context, u model.User, p model.ReportPayload) (model.SubmitResult, error)
	// Edit replaces a report's payload; the reason is validated first.
	Edit(ctx context.Context, u model.User, r model.Report, p model.ReportPayload, reason string) (model.SubmitResult, error)
	// Recent lists the user's latest reports in backend order.
	Recent(ctx context.Context, u model.User) ([]model.Report, error)
}

type ReportServiceImpl struct {
	api    Backend
	drafts DraftResetter
	log    *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(api Backend, drafts DraftResetter, log *zap.Logger) *ReportServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportServiceImpl{api: api, drafts: drafts, log: log}
}

// ReferenceData returns empty lists alongside the error on failure.
func (s *ReportServiceImpl) ReferenceData(ctx context.Context) (model.FormReferenceData, error) {
	res := s.api.FormData(ctx)
	if !res.OK() {
		s.log.Warn("form data failed", zap.String("error", res.Err.Message))
		return model.FormReferenceData{}, res.Err
	}
	if res.Data == nil {
		return model.FormReferenceData{}, nil
	}
	return *res.Data, nil
}

// Submit sends p and resets the draft on success.
func (s *ReportServiceImpl) Submit(ctx context.Context, u model.User, p model.ReportPayload) (model.SubmitResult, error) {
	return s.finish(ctx, "submit", s.api.SubmitReport(ctx, u.TgID, p))
}

// Edit validates the reason before any network call, then sends the edit.
func (s *ReportServiceImpl) Edit(ctx context.Context, u model.User, r model.Report, p model.ReportPayload, reason string) (model.SubmitResult, error) {
	reason, err := form.ValidateReason(reason)
	if err != nil {
		return model.SubmitResult{}, err
	}
	return s.finish(ctx, "edit", s.api.EditReport(ctx, r.ReportID, u.TgID, p, reason))
}

// finish treats only an explicit success flag as success.
func (s *ReportServiceImpl) finish(ctx context.Context, op string, res api.Result[model.SubmitResult]) (model.SubmitResult, error) {
	if res.OK() && res.Data != nil && res.Data.Success {
		if s.drafts != nil {
			s.drafts.Reset(ctx)
		}
		s.log.Info("report sent", zap.String("op", op), zap.Int64("report_id", res.Data.ReportID))
		return *res.Data, nil
	}

	se := &SubmitError{Title: titleError, Message: res.Message(msgSubmitFailed)}
	if res.Err != nil {
		se.Cause = res.Err
		if isTransport(res.Err) {
			se.Title, se.Message = titleNetworkError, msgSubmitNetwork
		}
	}
	s.log.Warn("report not sent", zap.String("op", op), zap.String("message", se.Message))
	return model.SubmitResult{}, se
}

// Recent lists the latest reports.
func (s *ReportServiceImpl) Recent(ctx context.Context, u model.User) ([]model.Report, error) {
	res := s.api.Reports(ctx, u.TgID)
	if res.OK() && res.Data != nil {
		return *res.Data, nil
	}
	if res.OK() {
		return nil, nil
	}
	return nil, failure(res.Err, msgReportsFailed, msgShortNetwork)
}
