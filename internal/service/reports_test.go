package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/shiftreport/internal/api"
	"github.com/and161185/shiftreport/internal/errs"
	"github.com/and161185/shiftreport/internal/form"
	"github.com/and161185/shiftreport/internal/model"
)

type fakeDrafts struct{ resets int }

func (f *fakeDrafts) Reset(context.Context) model.ReportPayload {
	f.resets++
	return model.ReportPayload{}
}

var user = model.User{TgID: "1", DriverName: "Иванов Иван"}

func TestSubmit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fb := &fakeBackend{}
	dr := &fakeDrafts{}
	s := NewReportService(fb, dr, zaptest.NewLogger(t))

	fb.submit = api.Result[model.SubmitResult]{Data: &model.SubmitResult{Success: true, ReportID: 7}}
	res, err := s.Submit(ctx, user, model.ReportPayload{Project: "Сериал"})
	require.NoError(t, err)
	require.EqualValues(t, 7, res.ReportID)
	require.Equal(t, 1, dr.resets)

	fb.submit = api.Result[model.SubmitResult]{Err: &api.Error{Message: "Лист недоступен", Status: 500}}
	_, err = s.Submit(ctx, user, model.ReportPayload{})
	var se *SubmitError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "Ошибка", se.Title)
	require.Equal(t, "Лист недоступен", se.Message)
	require.Equal(t, 1, dr.resets, "draft kept on failure")

	fb.submit = api.Result[model.SubmitResult]{Err: transport()}
	_, err = s.Submit(ctx, user, model.ReportPayload{})
	require.ErrorAs(t, err, &se)
	require.Equal(t, "Ошибка сети", se.Title)
	require.Equal(t, "Не удалось отправить отчет. Данные сохранены в черновике.", se.Message)
	require.ErrorIs(t, err, errs.ErrTransport)

	// success=false без текста ошибки
	fb.submit = api.Result[model.SubmitResult]{Data: &model.SubmitResult{}}
	_, err = s.Submit(ctx, user, model.ReportPayload{})
	require.ErrorAs(t, err, &se)
	require.Equal(t, "Не удалось отправить отчет.", se.Message)
	require.Equal(t, 1, dr.resets)
	require.Equal(t, []string{"submit", "submit", "submit", "submit"}, fb.calls)
}

func TestEdit_ReasonGate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fb := &fakeBackend{edit: api.Result[model.SubmitResult]{Data: &model.SubmitResult{Success: true, ReportID: 42}}}
	dr := &fakeDrafts{}
	s := NewReportService(fb, dr, nil)
	rep := model.Report{ReportID: 42}

	_, err := s.Edit(ctx, user, rep, model.ReportPayload{}, "abc")
	require.ErrorIs(t, err, form.ErrReasonTooShort)
	require.Empty(t, fb.calls)

	res, err := s.Edit(ctx, user, rep, model.ReportPayload{}, "  опечатка ")
	require.NoError(t, err)
	require.EqualValues(t, 42, res.ReportID)
	require.Equal(t, "опечатка", fb.lastReason)
	require.EqualValues(t, 42, fb.lastReport)
	require.Equal(t, 1, dr.resets)
}

func TestReferenceDataAndRecent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fb := &fakeBackend{
		formData: api.Result[model.FormReferenceData]{Data: &model.FormReferenceData{Vehicles: []model.Vehicle{{VehicleName: "КАМАЗ"}}}},
		reports:  api.Result[[]model.Report]{Data: &[]model.Report{{ReportID: 2}, {ReportID: 1}}},
	}
	s := NewReportService(fb, nil, nil)

	ref, err := s.ReferenceData(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"КАМАЗ"}, ref.VehicleNames())

	list, err := s.Recent(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.EqualValues(t, 2, list[0].ReportID)

	fb.formData = api.Result[model.FormReferenceData]{Err: transport()}
	ref, err = s.ReferenceData(ctx)
	require.ErrorIs(t, err, errs.ErrTransport)
	require.Empty(t, ref.Vehicles)

	fb.reports = api.Result[[]model.Report]{Err: &api.Error{Status: 502}}
	_, err = s.Recent(ctx, user)
	require.EqualError(t, err, msgReportsFailed)

	fb.reports = api.Result[[]model.Report]{Err: transport()}
	_, err = s.Recent(ctx, user)
	require.EqualError(t, err, msgShortNetwork)
}
