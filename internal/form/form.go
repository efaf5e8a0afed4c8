package form

import (
	"fmt"
	"strings"

	"github.com/and161185/shiftreport/internal/model"
	"github.com/and161185/shiftreport/internal/overtime"
)

// Form is the in-memory state of the report form.
type Form struct {
	Payload model.ReportPayload
	Errors  Errors
	Editing *model.Report
	Ref     model.FormReferenceData
}

// New seeds a form with p; editing is the report under edit or nil.
func New(p model.ReportPayload, editing *model.Report) *Form {
	return &Form{Payload: p, Errors: Errors{}, Editing: editing}
}

// IsEditing reports whether an existing report is being edited.
func (f *Form) IsEditing() bool { return f.Editing != nil }

// Visible reports whether the field is shown for the current payload.
func (f *Form) Visible(fl Field) bool {
	switch fl {
	case FieldTrailerDiffTime:
		return f.Payload.HasTrailer()
	case FieldTrailerStart, FieldTrailerEnd:
		return f.Payload.HasTrailer() && f.Payload.TrailerDiffTime
	}
	return true
}

// VisibleFields returns the shown fields in display order.
func (f *Form) VisibleFields() []Field {
	out := make([]Field, 0, len(Fields))
	for _, fl := range Fields {
		if f.Visible(fl) {
			out = append(out, fl)
		}
	}
	return out
}

// Get returns the field's value as text.
func (f *Form) Get(fl Field) string {
	p := &f.Payload
	switch fl {
	case FieldDate:
		return p.Date
	case FieldProject:
		return p.Project
	case FieldVehicle:
		return p.Vehicle
	case FieldAddress:
		return p.Address
	case FieldShiftStart:
		return p.ShiftStart
	case FieldShiftEnd:
		return p.ShiftEnd
	case FieldTrailer:
		return p.Trailer
	case FieldTrailerDiffTime:
		if p.TrailerDiffTime {
			return "да"
		}
		return "нет"
	case FieldTrailerStart:
		return p.TrailerStart
	case FieldTrailerEnd:
		return p.TrailerEnd
	case FieldOverrun:
		return p.Overrun
	case FieldComment:
		return p.Comment
	}
	return ""
}

// Set stores a clamped value and clears the field's error flag. It reports
// whether the payload changed.
func (f *Form) Set(fl Field, v string) bool {
	v = Clamp(fl, v)
	if f.Get(fl) == v && fl != FieldTrailerDiffTime {
		return false
	}
	p := &f.Payload
	switch fl {
	case FieldDate:
		p.Date = v
	case FieldProject:
		p.Project = v
	case FieldVehicle:
		p.Vehicle = v
	case FieldAddress:
		p.Address = v
	case FieldShiftStart:
		p.ShiftStart = v
	case FieldShiftEnd:
		p.ShiftEnd = v
	case FieldTrailer:
		p.Trailer = v
	case FieldTrailerDiffTime:
		on := v == "true" || v == "да"
		if on == p.TrailerDiffTime {
			return false
		}
		p.TrailerDiffTime = on
	case FieldTrailerStart:
		p.TrailerStart = v
	case FieldTrailerEnd:
		p.TrailerEnd = v
	case FieldOverrun:
		p.Overrun = v
	case FieldComment:
		p.Comment = v
	default:
		return false
	}
	delete(f.Errors, fl)
	return true
}

// ToggleTrailerDiff flips the trailer-different-time flag.
func (f *Form) ToggleTrailerDiff() {
	f.Payload.TrailerDiffTime = !f.Payload.TrailerDiffTime
	delete(f.Errors, FieldTrailerDiffTime)
}

// Choices returns the selectable values of a choice field; the first entry is
// the empty selection. Nil for free-text fields.
func (f *Form) Choices(fl Field) []string {
	var names []string
	switch fl {
	case FieldVehicle:
		names = f.Ref.VehicleNames()
	case FieldTrailer:
		names = f.Ref.TrailerNames()
	default:
		return nil
	}
	return append([]string{""}, names...)
}

// ChoiceLabel renders a choice value, naming the empty selection.
func ChoiceLabel(fl Field, v string) string {
	if v != "" {
		return v
	}
	switch fl {
	case FieldVehicle:
		return "— выберите технику —"
	case FieldTrailer:
		return "— нет прицепа —"
	}
	return ""
}

// Cycle moves a choice field by delta positions, wrapping around. A current
// value missing from the list (stale draft) restarts from the empty choice.
func (f *Form) Cycle(fl Field, delta int) bool {
	opts := f.Choices(fl)
	if len(opts) == 0 {
		return false
	}
	cur := 0
	for i, o := range opts {
		if o == f.Get(fl) {
			cur = i
			break
		}
	}
	next := ((cur+delta)%len(opts) + len(opts)) % len(opts)
	return f.Set(fl, opts[next])
}

// Suggestions returns recent projects starting with the typed prefix (case-insensitive).
func (f *Form) Suggestions(prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	var out []string
	for _, name := range f.Ref.ProjectNames() {
		if strings.HasPrefix(strings.ToLower(name), prefix) && name != f.Payload.Project {
			out = append(out, name)
		}
	}
	return out
}

// Validate flags invalid fields and reports whether the form may be previewed.
func (f *Form) Validate() bool {
	f.Errors = Validate(f.Payload)
	return f.Errors.OK()
}

// Title is the form header.
func (f *Form) Title(u model.User) string {
	t := "Отчёт о смене"
	if f.Editing != nil {
		t = fmt.Sprintf("Редактирование (ID: %d)", f.Editing.ReportID)
	}
	if u.IsAdmin() {
		t += " (Админка)"
	}
	return t
}

// PreviewTitle and ConfirmText caption the preview modal.
func (f *Form) PreviewTitle() string {
	if f.Editing != nil {
		return "Подтвердить изменения?"
	}
	return "Отправить отчет?"
}

func (f *Form) ConfirmText() string {
	if f.Editing != nil {
		return "Отредактировать"
	}
	return "Отправить"
}

// Line is one row of the preview.
type Line struct {
	Label string
	Value string
}

// Preview lists the entered values with computed overtime for confirmation.
func (f *Form) Preview(u model.User) []Line {
	p := f.Payload
	lines := []Line{
		{"🗓 Дата", p.Date},
		{"👤 Водитель", u.DriverName},
		{"🎬 Проект", p.Project},
		{"🚚 Техника", p.Vehicle},
	}
	if p.HasTrailer() {
		lines = append(lines, Line{"➕ Прицеп", p.Trailer})
	}
	lines = append(lines,
		Line{"📍 Адрес", p.Address},
		Line{"🕔 Смена", fmt.Sprintf("%s — %s (Переработка: %s)",
			p.ShiftStart, p.ShiftEnd, overtime.Format(overtime.Shift(p)))},
	)
	if p.HasTrailer() {
		when := "Как у смены"
		if p.TrailerDiffTime {
			when = p.TrailerStart + " — " + p.TrailerEnd
		}
		lines = append(lines, Line{"🕔 Смена прицепа",
			fmt.Sprintf("%s (Переработка: %s)", when, overtime.Format(overtime.Trailer(p)))})
	}
	if p.Overrun != "" {
		lines = append(lines, Line{"🛣 Перепробег", p.Overrun + " км"})
	}
	if p.Comment != "" {
		lines = append(lines, Line{"💬 Комментарий", p.Comment})
	}
	return lines
}
