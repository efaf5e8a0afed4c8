package form

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/and161185/shiftreport/internal/errs"
	"github.com/and161185/shiftreport/internal/model"
)

// Errors flags invalid fields.
type Errors map[Field]bool

// OK reports whether no field is flagged.
func (e Errors) OK() bool {
	for _, bad := range e {
		if bad {
			return false
		}
	}
	return true
}

// Has reports whether f is flagged.
func (e Errors) Has(f Field) bool { return e[f] }

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func validClock(s string) bool {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// Validate checks required fields. Trailer times are required only when a
// trailer is selected and flagged as running on different time.
func Validate(p model.ReportPayload) Errors {
	e := Errors{}
	if !validDate(p.Date) {
		e[FieldDate] = true
	}
	if strings.TrimSpace(p.Project) == "" || utf8.RuneCountInString(p.Project) > MaxProject {
		e[FieldProject] = true
	}
	if p.Vehicle == "" {
		e[FieldVehicle] = true
	}
	if strings.TrimSpace(p.Address) == "" || utf8.RuneCountInString(p.Address) > MaxAddress {
		e[FieldAddress] = true
	}
	if !validClock(p.ShiftStart) {
		e[FieldShiftStart] = true
	}
	if !validClock(p.ShiftEnd) {
		e[FieldShiftEnd] = true
	}
	if p.HasTrailer() && p.TrailerDiffTime {
		if !validClock(p.TrailerStart) {
			e[FieldTrailerStart] = true
		}
		if !validClock(p.TrailerEnd) {
			e[FieldTrailerEnd] = true
		}
	}
	if p.Overrun != "" {
		n, err := strconv.Atoi(p.Overrun)
		if err != nil || n < 0 || n > MaxOverrun {
			e[FieldOverrun] = true
		}
	}
	if utf8.RuneCountInString(p.Comment) > MaxComment {
		e[FieldComment] = true
	}
	return e
}

// ValidationError is a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Unwrap lets callers match errs.ErrValidation.
func (e *ValidationError) Unwrap() error { return errs.ErrValidation }

var (
	ErrReasonTooShort = &ValidationError{Msg: "Причина обязательна (мин. 4 символа)."}
	ErrNameTooShort   = &ValidationError{Msg: "ФИО должно быть длиннее 5 символов."}
	ErrNameBadPrefix  = &ValidationError{Msg: "ФИО не должно начинаться с =, +, - или @."}
	ErrNameReserved   = &ValidationError{Msg: "Это имя зарезервировано."}
)

const (
	minReason = 4
	minName   = 5
)

// ValidateReason returns the trimmed edit reason or ErrReasonTooShort.
func ValidateReason(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < minReason {
		return "", ErrReasonTooShort
	}
	return s, nil
}

var reservedNames = map[string]struct{}{
	"техника":      {},
	"пользователи": {},
	"admin":        {},
}

// ValidateName checks a registration name. It is checked as typed, without trimming.
func ValidateName(name string) error {
	if utf8.RuneCountInString(name) < minName {
		return ErrNameTooShort
	}
	switch name[0] {
	case '=', '+', '-', '@':
		return ErrNameBadPrefix
	}
	if _, ok := reservedNames[strings.ToLower(name)]; ok {
		return ErrNameReserved
	}
	return nil
}

// ValidateRename returns the trimmed new name or ErrNameTooShort.
func ValidateRename(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < minName {
		return "", ErrNameTooShort
	}
	return name, nil
}
