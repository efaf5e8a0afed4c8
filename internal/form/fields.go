// Package form holds the report form state: field edits, validation and the preview.
package form

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Field identifies a payload field; values match the JSON keys.
type Field string

const (
	FieldDate            Field = "date"
	FieldProject         Field = "project"
	FieldVehicle         Field = "vehicle"
	FieldAddress         Field = "address"
	FieldShiftStart      Field = "shift_start"
	FieldShiftEnd        Field = "shift_end"
	FieldTrailer         Field = "trailer"
	FieldTrailerDiffTime Field = "trailer_diff_time"
	FieldTrailerStart    Field = "trailer_start"
	FieldTrailerEnd      Field = "trailer_end"
	FieldOverrun         Field = "overrun"
	FieldComment         Field = "comment"
)

// Fields lists the fields in display order.
var Fields = []Field{
	FieldDate, FieldProject, FieldVehicle, FieldAddress,
	FieldShiftStart, FieldShiftEnd,
	FieldTrailer, FieldTrailerDiffTime, FieldTrailerStart, FieldTrailerEnd,
	FieldOverrun, FieldComment,
}

var labels = map[Field]string{
	FieldDate:            "Дата",
	FieldProject:         "Проект",
	FieldVehicle:         "Техника",
	FieldAddress:         "Место / Адрес",
	FieldShiftStart:      "Смена (Начало)",
	FieldShiftEnd:        "Смена (Конец)",
	FieldTrailer:         "Прицеп",
	FieldTrailerDiffTime: "Время прицепа отличается от времени смены",
	FieldTrailerStart:    "Прицеп (Начало)",
	FieldTrailerEnd:      "Прицеп (Конец)",
	FieldOverrun:         "Перепробег (км)",
	FieldComment:         "Комментарий",
}

// Label returns the field's caption.
func (f Field) Label() string { return labels[f] }

// Input limits.
const (
	MaxProject = 25
	MaxAddress = 50
	MaxComment = 100
	MaxOverrun = 9999
	MaxName    = 50
)

// Clamp applies the entry-time limits to a raw field value: text is cut to
// its maximum rune count, overrun keeps digits only and stays within range.
func Clamp(f Field, v string) string {
	switch f {
	case FieldProject:
		return truncate(v, MaxProject)
	case FieldAddress:
		return truncate(v, MaxAddress)
	case FieldComment:
		return truncate(v, MaxComment)
	case FieldOverrun:
		return clampOverrun(v)
	}
	return v
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func clampOverrun(v string) string {
	var b strings.Builder
	for _, c := range v {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	d := strings.TrimLeft(b.String(), "0")
	if d == "" {
		if b.Len() > 0 {
			return "0"
		}
		return ""
	}
	if len(d) > 4 {
		return strconv.Itoa(MaxOverrun)
	}
	return d
}
