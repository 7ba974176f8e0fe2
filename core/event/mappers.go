package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Color is one of the four semantic palette tokens the calendar widget knows.
type Color string

const (
	ColorPrimary Color = "primary"
	ColorSuccess Color = "success"
	ColorDanger  Color = "danger"
	ColorWarning Color = "warning"
)

var palette = [4]Color{ColorPrimary, ColorSuccess, ColorDanger, ColorWarning}

// knownHexColors maps the stock event-type colors to their tokens before the
// channel heuristic kicks in.
var knownHexColors = map[string]Color{
	"#007bff": ColorPrimary,
	"#0d6efd": ColorPrimary,
	"#28a745": ColorSuccess,
	"#198754": ColorSuccess,
	"#dc3545": ColorDanger,
	"#ffc107": ColorWarning,
	"#fd7e14": ColorWarning,
}

// TypeColor assigns a palette token to a numeric event-type id: id mod 4.
func TypeColor(typeID int) Color {
	idx := typeID % len(palette)
	if idx < 0 {
		idx += len(palette)
	}
	return palette[idx]
}

// HexColor assigns a palette token to a hex color string: exact lookup first,
// then a dominant-channel heuristic with a warm-tone carve-out (R==G>B reads
// as yellow/orange). Total: malformed input falls through to the default.
func HexColor(hex string) Color {
	hex = strings.ToLower(strings.TrimSpace(hex))
	if c, ok := knownHexColors[hex]; ok {
		return c
	}

	r, g, b, ok := parseHexChannels(hex)
	if !ok {
		return ColorPrimary
	}
	switch {
	case r > g && r > b:
		return ColorDanger
	case g > r && g > b:
		return ColorSuccess
	case b > r && b > g:
		return ColorPrimary
	case r == g && r > b:
		return ColorWarning
	}
	return ColorPrimary
}

func parseHexChannels(hex string) (r, g, b uint8, ok bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 { // #abc -> #aabbcc
		hex = strings.Repeat(string(hex[0]), 2) + strings.Repeat(string(hex[1]), 2) + strings.Repeat(string(hex[2]), 2)
	}
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(val >> 16), uint8(val >> 8), uint8(val), true
}

// EventColor picks the display token for an event: its type's hex color when
// one is configured, the type id fallback otherwise.
func EventColor(evt Event, types []EventType) Color {
	for _, t := range types {
		if t.ID == evt.EventTypeID {
			if t.Color != "" {
				return HexColor(t.Color)
			}
			break
		}
	}
	return TypeColor(evt.EventTypeID)
}

// Role ids known to the calendar.
const (
	RoleAdmin   = 1
	RoleTeacher = 2
	RoleStudent = 3
	RoleTutor   = 4
)

var roleNames = map[int]string{
	RoleAdmin:   "admin",
	RoleTeacher: "teacher",
	RoleStudent: "student",
	RoleTutor:   "tutor",
}

// roleTranslations are the Spanish display names; synthetic labels pass through.
var roleTranslations = map[string]string{
	"admin":   "Administrador",
	"teacher": "Docente",
	"student": "Alumno",
	"tutor":   "Tutor",
}

// RoleName maps a role id to its label. Unknown ids degrade to a synthetic
// "role-<id>" label instead of failing.
func RoleName(id int) string {
	if name, ok := roleNames[id]; ok {
		return name
	}
	return fmt.Sprintf("role-%d", id)
}

// TranslateRole maps a role label to its display language.
func TranslateRole(name string) string {
	if tr, ok := roleTranslations[name]; ok {
		return tr
	}
	return name
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// CorrectUTCDate normalizes a raw date string (`YYYY-MM-DD` or ISO-with-time)
// to a UTC midnight instant, so all-day events do not shift a day when parsed
// in a local timezone. Any time-of-day component is discarded. Total and
// idempotent: unparseable input falls back to the current date at UTC
// midnight; the caller decides whether to log that.
func CorrectUTCDate(raw string) time.Time {
	t, _ := correctUTCDate(raw)
	return t
}

func correctUTCDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return midnightUTC(t), true
		}
	}
	return midnightUTC(time.Now()), false
}

func midnightUTC(t time.Time) time.Time {
	// Use the date as written, not the date after UTC conversion: parsing
	// "2024-05-01T23:30:00-06:00" must stay May 1st.
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
