// Package i18n resolves backend content and UI strings for the display
// language. Only English and Turkish are supported, matching the backend.
package i18n

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/text/language"
)

type Lang string

const (
	EN Lang = "en"
	TR Lang = "tr"
)

var supported = []language.Tag{language.English, language.Turkish}

var matcher = language.NewMatcher(supported)

// Match picks the supported language closest to a BCP 47 tag such as
// "tr-TR" or "en_US". Unparseable input falls back to English.
func Match(tag string) Lang {
	t, err := language.Parse(tag)
	if err != nil {
		return EN
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return EN
	}
	if supported[idx] == language.Turkish {
		return TR
	}
	return EN
}

// Toggle returns the other supported language.
func (l Lang) Toggle() Lang {
	if l == TR {
		return EN
	}
	return TR
}

// Text is backend content that is either a plain string or a mapping from
// language code to string.
type Text struct {
	Plain  string
	ByLang map[string]string
}

// Localized reports whether the backend sent a language mapping.
func (t Text) Localized() bool {
	return t.ByLang != nil
}

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Text{}
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parse localized text: %w", err)
		}
		m := make(map[string]string, len(raw))
		for k, v := range raw {
			if s, ok := v.(string); ok {
				m[k] = s
			}
		}
		*t = Text{ByLang: m}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse text: %w", err)
	}
	*t = Text{Plain: s}
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if t.ByLang != nil {
		return json.Marshal(t.ByLang)
	}
	return json.Marshal(t.Plain)
}

// Resolve picks the string to display for lang. Mappings fall back to
// English, then Turkish, then the placeholder in lang.
func Resolve(t Text, lang Lang) string {
	if t.ByLang == nil {
		if t.Plain != "" {
			return t.Plain
		}
		return T(lang, NoDetails)
	}
	for _, code := range []string{string(lang), string(EN), string(TR)} {
		if s := t.ByLang[code]; s != "" {
			return s
		}
	}
	return T(lang, NoDetails)
}

// FormatTime renders an archive timestamp the way each locale writes
// dates. Unparseable input is returned unchanged.
func FormatTime(iso string, lang Lang) string {
	ts, err := parseISO(iso)
	if err != nil {
		return iso
	}
	ts = ts.Local()
	if lang == TR {
		return ts.Format("02.01.2006 15:04:05")
	}
	return ts.Format("01/02/2006, 15:04:05")
}

func parseISO(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
