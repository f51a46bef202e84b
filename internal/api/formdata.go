package api

import (
	"net/url"
	"strings"
)

// Field is one key/value pair of a form body. The vendor cares about field
// presence and grouping, so bodies are kept as ordered slices, not url.Values.
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered form body.
type Fields []Field

// Encode renders the fields as application/x-www-form-urlencoded, preserving order.
func (f Fields) Encode() string {
	var b strings.Builder
	for i, field := range f {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(field.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(field.Value))
	}
	return b.String()
}

// Values returns all values stored under key, in order.
func (f Fields) Values(key string) []string {
	var out []string
	for _, field := range f {
		if field.Key == key {
			out = append(out, field.Value)
		}
	}
	return out
}

// BuildPostData serializes the selections made so far into the field set the
// assistant endpoints expect. extra is appended last.
func BuildPostData(cfg *Configuration, extra ...Field) Fields {
	data := Fields{
		{"id_bezirk", ""},
		{"f_id_bezirk", ""},
	}
	if cfg.App != nil {
		data = append(data,
			Field{"id_landkreis", cfg.App.LandkreisID},
			Field{"f_id_landkreis", cfg.App.LandkreisID},
			Field{"f_id_bundesland", cfg.App.BundeslandID},
		)
	}
	if cfg.Community != nil {
		data = append(data,
			Field{"id_kommune", cfg.Community.Data},
			Field{"f_id_kommune", cfg.Community.Data},
		)
	}
	if cfg.Street != nil {
		data = append(data,
			Field{"id_strasse", cfg.Street.Data},
			Field{"f_id_strasse", cfg.Street.Data},
		)
	}
	if cfg.HNr != nil {
		data = append(data, Field{"f_hnr", cfg.HNr.Data})
	}
	for _, a := range cfg.Abfallarten {
		data = append(data, Field{"f_id_abfallart[]", a.Data})
	}
	return append(data, extra...)
}

// loginFields is the payload of the config, login and data endpoints.
func loginFields(cfg *Configuration) Fields {
	return Fields{
		{"client", cfg.ClientID},
		{"app_id", cfg.App.AppID},
	}
}
