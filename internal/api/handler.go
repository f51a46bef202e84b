package api

import (
	"fmt"
	"strings"
)

// Offsets used by the vendor markup. They are fixed by the vendor's ids, not derived.
const (
	// stepHandlerCall is the inline handler on selection-list anchors.
	stepHandlerCall = "step_fertig("

	// registeredIDPrefixLen is the length of the prefix on input ids of the
	// registered-list shape, e.g. "f_id_abfallart_".
	registeredIDPrefixLen = 15

	// ionHandlerPrefixLen is the length of the call prefix on ion-item handlers, e.g. "cb('".
	ionHandlerPrefixLen = 4
)

// parseStepHandler extracts id and label from an attribute like
// "step_fertig('633','Musterstadt')". Arguments are split on commas outside quotes
// and stripped of single quotes; at least two are required.
func parseStepHandler(attr string) (id, label string, err error) {
	start := strings.Index(attr, stepHandlerCall)
	if start < 0 {
		return "", "", fmt.Errorf("handler %q has no %s call", attr, strings.TrimSuffix(stepHandlerCall, "("))
	}
	args := attr[start+len(stepHandlerCall):]
	end := strings.LastIndex(args, ")")
	if end < 0 {
		return "", "", fmt.Errorf("handler %q is not closed", attr)
	}
	parts := splitHandlerArgs(args[:end])
	if len(parts) < 2 {
		return "", "", fmt.Errorf("handler %q has %d arguments, want 2", attr, len(parts))
	}
	return parts[0], parts[1], nil
}

func splitHandlerArgs(s string) []string {
	var (
		parts   []string
		current strings.Builder
		quoted  bool
	)
	for _, r := range s {
		switch {
		case r == '\'':
			quoted = !quoted
		case r == ',' && !quoted:
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" || len(parts) > 0 {
		parts = append(parts, rest)
	}
	return parts
}

// stripRegisteredID removes the fixed prefix from a registered-list input id.
func stripRegisteredID(id string) (string, error) {
	if len(id) <= registeredIDPrefixLen {
		return "", fmt.Errorf("input id %q is shorter than its %d-character prefix", id, registeredIDPrefixLen)
	}
	return id[registeredIDPrefixLen:], nil
}

// parseIonHandler extracts the category id from an ion-item handler such as
// "cb('f_id_abfallart_31');": drop the call prefix, cut at the first quote, drop the id prefix.
func parseIonHandler(attr string) (string, error) {
	if len(attr) <= ionHandlerPrefixLen {
		return "", fmt.Errorf("handler %q is shorter than its %d-character prefix", attr, ionHandlerPrefixLen)
	}
	s := attr[ionHandlerPrefixLen:]
	if i := strings.IndexByte(s, '\''); i >= 0 {
		s = s[:i]
	}
	return stripRegisteredID(s)
}
