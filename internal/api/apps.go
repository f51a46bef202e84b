package api

import "strings"

// builtinApps are the vendor apps known to work.
var builtinApps = []App{
	{
		Name:         "ZAW-DW",
		AppID:        "de.k4systems.zawdw",
		LandkreisID:  "633|0|AWG Donau-Wald",
		BundeslandID: "247",
	},
}

// Apps returns the built-in app catalog followed by extra, skipping extra apps whose
// AppID is already known. The result is a fresh slice.
func Apps(extra ...App) []App {
	apps := append([]App{}, builtinApps...)
	for _, e := range extra {
		dup := false
		for _, a := range apps {
			if strings.EqualFold(a.AppID, e.AppID) {
				dup = true
				break
			}
		}
		if !dup {
			apps = append(apps, e)
		}
	}
	return apps
}
