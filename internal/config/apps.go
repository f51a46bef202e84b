package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nicolasacchi/abfallcli/internal/api"
)

// appsFile is the on-disk format of the app catalog extension:
//
//	apps:
//	  - name: AWB Musterkreis
//	    app_id: de.k4systems.awbmuster
//	    landkreis_id: "700|0|AWB Musterkreis"
//	    bundesland_id: "247"
type appsFile struct {
	Apps []api.App `yaml:"apps"`
}

// LoadApps returns the built-in app catalog merged with the apps listed in path.
// An empty path returns the built-in catalog.
func LoadApps(path string) ([]api.App, error) {
	if path == "" {
		return api.Apps(), nil
	}
	expanded, err := ExpandTilde(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("reading apps file: %w", err)
	}

	var f appsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing apps file: %w", err)
	}
	for i, a := range f.Apps {
		if a.Name == "" || a.AppID == "" || a.LandkreisID == "" {
			return nil, fmt.Errorf("apps file: entry %d needs name, app_id and landkreis_id", i+1)
		}
	}
	return api.Apps(f.Apps...), nil
}
