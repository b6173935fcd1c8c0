package lockfile

import v1 "github.com/djcass44/all-your-arch/pkg/api/v1"

type Lock struct {
	Name            string             `json:"name"`
	LockfileVersion int                `json:"lockfileVersion"`
	Packages        map[string]Package `json:"packages"`
}

type Package struct {
	Name       string         `json:"-"`
	Type       v1.PackageType `json:"type"`
	Repository string         `json:"repository"`
	Version    string         `json:"version"`
	Resolved   string         `json:"resolved"`
	Integrity  string         `json:"integrity"`
	// Direct is set for packages named in the configuration file
	// rather than pulled in as a dependency.
	Direct bool `json:"direct,omitempty"`
	// Requested holds the names from the configuration file that
	// resolved to this package through PROVIDES, e.g. "sh" for bash.
	Requested []string `json:"requested,omitempty"`
}
