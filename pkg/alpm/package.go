package alpm

import (
	"strconv"
	"strings"
	"time"
)

// VCSSuffixes are the package name suffixes used by packages built from
// version control sources.
var VCSSuffixes = []string{"-cvs", "-svn", "-hg", "-darcs", "-bzr", "-git"}

// Timestamp is a point in time stored as unix seconds.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: time.Unix(t.Unix(), 0).UTC()}
}

func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

func (t *Timestamp) UnmarshalText(b []byte) error {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	t.Time = time.Unix(n, 0).UTC()
	return nil
}

// NameVersion returns the name of the directory holding the package in a
// database, e.g. "ag-2.2.0-1".
func (p *Package) NameVersion() string {
	return p.Name + "-" + p.Version
}

// VCSBase returns the name of the package without its version control
// suffix, if it has one.
func (p *Package) VCSBase() (string, bool) {
	for _, suffix := range VCSSuffixes {
		if strings.HasSuffix(p.Name, suffix) {
			return strings.TrimSuffix(p.Name, suffix), true
		}
	}
	return "", false
}

// Local converts a repository package into its local database
// description.
func (p *Package) Local(installed time.Time, reason Reason) LocalPackage {
	return LocalPackage{
		Name:          p.Name,
		Version:       p.Version,
		Base:          p.Base,
		Description:   p.Description,
		URL:           p.URL,
		Architecture:  p.Architecture,
		BuildDate:     p.BuildDate,
		InstallDate:   NewTimestamp(installed),
		Packager:      p.Packager,
		InstalledSize: p.InstalledSize,
		Reason:        reason,
		License:       p.License,
		Validation:    []string{"sha256"},
		Replaces:      p.Replaces,
		Depends:       p.Depends,
		OptDepends:    p.OptDepends,
		Conflicts:     p.Conflicts,
		Provides:      p.Provides,
	}
}
