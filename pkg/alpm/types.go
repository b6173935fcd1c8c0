package alpm

// Package is a package description from a repository database, read from
// the "desc" entry of each package directory.
type Package struct {
	FileName       string       `desc:"FILENAME"`
	Name           string       `desc:"NAME"`
	Base           string       `desc:"BASE,omitempty"`
	Version        string       `desc:"VERSION"`
	Description    string       `desc:"DESC,omitempty"`
	Groups         []string     `desc:"GROUPS"`
	CompressedSize uint64       `desc:"CSIZE"`
	InstalledSize  uint64       `desc:"ISIZE"`
	MD5Sum         string       `desc:"MD5SUM,omitempty"`
	SHA256Sum      string       `desc:"SHA256SUM"`
	PGPSignature   string       `desc:"PGPSIG,omitempty"`
	URL            string       `desc:"URL,omitempty"`
	License        []string     `desc:"LICENSE"`
	Architecture   string       `desc:"ARCH"`
	BuildDate      Timestamp    `desc:"BUILDDATE"`
	Packager       string       `desc:"PACKAGER"`
	Replaces       []string     `desc:"REPLACES"`
	Conflicts      []string     `desc:"CONFLICTS"`
	Provides       []string     `desc:"PROVIDES"`
	Depends        []Dependency `desc:"DEPENDS"`
	OptDepends     []Dependency `desc:"OPTDEPENDS"`
	MakeDepends    []Dependency `desc:"MAKEDEPENDS"`
	CheckDepends   []Dependency `desc:"CHECKDEPENDS"`
}

// Files is the file list of a package, read from the "files" entry of
// each package directory in a files database.
type Files struct {
	Files []string `desc:"FILES"`
}

// LocalPackage is a package description in the local (installed)
// database.
type LocalPackage struct {
	Name          string       `desc:"NAME"`
	Version       string       `desc:"VERSION"`
	Base          string       `desc:"BASE,omitempty"`
	Description   string       `desc:"DESC,omitempty"`
	URL           string       `desc:"URL,omitempty"`
	Architecture  string       `desc:"ARCH"`
	BuildDate     Timestamp    `desc:"BUILDDATE"`
	InstallDate   Timestamp    `desc:"INSTALLDATE"`
	Packager      string       `desc:"PACKAGER"`
	InstalledSize uint64       `desc:"SIZE"`
	Reason        Reason       `desc:"REASON,omitempty"`
	License       []string     `desc:"LICENSE"`
	Validation    []string     `desc:"VALIDATION"`
	Replaces      []string     `desc:"REPLACES"`
	Depends       []Dependency `desc:"DEPENDS"`
	OptDepends    []Dependency `desc:"OPTDEPENDS"`
	Conflicts     []string     `desc:"CONFLICTS"`
	Provides      []string     `desc:"PROVIDES"`
}

// Reason records why a package was installed.
type Reason int

const (
	ReasonExplicit Reason = iota
	ReasonDependency
)

// Constraint is a version comparison operator used in dependencies.
type Constraint string

const (
	LessThan         Constraint = "<"
	LessOrEqualsThan Constraint = "<="
	Equals           Constraint = "="
	MoreOrEqualsThan Constraint = ">="
	MoreThan         Constraint = ">"
)

// Dependency is a reference to another package, optionally restricted to
// a range of versions.
type Dependency struct {
	Name       string
	Constraint Constraint
	Version    string
	// Description is only used by optional dependencies.
	Description string
}
