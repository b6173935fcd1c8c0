package alpm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConstraintNotFound = errors.New("constraint not found")
	ErrVersionNotFound    = errors.New("version not found")
)

// ParseConstraint parses one of the five version operators.
func ParseConstraint(s string) (Constraint, error) {
	switch c := Constraint(s); c {
	case LessThan, LessOrEqualsThan, Equals, MoreOrEqualsThan, MoreThan:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrConstraintNotFound, s)
}

// ParseDependency parses a dependency as written in a package description,
// e.g. "glibc>=2.38", "sh" or "python: for the helper scripts".
func ParseDependency(s string) (Dependency, error) {
	var dep Dependency
	s, dep.Description, _ = strings.Cut(s, ": ")

	pos := strings.IndexAny(s, "<>=")
	if pos < 0 {
		dep.Name = s
		return dep, nil
	}
	dep.Name = s[:pos]
	if dep.Name == "" {
		return Dependency{}, fmt.Errorf("missing package name: %q", s)
	}
	rest := s[pos:]
	end := len(rest) - len(strings.TrimLeft(rest, "<>="))
	c, err := ParseConstraint(rest[:end])
	if err != nil {
		return Dependency{}, err
	}
	dep.Constraint = c
	dep.Version = rest[end:]
	if dep.Version == "" {
		return Dependency{}, fmt.Errorf("%w: %q", ErrVersionNotFound, s)
	}
	return dep, nil
}

func (d Dependency) String() string {
	sb := strings.Builder{}
	sb.WriteString(d.Name)
	if d.Constraint != "" {
		sb.WriteString(string(d.Constraint))
		sb.WriteString(d.Version)
	}
	if d.Description != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Description)
	}
	return sb.String()
}

func (d Dependency) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Dependency) UnmarshalText(b []byte) error {
	dep, err := ParseDependency(string(b))
	if err != nil {
		return err
	}
	*d = dep
	return nil
}

// Matches checks whether a package version satisfies the
// dependency constraint.
func (d Dependency) Matches(s string) bool {
	// no constraint matches anything
	if d.Constraint == "" || d.Version == "" {
		return true
	}
	// an unversioned provision never satisfies a versioned dependency
	if s == "" {
		return false
	}
	c := VerCmp(s, d.Version)
	switch d.Constraint {
	case MoreThan:
		return c > 0
	case LessThan:
		return c < 0
	case Equals:
		return c == 0
	case MoreOrEqualsThan:
		return c >= 0
	case LessOrEqualsThan:
		return c <= 0
	default:
		return false
	}
}

// ProvidedName strips the version from a PROVIDES entry,
// e.g. "sh=5.2" becomes "sh".
func ProvidedName(s string) string {
	name, _, _ := strings.Cut(s, "=")
	return name
}
