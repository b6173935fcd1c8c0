package v1

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var repositoryName = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+$`)

func (b Build) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Name, validation.Required),
		validation.Field(&b.Spec),
	)
}

func (s BuildSpec) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Architecture, validation.Required),
		validation.Field(&s.Repositories, validation.Required),
		validation.Field(&s.Packages),
	)
}

func (r Repository) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Match(repositoryName)),
		validation.Field(&r.URL, validation.Required),
	)
}

func (p Package) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Names, validation.Required, validation.Each(validation.Required)),
	)
}
