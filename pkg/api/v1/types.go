package v1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

type PackageType string

const (
	PackageArch PackageType = "Arch"
)

type BuildSpec struct {
	// Architecture is substituted for $arch in repository URLs.
	Architecture string       `json:"architecture"`
	Strict       bool         `json:"strict,omitempty"`
	Repositories []Repository `json:"repositories,omitempty"`
	Packages     []Package    `json:"packages,omitempty"`
}

// Repository is a pacman repository. The URL may reference $repo,
// $arch and environment variables, in the same way as a pacman
// mirrorlist.
type Repository struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Files bool   `json:"files,omitempty"`
}

type Package struct {
	Names []string `json:"names"`
}

type Build struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec BuildSpec `json:"spec"`
}
