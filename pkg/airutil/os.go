package airutil

import (
	"os"
	"strings"

	"github.com/drone/envsubst"
)

func ExpandEnv(s string) string {
	val, _ := envsubst.EvalEnv(s)
	return val
}

// ExpandRepo expands a repository URL the way pacman expands a
// mirrorlist entry. $repo and $arch are replaced, and any other
// variable is taken from the environment.
func ExpandRepo(s, repo, arch string) (string, error) {
	s = strings.NewReplacer(
		"${repo}", repo,
		"${arch}", arch,
		"$repo", repo,
		"$arch", arch,
	).Replace(s)
	return envsubst.Eval(s, os.Getenv)
}
