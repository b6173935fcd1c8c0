package cmd

import (
	"fmt"
	"io"

	"github.com/djcass44/all-your-arch/pkg/airutil"
	"github.com/djcass44/all-your-arch/pkg/alpm"
	"github.com/djcass44/all-your-arch/pkg/desc"
	"github.com/djcass44/all-your-arch/pkg/repository"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var queryCmd = &cobra.Command{
	Use:   "query [name...]",
	Short: "list packages or print package records",
	Long: `Loads every configured repository. Without arguments each package is
listed as "repo/name version". Otherwise the records of the named
packages are printed in the database format.`,
	RunE: query,
}

const (
	flagFiles = "files"
	flagBy    = "by"
)

const (
	byName        = "name"
	byBase        = "base"
	byNameVersion = "name-version"
	byProvides    = "provides"
)

func init() {
	queryCmd.Flags().StringP(flagConfig, "c", "", "path to a configuration file")
	queryCmd.Flags().Bool(flagFiles, false, "print the files owned by each package")
	queryCmd.Flags().String(flagBy, byName, "how arguments are matched (name, base, name-version, provides)")

	_ = queryCmd.MarkFlagRequired(flagConfig)
	_ = queryCmd.MarkFlagFilename(flagConfig, ".yaml", ".yml")
}

func query(cmd *cobra.Command, args []string) error {
	log := logr.FromContextOrDiscard(cmd.Context())

	configPath, _ := cmd.Flags().GetString(flagConfig)
	files, _ := cmd.Flags().GetBool(flagFiles)
	by, _ := cmd.Flags().GetString(flagBy)

	cfg, err := readConfig(configPath)
	if err != nil {
		return err
	}

	// the files database is much larger, so only fetch it when asked
	opts := repositoryOptions(cfg)
	opts = append(opts, repository.WithFiles(files))

	indices := make([]*repository.Index, len(cfg.Spec.Repositories))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, repo := range cfg.Spec.Repositories {
		url, err := airutil.ExpandRepo(repo.URL, repo.Name, cfg.Spec.Architecture)
		if err != nil {
			return err
		}
		g.Go(func() error {
			idx, err := repository.Load(ctx, repo.Name, url, opts...)
			if err != nil {
				return err
			}
			indices[i] = idx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		return list(out, indices)
	}

	for _, name := range args {
		idx, pkg, err := lookup(indices, by, name)
		if err != nil {
			return err
		}
		log.V(1).Info("found package", "name", pkg.Name, "repo", idx.Name())
		if err := printPackage(out, idx, pkg, files); err != nil {
			return err
		}
	}
	return nil
}

func list(w io.Writer, indices []*repository.Index) error {
	for _, idx := range indices {
		for p := range idx.All() {
			if _, err := fmt.Fprintf(w, "%s/%s %s\n", idx.Name(), p.Name, p.Version); err != nil {
				return err
			}
		}
	}
	return nil
}

func lookup(indices []*repository.Index, by, name string) (*repository.Index, *alpm.Package, error) {
	for _, idx := range indices {
		var pkg *alpm.Package
		var ok bool
		switch by {
		case byName:
			pkg, ok = idx.Get(name)
		case byBase:
			pkg, ok = idx.GetByBase(name)
		case byNameVersion:
			pkg, ok = idx.GetByNameVersion(name)
		case byProvides:
			pkg, ok = idx.Get(name)
			if !ok {
				pkg, ok = idx.Provider(name)
			}
		default:
			return nil, nil, fmt.Errorf("unknown lookup: %s", by)
		}
		if ok {
			return idx, pkg, nil
		}
	}
	return nil, nil, fmt.Errorf("package not found: %s", name)
}

func printPackage(w io.Writer, idx *repository.Index, pkg *alpm.Package, files bool) error {
	if _, err := fmt.Fprintf(w, "# %s/%s\n", idx.Name(), pkg.NameVersion()); err != nil {
		return err
	}
	// list the development versions alongside the package
	for _, vcs := range idx.VCSSources(pkg.Name) {
		if _, err := fmt.Fprintf(w, "# vcs: %s\n", vcs.NameVersion()); err != nil {
			return err
		}
	}
	enc := desc.NewEncoder(w)
	if err := enc.Encode(pkg); err != nil {
		return err
	}
	if !files {
		return nil
	}
	list, ok := idx.Files(pkg.Name)
	if !ok {
		return nil
	}
	return enc.Encode(alpm.Files{Files: list})
}
