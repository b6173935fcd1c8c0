package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/djcass44/all-your-arch/pkg/airutil"
	"github.com/djcass44/all-your-arch/pkg/lockfile"
	"github.com/djcass44/all-your-arch/pkg/packages"
	"github.com/djcass44/all-your-arch/pkg/packages/arch"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "generate a lockfile",
	RunE:  lock,
}

func init() {
	lockCmd.Flags().StringP(flagConfig, "c", "", "path to a configuration file")

	_ = lockCmd.MarkFlagRequired(flagConfig)
	_ = lockCmd.MarkFlagFilename(flagConfig, ".yaml", ".yml")
}

func lock(cmd *cobra.Command, _ []string) error {
	log := logr.FromContextOrDiscard(cmd.Context())

	configPath, _ := cmd.Flags().GetString(flagConfig)

	// read the config file
	cfg, err := readConfig(configPath)
	if err != nil {
		return err
	}

	configPath, err = filepath.Abs(configPath)
	if err != nil {
		return err
	}

	lockFile := lockfile.Lock{
		Name:            cfg.Name,
		LockfileVersion: 1,
		Packages:        map[string]lockfile.Package{},
	}

	type expandedRepo struct {
		URL      string
		Original string
	}

	var repoList []expandedRepo
	for _, r := range cfg.Spec.Repositories {
		url, err := airutil.ExpandRepo(r.URL, r.Name, cfg.Spec.Architecture)
		if err != nil {
			return err
		}
		repoList = append(repoList, expandedRepo{
			URL:      strings.TrimSuffix(url, "/"),
			Original: strings.TrimSuffix(r.URL, "/"),
		})
	}

	var keeper packages.PackageManager
	keeper, err = arch.NewPackageKeeper(cmd.Context(), cfg.Spec.Architecture, cfg.Spec.Repositories, repositoryOptions(cfg)...)
	if err != nil {
		return err
	}

	// get package integrity
	log.Info("generating package checksums")
	for _, pkg := range cfg.Spec.Packages {
		for _, name := range pkg.Names {
			packageList, err := keeper.Resolve(cmd.Context(), name)
			if err != nil {
				return err
			}

			for _, p := range packageList {
				log.V(1).Info("locking package", "name", p.Name, "version", p.Version)

				// store the unexpanded url so that the lockfile
				// works with any mirror
				for _, r := range repoList {
					if strings.HasPrefix(p.Resolved, r.URL+"/") {
						p.Resolved = r.Original + strings.TrimPrefix(p.Resolved, r.URL)
						break
					}
				}
				lockFile.Add(p)
			}
		}
	}

	log.Info("exporting lockfile")
	f, err := os.Create(lockfile.Name(configPath))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "\t")
	return enc.Encode(lockFile)
}
