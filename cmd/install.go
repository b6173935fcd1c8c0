package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/djcass44/all-your-arch/cmd/cache"
	"github.com/djcass44/all-your-arch/pkg/airutil"
	"github.com/djcass44/all-your-arch/pkg/downloader"
	"github.com/djcass44/all-your-arch/pkg/lockfile"
	"github.com/djcass44/all-your-arch/pkg/packages/arch"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "install locked packages into a root filesystem",
	RunE:  install,
}

const (
	flagRoot     = "root"
	flagCacheDir = "cache-dir"
)

func init() {
	installCmd.Flags().StringP(flagConfig, "c", "", "path to a configuration file")
	installCmd.Flags().String(flagRoot, "", "directory to install packages into")
	installCmd.Flags().String(flagCacheDir, "", "cache directory (defaults to user cache dir)")

	_ = installCmd.MarkFlagRequired(flagConfig)
	_ = installCmd.MarkFlagRequired(flagRoot)
	_ = installCmd.MarkFlagFilename(flagConfig, ".yaml", ".yml")
	_ = installCmd.MarkFlagDirname(flagRoot)
	_ = installCmd.MarkFlagDirname(flagCacheDir)
}

func install(cmd *cobra.Command, _ []string) error {
	log := logr.FromContextOrDiscard(cmd.Context())

	configPath, _ := cmd.Flags().GetString(flagConfig)
	rootfs, _ := cmd.Flags().GetString(flagRoot)
	cacheDir, _ := cmd.Flags().GetString(flagCacheDir)

	cfg, err := readConfig(configPath)
	if err != nil {
		return err
	}

	lock, err := lockfile.Read(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	if err := lock.Validate(cfg.Spec); err != nil {
		return fmt.Errorf("lockfile is out of date: %w", err)
	}

	if err := os.MkdirAll(rootfs, 0755); err != nil {
		return err
	}
	log.V(3).Info("prepared root filesystem", "path", rootfs)

	keeper, err := arch.NewPackageKeeper(cmd.Context(), cfg.Spec.Architecture, cfg.Spec.Repositories, repositoryOptions(cfg)...)
	if err != nil {
		return err
	}

	cacheDir = cache.Dir(cacheDir)
	for _, name := range lock.SortedKeys() {
		p := lock.Packages[name]
		p.Name = name

		src, err := airutil.ExpandRepo(p.Resolved, p.Repository, cfg.Spec.Architecture)
		if err != nil {
			return err
		}

		// keep downloads from different repositories apart, since
		// package file names are only unique within a repository
		dl, err := downloader.NewDownloader(filepath.Join(cacheDir, downloader.HashString(path.Dir(src))))
		if err != nil {
			return err
		}
		pkgFile, err := dl.Download(cmd.Context(), src, p.Integrity)
		if err != nil {
			return fmt.Errorf("downloading %s: %w", name, err)
		}

		if err := keeper.Install(cmd.Context(), p, pkgFile, rootfs); err != nil {
			return err
		}
	}
	log.Info("installed packages", "count", len(lock.Packages), "root", rootfs)
	return nil
}
