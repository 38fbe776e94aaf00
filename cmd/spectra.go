package cmd

import (
	"fmt"
	"time"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/spf13/cobra"
)

// spectraCmd groups the spectra operations.
var spectraCmd = &cobra.Command{
	Use:   "spectra",
	Short: "Check and download source spectra.",
	Long: `Check for and download the spectra tarballs of saved sources.

The portal answers with a sentinel body rather than a status code when a
source has no spectrum, so checks are cheap.

Subcommands:
  check    - Report whether a source has at least one spectrum
  download - Download the spectra tarball of one source
  all      - Download the spectra tarballs of every saved source

Examples:
  marshalgo spectra check ZTF20aaelulu
  marshalgo spectra download ZTF20aaelulu --output-file ZTF20aaelulu.tar.gz
  marshalgo spectra all ./spectra`,
}

// spectraCheckCmd reports whether a source has spectra.
var spectraCheckCmd = &cobra.Command{
	Use:     "check <name>",
	Short:   "Report whether a source has at least one spectrum.",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		name := args[0]

		session, err := newSession()
		if err != nil {
			contract.LogFatal("Cannot open program session", err)
		}

		has, err := session.CheckSpec(rootCtx, name)
		if err != nil {
			contract.LogFatal("Cannot check spectra", err)
		}
		if has {
			fmt.Printf("%s has at least one spectrum\n", name)
		} else {
			fmt.Printf("%s has no spectrum\n", name)
		}
	},
}

// spectraDownloadCmd downloads one spectra tarball.
var spectraDownloadCmd = &cobra.Command{
	Use:   "download <name>",
	Short: "Download the spectra tarball of one source.",
	Long: `Download the spectra tarball of one saved source. Without
--output-file the tarball is written to <name>.tar.gz in the working
directory.

Examples:
  marshalgo spectra download ZTF20aaelulu
  marshalgo spectra download ZTF20aaelulu --output-file /data/spectra.tar.gz`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		name := args[0]
		filename := cfg.OutputFile
		if filename == "" {
			filename = name + ".tar.gz"
		}

		session, err := newSession()
		if err != nil {
			contract.LogFatal("Cannot open program session", err)
		}

		if err := session.DownloadSpec(rootCtx, name, filename); err != nil {
			contract.LogFatal("Cannot download spectra", err)
		}
		fmt.Printf("Saved spectra of %s to %s\n", name, filename)
	},
}

// spectraAllCmd downloads the spectra of every saved source.
var spectraAllCmd = &cobra.Command{
	Use:   "all <dir>",
	Short: "Download the spectra tarballs of every saved source.",
	Long: `Download the spectra tarball of every saved source into a directory,
one <name>.tar.gz per source. Sources without a spectrum leave no file and
count as failed in the tally without a warning.

Examples:
  marshalgo spectra all ./spectra`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		session, err := newSession()
		if err != nil {
			contract.LogFatal("Cannot open program session", err)
		}

		start := time.Now()
		result, err := session.DownloadAllSpecs(rootCtx, args[0])
		if err != nil {
			contract.LogFatal("Cannot download spectra", err)
		}
		if err := writer.WriteBatch(result, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write batch results", err)
		}
	},
}
