package cmd

import (
	"bytes"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/bmatcuk/doublestar"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/flga/hh2/hh2"
	"github.com/flga/hh2/hh2/internal/errutil"
)

var buildFlags struct {
	root    string
	output  string
	pkg     string
	varName string
	exclude string
}

var buildCmd = &cobra.Command{
	Use:   "build [globs...]",
	Short: "Pack files matching the given globs into a generated Go source file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(args)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildFlags.root, "root", "", "archive paths are relative to this directory; defaults to the working directory")
	buildCmd.Flags().StringVarP(&buildFlags.output, "out", "o", "", "output Go source file (required)")
	buildCmd.Flags().StringVar(&buildFlags.pkg, "pkg", "", "package name for the generated file; defaults to $GOPACKAGE")
	buildCmd.Flags().StringVar(&buildFlags.varName, "var", "EncodedArchive", "name of the generated string constant")
	buildCmd.Flags().StringVar(&buildFlags.exclude, "exclude", "", "comma separated glob expressions to exclude")
	buildCmd.MarkFlagRequired("out")
}

var tpl = template.Must(template.New("").Parse(`// Code generated by hh2pack. DO NOT EDIT.

package {{ .Pkg }}

// {{ .Var }} is a gzip+base64 encoded hh2 archive built from {{ .Count }} files.
// Decode it with hh2.DecodeEmbeddedArchive, then hh2.ParseArchive.
const {{ .Var }} = "{{ .Data }}"
`))

type tplData struct {
	Pkg   string
	Var   string
	Count int
	Data  string
}

func runBuild(includeGlobs []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	root := filepath.Join(wd, buildFlags.root)

	includeSet := make(map[string]struct{})
	for _, p := range includeGlobs {
		if err := glob(p, includeSet); err != nil {
			return err
		}
	}
	excludeSet := make(map[string]struct{})
	for _, p := range splitNonEmpty(buildFlags.exclude) {
		if err := glob(p, excludeSet); err != nil {
			return err
		}
	}
	for ep := range excludeSet {
		delete(includeSet, ep)
	}

	files, err := readFiles(includeSet, root)
	if err != nil {
		return err
	}
	log.Info().Int("count", len(files)).Msg("packed files")

	var archiveBuf bytes.Buffer
	if err := hh2.WriteArchive(&archiveBuf, files); err != nil {
		return err
	}
	log.Info().Int("bytes", archiveBuf.Len()).Msg("built archive")

	encoded, err := hh2.EncodeArchive(archiveBuf.Bytes())
	if err != nil {
		return err
	}

	pkg := buildFlags.pkg
	if pkg == "" {
		pkg = os.Getenv("GOPACKAGE")
	}

	var buf bytes.Buffer
	data := tplData{Pkg: pkg, Var: buildFlags.varName, Count: len(files), Data: encoded}
	if err := tpl.Execute(&buf, data); err != nil {
		return err
	}

	code, err := format.Source(buf.Bytes())
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(wd, buildFlags.output), code, 0o666)
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func glob(pathname string, set map[string]struct{}) error {
	matches, err := doublestar.Glob(pathname)
	if err != nil {
		return err
	}

	for _, m := range matches {
		stat, err := os.Stat(m)
		if err != nil {
			return err
		}
		if stat.IsDir() {
			continue
		}
		set[m] = struct{}{}
	}

	return nil
}

// readFiles loads every matched path's contents, keyed by its
// archive-relative path (root stripped, '/'-separated). File-close failures
// are joined rather than silently dropped, the way errutil.List joins
// multiple non-fatal teardown errors.
func readFiles(pathSet map[string]struct{}, root string) (map[string][]byte, error) {
	var paths []string
	for fp := range pathSet {
		paths = append(paths, fp)
	}
	sort.Strings(paths)

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	files := make(map[string][]byte, len(paths))
	var closeErrs errutil.List

	for _, fp := range paths {
		abs := filepath.Join(wd, fp)
		archivePath := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(abs, root), "/"))

		f, err := os.Open(fp)
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		_, readErr := buf.ReadFrom(f)
		closeErrs = closeErrs.Add(f.Close())
		if readErr != nil {
			return nil, readErr
		}

		files[archivePath] = buf.Bytes()
	}

	return files, closeErrs.Err()
}
