package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/flga/hh2/hh2"
)

var infoCmd = &cobra.Command{
	Use:   "info <archive-file>",
	Short: "List the entries of a packed archive file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo(args[0])
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	archive, err := hh2.ParseArchive(data)
	if err != nil {
		return err
	}

	fs := hh2.NewFilesystem(archive)
	entries := fs.Entries()
	sort.Strings(entries)

	log.Info().Int("count", len(entries)).Str("path", path).Msg("archive opened")
	for _, e := range entries {
		fmt.Printf("%10d  %s\n", fs.FileSize(e), e)
	}

	return nil
}
