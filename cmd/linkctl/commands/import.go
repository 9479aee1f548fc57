package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"linkshelf/internal/featureflags"
	"linkshelf/internal/repository"
	"linkshelf/internal/service"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var (
		userID     uint
		noMetadata bool
	)

	cmd := &cobra.Command{
		Use:   "import --user <id> <file>...",
		Short: "Add the links found in files to a user's library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return fmt.Errorf("--user is required")
			}

			files := make([]service.UploadedFile, 0, len(args))
			for _, path := range args {
				content, err := os.ReadFile(path) // #nosec G304 -- operator supplied path
				if err != nil {
					return err
				}
				files = append(files, service.UploadedFile{Filename: filepath.Base(path), Content: content})
			}

			cfg, db, err := connect()
			if err != nil {
				return err
			}

			var fetcher service.MetadataFetcher
			if !noMetadata {
				fetcher = newFetcher(cfg)
			}
			links := service.NewLinkService(repository.NewLinkRepository(db), fetcher,
				featureflags.NewManager(cfg.FeatureFlags), nil, cfg)

			res, err := links.IngestFiles(cmd.Context(), userID, files)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, res)
			}
			fmt.Fprintf(out, "added %d, skipped %d\n", len(res.Links), len(res.Skipped))
			for _, l := range res.Links {
				fmt.Fprintf(out, "  + %d %s\n", l.ID, l.URL)
			}
			for _, u := range res.Skipped {
				fmt.Fprintf(out, "  = %s\n", u)
			}
			return nil
		},
	}

	cmd.Flags().UintVar(&userID, "user", 0, "Owner user ID")
	cmd.Flags().BoolVar(&noMetadata, "no-metadata", false, "Skip YouTube metadata lookups")
	return cmd
}
