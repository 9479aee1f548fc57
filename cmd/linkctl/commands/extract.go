package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"linkshelf/internal/extract"
	"linkshelf/internal/youtube"

	"github.com/spf13/cobra"
)

type extractedLink struct {
	File    string `json:"file"`
	URL     string `json:"url"`
	VideoID string `json:"video_id,omitempty"`
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>...",
		Short: "Print the links found in txt, csv, xlsx or pdf files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var found []extractedLink
			for _, path := range args {
				content, err := os.ReadFile(path) // #nosec G304 -- operator supplied path
				if err != nil {
					return err
				}
				urls, err := extract.ExtractLinks(content, filepath.Base(path))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				for _, u := range urls {
					id, _ := youtube.ExtractVideoID(u)
					found = append(found, extractedLink{File: path, URL: u, VideoID: id})
				}
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, found)
			}
			for _, l := range found {
				if l.VideoID != "" {
					fmt.Fprintf(out, "%s\t%s\n", l.URL, l.VideoID)
				} else {
					fmt.Fprintln(out, l.URL)
				}
			}
			return nil
		},
	}
}

func newVideoIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "video-id <url>...",
		Short: "Print the YouTube video ID of each URL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, raw := range args {
				id, ok := youtube.ExtractVideoID(raw)
				if !ok {
					fmt.Fprintf(out, "%s\t-\n", raw)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", raw, id)
			}
			return nil
		},
	}
}
