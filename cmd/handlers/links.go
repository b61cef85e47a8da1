package handlers

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"planwrite/internal/links"
)

// NewLinksCmd creates the links command group
func NewLinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Manage the internal link index",
		Long: `Build and query the per-property index of internal links.

Each property has a JSONL source file in the data directory
(evergreen_<property>.jsonl). Ingesting a source embeds every record and
saves the index to the configured store.`,
	}

	cmd.AddCommand(newLinksIngestCmd())
	cmd.AddCommand(newLinksSuggestCmd())
	cmd.AddCommand(newLinksSeedCmd())

	return cmd
}

func newLinksIngestCmd() *cobra.Command {
	var (
		all     bool
		dataDir string
	)

	cmd := &cobra.Command{
		Use:   "ingest [property...]",
		Short: "Embed link sources and rebuild the index",
		Long: `Embed the JSONL link sources of one or more properties and replace
their stored index. With --all, every configured property is rebuilt.

Examples:
  planwrite links ingest action_network
  planwrite links ingest --all --data-dir ./data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinksIngest(cmd.Context(), args, all, dataDir)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Rebuild every configured property")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory with link sources (default from config)")

	return cmd
}

func runLinksIngest(ctx context.Context, properties []string, all bool, dataDir string) error {
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if dataDir == "" {
		dataDir = rt.cfg.Links.DataDir
	}
	if all {
		properties = nil
		for name := range rt.cfg.Properties {
			properties = append(properties, name)
		}
		sort.Strings(properties)
	}
	if len(properties) == 0 {
		return fmt.Errorf("name at least one property or pass --all")
	}
	for i, p := range properties {
		properties[i] = strings.ToLower(p)
	}

	counts, err := rt.registry.IngestAll(ctx, dataDir, properties)
	for _, property := range properties {
		if n, ok := counts[property]; ok {
			fmt.Printf("%-24s %d links\n", property, n)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to ingest links: %w", err)
	}
	return nil
}

func newLinksSuggestCmd() *cobra.Command {
	var (
		property string
		brand    string
		terms    []string
		k        int
	)

	cmd := &cobra.Command{
		Use:   "suggest [title]",
		Short: "Suggest internal links for a section title",
		Long: `Rank indexed links by similarity to a section title and print the top
matches. Links about other brands are dropped when --brand is set.

Examples:
  planwrite links suggest "How to claim the FanDuel promo code" --brand FanDuel
  planwrite links suggest "NBA picks tonight" --property action_network --k 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if k <= 0 {
				k = rt.cfg.Links.DefaultK
			}
			suggestions := rt.registry.Suggest(cmd.Context(), args[0], terms, k, rt.property(property), brand)
			if len(suggestions) == 0 {
				fmt.Fprintln(os.Stderr, "No links found.")
				return nil
			}
			for _, s := range suggestions {
				fmt.Printf("%.3f  %s\n       %s\n", s.Score, s.Title, s.URL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&property, "property", "", "Property to search (default from config)")
	cmd.Flags().StringVar(&brand, "brand", "", "Brand the article promotes")
	cmd.Flags().StringSliceVar(&terms, "term", nil, "Extra query terms (repeatable)")
	cmd.Flags().IntVar(&k, "k", 0, "Number of links to return (default from config)")

	return cmd
}

func newLinksSeedCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "build-seed [file]",
		Short: "Build link sources from a list of URLs",
		Long: `Read a list of "URL" or "URL | Title" lines, assign each URL to the
property that owns its domain and write one JSONL source per property.
Lines for unknown domains are skipped.

Examples:
  planwrite links build-seed urls.txt
  planwrite links build-seed urls.txt --out ./data`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.Links.DataDir
			}

			var f *os.File
			if args[0] == "-" {
				f = os.Stdin
			} else {
				if f, err = os.Open(args[0]); err != nil {
					return fmt.Errorf("failed to open seed list: %w", err)
				}
				defer f.Close()
			}

			seeds, err := links.BuildSeed(f, cfg.PropertyDomains())
			if err != nil {
				return err
			}
			written, err := links.WriteSeed(outDir, seeds)
			if err != nil {
				return err
			}
			for _, property := range written {
				fmt.Printf("%-24s %d links -> %s\n", property, len(seeds[property]), links.SourcePath(outDir, property))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default: links data dir)")

	return cmd
}
