package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/postpilot/postpilot/internal/client"
	"github.com/postpilot/postpilot/internal/gallery"
)

var (
	serverURL string
	apiToken  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gallery",
		Short: "PostPilot media gallery CLI",
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envDefault("POSTPILOT_URL", "http://localhost:8090"), "PostPilot server URL or set POSTPILOT_URL env")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("POSTPILOT_TOKEN"), "API key or session token, or set POSTPILOT_TOKEN env")

	// list command
	var (
		filter string
		sortBy string
		search string
		pages  int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List gallery assets with cooldown state",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := newEngine()
			defer engine.Close()

			engine.SetQuery(gallery.Query{
				Filter: gallery.FilterPreset(filter),
				Sort:   gallery.SortOrder(sortBy),
				Search: search,
			})

			ctx := context.Background()
			if err := engine.LoadInitial(ctx); err != nil {
				return err
			}
			for i := 1; i < pages && engine.SyncState().HasMore; i++ {
				if err := engine.LoadMore(ctx); err != nil {
					return err
				}
			}

			return printAssets(engine)
		},
	}
	listCmd.Flags().StringVar(&filter, "filter", "all", "Filter preset: all, watermarked, unprotected, cooldownReady, cooldownLocked")
	listCmd.Flags().StringVar(&sortBy, "sort", "newest", "Sort order: newest, oldest, sizeDesc, sizeAsc, recentlyReposted")
	listCmd.Flags().StringVar(&search, "search", "", "Filename substring search")
	listCmd.Flags().IntVar(&pages, "pages", 1, "Number of pages to sync")

	// stats command
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show derived gallery stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := newEngine()
			defer engine.Close()

			ctx := context.Background()
			if err := engine.LoadInitial(ctx); err != nil {
				return err
			}
			for engine.SyncState().HasMore {
				if err := engine.LoadMore(ctx); err != nil {
					return err
				}
			}

			st := engine.Stats()
			fmt.Printf("total:           %d\n", st.Total)
			fmt.Printf("watermarked:     %d\n", st.Watermarked)
			fmt.Printf("unprotected:     %d\n", st.Unprotected)
			fmt.Printf("cooldown ready:  %d\n", st.CooldownReady)
			fmt.Printf("cooldown locked: %d\n", st.CooldownLocked)
			return nil
		},
	}

	// repost command
	var (
		assetID   int64
		subreddit string
		title     string
		nsfw      bool
		spoiler   bool
	)
	repostCmd := &cobra.Command{
		Use:   "repost",
		Short: "Quick-repost an asset to a subreddit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if assetID == 0 || subreddit == "" || title == "" {
				return fmt.Errorf("--id, --subreddit and --title are required")
			}

			engine := newEngine()
			defer engine.Close()

			ctx := context.Background()
			if err := engine.LoadInitial(ctx); err != nil {
				return err
			}
			for engine.SyncState().HasMore {
				if err := engine.LoadMore(ctx); err != nil {
					return err
				}
			}

			err := engine.SubmitRepost(ctx, gallery.RepostRequest{
				AssetID:   assetID,
				Subreddit: subreddit,
				Title:     title,
				NSFW:      nsfw,
				Spoiler:   spoiler,
			})
			if err != nil {
				return err
			}

			fmt.Printf("reposted asset %d to r/%s\n", assetID, subreddit)
			return nil
		},
	}
	repostCmd.Flags().Int64Var(&assetID, "id", 0, "Asset id")
	repostCmd.Flags().StringVar(&subreddit, "subreddit", "", "Target subreddit")
	repostCmd.Flags().StringVar(&title, "title", "", "Post title")
	repostCmd.Flags().BoolVar(&nsfw, "nsfw", false, "Mark post NSFW")
	repostCmd.Flags().BoolVar(&spoiler, "spoiler", false, "Mark post as spoiler")

	rootCmd.AddCommand(listCmd, statsCmd, repostCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newEngine() *gallery.Engine {
	api := client.New(serverURL, apiToken)
	return gallery.NewEngine(api, gallery.EngineOptions{})
}

func printAssets(engine *gallery.Engine) error {
	assets := engine.ProjectedView()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tSIZE\tWATERMARK\tCOOLDOWN")
	for _, a := range assets {
		cooldown := "ready"
		if v, ok := engine.Eligibility(a.ID); ok && v.Active {
			// always round up so a nearly elapsed cooldown never reads as ready
			cooldown = fmt.Sprintf("%dh left", v.DisplayHours())
		}
		mark := ""
		if a.Watermarked {
			mark = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", a.ID, a.Filename, a.Bytes, mark, cooldown)
	}
	return w.Flush()
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
