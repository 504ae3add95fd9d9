package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mentally-gamez-soft/ws-blog/internal/cache"
	"github.com/mentally-gamez-soft/ws-blog/internal/posts"
	"github.com/mentally-gamez-soft/ws-blog/internal/storage"
)

var (
	postStatus  string
	postPage    int
	postPerPage int
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Inspect and maintain posts",
}

var postsGetCmd = &cobra.Command{
	Use:   "get <slug>",
	Short: "Show a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPosts(cmd, func(svc *posts.Service) error {
			p, err := svc.GetPostBySlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printPosts(cmd, []*posts.Post{p})
		})
	},
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var status *posts.Status
		if postStatus != "" {
			s := posts.Status(postStatus)
			if !s.Valid() {
				return fmt.Errorf("--status must be draft or published")
			}
			status = &s
		}
		return withPosts(cmd, func(svc *posts.Service) error {
			res, err := svc.ListPosts(cmd.Context(), postPage, postPerPage, status)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}
			if err := printPosts(cmd, res.Posts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d posts\n", res.Page, res.TotalPages, res.Total)
			return nil
		})
	},
}

var postsReslugCmd = &cobra.Command{
	Use:   "reslug <slug>",
	Short: "Derive a fresh slug from the post's current title",
	Long: `Clear the slug of a post and save it again, so the slug is derived from
the current title. Collisions get the usual numeric suffix.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPosts(cmd, func(svc *posts.Service) error {
			p, err := svc.ReslugPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !jsonOutput {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], p.Slug)
				return nil
			}
			return printJSON(cmd.OutOrStdout(), p)
		})
	},
}

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsGetCmd, postsListCmd, postsReslugCmd)

	postsListCmd.Flags().StringVar(&postStatus, "status", "", "Filter by status (draft, published)")
	postsListCmd.Flags().IntVar(&postPage, "page", 1, "Page number")
	postsListCmd.Flags().IntVar(&postPerPage, "per-page", 20, "Posts per page")
}

// withPosts builds the same post service as the API server, minus event
// publishing, so cache entries are invalidated on writes.
func withPosts(cmd *cobra.Command, fn func(*posts.Service) error) error {
	ctx := cmd.Context()
	sqlDB, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	s3Client, err := storage.NewS3Client(ctx, cfg.AWSRegion, cfg.S3Endpoint)
	if err != nil {
		return err
	}

	var postCache posts.Cache
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		postCache = cache.NewPostCache(client, cfg.CacheTTL)
	}

	svc := posts.NewService(posts.NewPostgresStore(sqlDB), storage.NewS3Storage(s3Client, cfg.S3Bucket), postCache, nil, logger())
	return fn(svc)
}

func printPosts(cmd *cobra.Command, list []*posts.Post) error {
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), list)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSLUG\tSTATUS\tTITLE")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Slug, p.Status, p.Title)
	}
	return w.Flush()
}
