package admin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/cli"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/service"
	"github.com/spf13/cobra"
)

// KnowledgeCmd returns the knowledge command group
func KnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Manage the knowledge base",
	}

	load := &cobra.Command{
		Use:   "load",
		Short: "Index the seed corpus, local documents and S3 documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKnowledgeLoad(cmd, false)
		},
	}
	addOutputFlag(load)

	reload := &cobra.Command{
		Use:   "reload",
		Short: "Clear the knowledge base and index every source again",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKnowledgeLoad(cmd, true)
		},
	}
	addOutputFlag(reload)

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runKnowledgeSearch,
	}
	search.Flags().IntP("limit", "n", 5, "Maximum number of results")
	addOutputFlag(search)

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored chunk",
		Args:  cobra.ExactArgs(1),
		RunE:  runKnowledgeShow,
	}
	addOutputFlag(show)

	upload := &cobra.Command{
		Use:   "upload <file.pdf>...",
		Short: "Upload PDF documents to the knowledge bucket",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runKnowledgeUpload,
	}

	for _, c := range []*cobra.Command{load, reload, search} {
		cli.Require(c, cli.RequiresOpenAI)
	}
	cli.Require(upload, cli.RequiresS3)

	cmd.AddCommand(load, reload, search, show, upload)
	return cmd
}

func knowledgeApp(ctx context.Context) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, logger, appOptions{})
}

func runKnowledgeLoad(cmd *cobra.Command, clear bool) error {
	ctx := cmd.Context()
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	a, err := knowledgeApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var summary *service.LoadSummary
	if clear {
		summary, err = a.loader.Reload(ctx)
	} else {
		summary, err = a.loader.LoadAll(ctx)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == outputJSON {
		return printJSON(out, summary)
	}

	fmt.Fprintf(out, "Seed documents: %d\n", summary.SeedDocuments)
	fmt.Fprintf(out, "Local chunks:   %d\n", summary.LocalChunks)
	fmt.Fprintf(out, "Remote chunks:  %d\n", summary.RemoteChunks)
	fmt.Fprintf(out, "Total chunks:   %d\n", summary.Total)
	for _, f := range summary.Failed {
		fmt.Fprintf(out, "Failed: %s\n", f)
	}
	return nil
}

func runKnowledgeSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	a, err := knowledgeApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.loader.Search(ctx, query, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == outputJSON {
		return printJSON(out, results)
	}

	if len(results) == 0 {
		fmt.Fprintf(out, "No results for %q\n", query)
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(out, "%d. %s (similarity %.2f)\n", i+1, r.ID, r.Similarity)
		fmt.Fprintf(out, "   %s\n", truncate(r.Text, 200))
	}
	return nil
}

// chunkView is a stored chunk without its embedding values.
type chunkView struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata"`
	Dimensions int               `json:"dimensions"`
	CreatedAt  time.Time         `json:"timestamp"`
}

func newChunkView(c *domain.KnowledgeChunk) chunkView {
	return chunkView{
		ID:         c.ID,
		Text:       c.Text,
		Metadata:   c.Metadata,
		Dimensions: len(c.Embedding),
		CreatedAt:  c.CreatedAt,
	}
}

func runKnowledgeShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	a, err := knowledgeApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	chunk, err := a.store.Get(ctx, args[0])
	if err != nil {
		return err
	}

	view := newChunkView(chunk)
	if format == outputJSON {
		return printJSON(cmd.OutOrStdout(), view)
	}
	printChunk(cmd.OutOrStdout(), view)
	return nil
}

func printChunk(w io.Writer, v chunkView) {
	fmt.Fprintf(w, "ID:         %s\n", v.ID)
	fmt.Fprintf(w, "Created:    %s\n", v.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Dimensions: %d\n", v.Dimensions)

	keys := make([]string, 0, len(v.Metadata))
	for k := range v.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, v.Metadata[k])
	}

	fmt.Fprintf(w, "\n%s\n", v.Text)
}

func runKnowledgeUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := knowledgeApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.objects == nil {
		return fmt.Errorf("S3 is not configured: set S3_ENDPOINT")
	}
	if err := a.objects.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket: %w", err)
	}

	for _, file := range args {
		if !strings.EqualFold(filepath.Ext(file), ".pdf") {
			return fmt.Errorf("%s: only PDF documents are supported", file)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		key := path.Join(a.cfg.S3Prefix, filepath.Base(file))
		if err := a.objects.PutObject(ctx, key, "application/pdf", data); err != nil {
			return fmt.Errorf("failed to upload %s: %w", file, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s to s3://%s/%s\n", file, a.cfg.S3Bucket, key)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
