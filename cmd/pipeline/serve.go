package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/chat"
	"github.com/nguyentantai21042004/study-flow/internal/httpapi"
	"github.com/nguyentantai21042004/study-flow/internal/watcher"
)

var serveMCP bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST backend, or the tool server over stdio with --mcp",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			tools := chat.NewServer(a.pipeline, a.store, a.logger)

			if serveMCP {
				a.logger.Info(ctx, "Serving tools over stdio")
				return tools.Run(ctx, &mcp.StdioTransport{})
			}

			c, err := chat.New(ctx, a.provider, tools, a.cfg.LLM.ChatModel, a.logger)
			if err != nil {
				return fmt.Errorf("start chat adapter: %w", err)
			}
			defer c.Close()

			return httpapi.NewServer(a.cfg.Server, a.pipeline, a.store, c, a.logger).Run(ctx)
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Route every supported file dropped into the inbox directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			w, err := watcher.New(a.cfg.Storage.Inbox, func(ctx context.Context, path string) error {
				claimed := claimInboxFile(ctx, a, path)
				_, out, err := a.pipeline.Ingest(ctx, claimed)
				if err != nil {
					return err
				}
				a.logger.Info(ctx, "Transcript saved: %s", out.ArtifactKey)
				return nil
			}, a.logger, a.cfg.Performance.MaxConcurrent)
			if err != nil {
				return err
			}
			defer w.Stop()

			a.logger.Info(ctx, "Drop files into %s. Press Ctrl+C to stop", a.cfg.Storage.Inbox)
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	},
}

// claimInboxFile moves a dropped file into the media root so the inbox only
// holds unprocessed files. When the move fails the file is routed in place.
func claimInboxFile(ctx context.Context, a *app, path string) string {
	dst, err := a.store.NewPath(artifact.RootMedia, artifact.Name{
		Base: artifact.BaseName(path),
		Ext:  strings.ToLower(filepath.Ext(path)),
	})
	if err == nil {
		if err = os.Rename(path, dst); err != nil {
			os.Remove(dst)
		}
	}
	if err != nil {
		a.logger.Warn(ctx, "Routing %s in place, could not move it into the media root: %v", path, err)
		return path
	}

	if err := a.store.Record(artifact.Artifact{Key: dst, Stage: "upload"}); err != nil {
		a.logger.Warn(ctx, "Failed to record %s: %v", dst, err)
	}
	a.logger.Info(ctx, "Moved %s -> %s", path, dst)
	return dst
}

func init() {
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "expose the pipeline tools to an MCP client over stdin/stdout")

	rootCmd.AddCommand(serveCmd, watchCmd)
}
