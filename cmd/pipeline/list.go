package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
)

type listing struct {
	root artifact.Root
	exts []string
}

var listings = map[string]listing{
	"media":       {root: artifact.RootMedia},
	"transcripts": {root: artifact.RootTranscript, exts: []string{".txt"}},
	"tts":         {root: artifact.RootTTS, exts: []string{".wav"}},
	"latex":       {root: artifact.RootRender, exts: []string{".tex"}},
	"pdf":         {root: artifact.RootRender, exts: []string{".pdf"}},
	"quiz":        {root: artifact.RootQuiz, exts: []string{".json"}},
}

func listingNames() string {
	names := make([]string, 0, len(listings))
	for k := range listings {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

var listCmd = &cobra.Command{
	Use:   "list <folder>",
	Short: "List stored artifacts, newest first",
	Long:  "List stored artifacts, newest first. Folders: " + listingNames(),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, ok := listings[args[0]]
		if !ok {
			return fmt.Errorf("unknown folder %q (want one of %s)", args[0], listingNames())
		}
		return withApp(func(ctx context.Context, a *app) error {
			files, err := a.store.List(l.root, l.exts...)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		})
	},
}

var lineageCmd = &cobra.Command{
	Use:   "lineage <artifact>",
	Short: "Show which stage produced an artifact and what it was derived from",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			chain, err := a.store.Lineage(args[0])
			if err != nil {
				return err
			}
			for i, rec := range chain {
				fmt.Fprintf(cmd.OutOrStdout(), "%s%-10s %s  %s\n",
					strings.Repeat("  ", i), rec.Stage, rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Key)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd, lineageCmd)
}
