package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/study-flow/internal/pipeline"
	"github.com/nguyentantai21042004/study-flow/internal/router"
)

var routeCmd = &cobra.Command{
	Use:   "route <file>",
	Short: "Transcribe a media file or extract text from a document and save it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			res, out, err := a.pipeline.Ingest(ctx, args[0])
			if err != nil {
				return stageError(out, err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "kind:       %s\n", res.Kind())
			fmt.Fprintf(w, "transcript: %s\n", out.ArtifactKey)
			if m, ok := res.(*router.MediaResult); ok {
				fmt.Fprintf(w, "language:   %s\n", m.Language)
				fmt.Fprintf(w, "segments:   %d\n", len(m.Segments))
				fmt.Fprintf(w, "timestamped: %s\n", pipeline.TimestampedPath(out.ArtifactKey))
			}
			return nil
		})
	},
}

var (
	documentModel  string
	documentStream bool
	documentSource string
)

var documentCmd = &cobra.Command{
	Use:   "document <transcript>",
	Short: "Generate a LaTeX summary of a transcript and compile it to PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			var (
				out pipeline.Outcome
				err error
			)
			switch {
			case documentSource != "":
				out, err = compileFile(ctx, a, args[0], documentSource)
			case documentStream:
				out, err = streamAndCompile(ctx, a, args[0], cmd.OutOrStdout())
			default:
				out, err = a.pipeline.GenerateDocument(ctx, args[0], pipeline.DocumentOptions{Model: documentModel})
			}
			if err != nil {
				return stageError(out, err)
			}
			printArtifacts(cmd.OutOrStdout(), out)
			return nil
		})
	},
}

// streamAndCompile echoes fragments as they arrive and compiles the
// collected source from the same upstream call.
func streamAndCompile(ctx context.Context, a *app, transcript string, w io.Writer) (pipeline.Outcome, error) {
	stream, err := a.pipeline.StreamDocument(ctx, transcript, pipeline.DocumentOptions{Model: documentModel})
	if err != nil {
		return pipeline.Outcome{Stage: pipeline.StageDocument, Err: err}, err
	}
	defer stream.Close()

	for frag, err := range stream.All() {
		if err != nil {
			return pipeline.Outcome{Stage: pipeline.StageDocument, Err: err}, err
		}
		io.WriteString(w, frag)
	}
	fmt.Fprintln(w)

	source, _ := stream.Collect()
	return a.pipeline.CompileDocument(ctx, transcript, source)
}

func compileFile(ctx context.Context, a *app, transcript, sourcePath string) (pipeline.Outcome, error) {
	data, err := readFile(sourcePath)
	if err != nil {
		return pipeline.Outcome{Stage: pipeline.StageDocument, Err: err}, err
	}
	return a.pipeline.CompileDocument(ctx, transcript, data)
}

var (
	ttsMode  string
	ttsVoice string
	ttsSpeed float64
)

var ttsCmd = &cobra.Command{
	Use:   "tts <text-file>",
	Short: "Narrate a transcript, optionally rewritten as a summary or podcast script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		style, err := parseStyle(ttsMode)
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app) error {
			out, err := a.pipeline.Synthesize(ctx, args[0], pipeline.SynthesisOptions{
				Voice:  ttsVoice,
				Speed:  ttsSpeed,
				Script: style,
			})
			if err != nil {
				return stageError(out, err)
			}
			printArtifacts(cmd.OutOrStdout(), out)
			return nil
		})
	},
}

func parseStyle(mode string) (pipeline.ScriptStyle, error) {
	switch strings.ToLower(mode) {
	case "", "transcript":
		return pipeline.ScriptNone, nil
	case "summary":
		return pipeline.ScriptSummary, nil
	case "podcast":
		return pipeline.ScriptPodcast, nil
	default:
		return "", fmt.Errorf("%w: %q (want transcript, summary or podcast)", pipeline.ErrUnknownStyle, mode)
	}
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download the audio track of a video page into the media root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			out, err := a.pipeline.Fetch(ctx, args[0])
			if err != nil {
				return stageError(out, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.ArtifactKey)
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <text-file>",
	Short: "Export a transcript or script to DOCX",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			out, err := a.pipeline.ExportDocx(ctx, args[0])
			if err != nil {
				return stageError(out, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.ArtifactKey)
			return nil
		})
	},
}

func init() {
	documentCmd.Flags().StringVarP(&documentModel, "model", "m", "", "override llm.document_model")
	documentCmd.Flags().BoolVar(&documentStream, "stream", false, "print the LaTeX source while it is generated")
	documentCmd.Flags().StringVar(&documentSource, "source", "", "compile this LaTeX file instead of generating one")

	ttsCmd.Flags().StringVar(&ttsMode, "mode", "transcript", "transcript, summary or podcast")
	ttsCmd.Flags().StringVar(&ttsVoice, "voice", "", "override tts.voice")
	ttsCmd.Flags().Float64Var(&ttsSpeed, "speed", 0, "override tts.speed")

	rootCmd.AddCommand(routeCmd, documentCmd, ttsCmd, fetchCmd, exportCmd)
}
