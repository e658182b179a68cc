package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/pipeline"
	"github.com/nguyentantai21042004/study-flow/internal/router"
)

const (
	serverName    = "study-flow"
	serverVersion = "1.0.0"
	previewLength = 200
)

var folders = map[string]struct {
	root artifact.Root
	exts []string
}{
	"media":       {artifact.RootMedia, nil},
	"transcripts": {artifact.RootTranscript, []string{".txt"}},
	"latex":       {artifact.RootRender, []string{".tex"}},
	"quiz":        {artifact.RootQuiz, []string{".json"}},
}

type toolServer struct {
	pipeline pipeline.Pipeline
	store    artifact.Store
	logger   logger.Logger
}

// NewServer returns an MCP server exposing the five pipeline tools. The same
// server backs the chat adapter and the stdio endpoint.
func NewServer(p pipeline.Pipeline, store artifact.Store, log logger.Logger) *mcp.Server {
	ts := &toolServer{pipeline: p, store: store, logger: log}
	srv := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	ts.add(srv, "download_youtube", "Download audio from a YouTube URL",
		props{"url": {"type": "string", "description": "The YouTube video URL"}},
		[]string{"url"}, ts.downloadYoutube)
	ts.add(srv, "transcribe_file", "Transcribe an audio/video file, or extract the text of a document or image",
		props{"path": {"type": "string", "description": "The absolute path to the media or document file"}},
		[]string{"path"}, ts.transcribeFile)
	ts.add(srv, "generate_summary_pdf", "Generate a LaTeX summary and compile it to PDF from a transcript file",
		props{
			"transcript_path": {"type": "string", "description": "The absolute path to the transcript .txt file"},
			"model_name":      {"type": "string", "description": "Model to use for summary generation"},
		},
		[]string{"transcript_path"}, ts.generateSummaryPDF)
	ts.add(srv, "generate_quiz_from_latex", "Generate an interactive quiz from a LaTeX summary file",
		props{
			"latex_path":    {"type": "string", "description": "The absolute path to the .tex file"},
			"num_questions": {"type": "integer", "description": "Number of questions to generate", "default": 10},
		},
		[]string{"latex_path"}, ts.generateQuiz)
	ts.add(srv, "list_files", "List available media, transcript, LaTeX or quiz files",
		props{"folder_type": {
			"type":        "string",
			"enum":        []string{"media", "transcripts", "latex", "quiz"},
			"description": "Type of files to list",
		}},
		[]string{"folder_type"}, ts.listFiles)

	return srv
}

type props map[string]map[string]any

type handlerFunc func(ctx context.Context, args json.RawMessage) (map[string]any, error)

// toolError is a failure that still has something worth reporting, such as
// artifacts committed before the failing step.
type toolError struct {
	err       error
	artifacts []string
}

func (e *toolError) Error() string { return e.err.Error() }
func (e *toolError) Unwrap() error { return e.err }

func (ts *toolServer) add(srv *mcp.Server, name, description string, properties props, required []string, h handlerFunc) {
	tool := &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}

		out, err := h(ctx, args)
		if err != nil {
			ts.logger.Warn(ctx, "Tool %s failed: %v", name, err)
			return errorResult(err), nil
		}

		out["status"] = "success"
		data, err := json.Marshal(out)
		if err != nil {
			return errorResult(fmt.Errorf("marshal result: %w", err)), nil
		}
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(data)}}}, nil
	})
}

func errorPayload(err error) []byte {
	body := map[string]any{"status": "error", "error": err.Error()}
	var te *toolError
	if errors.As(err, &te) && len(te.artifacts) > 0 {
		body["artifacts"] = te.artifacts
	}
	data, _ := json.Marshal(body)
	return data
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(errorPayload(err))}},
	}
}

func decode(args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// resolve maps a bare artifact name or a path inside one of roots to a
// stored file. Paths outside the store are rejected so a tool call can only
// read artifacts.
func (ts *toolServer) resolve(p string, roots ...artifact.Root) (string, error) {
	var lastErr error
	for _, root := range roots {
		resolved, err := ts.store.Resolve(root, p)
		if err == nil {
			return resolved, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (ts *toolServer) downloadYoutube(ctx context.Context, args json.RawMessage) (map[string]any, error) {
	var req struct {
		URL string `json:"url"`
	}
	if err := decode(args, &req); err != nil {
		return nil, err
	}
	if req.URL == "" {
		return nil, errors.New("url is required")
	}

	out, err := ts.pipeline.Fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	return map[string]any{"path": out.ArtifactKey, "filename": filepath.Base(out.ArtifactKey)}, nil
}

func (ts *toolServer) transcribeFile(ctx context.Context, args json.RawMessage) (map[string]any, error) {
	var req struct {
		Path string `json:"path"`
	}
	if err := decode(args, &req); err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, errors.New("path is required")
	}
	path, err := ts.resolve(req.Path, artifact.RootMedia)
	if err != nil {
		return nil, err
	}

	res, out, err := ts.pipeline.Ingest(ctx, path)
	if err != nil {
		return nil, &toolError{err: err, artifacts: out.Artifacts}
	}
	text, err := router.Text(res)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"type":            res.Kind().String(),
		"transcript_path": out.ArtifactKey,
		"text_preview":    preview(text),
	}, nil
}

func (ts *toolServer) generateSummaryPDF(ctx context.Context, args json.RawMessage) (map[string]any, error) {
	var req struct {
		TranscriptPath string `json:"transcript_path"`
		ModelName      string `json:"model_name"`
	}
	if err := decode(args, &req); err != nil {
		return nil, err
	}
	if req.TranscriptPath == "" {
		return nil, errors.New("transcript_path is required")
	}
	path, err := ts.resolve(req.TranscriptPath, artifact.RootTranscript, artifact.RootTTS)
	if err != nil {
		return nil, err
	}

	out, err := ts.pipeline.GenerateDocument(ctx, path, pipeline.DocumentOptions{Model: req.ModelName})
	if err != nil {
		return nil, &toolError{err: err, artifacts: out.Artifacts}
	}
	return map[string]any{"pdf_path": out.ArtifactKey, "tex_path": out.Artifacts[0]}, nil
}

func (ts *toolServer) generateQuiz(ctx context.Context, args json.RawMessage) (map[string]any, error) {
	var req struct {
		LatexPath    string `json:"latex_path"`
		NumQuestions int    `json:"num_questions"`
	}
	if err := decode(args, &req); err != nil {
		return nil, err
	}
	if req.LatexPath == "" {
		return nil, errors.New("latex_path is required")
	}
	path, err := ts.resolve(req.LatexPath, artifact.RootRender, artifact.RootTranscript)
	if err != nil {
		return nil, err
	}

	out, doc, err := ts.pipeline.GenerateQuiz(ctx, path, pipeline.QuizOptions{Questions: req.NumQuestions})
	if err != nil {
		return nil, err
	}
	return map[string]any{"quiz_path": out.ArtifactKey, "quiz_title": doc.Title, "total_questions": doc.TotalQuestions}, nil
}

func (ts *toolServer) listFiles(ctx context.Context, args json.RawMessage) (map[string]any, error) {
	var req struct {
		FolderType string `json:"folder_type"`
	}
	if err := decode(args, &req); err != nil {
		return nil, err
	}
	f, ok := folders[req.FolderType]
	if !ok {
		return nil, fmt.Errorf("unknown folder_type %q", req.FolderType)
	}

	paths, err := ts.store.List(f.root, f.exts...)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	return map[string]any{"files": names}, nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLength {
		return s
	}
	return string(r[:previewLength]) + "..."
}
