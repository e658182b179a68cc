package httpapi

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/chat"
	"github.com/nguyentantai21042004/study-flow/internal/llm"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/pipeline"
	"github.com/nguyentantai21042004/study-flow/internal/router"
)

var allRoots = []artifact.Root{
	artifact.RootMedia,
	artifact.RootTranscript,
	artifact.RootTTS,
	artifact.RootRender,
	artifact.RootQuiz,
}

type API struct {
	pipeline pipeline.Pipeline
	store    artifact.Store
	chat     chat.Chat
	logger   logger.Logger
}

func NewAPI(p pipeline.Pipeline, store artifact.Store, c chat.Chat, log logger.Logger) *API {
	return &API{pipeline: p, store: store, chat: c, logger: log}
}

func registerRoutes(r *gin.Engine, api *API) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", api.handleHealth)

		apiGroup.GET("/media/list", api.handleListMedia)
		apiGroup.POST("/media/upload", api.handleUpload)
		apiGroup.POST("/media/youtube", api.handleYoutube)

		apiGroup.POST("/transcribe", api.handleTranscribe)
		apiGroup.GET("/transcripts/list", api.handleListTranscripts)
		apiGroup.POST("/transcripts/content", api.handleTranscriptContent)
		apiGroup.POST("/transcripts/export", api.handleExport)

		apiGroup.POST("/tts/generate", api.handleGenerateTTS)
		apiGroup.GET("/tts/download/:filename", api.handleDownloadTTS)

		apiGroup.POST("/pdf/stream_latex", api.handleStreamLatex)
		apiGroup.POST("/pdf/generate", api.handleGeneratePDF)
		apiGroup.GET("/latex/list", api.handleListLatex)

		apiGroup.POST("/quiz/generate", api.handleGenerateQuiz)

		apiGroup.POST("/download", api.handleDownload)
		apiGroup.GET("/lineage", api.handleLineage)
		apiGroup.POST("/chat", api.handleChat)
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Backend is running"})
}

type fileInfo struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (a *API) listFiles(root artifact.Root, exts ...string) ([]fileInfo, error) {
	paths, err := a.store.List(root, exts...)
	if err != nil {
		return nil, err
	}
	files := make([]fileInfo, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		files = append(files, fileInfo{Path: p, Name: filepath.Base(p), Size: info.Size()})
	}
	return files, nil
}

// resolve finds name inside one of roots. Paths outside the store are rejected.
func (a *API) resolve(name string, roots ...artifact.Root) (string, error) {
	if name == "" {
		return "", fmt.Errorf("path is required: %w", fs.ErrNotExist)
	}
	var lastErr error
	for _, root := range roots {
		p, err := a.store.Resolve(root, name)
		if err == nil {
			return p, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (a *API) handleListMedia(c *gin.Context) {
	files, err := a.listFiles(artifact.RootMedia)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"files": files})
}

func (a *API) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "No file provided")
		return
	}
	if !router.Supported(fileHeader.Filename) {
		respondMessage(c, http.StatusBadRequest, "File type not allowed")
		return
	}

	upload, err := fileHeader.Open()
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "unable to read uploaded file")
		return
	}
	defer upload.Close()

	path, err := a.store.SaveUpload(fileHeader.Filename, upload)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := a.store.Record(artifact.Artifact{Key: path, Stage: "upload"}); err != nil {
		a.logger.Warn(c.Request.Context(), "Failed to record upload %s: %v", path, err)
	}

	a.logger.Info(c.Request.Context(), "Upload saved: %s (%d bytes)", path, fileHeader.Size)
	respondOK(c, gin.H{"path": path, "filename": filepath.Base(path)})
}

func (a *API) handleYoutube(c *gin.Context) {
	var payload struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "No URL provided")
		return
	}

	out, err := a.pipeline.Fetch(c.Request.Context(), payload.URL)
	if err != nil {
		respondFailure(c, out, err, nil)
		return
	}
	respondOK(c, gin.H{"path": out.ArtifactKey, "filename": filepath.Base(out.ArtifactKey)})
}

func (a *API) handleTranscribe(c *gin.Context) {
	var payload struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid file path")
		return
	}
	path, err := a.resolve(payload.Path, artifact.RootMedia)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid file path")
		return
	}

	res, out, err := a.pipeline.Ingest(c.Request.Context(), path)
	if err != nil {
		respondFailure(c, out, err, nil)
		return
	}

	switch r := res.(type) {
	case *router.MediaResult:
		respondOK(c, gin.H{
			"type":             r.Kind().String(),
			"transcript":       r.FullText,
			"language":         r.Language,
			"timestamped":      pipeline.FormatTimestamped(r.Segments),
			"transcript_path":  out.ArtifactKey,
			"timestamped_path": pipeline.TimestampedPath(out.ArtifactKey),
		})
	case *router.DocumentResult:
		respondOK(c, gin.H{
			"type":            r.Kind().String(),
			"transcript":      r.ExtractedText,
			"transcript_path": out.ArtifactKey,
		})
	default:
		respondError(c, fmt.Errorf("%w: %T", router.ErrUnhandledKind, res))
	}
}

func (a *API) handleListTranscripts(c *gin.Context) {
	files, err := a.listFiles(artifact.RootTranscript, ".txt")
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"transcripts": files})
}

func (a *API) handleTranscriptContent(c *gin.Context) {
	var payload struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid file path")
		return
	}
	path, err := a.resolve(payload.Path, artifact.RootTranscript, artifact.RootTTS)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid file path")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"content": string(data)})
}

func (a *API) handleExport(c *gin.Context) {
	var payload struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid file path")
		return
	}
	path, err := a.resolve(payload.Path, artifact.RootTranscript, artifact.RootTTS)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid file path")
		return
	}

	out, err := a.pipeline.ExportDocx(c.Request.Context(), path)
	if err != nil {
		respondFailure(c, out, err, nil)
		return
	}
	respondOK(c, gin.H{"docx_path": out.ArtifactKey, "filename": filepath.Base(out.ArtifactKey)})
}

func (a *API) handleListLatex(c *gin.Context) {
	files, err := a.listFiles(artifact.RootRender, ".tex")
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"files": files})
}

func (a *API) handleDownload(c *gin.Context) {
	var payload struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusNotFound, "File not found")
		return
	}
	path, err := a.resolve(payload.Path, allRoots...)
	if err != nil {
		respondMessage(c, http.StatusNotFound, "File not found")
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (a *API) handleLineage(c *gin.Context) {
	chain, err := a.store.Lineage(c.Query("path"))
	if errors.Is(err, artifact.ErrNotFound) {
		respondMessage(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"lineage": chain})
}

func (a *API) handleChat(c *gin.Context) {
	if a.chat == nil {
		respondMessage(c, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	var payload struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages" binding:"required"`
		ModelName string `json:"model_name"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid payload")
		return
	}

	messages := make([]llm.Message, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := a.chat.Reply(c.Request.Context(), payload.ModelName, messages)
	if err != nil {
		a.logger.Error(c.Request.Context(), "Chat failed: %v", err)
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": reply.Message, "tool_results": reply.ToolResults})
}
