package httpapi

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/pipeline"
	"github.com/nguyentantai21042004/study-flow/internal/quiz"
)

var ttsModes = map[string]pipeline.ScriptStyle{
	"":           pipeline.ScriptNone,
	"transcript": pipeline.ScriptNone,
	"summary":    pipeline.ScriptSummary,
	"podcast":    pipeline.ScriptPodcast,
}

func (a *API) handleGenerateTTS(c *gin.Context) {
	var payload struct {
		TranscriptPath string  `json:"transcript_path" binding:"required"`
		TTSMode        string  `json:"tts_mode"`
		Voice          string  `json:"voice"`
		Speed          float64 `json:"speed"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid transcript path")
		return
	}
	style, ok := ttsModes[payload.TTSMode]
	if !ok {
		respondMessage(c, http.StatusBadRequest, "tts_mode must be transcript, summary or podcast")
		return
	}
	path, err := a.resolve(payload.TranscriptPath, artifact.RootTranscript, artifact.RootTTS)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid transcript path")
		return
	}

	out, err := a.pipeline.Synthesize(c.Request.Context(), path, pipeline.SynthesisOptions{
		Voice:  payload.Voice,
		Speed:  payload.Speed,
		Script: style,
	})
	if err != nil {
		respondFailure(c, out, err, nil)
		return
	}

	filename := filepath.Base(out.ArtifactKey)
	respondOK(c, gin.H{
		"audio_path": out.ArtifactKey,
		"filename":   filename,
		"audio_url":  "/api/tts/download/" + filename,
		"artifacts":  out.Artifacts,
	})
}

func (a *API) handleDownloadTTS(c *gin.Context) {
	path, err := a.store.Resolve(artifact.RootTTS, c.Param("filename"))
	if err != nil {
		c.String(http.StatusNotFound, "File not found")
		return
	}
	c.Header("Content-Type", "audio/wav")
	c.File(path)
}

type documentPayload struct {
	TranscriptPath string `json:"transcript_path" binding:"required"`
	ModelName      string `json:"model_name"`
	LatexCode      string `json:"latex_code"`
}

// handleStreamLatex writes fragments as they arrive. The first fragment is
// read before the status line so an upstream failure still gets a JSON error.
// A client disconnect cancels the request context, which ends the upstream read.
func (a *API) handleStreamLatex(c *gin.Context) {
	var payload documentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid transcript path")
		return
	}
	path, err := a.resolve(payload.TranscriptPath, artifact.RootTranscript, artifact.RootTTS)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid transcript path")
		return
	}

	ctx := c.Request.Context()
	stream, err := a.pipeline.StreamDocument(ctx, path, pipeline.DocumentOptions{Model: payload.ModelName})
	if err != nil {
		respondError(c, err)
		return
	}
	defer stream.Close()

	first, ok := stream.Next()
	if !ok && stream.Err() != nil {
		respondError(c, stream.Err())
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if !ok {
		return
	}
	for frag, ok := first, true; ok; frag, ok = stream.Next() {
		if _, err := io.WriteString(c.Writer, frag); err != nil {
			return
		}
		c.Writer.Flush()
	}
	if err := stream.Err(); err != nil {
		a.logger.Warn(ctx, "LaTeX stream ended early: %v", err)
	}
}

func (a *API) handleGeneratePDF(c *gin.Context) {
	var payload documentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid transcript path")
		return
	}
	path, err := a.resolve(payload.TranscriptPath, artifact.RootTranscript, artifact.RootTTS)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid transcript path")
		return
	}

	ctx := c.Request.Context()
	var out pipeline.Outcome
	if payload.LatexCode != "" {
		out, err = a.pipeline.CompileDocument(ctx, path, payload.LatexCode)
	} else {
		out, err = a.pipeline.GenerateDocument(ctx, path, pipeline.DocumentOptions{Model: payload.ModelName})
	}
	if err != nil {
		var extra gin.H
		if len(out.Artifacts) > 0 {
			extra = gin.H{"tex_path": out.Artifacts[0], "tex_filename": filepath.Base(out.Artifacts[0])}
		}
		respondFailure(c, out, err, extra)
		return
	}

	tex := out.Artifacts[0]
	respondOK(c, gin.H{
		"pdf_path":     out.ArtifactKey,
		"tex_path":     tex,
		"pdf_filename": filepath.Base(out.ArtifactKey),
		"tex_filename": filepath.Base(tex),
	})
}

func (a *API) handleGenerateQuiz(c *gin.Context) {
	var payload struct {
		LatexPath    string `json:"latex_path" binding:"required"`
		ModelName    string `json:"model_name"`
		NumQuestions int    `json:"num_questions"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid LaTeX path")
		return
	}
	path, err := a.resolve(payload.LatexPath, artifact.RootRender, artifact.RootTranscript)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid LaTeX path")
		return
	}

	out, doc, err := a.pipeline.GenerateQuiz(c.Request.Context(), path, pipeline.QuizOptions{
		Model:     payload.ModelName,
		Questions: payload.NumQuestions,
	})
	if err != nil {
		var extra gin.H
		var schemaErr *quiz.SchemaError
		if errors.As(err, &schemaErr) {
			extra = gin.H{"raw_response": schemaErr.Raw}
		}
		respondFailure(c, out, err, extra)
		return
	}

	respondOK(c, gin.H{
		"quiz_data":     doc,
		"quiz_path":     out.ArtifactKey,
		"quiz_filename": filepath.Base(out.ArtifactKey),
	})
}
