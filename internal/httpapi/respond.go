package httpapi

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/fetch"
	"github.com/nguyentantai21042004/study-flow/internal/llm"
	"github.com/nguyentantai21042004/study-flow/internal/pipeline"
	"github.com/nguyentantai21042004/study-flow/internal/quiz"
	"github.com/nguyentantai21042004/study-flow/internal/router"
	"github.com/nguyentantai21042004/study-flow/internal/transcribe"
	"github.com/nguyentantai21042004/study-flow/internal/tts"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var schemaErr *quiz.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, llm.ErrProviderUnavailable),
		errors.Is(err, transcribe.ErrProviderUnavailable),
		errors.Is(err, tts.ErrProviderUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, router.ErrUnsupportedFormat),
		errors.Is(err, fetch.ErrInvalidURL),
		errors.Is(err, pipeline.ErrEmptyInput),
		errors.Is(err, pipeline.ErrUnknownStyle),
		errors.Is(err, artifact.ErrOutsideRoot),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondOK(c *gin.Context, body gin.H) {
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondFailure reports a stage failure. Artifacts committed before the
// failure are listed so the caller can retry only the failed stage.
func respondFailure(c *gin.Context, out pipeline.Outcome, err error, extra gin.H) {
	body := gin.H{"success": false, "error": err.Error()}
	if out.Stage != "" {
		body["stage"] = out.Stage
	}
	if len(out.Artifacts) > 0 {
		body["artifacts"] = out.Artifacts
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(statusFor(err), body)
}

func respondError(c *gin.Context, err error) {
	respondMessage(c, statusFor(err), err.Error())
}
