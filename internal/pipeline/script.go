package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/llm"
)

var plainTextReplacer = strings.NewReplacer(
	"```plaintext", "",
	"```", "",
	"—", "-",
	"**", "",
	"__", "",
)

// GenerateScript rewrites the text at textPath for narration and saves it
// under the TTS root as <base>_<style>_script_<ts>.txt.
func (p *implPipeline) GenerateScript(ctx context.Context, textPath string, style ScriptStyle) (Outcome, error) {
	out := Outcome{Stage: StageScript}

	text, err := readText(textPath)
	if err != nil {
		return out.fail(err)
	}

	script, err := p.script(ctx, text, style)
	if err != nil {
		p.logger.Error(ctx, "Script generation failed for %s: %v", textPath, err)
		return out.fail(err)
	}
	if strings.TrimSpace(script) == "" {
		return out.fail(fmt.Errorf("%s script: %w", style, ErrEmptyInput))
	}

	path, err := p.write(artifact.RootTTS, artifact.Name{
		Base: artifact.BaseName(textPath),
		Tag:  string(style) + "_script",
		Ext:  ".txt",
	}, []byte(script))
	if err != nil {
		return out.fail(err)
	}
	out.add(path)
	p.record(ctx, StageScript, path, textPath)

	p.logger.Info(ctx, "%s script saved: %s", style, path)
	return out.succeed(path)
}

func (p *implPipeline) script(ctx context.Context, text string, style ScriptStyle) (string, error) {
	switch style {
	case ScriptPodcast:
		// Long output; Ollama truncates the prompt without a larger context window.
		stream, err := p.generator.Stream(ctx, llm.Request{
			Model:         p.opts.ScriptModel,
			System:        podcastSystemPrompt,
			Prompt:        fmt.Sprintf(podcastUserPrompt, text),
			ContextWindow: p.opts.ContextWindow,
		})
		if err != nil {
			return "", err
		}
		defer stream.Close()
		return stream.Collect()

	case ScriptSummary:
		summary, err := p.generator.Generate(ctx, llm.Request{
			Model:  p.opts.SummaryModel,
			System: summarySystemPrompt,
			Prompt: fmt.Sprintf(summaryUserPrompt, text),
		})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(plainTextReplacer.Replace(summary)), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}
}
