package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/llm"
	"github.com/nguyentantai21042004/study-flow/internal/quiz"
)

const (
	defaultQuestions = 10
	// quizSourceLimit caps how much of the source goes into the prompt.
	quizSourceLimit = 4000
)

// GenerateQuiz asks for a quiz over the text at sourcePath and saves
// <base>_Quiz_<ts>.json only when the response passes strict validation.
func (p *implPipeline) GenerateQuiz(ctx context.Context, sourcePath string, opts QuizOptions) (Outcome, *quiz.Document, error) {
	out := Outcome{Stage: StageQuiz}
	fail := func(err error) (Outcome, *quiz.Document, error) {
		o, err := out.fail(err)
		return o, nil, err
	}

	text, err := readText(sourcePath)
	if err != nil {
		return fail(err)
	}

	n := opts.Questions
	if n <= 0 {
		n = defaultQuestions
	}
	model := opts.Model
	if model == "" {
		model = p.opts.QuizModel
	}

	raw, err := p.generator.Generate(ctx, llm.Request{
		Model:  model,
		System: quizSystemPrompt,
		Prompt: fmt.Sprintf(quizUserPrompt, n, n, truncate(text, quizSourceLimit)),
	})
	if err != nil {
		return fail(err)
	}

	doc, err := quiz.Parse(raw)
	if err != nil {
		var se *quiz.SchemaError
		if errors.As(err, &se) {
			p.logger.Warn(ctx, "Quiz response rejected: %s", se.Reason)
		}
		return fail(err)
	}

	data, err := quiz.Marshal(doc)
	if err != nil {
		return fail(err)
	}
	path, err := p.write(artifact.RootQuiz, artifact.Name{
		Base: artifact.BaseName(sourcePath),
		Tag:  "Quiz",
		Ext:  ".json",
	}, data)
	if err != nil {
		return fail(err)
	}
	out.add(path)
	p.record(ctx, StageQuiz, path, sourcePath)

	p.logger.Info(ctx, "Quiz saved: %s (%d questions)", path, doc.TotalQuestions)
	o, _ := out.succeed(path)
	return o, doc, nil
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
