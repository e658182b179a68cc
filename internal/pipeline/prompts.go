package pipeline

const documentSystemPrompt = `You are an academic assistant and LaTeX specialist. You turn lecture transcripts and course material into one complete, well-structured LaTeX document. Explain concepts in plain language while keeping every technical detail.`

const documentUserPrompt = `Convert the content below into a single self-contained LaTeX document that captures the key ideas while keeping all necessary information.

Structure:
- \maketitle for the title page
- \section* for main sections, \section and \subsection* below them
- itemize and enumerate for lists, $...$ for every variable and formula
- tcolorbox boxes for "Key Takeaway", "Remember" and "Crucial Insight" notes
- tikz diagrams where a process or architecture is described, each with a title

Content:
- give each concept a plain definition with an analogy, then the technical definition
- say what it is for, why it is used here, and its advantages and failure modes
- keep formulas, variables, definitions and code exactly as given
- follow the order of the source
- end with "Common Implementation Errors" and "Extensions and Advanced Topics" sections

Output only the LaTeX source, from \documentclass to \end{document}. Do not use em-dashes.

CONTENT:
%s`

const podcastSystemPrompt = `You are a podcast scriptwriter and educator. You turn lecture material into long, engaging spoken scripts that cover everything from start to finish.`

const podcastUserPrompt = `Write a script that will be read aloud by a text-to-speech engine.

Format:
- plain text only, no markdown of any kind
- no speaker labels, stage directions or sound cues
- no em-dashes, use commas or periods
- one continuous flow of natural speech

Content:
- be thorough and verbose, covering every concept and example in order
- expand on each point with analogies and real-world examples
- use conversational transitions and the occasional rhetorical question
- write in English

SOURCE:
%s`

const summarySystemPrompt = `You are an expert communicator. Summarize the provided content in depth, conversationally, in plain text. Do not use em-dashes.`

const summaryUserPrompt = `Give an in-depth conversational summary of the content below.
Rules:
- plain text only, no markdown, bullets or formatting
- cover all key points
- no em-dashes

CONTENT:
%s`

const quizSystemPrompt = `You are an educational assessment author. You write high-quality multiple-choice quizzes as strict JSON.`

const quizUserPrompt = `Using the material below, write %d multiple-choice questions.

Respond with one JSON object and nothing else: no markdown, no code fences, no commentary.

Each question has a clear prompt, exactly four options keyed A, B, C and D, one correct answer given as the letter only, an explanation of why it is correct, and a difficulty of easy, medium or hard. Test understanding rather than recall and cover different topics from the material.

Use exactly this shape:
{
  "quiz_title": "Quiz on <topic>",
  "total_questions": %d,
  "questions": [
    {
      "id": 1,
      "question": "...",
      "options": {"A": "...", "B": "...", "C": "...", "D": "..."},
      "correct_answer": "B",
      "explanation": "...",
      "difficulty": "easy"
    }
  ]
}

Question ids start at 1 and increase by one.

MATERIAL:
%s`
