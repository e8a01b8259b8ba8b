package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/summary_v1.txt
	summaryPromptV1 string
	//go:embed prompts/clauses_v1.txt
	clausesPromptV1 string
	//go:embed prompts/question_v1.txt
	questionPromptV1 string
)

// SummaryPrompt asks for a plain-language summary of the document.
func SummaryPrompt(document string) string {
	return fill(summaryPromptV1, document, "")
}

// ClausesPrompt asks for parties, dates, jurisdiction, obligations and terms.
func ClausesPrompt(document string) string {
	return fill(clausesPromptV1, document, "")
}

// QuestionPrompt asks the model to answer question against the document.
func QuestionPrompt(document, question string) string {
	return fill(questionPromptV1, document, question)
}

func fill(template, document, question string) string {
	replacer := strings.NewReplacer(
		"{{DOCUMENT}}", document,
		"{{QUESTION}}", question,
	)
	return strings.TrimRight(replacer.Replace(template), "\n")
}
