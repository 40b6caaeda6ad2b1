package analysis

import (
	"fmt"
	"strings"
)

const analystSystem = `You are a compliance analyst reviewing workplace policy and safety documents. Be precise, cite obligations and controls exactly as written, and never invent requirements that are not in the supplied text.`

const chunkSummaryPrompt = `Summarize the following excerpt of a compliance document in 3-5 sentences. Focus on obligations, hazards, controls, responsibilities, and deadlines. Respond with plain text only.

---
%s`

const synthesisPrompt = `Below are partial summaries of consecutive parts of one compliance document. Combine them into a single assessment.

Respond with ONLY a JSON object in this exact shape, no other text:
{"summary": "<4-8 sentence overall summary>", "key_points": ["<short bullet>", ...], "findings": ["<compliance gap or risk worth flagging>", ...]}

Partial summaries:
%s`

const answerPrompt = `Answer the question using ONLY the document excerpts below. If the excerpts do not contain the information needed, reply exactly: "I can't find this in the document."

Question: %s

Excerpts:
%s`

const escalatedAnswerPrompt = `Answer the question using the document excerpts below. Prefer a direct answer grounded in the excerpts. If the excerpts still do not contain the answer, say so and suggest which section of the document is most likely to cover it.

Question: %s

Excerpts:
%s`

const comparePrompt = `Compare the two compliance documents excerpted below.

Respond with ONLY a JSON object in this exact shape, no other text:
{"summary": "<overall comparison in 4-8 sentences>", "differences": ["<material difference>", ...], "gaps": ["<requirement present in one document but missing from the other>", ...]}

Document A (%s):
%s

Document B (%s):
%s`

func buildChunkSummaryPrompt(chunk string) string {
	return fmt.Sprintf(chunkSummaryPrompt, chunk)
}

func buildSynthesisPrompt(partials []string) string {
	var sb strings.Builder
	for i, p := range partials {
		fmt.Fprintf(&sb, "Part %d:\n%s\n\n", i+1, strings.TrimSpace(p))
	}
	return fmt.Sprintf(synthesisPrompt, strings.TrimSpace(sb.String()))
}

func buildAnswerPrompt(question, excerpts string) string {
	return fmt.Sprintf(answerPrompt, question, excerpts)
}

func buildEscalatedAnswerPrompt(question, excerpts string) string {
	return fmt.Sprintf(escalatedAnswerPrompt, question, excerpts)
}

func buildComparePrompt(titleA, textA, titleB, textB string) string {
	return fmt.Sprintf(comparePrompt, titleA, textA, titleB, textB)
}
