package triptych

import (
	"fmt"
	"strings"
)

const generationSystemPrompt = "You are an expert frontend engineer and visual designer. " +
	"Respond with a single self-contained HTML fragment using inline styles. " +
	"Do not include explanations, markdown, or anything outside the fragment."

func artifactPrompt(prompt string, index, count int) string {
	return fmt.Sprintf(
		"Create a visual interpretation of the following idea: %s\n"+
			"Take a distinct creative direction; this is interpretation %d of %d.",
		prompt, index+1, count)
}

func labelPrompt(prompt string, count int) string {
	return fmt.Sprintf(
		"Suggest %d short, evocative style names for distinct visual interpretations of: %s\n"+
			"Respond with a JSON array of %d strings and nothing else.",
		count, prompt, count)
}

func variationPrompt(prompt string) string {
	return fmt.Sprintf(
		"Produce several alternate visual takes on: %s\n"+
			"Stream each take as a separate JSON object of the form "+
			`{"label": "<short style name>", "content": "<html fragment>"}`+
			" with no wrapper array.",
		prompt)
}

// stripCodeFence removes a wrapping markdown code fence from model output.
// Models routinely fence fragments as ```html ... ``` despite instructions.
func stripCodeFence(s string) string {
	out := strings.TrimSpace(s)
	if strings.HasPrefix(out, "```") {
		if idx := strings.IndexByte(out, '\n'); idx >= 0 {
			out = out[idx+1:]
		} else {
			return ""
		}
	}
	out = strings.TrimSpace(out)
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}
