package classifier

import (
	"fmt"
	"strings"
)

const instructions = `You are an intake supervisor for a case assistance service.
Given a user's request, decide which capability workflows apply:

- information_retrieval: gather and summarize facts relevant to the request
  from the user's case materials
- strategy: recommend a course of action for the user's situation
- eligibility: assess whether the user qualifies for a program or benefit
- form_preparation: prepare the forms needed to file or apply

A request may map to several workflows, one workflow, or none at all. Map a
request to a workflow only when the request plainly calls for that capability.
Requests outside the service's scope map to an empty list.`

const examples = `Examples:

Request: "What does my case file say about my prior applications?"
{"workflows": ["information_retrieval"], "confidence": 0.92, "rationale": "The user asks for facts from their own case materials."}

Request: "What should I do next, and do I even qualify?"
{"workflows": ["strategy", "eligibility"], "confidence": 0.85, "rationale": "The user asks for both a recommended course of action and a qualification assessment."}

Request: "What's the weather like tomorrow?"
{"workflows": [], "confidence": 0.95, "rationale": "Weather forecasts are outside the scope of case assistance."}`

const responseSpec = `Respond with a JSON object matching this exact structure:

{
  "workflows": ["<workflow1>", "<workflow2>"],
  "confidence": 0.0,
  "rationale": "<explanation>"
}

Field constraints:
- workflows: Array of applicable workflow identifiers drawn only from the
  list above. Empty array when the request is out of scope.
- confidence: Your certainty in the selection, between 0 and 1.
- rationale: Brief explanation of why these workflows apply.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Never invent workflow identifiers not in the list above`

// BuildPrompt composes the full classification prompt for a query:
// instructions, few-shot examples, output specification, then the request.
func BuildPrompt(query string) string {
	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\n")
	b.WriteString(examples)
	b.WriteString("\n\n")
	b.WriteString(responseSpec)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Request: %q", query)
	return b.String()
}
