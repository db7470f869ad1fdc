// Package prompt builds the extraction and ranking prompts sent to the
// completion service. The prompts are the primary control surface of the
// pipeline: output-format rules live here, not in parsing code.
package prompt

import (
	"fmt"
	"strings"

	"github.com/horizon-ai/sowlens/internal/domain"
)

// ContextSeparator joins retrieved chunk texts into one prompt context.
const ContextSeparator = "\n---\n"

// Closed vocabularies embedded verbatim in the status, billing type and
// category prompts.
var (
	StatusValues = []string{
		"In Progress",
		"Completed",
		"On Hold",
		"Not yet started",
		"Experimental",
	}
	BillingTypeValues = []string{
		"Time and Material",
		"Retainer",
		"Fixed Fee",
		"Staff Augmentation",
		"Research Grant",
	}
	CategoryValues = []string{
		"Project",
		"Research",
		"Pilot",
		"Support",
		"Internal Innovation",
	}
)

// Field builds the generic single-value extraction prompt.
func Field(field domain.FieldName, context string) string {
	return fmt.Sprintf(
		"Rules:\n"+
			"- Output ONLY the %[1]s value\n"+
			"- NO explanations, reasoning, or calculations\n"+
			"- If not found, give your best guess\n"+
			"- Be precise and concise\n\n"+
			"EXTRACT ONLY: %[1]s\n\n"+
			"Document excerpt:\n%[2]s\n\n"+
			"YOUR TURN:\n%[1]s:",
		field, context)
}

func closedEnumPrompt(label string, values []string, context string) string {
	var sb strings.Builder
	sb.WriteString("Rules:\n- Output ONLY ONE of the following values:\n")
	for _, v := range values {
		sb.WriteString("  - ")
		sb.WriteString(v)
		sb.WriteString("\n")
	}
	sb.WriteString("- NO explanations, no reasoning\n")
	sb.WriteString("- If not sure, make your best guess\n\n")
	sb.WriteString("Document excerpt:\n")
	sb.WriteString(context)
	sb.WriteString("\n\n")
	sb.WriteString(label)
	sb.WriteString(":")
	return sb.String()
}

// Status builds the closed-enum status prompt.
func Status(context string) string {
	return closedEnumPrompt("Status", StatusValues, context)
}

// BillingType builds the closed-enum billing type prompt.
func BillingType(context string) string {
	return closedEnumPrompt("Billing Type", BillingTypeValues, context)
}

// Client builds the client/customer organization extraction prompt.
func Client(context string) string {
	return fmt.Sprintf(
		"Based on the following document context, identify the CLIENT or CUSTOMER organization.\n\n"+
			"Context:\n%s\n\n"+
			"Instructions:\n"+
			"1. Look for the name of the organization that is receiving the services\n"+
			"2. Return ONLY the organization name, no additional text\n"+
			"3. If multiple organizations are mentioned, return the PRIMARY client/customer\n"+
			"4. If unclear, return the most prominent organization name\n\n"+
			"Client/Customer Name:",
		context)
}

// Technology builds the technology list extraction prompt.
func Technology(context string) string {
	return fmt.Sprintf(
		"Rules:\n"+
			"- Output ONLY a list in this format: ['tech1', 'tech2', 'tech3']\n"+
			"- Include programming languages, databases, cloud platforms, tools etc\n"+
			"- NO explanations or extra text\n"+
			"- If none found, output []\n\n"+
			"EXTRACT: List of technologies, tools, platforms, or frameworks mentioned\n\n"+
			"Document excerpt:\n%s\n\n"+
			"Technologies:",
		context)
}

// Practice builds the practice extraction prompt, hinting with up to ten
// known practices when a vocabulary is configured.
func Practice(context string, validPractices []string) string {
	hint := ""
	if len(validPractices) > 0 {
		sample := validPractices
		if len(sample) > 10 {
			sample = sample[:10]
		}
		hint = fmt.Sprintf("Common practices: %s", strings.Join(sample, ", "))
	}

	return fmt.Sprintf(
		"Rules:\n"+
			"- Output ONLY the main practice/service area\n"+
			"- Examples: Software Development, Artificial Intelligence, Computer Vision, etc.\n"+
			"- NO explanations or extra text\n"+
			"- If not found, output your best guess\n\n"+
			"EXTRACT: Business practice or service area for this project\n\n"+
			"Document excerpt:\n%s\n\n"+
			"%s\n\n"+
			"Practice:",
		context, hint)
}

// Category builds the closed-enum category prompt with taxonomy guidance.
func Category(context string) string {
	return fmt.Sprintf(
		"Rules:\n"+
			"- Output ONLY ONE of the following values:\n"+
			"  - Project\n"+
			"  - Research\n"+
			"  - Pilot\n"+
			"  - Support\n"+
			"  - Internal Innovation\n"+
			"- NO explanations\n"+
			"- NO reasoning text\n"+
			"- NO additional words or punctuation\n"+
			"- Choose the MOST appropriate category based on the document context\n"+
			"- If unclear, make your best guess\n\n"+
			"Category Guidelines:\n"+
			"- Project: Client-facing delivery work, implementation, development, integrations, or defined deliverables\n"+
			"- Research: Experimental work, feasibility studies, model experimentation, benchmarking, or R&D activities\n"+
			"- Pilot: Proof of concept, MVP, limited-scope trial, or validation phase before full rollout\n"+
			"- Support: Ongoing maintenance, monitoring, bug fixes, enhancements, or operational assistance\n"+
			"- Internal Innovation: Internal tools, accelerators, frameworks, or internal initiatives\n\n"+
			"Document excerpt:\n%s\n\n"+
			"Category:",
		context)
}

// StartDate builds the start date prompt. Output format is fixed
// MM/DD/YYYY and the earliest plausible start wins.
func StartDate(context string) string {
	return fmt.Sprintf(
		"Rules:\n"+
			"- Output ONLY the start date in MM/DD/YYYY format\n"+
			"- NO explanations or extra text\n"+
			"- Look for project commencement, kick-off, or beginning dates\n"+
			"- If multiple dates exist, choose the earliest project start date\n"+
			"- If unable to decide, give the most appropriate value based on context\n\n"+
			"EXTRACT ONLY: Project start date in MM/DD/YYYY format\n\n"+
			"Document excerpt:\n%s\n\n"+
			"Start Date:",
		context)
}

// EndDate builds the end date prompt. When the document states a duration
// rather than an explicit end, the model is told to compute it.
func EndDate(context string) string {
	return fmt.Sprintf(
		"Rules:\n"+
			"- Output ONLY the end date in MM/DD/YYYY format\n"+
			"- NO explanations or extra text\n"+
			"- Look for project completion, delivery, or final dates\n"+
			"- If multiple dates exist, choose the final project completion date\n"+
			"- If details about duration are given calculate the end date\n"+
			"- If unable to decide, give the most appropriate value based on context\n\n"+
			"EXTRACT ONLY: Project end date in MM/DD/YYYY format\n\n"+
			"Document excerpt:\n%s\n\n"+
			"End Date:",
		context)
}
