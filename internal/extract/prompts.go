package extract

import (
	"fmt"
	"strings"
)

// retryPrompt is appended verbatim to the original prompt when the first
// model response fails to parse as JSON.
const retryPrompt = `The previous response was not valid JSON. Please return ONLY valid JSON matching the schema, with no additional text, markdown formatting, or code blocks.`

const promptTemplate = `You are a job posting data extractor. Extract structured information from the job description text below.

RULES:
1. Extract ONLY information explicitly present in the text or hints.
2. Do NOT guess, infer, or hallucinate. If something is not clearly stated, return null or empty array.
3. Return ONLY valid JSON. No markdown, no commentary, no code blocks.
4. Be conservative with confidence scores.

TEXT SOURCE: %s
%s
JOB DESCRIPTION TEXT:
---
%s
---

OUTPUT JSON SCHEMA (follow exactly):
{
  "title": string|null,
  "companyName": string|null,
  "reqId": string|null,
  "jobPostUrl": string|null,
  "applyUrl": string|null,
  "recruiterEmails": string[],
  "location": string|null,
  "workMode": string|null,
  "skills": string[],
  "summary": string|null,
  "confidence": { "<field>": number },
  "sources": { "<field>": "%s"|"inferred"|"user_input" },
  "warnings": string[]
}

CONFIDENCE SCORING:
- 0.9-1.0: Explicitly stated, exact match
- 0.7-0.89: Clearly implied or partially stated
- 0.5-0.69: Reasonable inference with some uncertainty
- Below 0.5: Weak inference, consider returning null instead

SOURCE VALUES:
- "%s": Extracted from the provided text
- "user_input": Taken directly from user hints
- "inferred": Derived from context (use sparingly)

FIELD GUIDELINES:
- title: Job title only, not company name
- companyName: Company/organization name only
- reqId: Requisition/reference ID if mentioned
- jobPostUrl/applyUrl: Only if explicitly in text or hints
- recruiterEmails: Array of valid email addresses found
- location: City/State/Country or "Multiple locations"
- workMode: "Remote", "Hybrid", "Onsite", or null
- skills: Key technical skills and requirements (max 10)
- summary: Brief 1-2 sentence summary of the role
- warnings: Any issues encountered during extraction

Return valid JSON only:`

// BuildPrompt assembles the extraction instruction block. Pure and
// deterministic: the same text, source and hints always produce the same
// prompt.
func BuildPrompt(text string, source Source, hints Hints) string {
	return fmt.Sprintf(promptTemplate, source, hintsSection(hints), text, source, source)
}

func hintsSection(hints Hints) string {
	var lines []string
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, fmt.Sprintf("- %s: %q", label, v))
		}
	}
	add("Title hint", hints.Title)
	add("Company hint", hints.CompanyName)
	add("Requisition ID hint", hints.ReqID)
	add("Recruiter email hint", hints.RecruiterEmail)
	add("Job posting URL", hints.JobPostURL)
	add("Apply URL", hints.ApplyURL)

	if len(lines) == 0 {
		return ""
	}
	return fmt.Sprintf("\nUSER-PROVIDED HINTS (use if they match the text, mark source as \"user_input\"):\n%s\n", strings.Join(lines, "\n"))
}
