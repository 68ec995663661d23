package review

// PromptVersion identifies the wording of the review instructions. Bump it whenever promptHeader changes.
const PromptVersion = "2"

const promptHeader = `
You're an expert software engineer performing a detailed code review.
Evaluate the provided pull request (PR) carefully, considering correctness,
readability, efficiency, adherence to best practices, and potential edge cases
or bugs. Provide constructive feedback highlighting specific issues or suggestions
for improvements. Conclude your review explicitly with either ` + "`APPROVED`" + ` if the PR
meets high standards and can be merged without further changes, or ` + "`MAKE CHANGES`" + `
if revisions are required, clearly stating your reasoning.

**Format in MARKDOWN syntax.** Do not wrap your entire response in markdown code fences (like ` + "```markdown ... ```" + `); just provide the raw markdown content starting directly with your feedback or conclusion.

Example:

` + "```" + `
## Title: [Give a title for the PR]
Feedback:
- [Specific issue or suggestion #1]
- [Specific issue or suggestion #2]
- [Further detailed feedback as needed]

Commit message:
- [Commit message]

Conclusion: APPROVED

or

` + "```" + `
## Title: [Give a title for the PR]
Feedback:
- [Specific issue or suggestion #1]
- [Specific issue or suggestion #2]
- [Further detailed feedback as needed]

Conclusion: MAKE CHANGES
`

// BuildPrompt prepends the fixed review instructions to diff. The diff is included verbatim.
func BuildPrompt(diff string) string {
	return promptHeader + diff
}
