package explain

import (
	"strings"

	"github.com/hyperjump/resumatch/pkg/utils"
)

// DefaultMaxResumeChars is how much resume text is sent to the model by default.
const DefaultMaxResumeChars = 4000

// BuildPrompt returns the recruiter prompt for one candidate. The resume is cut to maxChars runes.
func BuildPrompt(candidateText, query string, maxChars int) string {
	var b strings.Builder
	b.WriteString("You are an expert AI Technical Recruiter.\n\n")
	b.WriteString("JOB DESCRIPTION:\n")
	b.WriteString(strings.TrimSpace(query))
	b.WriteString("\n\nCANDIDATE RESUME:\n")
	b.WriteString(utils.TruncateRunes(candidateText, maxChars))
	b.WriteString("\n\nTASK:\n")
	b.WriteString("Based on the resume content, explain in 3 concise bullet points why this candidate is a good match for the job.\n")
	b.WriteString("- Focus on matching hard skills (technologies) and relevant experience.\n")
	b.WriteString("- Do not hallucinate skills not present in the resume.\n")
	return b.String()
}
