package agent

import "strings"

const complianceWarning = "\n\n⚠️ [Compliance Warning]: This response may lack specific page citations. Please verify with the RHP."

// EnsureCitation appends a compliance warning when the answer carries no
// citation marker. The check is a plain substring scan for "Page" or
// "Source"; answers that already cite pass through unchanged.
func EnsureCitation(answer string) string {
	if strings.Contains(answer, "Page") || strings.Contains(answer, "Source") {
		return answer
	}
	return answer + complianceWarning
}
