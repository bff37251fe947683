package assessor

import (
	"strings"
	"testing"
)

func TestBuildAssessmentPrompt(t *testing.T) {
	req := AssessmentRequest{
		Code:                 "function twoSum() {}",
		TestCases:            `[{"input":"nums = [2,7], target = 9","expectedOutput":"[0,1]"}]`,
		Language:             "JavaScript",
		ChallengeDescription: "Return indices of the two numbers that add up to target.",
	}

	prompt := buildAssessmentPrompt(req)

	for _, want := range []string{req.Code, req.TestCases, req.Language, req.ChallengeDescription, `"willPass"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildGenerationPrompt(t *testing.T) {
	prompt := buildGenerationPrompt("Check if a string is a palindrome.", "Python")

	for _, want := range []string{"palindrome", "Python", `"testCases"`, "edge cases"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
