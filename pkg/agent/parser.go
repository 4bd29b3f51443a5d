package agent

import (
	"regexp"
	"strings"
)

var codeBlockPattern = regexp.MustCompile("(?s)```(?:python|py)?[ \\t]*\\r?\\n(.*?)```")

// Step is one parsed model reply. Code, when set, must run before Answer
// may be returned; a reply can carry both.
type Step struct {
	Code   string
	Answer string
	Final  bool
}

// ParseStep reads a model reply. A "Final Answer:" line counts only outside
// code fences. A reply with neither code nor a final answer is taken as the
// final answer verbatim.
func ParseStep(reply string) Step {
	var step Step

	if m := codeBlockPattern.FindStringSubmatch(reply); m != nil {
		step.Code = strings.TrimSpace(m[1])
	}

	prose := codeBlockPattern.ReplaceAllString(reply, "")
	if idx := strings.LastIndex(prose, FinalAnswerPrefix); idx >= 0 {
		step.Answer = strings.TrimSpace(prose[idx+len(FinalAnswerPrefix):])
		step.Final = true
		return step
	}

	if step.Code != "" {
		return step
	}
	return Step{Answer: strings.TrimSpace(reply), Final: true}
}
