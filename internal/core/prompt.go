package core

import (
	"fmt"
	"strings"
)

const promptFormat = `You are an e-mail triage assistant. Your task is to assign a 'care score' from 0.00 to 100.00 to incoming emails, representing how urgently the recipient needs to personally take action. Here is some context about the recipient's priorities:
%s

The message is from: %s

Based on the context above and the message content below, output a single decimal
number from 0.00 to 100.00 with exactly two digits after the decimal point. It
indicates the probability that the recipient needs to take action or respond.
Do NOT output anything except the number.

----- BEGIN MESSAGE -----
%s
----- END MESSAGE -----
`

// BuildPrompt renders the scoring prompt for one message. Sender and extract
// are substituted verbatim; a message can therefore smuggle text that looks
// like instructions into the prompt. That risk is accepted, not mitigated.
func BuildPrompt(name, instructions, sender, extract string) string {
	var profile strings.Builder
	fmt.Fprintf(&profile, "The recipient is %s.", name)
	if instructions != "" {
		profile.WriteString("\n\n")
		profile.WriteString(instructions)
	}

	return fmt.Sprintf(promptFormat, profile.String(), sender, extract)
}
