package quiz

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an NCC (National Cadet Corps) instructor writing practice quizzes for cadets.

Rules:
- Write multiple-choice questions that are accurate and relevant to the NCC syllabus.
- Every question has exactly 4 options labelled A) to D) and exactly one correct answer.
- Options must be plausible but clearly distinguishable.
- Keep explanations short and tied to NCC training.
- Use plain text only. No markdown, no numbering outside the required format.`

// PromptInput describes a quiz request.
type PromptInput struct {
	Topic            string
	Count            int
	Difficulty       Difficulty
	CertificateLevel CertificateLevel
}

// BuildPrompt renders the user prompt for a quiz request. It fails with
// ErrInvalidTopic when the topic is blank after trimming.
func BuildPrompt(in PromptInput) (string, error) {
	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		return "", ErrInvalidTopic
	}
	count := in.Count
	if count < 1 {
		count = 1
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Create exactly %d multiple choice questions about %q in NCC context.\n", count, topic)
	if in.CertificateLevel != "" {
		fmt.Fprintf(&b, "Certificate level: %s\n", in.CertificateLevel)
	}
	if in.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", in.Difficulty)
	}

	b.WriteString("\nFormat each question EXACTLY like this:\n")
	b.WriteString("Q: [Question text here]\n")
	b.WriteString("A) [First option]\n")
	b.WriteString("B) [Second option]\n")
	b.WriteString("C) [Third option]\n")
	b.WriteString("D) [Fourth option]\n")
	b.WriteString("ANSWER: [A/B/C/D]\n")
	b.WriteString("EXPLANATION: [Brief explanation of why this answer is correct]\n")
	b.WriteString("\n---\n\n")

	fmt.Fprintf(&b, "Write all %d questions one after another, separating each with a line containing only ---.\n", count)
	fmt.Fprintf(&b, "Make sure questions cover different aspects of %s and are appropriate for NCC cadets.\n", topic)
	b.WriteString("Each question should be clear and unambiguous.")

	return b.String(), nil
}
