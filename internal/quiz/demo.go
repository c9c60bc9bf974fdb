package quiz

import "fmt"

// DemoTopic is the topic label of the built-in quiz.
const DemoTopic = "NCC Demo Quiz"

// DemoQuestions returns the built-in NCC basics quiz. It needs no model.
func DemoQuestions() []Question {
	return []Question{
		{
			Text: "What does NCC stand for?",
			Options: map[string]string{
				"A": "National Cadet Corps",
				"B": "National Civil Corps",
				"C": "National Combat Corps",
				"D": "National Citizen Corps",
			},
			Answer:      "A",
			Explanation: "NCC stands for National Cadet Corps, a youth development movement in India.",
			Topic:       "NCC Basics",
		},
		{
			Text: "What is the NCC motto?",
			Options: map[string]string{
				"A": "Service Before Self",
				"B": "Unity and Discipline",
				"C": "Duty, Honor, Country",
				"D": "Strength Through Unity",
			},
			Answer:      "B",
			Explanation: "The NCC motto is 'Unity and Discipline', the core values of the organization.",
			Topic:       "NCC Basics",
		},
		{
			Text: "When was NCC established?",
			Options: map[string]string{
				"A": "1947",
				"B": "1948",
				"C": "1950",
				"D": "1952",
			},
			Answer:      "B",
			Explanation: "NCC was established on 15 July 1948 under the NCC Act.",
			Topic:       "NCC History",
		},
		{
			Text: "Which of the following is NOT an NCC wing?",
			Options: map[string]string{
				"A": "Army Wing",
				"B": "Navy Wing",
				"C": "Air Wing",
				"D": "Coast Guard Wing",
			},
			Answer:      "D",
			Explanation: "NCC has three wings: Army, Navy and Air. There is no Coast Guard wing.",
			Topic:       "NCC Organization",
		},
		{
			Text: "What is the duration of the NCC 'B' Certificate camp?",
			Options: map[string]string{
				"A": "7 days",
				"B": "10 days",
				"C": "14 days",
				"D": "21 days",
			},
			Answer:      "B",
			Explanation: "The 'B' Certificate camp runs for 10 days of training activities.",
			Topic:       "NCC Training",
		},
	}
}

// FallbackQuestions returns up to n generic questions about topic. Callers
// must opt in explicitly; Generate never substitutes them on failure.
func FallbackQuestions(topic string, n int) []Question {
	qs := []Question{
		{
			Text: fmt.Sprintf("What is the primary focus of %s in NCC training?", topic),
			Options: map[string]string{
				"A": "Physical fitness only",
				"B": "Theoretical knowledge only",
				"C": "Comprehensive skill development",
				"D": "Memorization of facts",
			},
			Answer:      "C",
			Explanation: "NCC training develops practical and theoretical skills together.",
			Topic:       topic,
		},
		{
			Text: fmt.Sprintf("Which principle is most important when learning %s?", topic),
			Options: map[string]string{
				"A": "Speed over accuracy",
				"B": "Practice and consistency",
				"C": "Individual effort only",
				"D": "Avoiding mistakes",
			},
			Answer:      "B",
			Explanation: "Practice and consistency are fundamental to mastering any NCC skill.",
			Topic:       topic,
		},
	}
	if n < 0 {
		n = 0
	}
	if n < len(qs) {
		qs = qs[:n]
	}
	return qs
}
