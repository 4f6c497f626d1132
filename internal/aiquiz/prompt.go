package aiquiz

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a quiz generator for an educational web application.

Rules:
1. Write a short, engaging title and a one or two sentence description of the quiz.
2. Every question must have between 3 and 5 answer options.
3. Exactly one answer per question is correct. Mark it with "correct": true and every other answer with "correct": false.
4. Every question has a brief "explanation" of why the correct answer is right. Never reveal the answer in the question text.
5. Distractors must be plausible and similar in length and style to the correct answer.
6. Return pure, valid JSON only, with no text outside the JSON object.

Expected JSON:
{
  "title": "<quiz title>",
  "description": "<short description>",
  "questions": [
    {
      "question": "<question text>",
      "explanation": "<why the correct answer is right>",
      "answers": [
        {"answer": "<option>", "correct": false},
        {"answer": "<option>", "correct": true}
      ]
    }
  ]
}`

// BuildTopicPrompt combines the chosen category and the requested title into
// the topic handed to Generate.
func BuildTopicPrompt(category, title string) string {
	return fmt.Sprintf(`Generate a quiz about "%s" from the topic of "%s".`,
		strings.TrimSpace(title), strings.TrimSpace(category))
}

func buildUserPrompt(topic string) string {
	return fmt.Sprintf(
		"Generate a multiple-choice quiz based on the following topic: \"%s\". "+
			"The quiz should be engaging and informative. Ensure there is only one correct answer per question. "+
			"Format the output as a JSON object that adheres to the provided schema.",
		topic,
	)
}
