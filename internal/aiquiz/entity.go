package aiquiz

// generatedQuiz is the payload the model is asked to return. Ids are assigned
// after decoding.
type generatedQuiz struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Questions   []generatedQuestion `json:"questions"`
}

type generatedQuestion struct {
	Question    string            `json:"question"`
	Explanation string            `json:"explanation"`
	Answers     []generatedAnswer `json:"answers"`
}

type generatedAnswer struct {
	Answer  string `json:"answer"`
	Correct bool   `json:"correct"`
}
