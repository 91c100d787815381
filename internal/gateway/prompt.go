package gateway

import "fmt"

// BuildMeetingPrompt формирует запрос к модели для анализа расшифровки встречи.
func BuildMeetingPrompt(transcript string) string {
	return fmt.Sprintf(`You are given the transcript of a team meeting (in Arabic or English).

Required:
1. Summarize the main points.
2. Extract the tasks and who is responsible for each.
3. Extract the deadlines.
4. Organize the answer in a clear structure.

Meeting transcript:
"""%s"""
`, transcript)
}
