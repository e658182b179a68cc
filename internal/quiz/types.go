package quiz

import "fmt"

// Option is one of the four answer keys.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// Options lists the valid keys in display order.
var Options = []Option{OptionA, OptionB, OptionC, OptionD}

func (o Option) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

type Document struct {
	Title          string     `json:"quiz_title"`
	TotalQuestions int        `json:"total_questions"`
	Questions      []Question `json:"questions"`
}

type Question struct {
	ID          int               `json:"id"`
	Prompt      string            `json:"question"`
	Options     map[Option]string `json:"options"`
	Correct     Option            `json:"correct_answer"`
	Explanation string            `json:"explanation"`
	Difficulty  string            `json:"difficulty"`
}

// SchemaError reports a generation response that does not parse into a
// Document. Raw is the response exactly as received.
type SchemaError struct {
	Raw    string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("quiz schema invalid: %s", e.Reason)
}
