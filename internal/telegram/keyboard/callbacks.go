package keyboard

import (
	"fmt"
	"strings"
)

// Callback actions
const (
	ActionControl    = "action"
	ActionAssessment = "test"
	ActionAnswer     = "ans"
	ActionDownload   = "dl"
	ActionConfirm    = "confirm"
)

// Values of ActionControl and ActionConfirm
const (
	ValueStart    = "start"
	ValueSkip     = "skip"
	ValueEmail    = "email"
	ValueRestart  = "restart"
	ValueContinue = "continue"
)

// CallbackData represents parsed callback data
type CallbackData struct {
	Action string // "action", "test", "ans", "dl", "confirm"
	Value  string // The parameter
}

// ParseCallback parses callback data string
func ParseCallback(data string) (*CallbackData, error) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid callback format: %s", data)
	}

	return &CallbackData{
		Action: parts[0],
		Value:  parts[1],
	}, nil
}

// EncodeCallback creates callback data string
func EncodeCallback(action, value string) string {
	return fmt.Sprintf("%s:%s", action, value)
}
