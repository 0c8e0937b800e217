// Package protocol defines the structured turn contract produced by the model
// and the validator that repairs raw model output into it.
package protocol

// Status is the completion state of the requirement-gathering flow.
type Status string

const (
	// StatusCollecting means the model is still asking questions.
	StatusCollecting Status = "collecting"
	// StatusDelivered means the final optimized prompt has been produced.
	StatusDelivered Status = "delivered"
)

// UIElementType identifies how a question's options should be rendered.
type UIElementType string

const (
	ElementRadio    UIElementType = "radio"
	ElementCheckbox UIElementType = "checkbox"
	ElementText     UIElementType = "text"
)

// Option markers. Every radio option carries RadioPrefix and every checkbox
// option carries CheckboxPrefix; prefixing is idempotent.
const (
	RadioPrefix    = "( ) "
	CheckboxPrefix = "[ ] "
)

// UIElement describes one input element of the next question.
type UIElement struct {
	Type    UIElementType `json:"type"`
	Options []string      `json:"options"`
}

// StructuredResponse is the validated JSON contract for one assistant turn.
// Assistant turns are persisted as the canonical JSON encoding of this struct.
type StructuredResponse struct {
	Status       Status      `json:"status"`
	QuestionText string      `json:"question_text"`
	UIElements   []UIElement `json:"ui_elements"`
	FinalPrompt  string      `json:"final_prompt"`
}
