package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jchen2215/promptforge/domain"
)

// Parse decodes raw model output into a StructuredResponse.
//
// The raw text is expected to be a JSON object but may be wrapped in prose; if
// a direct parse fails, the span from the first '{' to the last '}' is parsed
// instead. Once an object is in hand, every field is coerced with a safe
// default, so Parse fails only when no JSON object can be extracted at all.
func Parse(raw string) (*StructuredResponse, error) {
	payload, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	resp := &StructuredResponse{
		Status:       StatusCollecting,
		UIElements:   []UIElement{},
		FinalPrompt:  "",
		QuestionText: "",
	}

	if s, ok := payload["status"].(string); ok {
		if st := Status(s); st == StatusCollecting || st == StatusDelivered {
			resp.Status = st
		}
	}
	if q, ok := payload["question_text"].(string); ok {
		resp.QuestionText = q
	}
	if p, ok := payload["final_prompt"].(string); ok {
		resp.FinalPrompt = p
	}
	resp.UIElements = normalizeElements(payload["ui_elements"])

	return resp, nil
}

// decodeObject parses raw as a JSON object, falling back to the first balanced
// looking `{...}` span when the text is wrapped in commentary.
func decodeObject(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("%w: no JSON object in output", domain.ErrInvalidModelOutput)
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &value); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidModelOutput, err)
		}
	}

	payload, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: output is not a JSON object", domain.ErrInvalidModelOutput)
	}
	return payload, nil
}

// normalizeElements repairs the ui_elements payload: entries that are not
// objects or carry an unknown type are dropped, options are coerced to trimmed
// strings, radio/checkbox markers are applied idempotently, and text elements
// always end up with empty options.
func normalizeElements(v any) []UIElement {
	list, ok := v.([]any)
	if !ok {
		return []UIElement{}
	}

	normalized := make([]UIElement, 0, len(list))
	for _, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		elType, _ := obj["type"].(string)
		typ := UIElementType(elType)
		if typ != ElementRadio && typ != ElementCheckbox && typ != ElementText {
			continue
		}

		options := coerceOptions(obj["options"])
		switch typ {
		case ElementRadio:
			for i, opt := range options {
				options[i] = ensurePrefix(opt, RadioPrefix)
			}
		case ElementCheckbox:
			for i, opt := range options {
				options[i] = ensurePrefix(opt, CheckboxPrefix)
			}
		case ElementText:
			options = []string{}
		}

		normalized = append(normalized, UIElement{Type: typ, Options: options})
	}
	return normalized
}

func coerceOptions(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	options := make([]string, 0, len(list))
	for _, opt := range list {
		s, ok := opt.(string)
		if !ok {
			s = fmt.Sprint(opt)
		}
		options = append(options, strings.TrimSpace(s))
	}
	return options
}

func ensurePrefix(s, prefix string) string {
	if strings.HasPrefix(s, prefix) {
		return s
	}
	return prefix + s
}
