package judge

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go"

	"mediajudge/pkg/frames"
)

// ErrNoFrames means there is nothing to show the judging model. Raised
// before any network dispatch so a broken extraction never costs a call.
var ErrNoFrames = errors.New("judge: no frames to evaluate")

// Request is an assembled judging payload: one text segment followed by
// one image segment per frame, in sampling order.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Frames       []frames.EncodedFrame
}

// Assemble validates the frame sequence and builds a Request. It is a
// pure transformation with no side effects.
func Assemble(systemPrompt, userPrompt string, fs []frames.EncodedFrame) (*Request, error) {
	if len(fs) == 0 {
		return nil, ErrNoFrames
	}
	return &Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Frames:       fs,
	}, nil
}

// contentParts renders the user message content: the prompt text first,
// then each frame as a self-contained base64 data URL tagged with its
// media type.
func (r *Request) contentParts() []openai.ChatCompletionContentPartUnionParam {
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(r.Frames)+1)
	parts = append(parts, openai.TextContentPart(r.UserPrompt))
	for _, f := range r.Frames {
		dataURL := fmt.Sprintf("data:%s;base64,%s", f.MIMEType, base64.StdEncoding.EncodeToString(f.Data))
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}))
	}
	return parts
}
