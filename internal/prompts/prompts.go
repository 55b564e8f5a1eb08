// Package prompts holds the instruction text sent to the vision-language
// model. The reply contract is plain text with literal CAPTION and KEYWORDS
// markers; the parser in service depends on this exact shape.
package prompts

import "fmt"

// CaptionSystemPrompt defines the editor role and the reply format.
const CaptionSystemPrompt = `You are a photo desk editor writing wire-service captions.

Rules:
- Write one Associated Press style caption: a single factual sentence in
  present tense describing who or what is pictured, followed by context if it
  is visible in the frame. No speculation, no flowery language.
- Produce 5 to 15 short keywords suitable for a photo archive: subjects,
  locations, actions, and visual qualities. Lowercase unless a proper noun.
- Reply in EXACTLY this format on a single line, nothing else:
CAPTION: <caption text> | KEYWORDS: <keyword>, <keyword>, <keyword>`

// CaptionUserPrompt builds the per-image instruction. When the image already
// carries a caption it is included as context so the model refines rather
// than starting over.
func CaptionUserPrompt(existingCaption string) string {
	base := "Write the caption and keywords for this photo."
	if existingCaption == "" {
		return base
	}
	return fmt.Sprintf("%s The photo's current embedded caption is: %q. Use it as context and correct or extend it where the image supports that.", base, existingCaption)
}
