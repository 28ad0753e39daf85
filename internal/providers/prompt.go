package providers

import (
	"fmt"
	"strings"
)

// DefaultNegativePrompt captures artefacts we always steer image models away from.
const DefaultNegativePrompt = "low quality, blurry, distorted, washed out, incorrect anatomy, text artefacts, watermark"

// EffectivePrompt returns the caller's prompt verbatim, or derives one from
// the structured creative controls when the prompt is empty. Adapters call
// this so every backend sees the same derived instruction.
func EffectivePrompt(req Request) string {
	if prompt := strings.TrimSpace(req.Prompt); prompt != "" {
		return prompt
	}
	return buildCreativePrompt(req.Creative, req.MediaType)
}

// buildCreativePrompt converts creative controls into a natural language
// instruction tailored for the media type being generated.
func buildCreativePrompt(c Creative, media MediaType) string {
	if c.IsZero() {
		return ""
	}

	var lines []string
	name := strings.TrimSpace(c.ProductName)
	switch media {
	case MediaVideo:
		if name != "" {
			lines = append(lines, fmt.Sprintf("Create a short promotional product video featuring %q.", name))
		} else {
			lines = append(lines, "Create a short promotional product video for the featured product.")
		}
	case MediaAudio:
		if name != "" {
			lines = append(lines, fmt.Sprintf("Narrate a short promotional voice-over for %q.", name))
		} else {
			lines = append(lines, "Narrate a short promotional voice-over for the featured product.")
		}
	default:
		if name != "" {
			lines = append(lines, fmt.Sprintf("Create a premium marketing photograph for %q.", name))
		} else {
			lines = append(lines, "Create a premium marketing photograph for the featured product.")
		}
	}

	if product := strings.TrimSpace(c.ProductType); product != "" {
		lines = append(lines, fmt.Sprintf("Product category: %s.", product))
	}

	var stylistic []string
	if scene := strings.TrimSpace(c.Scene); scene != "" {
		stylistic = append(stylistic, fmt.Sprintf("scene %q", scene))
	}
	if style := strings.TrimSpace(c.Style); style != "" {
		stylistic = append(stylistic, fmt.Sprintf("visual style %q", style))
	}
	if bg := strings.TrimSpace(c.Background); bg != "" {
		stylistic = append(stylistic, fmt.Sprintf("background %q", bg))
	}
	if len(stylistic) > 0 {
		lines = append(lines, "Visual direction: "+strings.Join(stylistic, ", ")+".")
	}

	if notes := strings.TrimSpace(c.Notes); notes != "" {
		lines = append(lines, fmt.Sprintf("Creative guidance: %s.", notes))
	}

	return strings.Join(lines, "\n")
}
