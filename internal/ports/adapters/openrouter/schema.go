package openrouter

import (
	"github.com/invopop/jsonschema"

	"github.com/forPelevin/autotube/internal/types"
)

type scriptResponse struct {
	Title       string   `json:"title" jsonschema_description:"Catchy video title under 100 characters"`
	Description string   `json:"description" jsonschema_description:"YouTube description, two or three short paragraphs"`
	Tags        []string `json:"tags" jsonschema_description:"Up to 15 search tags without the # sign"`
	Script      string   `json:"script" jsonschema_description:"Narration text only, ready for text-to-speech"`
}

type keywordsResponse struct {
	Keywords []string `json:"keywords" jsonschema_description:"10-12 short English footage search phrases"`
}

type shortsResponse struct {
	Shorts []types.ShortPick `json:"shorts" jsonschema_description:"Self-contained segments in script order"`
}

type thumbnailResponse struct {
	Prompt string `json:"prompt" jsonschema_description:"Image generation prompt for the thumbnail, no text in the image"`
}

// generateSchema reflects T into an inline strict-mode schema.
func generateSchema[T any]() any {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var (
	scriptResponseSchema    = generateSchema[scriptResponse]()
	keywordsResponseSchema  = generateSchema[keywordsResponse]()
	shortsResponseSchema    = generateSchema[shortsResponse]()
	thumbnailResponseSchema = generateSchema[thumbnailResponse]()
)
