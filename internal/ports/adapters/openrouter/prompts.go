package openrouter

import (
	"fmt"
	"strings"
)

const (
	scriptSystemPrompt  = "You are an expert technology content creator and science communicator. Return only JSON matching the schema."
	keywordSystemPrompt = "You are a stock footage search expert. Return only JSON matching the schema."
	shortsSystemPrompt  = "You are a YouTube Shorts editor. Return only JSON matching the schema."
	thumbSystemPrompt   = "You are an expert thumbnail designer for tech YouTube channels. Return only JSON matching the schema."

	keywordScriptChars   = 1500
	thumbnailScriptChars = 1000
)

func buildScriptPrompt(topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "one cutting-edge technology topic of your choice (AI, quantum computing, robotics, space, virtual reality)"
	}
	return fmt.Sprintf(`Write a 6-8 minute YouTube narration script (1,200-1,500 words) about %s.

Script requirements:
- Open with a shocking fact or provocative question in the first 15 seconds.
- Introduction, then 3-4 key points with explanations, then a one minute conclusion.
- Enthusiastic but informative tone, address the viewer as "you".
- Include surprising statistics and vivid future scenarios.
- End with a call to comment and subscribe.
- Plain conversational English: no markdown, no headings, no stage directions.

Also provide a title, a description and tags for the upload.`, topic)
}

func buildKeywordPrompt(script string) string {
	r := []rune(script)
	if len(r) > keywordScriptChars {
		r = r[:keywordScriptChars]
	}
	return fmt.Sprintf(`Extract 10-12 short English keywords from this script for finding B-roll footage on a stock video site.

Rules:
- Real, filmable, cinematic scenes (labs, data centers, cities, robots, people working).
- No cartoons, toys or abstract concepts.
- Use diverse keywords so the footage does not repeat.

Script:
%s`, string(r))
}

func buildShortsPrompt(script string, n int, minSec, maxSec float64) string {
	if minSec <= 0 {
		minSec = 30
	}
	if maxSec < minSec {
		maxSec = 60
	}
	return fmt.Sprintf(`Identify %d compelling %.0f-%.0f second segments from this script for YouTube Shorts.

Each segment must:
- Be self-contained and work without context.
- Open with a hook (surprising fact or question) and carry one valuable insight.

For each segment give:
- id: 1-based position
- start_text: the first 3-5 words of the segment, copied exactly from the script
- end_text: the last 3-5 words of the segment, copied exactly from the script
- title: an engaging 5-7 word hook title
- word_count: estimated number of words

Full script:
%s`, n, minSec, maxSec, script)
}

func buildThumbnailPrompt(title, script string) string {
	r := []rune(script)
	if len(r) > thumbnailScriptChars {
		r = r[:thumbnailScriptChars]
	}
	return fmt.Sprintf(`Write an image generation prompt for the YouTube thumbnail of this video.

The thumbnail must:
- Show futuristic technology (AI, robots, holograms, digital interfaces) tied to the topic.
- Use bold neon colors (blue, purple, cyan) on a dark background.
- Look cinematic and professional, eye-catching at small sizes.
- Contain NO text, letters or logos.

Title: %s

Script excerpt:
%s`, strings.TrimSpace(title), string(r))
}
