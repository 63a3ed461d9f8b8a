package openrouter

import (
	"encoding/json"
)

// The image may appear in several places and shapes in an OpenRouter chat
// response. Extraction is an ordered list of strategies, each a pure
// function over the parsed message; the first non-empty match wins:
//
//  1. top-level message.images entries, where each entry is either
//     (a) a bare string, or
//     (b) an object with an image_url/imageUrl/url field whose value is a
//     string or a nested {url: ...} object;
//  2. message.content as an array, scanning for a segment of type
//     "image_url".
var extractors = []func(*chatMessage) string{
	extractFromImages,
	extractFromContent,
}

// extractImageRef runs the strategies in precedence order.
func extractImageRef(msg *chatMessage) string {
	for _, extract := range extractors {
		if ref := extract(msg); ref != "" {
			return ref
		}
	}
	return ""
}

// chatMessage is the assistant message of the first choice. Content is kept
// raw because it may be a plain string or an array of typed segments.
type chatMessage struct {
	Content json.RawMessage   `json:"content"`
	Images  []json.RawMessage `json:"images"`
}

// contentSegment is one entry of an array-shaped message content.
type contentSegment struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL json.RawMessage `json:"image_url,omitempty"`
}

// urlHolder covers the spellings an image reference object may use.
type urlHolder struct {
	ImageURL json.RawMessage `json:"image_url,omitempty"`
	ImageAlt json.RawMessage `json:"imageUrl,omitempty"`
	URL      json.RawMessage `json:"url,omitempty"`
}

// extractFromImages scans the top-level images array.
func extractFromImages(msg *chatMessage) string {
	for _, raw := range msg.Images {
		if ref := imageRef(raw); ref != "" {
			return ref
		}
	}
	return ""
}

// extractFromContent scans an array-shaped content for an image_url segment.
func extractFromContent(msg *chatMessage) string {
	var segments []contentSegment
	if err := json.Unmarshal(msg.Content, &segments); err != nil {
		return ""
	}
	for _, seg := range segments {
		if seg.Type != "image_url" {
			continue
		}
		if ref := urlValue(seg.ImageURL); ref != "" {
			return ref
		}
	}
	return ""
}

// imageRef resolves one images-array entry: a bare string, or an object
// whose image_url/imageUrl/url field holds the reference.
func imageRef(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var holder urlHolder
	if err := json.Unmarshal(raw, &holder); err != nil {
		return ""
	}
	for _, field := range []json.RawMessage{holder.ImageURL, holder.ImageAlt, holder.URL} {
		if ref := urlValue(field); ref != "" {
			return ref
		}
	}
	return ""
}

// urlValue resolves a field that is either a string or a {url: ...} object.
func urlValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var nested struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return nested.URL
	}
	return ""
}
