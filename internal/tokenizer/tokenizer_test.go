package tokenizer

import "testing"

func TestResolveEncoding(t *testing.T) {
	tok := New()

	tests := []struct {
		model string
		want  string
	}{
		{"gpt-image-1", EncodingO200kBase},
		{"GPT-Image-1", EncodingO200kBase},
		{"gpt-4o-mini", EncodingO200kBase},
		{"gpt-4-turbo", EncodingCL100kBase},
		{"dall-e-3", EncodingCL100kBase},
		{"gemini-2.5-flash-image", EncodingCL100kBase},
		{"sd_xl_base_1.0.safetensors", EncodingCL100kBase},
		{"", EncodingCL100kBase},
	}

	for _, tt := range tests {
		if got := tok.resolveEncoding(tt.model); got != tt.want {
			t.Errorf("resolveEncoding(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestCountTokens(t *testing.T) {
	tok := New()

	count, err := tok.CountTokens("a red bicycle leaning against a brick wall", "gpt-image-1")
	if err != nil {
		// Encoding data may be unavailable in offline environments.
		t.Skipf("encoding unavailable: %v", err)
	}
	if count <= 0 {
		t.Errorf("expected a positive token count, got %d", count)
	}

	empty, err := tok.CountTokens("", "gpt-image-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty != 0 {
		t.Errorf("expected 0 tokens for empty prompt, got %d", empty)
	}
}
