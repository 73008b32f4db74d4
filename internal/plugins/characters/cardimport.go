package characters

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Character-card import. Tavern-style cards embed a JSON payload,
// base64-encoded, in a PNG tEXt chunk with the keyword "chara". Several
// dialects exist (Tavern v1/v2, Chub, CAI exports); normalizeCard maps
// them all onto Tavern's own character fields.

// pngSignature is the 8-byte PNG file header.
var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// extractCardPayload walks the PNG chunk list looking for a tEXt chunk
// keyed "chara" and returns its decoded JSON payload. A raw byte scan is
// the fallback for files whose chunk structure is damaged but whose
// payload survived.
func extractCardPayload(png []byte) (map[string]any, error) {
	if len(png) < len(pngSignature)+12 || !bytes.Equal(png[:len(pngSignature)], pngSignature) {
		return nil, fmt.Errorf("not a PNG file")
	}

	pos := len(pngSignature)
	for pos+12 <= len(png) {
		length := int(binary.BigEndian.Uint32(png[pos : pos+4]))
		chunkType := string(png[pos+4 : pos+8])
		dataStart := pos + 8
		dataEnd := dataStart + length
		if dataEnd > len(png) {
			break
		}
		data := png[dataStart:dataEnd]
		pos = dataEnd + 4 // skip CRC

		if chunkType == "tEXt" {
			// tEXt layout: keyword, NUL, text.
			nul := bytes.IndexByte(data, 0)
			if nul > 0 && string(data[:nul]) == "chara" {
				return decodeCardPayload(data[nul+1:])
			}
		}
		if chunkType == "IEND" {
			break
		}
	}

	// Fallback: scan for the keyword anywhere in the file.
	if idx := bytes.Index(png, []byte("chara\x00")); idx != -1 {
		start := idx + 6
		end := start
		for end < len(png) && png[end] != 0 {
			end++
		}
		return decodeCardPayload(png[start:end])
	}

	return nil, fmt.Errorf("no character data found in PNG")
}

// decodeCardPayload base64-decodes and unmarshals an embedded card.
func decodeCardPayload(b64 []byte) (map[string]any, error) {
	raw, err := base64.StdEncoding.DecodeString(string(b64))
	if err != nil {
		return nil, fmt.Errorf("decoding card payload: %w", err)
	}
	var card map[string]any
	if err := json.Unmarshal(raw, &card); err != nil {
		return nil, fmt.Errorf("parsing card payload: %w", err)
	}
	return card, nil
}

// normalizeCard maps a parsed card of any supported dialect onto Tavern
// character fields. V2 cards nest everything under "data"; older formats
// are flat.
func normalizeCard(card map[string]any) CreateRequest {
	d := card
	if nested, ok := card["data"].(map[string]any); ok {
		d = nested
	}

	name := stringField(d, "name")
	if name == "" {
		name = "Imported Character"
	}

	// Short descriptions stay the card blurb; long ones belong in the
	// system prompt instead.
	fullDescription := stringField(d, "description")
	description := truncateRunes(fullDescription, 200)

	var sb strings.Builder
	if p := stringField(d, "personality"); p != "" {
		sb.WriteString(p + "\n\n")
	}
	if description != fullDescription {
		sb.WriteString(fullDescription + "\n\n")
	}
	if s := stringField(d, "scenario"); s != "" {
		sb.WriteString("Scenario: " + s + "\n\n")
	}
	if ex := stringField(d, "mes_example"); ex != "" {
		sb.WriteString("Example dialogue:\n" + ex)
	}
	systemPrompt := strings.TrimSpace(sb.String())
	if systemPrompt == "" {
		systemPrompt = stringField(d, "system_prompt")
	}
	if systemPrompt == "" {
		systemPrompt = stringField(d, "char_persona")
	}

	var greetings []string
	if first := stringField(d, "first_mes"); first != "" {
		greetings = append(greetings, first)
	}
	if alts, ok := d["alternate_greetings"].([]any); ok {
		for _, a := range alts {
			if s, ok := a.(string); ok && s != "" {
				greetings = append(greetings, s)
			}
		}
	}
	if len(greetings) == 0 {
		greetings = []string{"Hello! Nice to see you."}
	}

	tags := stringSlice(d, "tags")
	if tags == nil {
		tags = stringSlice(card, "topics")
	}

	return CreateRequest{
		Name:          name,
		Description:   description,
		SystemPrompt:  systemPrompt,
		FirstMessages: greetings,
		Visibility:    VisibilityPrivate,
		AvatarEmoji:   "🎭",
		Tags:          tags,
	}
}

// stringField reads a string value from a card map, empty when absent or
// not a string.
// truncateRunes cuts s to at most n runes, never mid-sequence. Card
// text is frequently non-ASCII, so byte slicing is not safe here.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// stringSlice reads a []string from a card map, nil when absent.
func stringSlice(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
