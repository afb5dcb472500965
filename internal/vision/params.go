package vision

import (
	"fmt"
	"strings"
)

// DefaultQuestion is asked in scholar mode when the client supplies none.
const DefaultQuestion = "Tell me the history and origins of this art form."

type Length string

const (
	LengthShort    Length = "short"
	LengthMedium   Length = "medium"
	LengthDetailed Length = "detailed"
)

type Audience string

const (
	AudienceGeneral  Audience = "general"
	AudienceBuyer    Audience = "buyer"
	AudienceStudent  Audience = "student"
	AudienceChildren Audience = "children"
)

type Tone string

const (
	TonePoetic       Tone = "poetic"
	ToneInformative  Tone = "informative"
	ToneStorytelling Tone = "storytelling"
	ToneAcademic     Tone = "academic"
)

// ParseLength validates a length query value; empty defaults to medium.
func ParseLength(raw string) (Length, error) {
	value := Length(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case "":
		return LengthMedium, nil
	case LengthShort, LengthMedium, LengthDetailed:
		return value, nil
	default:
		return "", fmt.Errorf("length must be one of: short, medium, detailed")
	}
}

// ParseAudience validates an audience query value; empty defaults to general.
func ParseAudience(raw string) (Audience, error) {
	value := Audience(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case "":
		return AudienceGeneral, nil
	case AudienceGeneral, AudienceBuyer, AudienceStudent, AudienceChildren:
		return value, nil
	default:
		return "", fmt.Errorf("audience must be one of: general, buyer, student, children")
	}
}

// ParseTone validates a tone query value; empty defaults to poetic.
func ParseTone(raw string) (Tone, error) {
	value := Tone(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case "":
		return TonePoetic, nil
	case TonePoetic, ToneInformative, ToneStorytelling, ToneAcademic:
		return value, nil
	default:
		return "", fmt.Errorf("tone must be one of: poetic, informative, storytelling, academic")
	}
}

// CreatorParams controls a creator-mode description.
type CreatorParams struct {
	Length   Length
	Audience Audience
	Tone     Tone
}

var audiencePhrases = map[Audience]string{
	AudienceGeneral:  "for the general public",
	AudienceBuyer:    "for an art buyer",
	AudienceStudent:  "for a student or researcher",
	AudienceChildren: "for children aged 8-12",
}

var lengthPhrases = map[Length]string{
	LengthShort:    "2-3 sentences",
	LengthMedium:   "one well-crafted paragraph",
	LengthDetailed: "2-3 rich paragraphs",
}

func creatorPrompt(params CreatorParams) string {
	lengthPhrase := lengthPhrases[params.Length]
	if lengthPhrase == "" {
		lengthPhrase = lengthPhrases[LengthMedium]
	}
	audiencePhrase := audiencePhrases[params.Audience]
	if audiencePhrase == "" {
		audiencePhrase = audiencePhrases[AudienceGeneral]
	}
	tone := params.Tone
	if tone == "" {
		tone = TonePoetic
	}

	return fmt.Sprintf(`You are an expert on Indian tribal and folk art traditions.

Analyze the tribal artwork in the image.

Return ONLY valid JSON with exactly these fields:

{
  "art_name": "Specific name of the artwork",
  "art_style": "Tribal art tradition identified",
  "region": "Indian state or region of origin",
  "english": "A %s description written in a %s tone, %s. Include motifs, cultural significance, symbolism."
}`, lengthPhrase, tone, audiencePhrase)
}

func scholarPrompt(question string) string {
	safeQuestion := strings.ReplaceAll(strings.TrimSpace(question), `"`, "'")
	if safeQuestion == "" {
		safeQuestion = DefaultQuestion
	}

	return fmt.Sprintf(`You are a renowned scholar of Indian tribal art.

Look at this artwork and answer:

"%s"

Return ONLY valid JSON:

{
  "art_name": "Artwork name",
  "art_style": "Art tradition",
  "region": "Region of origin",
  "question": "%s",
  "english": "A scholarly answer in 2-3 detailed paragraphs."
}`, safeQuestion, safeQuestion)
}
