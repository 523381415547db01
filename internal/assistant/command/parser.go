package command

// Parse composes classification and entity extraction into one structured
// command. It is deterministic and never fails; unclassifiable input comes
// back as IntentUnknown with confidence 0 and whatever entities were found.
func Parse(text string) *ParsedCommand {
	intent, confidence := Classify(text)

	return &ParsedCommand{
		Type:       intent,
		Confidence: confidence,
		Entities:   ExtractEntities(text),
		RawText:    text,
	}
}
