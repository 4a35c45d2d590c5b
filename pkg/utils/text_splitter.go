package utils

// SplitText splits a long string into chunks of at most 'chunkSize' characters.
// Consecutive chunks share 'overlap' characters to preserve context at
// boundaries. This is a simple character-based splitter; a tokenizer-aware
// splitter would be an upgrade, not a requirement.
func SplitText(text string, chunkSize int, overlap int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}
