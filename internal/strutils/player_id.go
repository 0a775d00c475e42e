package strutils

import (
	"fmt"
	"strings"
)

const MAX_PLAYER_ID_LENGTH = 64

const validPlayerIDCharacters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"

// Trims surrounding whitespace and checks that the id only uses url-safe characters
//
// Player ids are either guest UUIDs or numeric ids from the chat platform, so
// they are kept case sensitive.
func NormalizePlayerID(playerID string) (string, error) {
	trimmed := strings.TrimSpace(playerID)

	if trimmed == "" {
		return "", fmt.Errorf("player id is empty")
	}
	if len(trimmed) > MAX_PLAYER_ID_LENGTH {
		return "", fmt.Errorf("player id is too long. length: %d", len(trimmed))
	}

	for _, char := range trimmed {
		if !strings.ContainsRune(validPlayerIDCharacters, char) {
			return "", fmt.Errorf("invalid character in player id. input: '%s'", playerID)
		}
	}

	return trimmed, nil
}

func PlayerIDIsNormalized(playerID string) bool {
	normalized, err := NormalizePlayerID(playerID)
	if err != nil {
		return false
	}
	return normalized == playerID
}
