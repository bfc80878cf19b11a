package domain

import "strings"

// PersonalInfoEntry is a single user-taught fact. Key is unique and stored
// trimmed and lowercased.
type PersonalInfoEntry struct {
	Key   string
	Value string
}

// NewPersonalInfoEntry normalizes key (trim, lowercase) and value (trim).
func NewPersonalInfoEntry(key, value string) PersonalInfoEntry {
	return PersonalInfoEntry{
		Key:   NormalizeKey(key),
		Value: strings.TrimSpace(value),
	}
}

func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// EntriesToMap flattens entries into the key/value dump shape.
func EntriesToMap(entries []PersonalInfoEntry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out
}

// MatchEntry returns the first entry, in the given order, whose key appears
// in text. Matching is case-insensitive. Empty keys never match.
func MatchEntry(entries []PersonalInfoEntry, text string) (PersonalInfoEntry, bool) {
	text = strings.ToLower(text)
	for _, e := range entries {
		key := strings.ToLower(e.Key)
		if key == "" {
			continue
		}
		if strings.Contains(text, key) {
			return e, true
		}
	}
	return PersonalInfoEntry{}, false
}
