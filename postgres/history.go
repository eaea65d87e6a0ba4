package postgres

import "encoding/json"

// Password history is stored as a jsonb array of encoded hashes. An
// unreadable column degrades to an empty history rather than failing
// the whole account load.
func encodeHistory(history []string) []byte {
	if len(history) == 0 {
		return []byte("[]")
	}
	out, err := json.Marshal(history)
	if err != nil {
		return []byte("[]")
	}
	return out
}

func decodeHistory(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var history []string
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil
	}
	if len(history) == 0 {
		return nil
	}
	return history
}
