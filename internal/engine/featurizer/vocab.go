package featurizer

// vocab assigns dense slot ids to n-grams in first-occurrence order.
type vocab struct {
	tokenToID map[string]int
	idToToken []string
}

func newVocab() *vocab {
	return &vocab{tokenToID: make(map[string]int)}
}

// add returns the id for token, allocating a new one if needed.
func (v *vocab) add(token string) int {
	if id, ok := v.tokenToID[token]; ok {
		return id
	}
	id := len(v.idToToken)
	v.tokenToID[token] = id
	v.idToToken = append(v.idToToken, token)
	return id
}

// lookup returns the id for token.
func (v *vocab) lookup(token string) (int, bool) {
	id, ok := v.tokenToID[token]
	return id, ok
}

// contains reports whether the token is in the vocabulary.
func (v *vocab) contains(token string) bool {
	_, ok := v.tokenToID[token]
	return ok
}

// size returns the number of slots.
func (v *vocab) size() int {
	return len(v.idToToken)
}
