// Package gibberish implements a character bigram model for telling
// random-looking strings apart from natural language. The secret detection
// filter chain uses it to drop candidates that read like real words.
package gibberish

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
)

// alphabet is the character set the model scores over. Characters outside
// the set are dropped before scoring.
const alphabet = "abcdefghijklmnopqrstuvwxyz "

// DefaultLimit is the surprise threshold, in bits per transition, above
// which a string is considered gibberish.
const DefaultLimit = 3.7

// Model holds bigram transition probabilities learned from a text corpus.
// The zero value is unusable; construct one with Train or decode a
// serialized artifact into it.
type Model struct {
	logProbs [][]float64
}

// Train builds a model from a corpus of natural language text. Transition
// counts start at one so unseen pairs keep a small nonzero probability.
func Train(r io.Reader) (*Model, error) {
	n := len(alphabet)
	counts := make([][]float64, n)
	for i := range counts {
		counts[i] = make([]float64, n)
		for j := range counts[i] {
			counts[i][j] = 1
		}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		idx := normalize(scanner.Text())
		for i := 0; i+1 < len(idx); i++ {
			counts[idx[i]][idx[i+1]]++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}

	for i := range counts {
		var total float64
		for _, c := range counts[i] {
			total += c
		}
		for j := range counts[i] {
			counts[i][j] = math.Log2(counts[i][j] / total)
		}
	}

	return &Model{logProbs: counts}, nil
}

// Surprise returns the average negative log2 transition probability of s,
// in bits per transition. Natural language scores low, random character
// runs score high. Scoring is case insensitive and only considers
// in-alphabet characters; strings with fewer than two of them score zero.
func (m *Model) Surprise(s string) float64 {
	idx := normalize(s)
	if len(idx) < 2 {
		return 0
	}

	var total float64
	for i := 0; i+1 < len(idx); i++ {
		total += m.logProbs[idx[i]][idx[i+1]]
	}
	return -total / float64(len(idx)-1)
}

// normalize lowercases s and maps it to alphabet indices, dropping
// characters outside the alphabet.
func normalize(s string) []int {
	idx := make([]int, 0, len(s))
	for _, r := range strings.ToLower(s) {
		if i := strings.IndexRune(alphabet, r); i >= 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

type modelJSON struct {
	Alphabet string      `json:"alphabet"`
	LogProbs [][]float64 `json:"log_probs"`
}

// MarshalJSON serializes the model artifact.
func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(modelJSON{Alphabet: alphabet, LogProbs: m.logProbs})
}

// UnmarshalJSON decodes a model artifact, rejecting artifacts trained over
// a different alphabet.
func (m *Model) UnmarshalJSON(data []byte) error {
	var raw modelJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding gibberish model: %w", err)
	}
	if raw.Alphabet != alphabet {
		return fmt.Errorf("gibberish model alphabet mismatch: got %q, want %q", raw.Alphabet, alphabet)
	}
	if len(raw.LogProbs) != len(alphabet) {
		return fmt.Errorf("gibberish model has %d rows, want %d", len(raw.LogProbs), len(alphabet))
	}
	for i, row := range raw.LogProbs {
		if len(row) != len(alphabet) {
			return fmt.Errorf("gibberish model row %d has %d columns, want %d", i, len(row), len(alphabet))
		}
	}

	m.logProbs = raw.LogProbs
	return nil
}
