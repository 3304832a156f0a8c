package engine

import (
	"math"
	"strings"
)

// BM25 saturation and length-normalization defaults.
const (
	defaultK1 = 1.5
	defaultB  = 0.75
)

// stopWords are dropped during tokenization. Short functional words only —
// domain terms are never filtered.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "in": true, "is": true, "it": true,
	"its": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "this": true, "to": true, "was": true, "were": true,
	"with": true,
}

// Tokenize splits text into lowercase word terms, stripping punctuation and
// dropping single-character tokens and stop words.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 1 {
			tok := current.String()
			if !stopWords[tok] {
				tokens = append(tokens, tok)
			}
		}
		current.Reset()
	}
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// BM25 is the Okapi lexical ranker. The zero value is unusable; use NewBM25.
type BM25 struct {
	k1 float64
	b  float64
}

// NewBM25 returns a ranker with the stock k1=1.5, b=0.75 parameters.
func NewBM25() BM25 {
	return BM25{k1: defaultK1, b: defaultB}
}

// Scores ranks every document against the query terms. Documents containing
// none of the query terms score exactly 0. An empty query or empty corpus
// yields an empty score set, not an error.
func (r BM25) Scores(query string, docs map[string]string) map[string]float64 {
	queryTerms := Tokenize(query)
	if len(queryTerms) == 0 || len(docs) == 0 {
		return nil
	}

	// Tokenize the corpus once and collect lengths.
	docTerms := make(map[string][]string, len(docs))
	totalLen := 0
	for id, text := range docs {
		toks := Tokenize(text)
		docTerms[id] = toks
		totalLen += len(toks)
	}
	avgLen := float64(totalLen) / float64(len(docs))
	if avgLen == 0 {
		avgLen = 1
	}

	// Document frequency per query term.
	n := float64(len(docs))
	idf := make(map[string]float64, len(queryTerms))
	for _, term := range queryTerms {
		if _, ok := idf[term]; ok {
			continue
		}
		df := 0
		for _, toks := range docTerms {
			for _, t := range toks {
				if t == term {
					df++
					break
				}
			}
		}
		idf[term] = math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
	}

	scores := make(map[string]float64, len(docs))
	for id, toks := range docTerms {
		tf := make(map[string]int, len(toks))
		for _, t := range toks {
			tf[t]++
		}
		docLen := float64(len(toks))

		score := 0.0
		for term, termIDF := range idf {
			f := float64(tf[term])
			if f == 0 {
				continue
			}
			score += termIDF * (f * (r.k1 + 1)) /
				(f + r.k1*(1-r.b+r.b*docLen/avgLen))
		}
		scores[id] = score
	}
	return scores
}
