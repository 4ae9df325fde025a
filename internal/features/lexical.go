package features

import (
	"math"
	"strings"
	"unicode"
)

// shannonEntropy computes the Shannon entropy of s over its character
// frequency distribution, in bits per character.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := map[rune]int{}
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}
	entropy := 0.0
	for _, n := range freq {
		p := float64(n) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func countSuspiciousWords(raw string) int {
	lower := strings.ToLower(raw)
	n := 0
	for _, w := range suspiciousWords {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}

// pathDepth counts the non-empty segments of a URL path.
func pathDepth(p string) int {
	depth := 0
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func isConsonant(r rune) bool {
	return r >= 'a' && r <= 'z' && !isVowel(r)
}

// vowelRatio returns vowels / letters for s, or 0 when s contains no Latin
// letters.
func vowelRatio(s string) float64 {
	vowels, letters := 0, 0
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			letters++
			if isVowel(r) {
				vowels++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(vowels) / float64(letters)
}

// consonantRun returns the length of the longest consecutive consonant run.
func consonantRun(s string) int {
	best, cur := 0, 0
	for _, r := range strings.ToLower(s) {
		if isConsonant(r) {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 0
		}
	}
	return best
}

// mixesScripts reports whether s mixes Latin letters with Cyrillic or Greek
// ones. Purely non-Latin hosts are legitimate IDNs; the mix is the attack
// pattern.
func mixesScripts(s string) bool {
	var latin, other bool
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Latin, r):
			latin = true
		case unicode.Is(unicode.Cyrillic, r), unicode.Is(unicode.Greek, r):
			other = true
		}
		if latin && other {
			return true
		}
	}
	return false
}

// vowelRun returns the length of the longest consecutive vowel run.
func vowelRun(s string) int {
	best, cur := 0, 0
	for _, r := range strings.ToLower(s) {
		if isVowel(r) {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 0
		}
	}
	return best
}
