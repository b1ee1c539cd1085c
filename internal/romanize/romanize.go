// Package romanize converts Devanagari text into Romanized Hinglish.
package romanize

import (
	"fmt"
	"strings"
)

// vowels are independent vowel letters.
var vowels = map[rune]string{
	'अ': "a", 'आ': "aa", 'इ': "i", 'ई': "ii", 'उ': "u", 'ऊ': "uu",
	'ऋ': "ri", 'ॠ': "rii", 'ऌ': "li", 'ए': "e", 'ऐ': "ai", 'ओ': "o",
	'औ': "au", 'ऍ': "e", 'ऎ': "e", 'ऑ': "o", 'ऒ': "o",
}

// matras are dependent vowel signs; they replace the inherent 'a' of the
// preceding consonant.
var matras = map[rune]string{
	'ा': "aa", 'ि': "i", 'ी': "ii", 'ु': "u", 'ू': "uu",
	'ृ': "ri", 'ॄ': "rii", 'ॢ': "li", 'े': "e", 'ै': "ai",
	'ो': "o", 'ौ': "au", 'ॉ': "o", 'ॆ': "e", 'ॊ': "o",
}

// consonants map to their Roman form without the inherent vowel.
var consonants = map[rune]string{
	'क': "k", 'ख': "kh", 'ग': "g", 'घ': "gh", 'ङ': "ng",
	'च': "ch", 'छ': "chh", 'ज': "j", 'झ': "jh", 'ञ': "ny",
	'ट': "t", 'ठ': "th", 'ड': "d", 'ढ': "dh", 'ण': "n",
	'त': "t", 'थ': "th", 'द': "d", 'ध': "dh", 'न': "n",
	'प': "p", 'फ': "ph", 'ब': "b", 'भ': "bh", 'म': "m",
	'य': "y", 'र': "r", 'ल': "l", 'व': "v",
	'श': "sh", 'ष': "sh", 'स': "s", 'ह': "h", 'ळ': "l",
	// Precomposed nukta forms (qa, khha, ghha, za, dddha, rha, fa, yya).
	// These codepoints are composition exclusions, so NFC text usually keeps
	// the decomposed base+nukta sequence; that form takes the nukta branch
	// and drops the dot instead.
	'क़': "q", 'ख़': "kh", 'ग़': "g", 'ज़': "z",
	'ड़': "r", 'ढ़': "rh", 'फ़': "f", 'य़': "y",
}

var digits = map[rune]rune{
	'०': '0', '१': '1', '२': '2', '३': '3', '४': '4',
	'५': '5', '६': '6', '७': '7', '८': '8', '९': '9',
}

const (
	virama       = '्' // suppresses the inherent vowel
	anusvara     = 'ं'
	chandrabindu = 'ँ'
	visarga      = 'ः'
	nukta        = '़'
	avagraha     = 'ऽ'
	dandaSingle  = '।'
	dandaDouble  = '॥'
)

// Romanize converts Devanagari text to Romanized Hinglish. On conversion
// failure it degrades to the lowercased input; it never reports an error to
// the caller because downstream query matching tolerates script differences.
func Romanize(text string) string {
	out, err := transliterate(text)
	if err != nil {
		return strings.ToLower(text)
	}
	return strings.ToLower(out)
}

// transliterate walks the rune sequence tracking whether the previous rune was
// a consonant awaiting its vowel. A dependent sign with no consonant to attach
// to is malformed input and returns an error.
func transliterate(text string) (string, error) {
	var b strings.Builder
	pendingVowel := false // previous rune was a consonant without an explicit vowel yet

	flush := func() {
		if pendingVowel {
			b.WriteString("a")
			pendingVowel = false
		}
	}

	for _, r := range text {
		switch {
		case consonants[r] != "":
			flush()
			b.WriteString(consonants[r])
			pendingVowel = true
		case matras[r] != "":
			if !pendingVowel {
				return "", fmt.Errorf("orphan vowel sign %q", r)
			}
			b.WriteString(matras[r])
			pendingVowel = false
		case vowels[r] != "":
			flush()
			b.WriteString(vowels[r])
		case r == virama:
			if !pendingVowel {
				return "", fmt.Errorf("orphan virama")
			}
			pendingVowel = false
		case r == anusvara || r == chandrabindu:
			flush()
			b.WriteString("n")
		case r == visarga:
			flush()
			b.WriteString("h")
		case r == nukta || r == avagraha:
			// modifier with no standalone Roman form
		case r == dandaSingle || r == dandaDouble:
			flush()
			b.WriteString(".")
		case digits[r] != 0:
			flush()
			b.WriteRune(digits[r])
		default:
			flush()
			b.WriteRune(r)
		}
	}
	flush()
	return b.String(), nil
}
