package engine

import "regexp"

// purePunctuation matches the teacher source's punctuation character class
// verbatim (spec.md §4.7, "is_pure_punctuation").
var purePunctuation = regexp.MustCompile(`^[~` + "`" + `!@#$%^&*()\-_+={}\[\]|\\:;"'<,>.?/\n\s]+$`)

// IsPurePunctuation reports whether s contains only punctuation and
// whitespace characters. An empty string counts as pure punctuation.
func IsPurePunctuation(s string) bool {
	if s == "" {
		return true
	}
	return purePunctuation.MatchString(s)
}

// PureBlockLen computes a block's effective length for the min-block-length
// threshold: entries where both sides are blank, or (when containPunc is
// false) both sides are pure punctuation, don't count toward the minimum,
// per spec.md §4.7 ("pure_block_len"). Callers pass the contain-punc option
// matching the block's kind (move or copy).
func PureBlockLen(blockLength, srcStart int, srcLines []string, destStart int, destLines []string, containPunc bool) int {
	pure := blockLength
	for i := 0; i < blockLength; i++ {
		s, d := srcLines[srcStart-1+i], destLines[destStart-1+i]
		switch {
		case s == "" && d == "":
			pure--
		case !containPunc && IsPurePunctuation(s) && IsPurePunctuation(d):
			pure--
		}
	}
	return pure
}
