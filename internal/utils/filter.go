package utils

import "unicode"

// IsSeparator checks if a rune is a separator character
func IsSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.' || r == '/'
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContainsSpecialChars checks if a string contains characters outside
// letters, digits and the common separators.
func ContainsSpecialChars(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !IsSeparator(r) {
			return true
		}
	}
	return false
}

// IsRepetitive checks if a string is a single character repeated
// three or more times ("aaa", "wwww").
func IsRepetitive(s string) bool {
	if len(s) <= 2 {
		return false
	}
	first := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != first {
			return false
		}
	}
	return true
}

// IsValidInput checks if input should be processed for completions.
// Numeric-only, special-character and repetitive inputs are not worth
// a trie walk and get rejected up front.
func IsValidInput(s string) bool {
	if len(s) == 0 {
		return false
	}
	if IsOnlyNumbers(s) {
		return false
	}
	if ContainsSpecialChars(s) {
		return false
	}
	return !IsRepetitive(s)
}
