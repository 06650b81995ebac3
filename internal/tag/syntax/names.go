package syntax

// IsAllowedName reports whether name is a valid unquoted identifier
// for a column or table.
func IsAllowedName(name string) bool {
	if name == "" {
		return false
	}
	for i, ch := range name {
		if i == 0 && isDigit(ch) {
			return false
		}
		if !isAllowedNameChar(ch) {
			return false
		}
	}
	return true
}

func isAllowedNameChar(ch rune) bool {
	return ch >= 'a' && ch <= 'z' ||
		ch >= 'A' && ch <= 'Z' ||
		ch >= '0' && ch <= '9' ||
		ch == '_' || ch == '@' || ch == '#'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
