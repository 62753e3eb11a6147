package edits

import "strings"

// StripPlaceholders turns snippet text into plain text: `${1:name}` becomes
// `name`, tab stops such as `$1` disappear and `\$` unescapes.
func StripPlaceholders(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && (s[i+1] == '$' || s[i+1] == '}' || s[i+1] == '\\'):
			sb.WriteByte(s[i+1])
			i++
		case c == '$' && i+1 < len(s) && s[i+1] == '{':
			j := i + 2
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			if j < len(s) && s[j] == ':' {
				j++
			}
			depth := 1
			k := j
			for k < len(s) && depth > 0 {
				if s[k] == '{' {
					depth++
				} else if s[k] == '}' {
					depth--
				}
				k++
			}
			end := k - 1
			if depth > 0 {
				end = len(s)
			}
			sb.WriteString(StripPlaceholders(s[j:end]))
			i = k - 1
		case c == '$' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9':
			for i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
				i++
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
