package tarfmt

import "strings"

var simpleEscapes = map[byte]byte{
	'\\': '\\',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'?':  '?',
	'"':  '"',
}

// Unquote decodes the backslash escapes GNU tar uses for names it will not
// print raw: three-digit octal bytes (\303\251) and the C letter escapes.
// Sequences it does not recognize are kept as printed.
func Unquote(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			out = append(out, c)
			continue
		}

		next := s[i+1]
		if b, ok := simpleEscapes[next]; ok {
			out = append(out, b)
			i++
			continue
		}
		if i+3 < len(s) && isOctal(next) && isOctal(s[i+2]) && isOctal(s[i+3]) && next <= '3' {
			out = append(out, (next-'0')<<6|(s[i+2]-'0')<<3|(s[i+3]-'0'))
			i += 3
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}
