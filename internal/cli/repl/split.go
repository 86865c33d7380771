package repl

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnbalancedQuotes is returned by Split for an unterminated quote.
var ErrUnbalancedQuotes = errors.New("repl: unbalanced quotes")

// Split breaks line into arguments. Arguments are separated by spaces or
// tabs. Double quotes group text and honour the escapes \n \r \t \\ \"
// and \xHH; single quotes group text literally, except \' for a quote.
// A closing quote must be followed by a separator or the end of line.
func Split(line string) ([]string, error) {
	var (
		args []string
		cur  strings.Builder
		in   bool
	)
	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			if in {
				args = append(args, cur.String())
				cur.Reset()
				in = false
			}
			i++
		case c == '"':
			n, err := readDoubleQuoted(line[i+1:], &cur)
			if err != nil {
				return nil, err
			}
			i += n + 1
			if i < len(line) && line[i] != ' ' && line[i] != '\t' {
				return nil, ErrUnbalancedQuotes
			}
			in = true
		case c == '\'':
			n, err := readSingleQuoted(line[i+1:], &cur)
			if err != nil {
				return nil, err
			}
			i += n + 1
			if i < len(line) && line[i] != ' ' && line[i] != '\t' {
				return nil, ErrUnbalancedQuotes
			}
			in = true
		default:
			cur.WriteByte(c)
			in = true
			i++
		}
	}
	if in {
		args = append(args, cur.String())
	}
	return args, nil
}

// readDoubleQuoted consumes s up to and including the closing quote and
// returns the number of bytes consumed.
func readDoubleQuoted(s string, out *strings.Builder) (int, error) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			return i + 1, nil
		case '\\':
			if i+1 >= len(s) {
				return 0, ErrUnbalancedQuotes
			}
			i++
			switch s[i] {
			case 'n':
				out.WriteByte('\n')
			case 'r':
				out.WriteByte('\r')
			case 't':
				out.WriteByte('\t')
			case 'x':
				if i+2 < len(s) {
					if b, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
						out.WriteByte(byte(b))
						i += 2
						continue
					}
				}
				out.WriteByte('x')
			default:
				out.WriteByte(s[i])
			}
		default:
			out.WriteByte(s[i])
		}
	}
	return 0, ErrUnbalancedQuotes
}

func readSingleQuoted(s string, out *strings.Builder) (int, error) {
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\'':
			return i + 1, nil
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '\'':
			out.WriteByte('\'')
			i++
		default:
			out.WriteByte(s[i])
		}
	}
	return 0, ErrUnbalancedQuotes
}
