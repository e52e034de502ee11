package check

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/okian/vectordraw/internal/domain/geometry"
)

// Fields binds template placeholders to values.
type Fields map[string]any

// VectorFields returns the placeholders available to vector messages.
func VectorFields(v geometry.Vector) Fields {
	return Fields{
		"name":   v.Name,
		"tail_x": v.Tail.X,
		"tail_y": v.Tail.Y,
		"tip_x":  v.Tip.X,
		"tip_y":  v.Tip.Y,
		"length": v.Length,
		"angle":  v.Angle,
	}
}

// PointFields returns the placeholders available to point messages.
func PointFields(name string, p geometry.Point) Fields {
	return Fields{"name": name, "x": p.X, "y": p.Y}
}

// Format renders an author message template. It understands "{field}",
// "{field:spec}" with the str.format mini-language (fill, align, sign,
// zero padding, width, grouping, precision and the f, e, g, d and % types)
// and the "{{" / "}}" escapes. Unknown fields are left in place verbatim.
func Format(template string, fields Fields) string {
	var b strings.Builder
	b.Grow(len(template))
	for i := 0; i < len(template); i++ {
		ch := template[i]
		switch ch {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				b.WriteString(template[i:])
				return b.String()
			}
			field := template[i+1 : i+1+end]
			b.WriteString(renderField(field, fields))
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				i++
			}
			b.WriteByte('}')
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func renderField(field string, fields Fields) string {
	name, spec, _ := strings.Cut(field, ":")
	name, _, _ = strings.Cut(name, "!")
	v, ok := fields[strings.TrimSpace(name)]
	if !ok {
		return "{" + field + "}"
	}
	if spec == "" {
		return plain(v)
	}
	return withSpec(v, spec)
}

func plain(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return shortestRepr(t)
	default:
		return fmt.Sprint(t)
	}
}

// shortestRepr renders the shortest round-trip form of f, keeping a
// decimal point on whole numbers and switching to exponents outside [1e-4, 1e16).
func shortestRepr(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	abs := math.Abs(f)
	if abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// spec is a parsed "[[fill]align][sign][0][width][,|_][.precision][type]".
type spec struct {
	fill  rune
	align byte
	sign  byte
	width int
	group byte
	prec  int
	verb  byte
}

func withSpec(v any, raw string) string {
	sp := parseSpec(raw)
	f, isNum := toFloat(v)
	if !isNum {
		if sp.align == 0 {
			sp.align = '<'
		}
		return pad("", fmt.Sprint(v), sp)
	}
	body := numberBody(math.Abs(f), sp)
	if sp.group != 0 {
		body = groupDigits(body, sp.group)
	}
	sign := ""
	switch {
	case math.Signbit(f) && !math.IsNaN(f):
		sign = "-"
	case sp.sign == '+':
		sign = "+"
	case sp.sign == ' ':
		sign = " "
	}
	if sp.align == 0 {
		sp.align = '>'
	}
	return pad(sign, body, sp)
}

// numberBody renders the unsigned magnitude of a number.
func numberBody(f float64, sp spec) string {
	prec := sp.prec
	switch sp.verb {
	case 'd':
		return strconv.FormatFloat(math.Round(f), 'f', 0, 64)
	case '%':
		if prec < 0 {
			prec = 6
		}
		return strconv.FormatFloat(f*100, 'f', prec, 64) + "%"
	case 0:
		if prec < 0 {
			return shortestRepr(f)
		}
		sp.verb = 'g'
	}
	if prec < 0 {
		prec = 6
	}
	return fmt.Sprintf("%.*"+string(sp.verb), prec, f)
}

// groupDigits separates thousands in the leading run of digits.
func groupDigits(body string, sep byte) string {
	end := 0
	for end < len(body) && body[end] >= '0' && body[end] <= '9' {
		end++
	}
	if end <= 3 {
		return body
	}
	var b strings.Builder
	for i := 0; i < end; i++ {
		if i > 0 && (end-i)%3 == 0 {
			b.WriteByte(sep)
		}
		b.WriteByte(body[i])
	}
	b.WriteString(body[end:])
	return b.String()
}

// pad applies fill and alignment up to the spec width. The '=' alignment
// places the padding between sign and digits.
func pad(sign, body string, sp spec) string {
	n := sp.width - utf8.RuneCountInString(sign) - utf8.RuneCountInString(body)
	if n <= 0 {
		return sign + body
	}
	fill := strings.Repeat(string(sp.fill), n)
	switch sp.align {
	case '<':
		return sign + body + fill
	case '^':
		left := strings.Repeat(string(sp.fill), n/2)
		return left + sign + body + fill[len(left):]
	case '=':
		return sign + fill + body
	default:
		return fill + sign + body
	}
}

func isAlign(c byte) bool {
	return c == '<' || c == '>' || c == '^' || c == '='
}

// parseSpec reads a format spec. A missing precision is reported as -1
// and a missing type as 0.
func parseSpec(raw string) spec {
	sp := spec{fill: ' ', prec: -1}
	i := 0
	if r, size := utf8.DecodeRuneInString(raw); size > 0 && size < len(raw) && isAlign(raw[size]) {
		sp.fill, sp.align = r, raw[size]
		i = size + 1
	} else if len(raw) > 0 && isAlign(raw[0]) {
		sp.align = raw[0]
		i = 1
	}
	if i < len(raw) && (raw[i] == '+' || raw[i] == '-' || raw[i] == ' ') {
		sp.sign = raw[i]
		i++
	}
	if i < len(raw) && raw[i] == '0' {
		if sp.align == 0 {
			sp.fill, sp.align = '0', '='
		}
		i++
	}
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		sp.width = sp.width*10 + int(raw[i]-'0')
		i++
	}
	if i < len(raw) && (raw[i] == ',' || raw[i] == '_') {
		sp.group = raw[i]
		i++
	}
	if i < len(raw) && raw[i] == '.' {
		i++
		sp.prec = 0
		for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
			sp.prec = sp.prec*10 + int(raw[i]-'0')
			i++
		}
	}
	if i < len(raw) {
		switch c := raw[i]; c {
		case 'f', 'F', 'e', 'E', 'g', 'G', 'd', '%':
			sp.verb = c
		}
	}
	return sp
}
