package dsl

import (
	"math"
	"strconv"
	"strings"
)

const (
	errArithOnStrings = "❌ Arithmetic does not work on strings"
	errModuloStrings  = "❌ Modulo does not work on strings"
)

// formatNumber renders a float the way users write them: no exponent, no
// trailing zeros, "5" not "5.000000".
func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// resolveValue maps an operand to a runtime string. Integer literals and the
// special words None, true and false pass through as written; anything else
// is looked up as a variable, falling back to the literal text itself when
// undefined. Quoted operands skip the lookup entirely.
func resolveValue(env map[string]string, raw string) string {
	if isQuoted(raw) {
		return stripQuotes(raw)
	}
	if _, ok := parseInt(raw); ok {
		return raw
	}
	switch raw {
	case "None", "true", "false":
		return raw
	}
	if v, ok := env[raw]; ok {
		return v
	}
	return raw
}

// addValues is numeric addition when both sides parse as numbers, string
// concatenation otherwise. Concatenation keeps the operands exactly as they
// are, whitespace included.
func addValues(left, right string) string {
	lf, lok := parseNumber(left)
	rf, rok := parseNumber(right)
	if lok && rok {
		return formatNumber(lf + rf)
	}
	return left + right
}

// numericOp applies -, * or / to two values. Non-numeric operands produce a
// visible error marker in the output rather than halting the script.
func numericOp(op TokenType, left, right string) string {
	lf, lok := parseNumber(left)
	rf, rok := parseNumber(right)
	if !lok || !rok {
		return errArithOnStrings
	}
	switch op {
	case TokenMinus:
		return formatNumber(lf - rf)
	case TokenStar:
		return formatNumber(lf * rf)
	case TokenSlash:
		if rf == 0 {
			return "NaN"
		}
		return formatNumber(lf / rf)
	}
	return errArithOnStrings
}

// moduloValues is integer-only remainder.
func moduloValues(left, right string) string {
	ln, lok := parseInt(left)
	rn, rok := parseInt(right)
	if !lok || !rok {
		return errModuloStrings
	}
	if rn == 0 {
		return "NaN"
	}
	return strconv.FormatInt(ln%rn, 10)
}

// compareValues evaluates a relational operator. Two numbers compare
// numerically; everything else compares case-insensitively and
// lexicographically.
func compareValues(op TokenType, left, right string) bool {
	lf, lok := parseNumber(left)
	rf, rok := parseNumber(right)
	var cmp int
	if lok && rok {
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	} else {
		cmp = strings.Compare(strings.ToLower(left), strings.ToLower(right))
	}
	switch op {
	case TokenGt:
		return cmp > 0
	case TokenLt:
		return cmp < 0
	case TokenGe:
		return cmp >= 0
	case TokenLe:
		return cmp <= 0
	}
	return false
}

// eqCase is the equality used by == and != in expressions: trimmed and
// case-insensitive.
func eqCase(left, right string) bool {
	return strings.EqualFold(strings.TrimSpace(left), strings.TrimSpace(right))
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
