package dsl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reLoopTimes   = regexp.MustCompile(`(?i)\b(\d+)\s*times?\b`)
	reLoopOnce    = regexp.MustCompile(`(?i)\b(once|twice|thrice)\b`)
	reLoopWordNum = regexp.MustCompile(`(?i)\b(one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)\s+times?\b`)
	reLoopRunN    = regexp.MustCompile(`(?i)^run\s+\d+\s+times:\s*(.+)$`)
	reLoopCountAt = regexp.MustCompile(`(?i)\b(?:\d+\s*times?\b|\d+\s*x\b|once\b|twice\b|thrice\b|(?:one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)\s+times?\b)`)
	rePolite      = regexp.MustCompile(`(?i)^(?:please|kindly)\s+`)
	reLoopWord    = regexp.MustCompile(`(?i)^loop\s*:?\s*`)
	reRepeatRun   = regexp.MustCompile(`(?i)^(?:repeat|run)\s+`)
	reSpeakVerb   = regexp.MustCompile(`(?i)^(?:show|say|print|output|echo|display|announce|present|reveal)\s+`)
	rePhrase      = regexp.MustCompile(`(?i)^the\s+phrase\s+`)

	reOtherwise  = regexp.MustCompile(`(?i)\botherwise\b`)
	reBranchElse = regexp.MustCompile(`(?is)^(?P<head>.+?)(?:,?\s*else\s*(?:say|print|output)?\s+(?P<else>.+))?$`)
	reBranchPart = regexp.MustCompile(`(?is)^(?P<cond>.+?)\s*(?:,|:)?\s*(?:say|print|output)\s+(?P<msg>.+?)\s*$`)
	reElifSplit  = regexp.MustCompile(`(?i),?\s*elif\s+`)
	reIfPrefix   = regexp.MustCompile(`(?i)^if\s+`)
	reBranchFull = regexp.MustCompile(`(?i)^if\s+(?P<c1>.+?)\s*(?:,|:)?\s*(?:say|print|output)\s+(?P<m1>.+?)\s*(?:,?\s*elif\s+(?P<c2>.+?)\s*(?:say|print|output)\s+(?P<m2>.+?))?\s*(?:,?\s*else\s*(?:say|print|output)?\s*(?P<e>.+))?$`)
	reBranchBare = regexp.MustCompile(`(?i)^if\s+(.+?)\s*(?:,|:)?\s+(.+?)\s*(?:else\s+(.+))?$`)
	reCondRHS    = regexp.MustCompile(`(==|!=|>=|<=|>|<)\s*([A-Za-z_]\w*)`)

	reFormatComma = regexp.MustCompile(`(?i)^format\s+(.+?)\s+and\s+(.+?)\s+with\s+a\s+comma\s*[.!?…]*\s*$`)
	reSayNumber   = regexp.MustCompile(`(?i)^say\s+the\s+number\s+(\d+)\b`)
	reValueOf     = regexp.MustCompile(`(?i)\bvalue\s+of\s+([A-Za-z_]\w*)\b`)
	reVarValue    = regexp.MustCompile(`(?i)\bthe\s+([A-Za-z_]\w*)\s+value\b`)
	reDisplayVar  = regexp.MustCompile(`(?i)^(?:display|show)\s+([A-Za-z_]\w*)\s*$`)
	reCommentSays = regexp.MustCompile(`(?i)\bcomment\b\s+(?:that\s+says\s+|says\s+)?(.+)`)
	reWriteCmnt   = regexp.MustCompile(`(?i)\bwrite a comment\b\s+(?:that\s+says\s+|says\s+)?(.+)`)
	reUsingMarker = regexp.MustCompile(`(?i)(?:using\s+//|using\s+#).*$`)
	rePrintTail   = regexp.MustCompile(`(?i)\b(?:and\s+)?(?:print|say|output|echo)\s+(.+)$`)

	reQuoted     = regexp.MustCompile(`'([^']+)'|"([^"]+)"`)
	reIntoVar    = regexp.MustCompile(`(?i)\b(?:into|to)\s+([A-Za-z_]\w*)`)
	reConcatPair = regexp.MustCompile(`(?is)^\s*concatenate\s+([A-Za-z_]\w*)\s+(?:and\s+)?([A-Za-z_]\w*).*store\s+in\s+([A-Za-z_]\w*)`)

	reCalcTimes = regexp.MustCompile(`(?i)calculate\s*\(+\s*([^)]+?)\s*\)+\s*\*\s*(\d+)\s*and\s*store\s*in\s+([A-Za-z_]\w*)`)
	reSubFrom   = regexp.MustCompile(`(?i)subtract\s+([A-Za-z_]\w*)\s+from\s+([A-Za-z_]\w*)`)
	reDivideBy  = regexp.MustCompile(`(?i)divide\s+by\s+(\d+)`)
	reStoreIn   = regexp.MustCompile(`(?i)store\s+in\s+([A-Za-z_]\w*)`)
	reSubDiv    = regexp.MustCompile(`(?i)subtract\s+(\w+)\s+from\s+(\w+).+divide\s+by\s+(\d+)`)

	reRoleFlagIs = regexp.MustCompile(`(?i)\b(?:is|=)\s+([A-Za-z_]\w*)`)

	reSetTo      = regexp.MustCompile(`(?i)set\s+([A-Za-z_]\w*)\s+(?:to|=)\s+(.+)`)
	reCreateVar  = regexp.MustCompile(`(?i)create\s+variable\s+([A-Za-z_]\w*)\s*(?:=)?\s*(.+)`)
	reStoreXIn   = regexp.MustCompile(`(?i)store\s+(.+?)\s+in\s+([A-Za-z_]\w*)`)
	reAssignAny  = regexp.MustCompile(`(?i)(?:set|create|store)\s+([A-Za-z_]\w*)\s*(?:=|to)?\s*(.+)`)
	reAndAssign  = regexp.MustCompile(`(?i)\band\s+([A-Za-z_]\w*)\s*=\s*(.+?)(?:,?\s*(?:then|and)\s+(?:print|output|echo|say)\b|$)`)
	reTrailAnd   = regexp.MustCompile(`(?i)\s+and\s+[A-Za-z_]\w*\s*=`)
	rePower      = regexp.MustCompile(`(?i)^(?P<base>.+?)\s*\*\*\s*(?P<exp>\d+)\s*$`)
	reTailLitVar = regexp.MustCompile(`(?i)^['"](.+?)['"]\s*\+\s*([A-Za-z_]\w*)`)
)

var wordNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

func loopCountFromPrompt(prompt string) (int, bool) {
	p := stripWrappingQuotes(prompt)

	if c := reLoopTimes.FindStringSubmatch(p); c != nil {
		n, err := strconv.Atoi(c[1])
		return n, err == nil
	}
	if c := reCountX.FindStringSubmatch(p); c != nil {
		n, err := strconv.Atoi(c[1])
		return n, err == nil
	}
	if c := reLoopOnce.FindStringSubmatch(p); c != nil {
		switch strings.ToLower(c[1]) {
		case "once":
			return 1, true
		case "twice":
			return 2, true
		case "thrice":
			return 3, true
		}
	}
	if c := reLoopWordNum.FindStringSubmatch(p); c != nil {
		if n, ok := wordNumbers[strings.ToLower(c[1])]; ok {
			return n, true
		}
	}
	return 0, false
}

// loopMessageFromPrompt extracts the text a loop should repeat: quoted text
// wins, then a "run N times: msg" tail, then whatever precedes the count
// with leading verbs stripped.
func loopMessageFromPrompt(prompt string) string {
	p := stripWrappingQuotes(prompt)

	if q, ok := firstQuoted(p); ok {
		if msg := sanitizeText(q); msg != "" {
			return msg
		}
	}

	if c := reLoopRunN.FindStringSubmatch(strings.TrimSpace(p)); c != nil {
		msg := strings.TrimSpace(c[1])
		msg = regexp.MustCompile(`(?i)^(?:reveal|present|show|say|print|output|echo|display|announce)\s+`).ReplaceAllString(msg, "")
		if msg = sanitizeText(msg); msg != "" {
			return msg
		}
	}

	head := strings.TrimSpace(p)
	if m := reLoopCountAt.FindStringIndex(p); m != nil {
		head = strings.TrimSpace(p[:m[0]])
	}
	head = rePolite.ReplaceAllString(head, "")
	head = reLoopWord.ReplaceAllString(head, "")
	head = reRepeatRun.ReplaceAllString(head, "")
	head = reSpeakVerb.ReplaceAllString(head, "")
	head = rePhrase.ReplaceAllString(head, "")

	head = sanitizeText(strings.Trim(strings.TrimSpace(head), ":,"))
	if head != "" {
		return head
	}
	return sanitizeText(p)
}

func buildLoopDSL(prompt string) string {
	p := stripWrappingQuotes(prompt)
	msg := loopMessageFromPrompt(p)
	times, ok := loopCountFromPrompt(p)
	if !ok {
		times = 1
	}
	if times < 1 {
		times = 1
	} else if times > 12 {
		times = 12
	}
	lines := make([]string, times)
	for i := range lines {
		lines[i] = fmt.Sprintf("neuro %q", msg)
	}
	return strings.Join(lines, "\n")
}

func buildBranchDSL(prompt string) string {
	p := stripWrappingQuotes(prompt)
	p = reOtherwise.ReplaceAllString(p, "else")

	if c := reBranchElse.FindStringSubmatch(strings.TrimSpace(p)); c != nil {
		head := strings.TrimSpace(c[1])
		elseMsg := c[2]

		if strings.HasPrefix(strings.TrimLeft(strings.ToLower(head), " "), "if ") {
			head = reIfPrefix.ReplaceAllString(head, "")
			parts := reElifSplit.Split(strings.TrimSpace(head), -1)

			type branch struct{ cond, msg string }
			var branches []branch
			ok := true
			for _, part := range parts {
				part = strings.TrimRight(strings.TrimSpace(part), ",")
				if part == "" {
					continue
				}
				pc := reBranchPart.FindStringSubmatch(part)
				if pc == nil {
					ok = false
					break
				}
				branches = append(branches, branch{
					cond: normalizeCondition(pc[1]),
					msg:  sanitizeText(pc[2]),
				})
			}

			if ok && len(branches) > 0 {
				var lines []string
				for i, b := range branches {
					kw := "elif"
					if i == 0 {
						kw = "if"
					}
					lines = append(lines, fmt.Sprintf("%s %s:", kw, b.cond))
					lines = append(lines, fmt.Sprintf("    neuro %q", b.msg))
				}
				if elseMsg != "" {
					lines = append(lines, "else:")
					lines = append(lines, fmt.Sprintf("    neuro %q", sanitizeText(elseMsg)))
				}
				return strings.Join(lines, "\n")
			}
		}
	}

	if c := reBranchFull.FindStringSubmatch(p); c != nil {
		lines := []string{
			fmt.Sprintf("if %s:", normalizeCondition(c[1])),
			fmt.Sprintf("    neuro %q", sanitizeText(c[2])),
		}
		if c[3] != "" {
			lines = append(lines, fmt.Sprintf("elif %s:", normalizeCondition(c[3])))
			lines = append(lines, fmt.Sprintf("    neuro %q", sanitizeText(c[4])))
		}
		if c[5] != "" {
			lines = append(lines, "else:")
			lines = append(lines, fmt.Sprintf("    neuro %q", sanitizeText(c[5])))
		}
		return strings.Join(lines, "\n")
	}

	if c := reBranchBare.FindStringSubmatch(p); c != nil {
		lines := []string{
			fmt.Sprintf("if %s:", normalizeCondition(c[1])),
			fmt.Sprintf("    neuro %q", sanitizeText(c[2])),
		}
		if c[3] != "" {
			lines = append(lines, "else:")
			lines = append(lines, fmt.Sprintf("    neuro %q", sanitizeText(c[3])))
		}
		return strings.Join(lines, "\n")
	}

	return fmt.Sprintf("neuro %q", strings.TrimSpace(p))
}

func buildArithDSL(prompt string) string {
	p := stripWrappingQuotes(prompt)

	if c := reCalcTimes.FindStringSubmatch(p); c != nil {
		return fmt.Sprintf("set %s = (%s) * %s", c[3], c[1], c[2])
	}

	lower := strings.ToLower(p)
	if strings.Contains(lower, "subtract") && strings.Contains(lower, "store in") {
		if c := reSubFrom.FindStringSubmatch(p); c != nil {
			subtrahend, minuend := c[1], c[2]
			div := "1"
			if d := reDivideBy.FindStringSubmatch(p); d != nil {
				div = d[1]
			}
			target := "result"
			if s := reStoreIn.FindStringSubmatch(p); s != nil {
				target = s[1]
			}
			rhs := fmt.Sprintf("%s - %s", minuend, subtrahend)
			if div != "1" {
				rhs = fmt.Sprintf("(%s - %s) / %s", minuend, subtrahend, div)
			}
			return fmt.Sprintf("set %s = %s", target, rhs)
		}
	}

	if v, expr, doPrint, ok := parseVarExpr(p); ok {
		rhs := normalizeExpr(expr)
		lines := []string{fmt.Sprintf("set %s = %s", v, rhs)}
		if doPrint {
			pe, ok := findPrintTail(p, v)
			if !ok {
				pe = v
			}
			lines = append(lines, "set tmpPrint = "+pe, "neuro tmpPrint")
		}
		return strings.Join(lines, "\n")
	}

	if c := reSubDiv.FindStringSubmatch(p); c != nil {
		lines := []string{fmt.Sprintf("set result = (%s - %s) / %s", c[2], c[1], c[3])}
		if mentionsPrint(p) {
			lines = append(lines, "neuro result")
		}
		return strings.Join(lines, "\n")
	}

	return buildSetVarDSL(p)
}

func buildConcatDSL(prompt string) string {
	p := stripWrappingQuotes(prompt)
	quoted := allQuoted(p)
	target := "result"
	if c := reIntoVar.FindStringSubmatch(p); c != nil {
		target = c[1]
	}

	if c := reConcatPair.FindStringSubmatch(p); c != nil {
		lines := []string{fmt.Sprintf("set %s = %s + %s", c[3], c[1], c[2])}
		if mentionsPrint(p) || strings.Contains(strings.ToLower(p), "print") {
			lines = append(lines, "neuro "+c[3])
		}
		return strings.Join(lines, "\n")
	}

	if len(quoted) >= 2 {
		lines := []string{fmt.Sprintf(`set %s = "%s" + "%s"`, target, quoted[0], quoted[1])}
		if mentionsPrint(p) || strings.Contains(strings.ToLower(p), "print") {
			lines = append(lines, "neuro "+target)
		}
		return strings.Join(lines, "\n")
	}
	if len(quoted) == 1 {
		lines := []string{fmt.Sprintf("set %s = %q", target, quoted[0])}
		if mentionsPrint(p) {
			lines = append(lines, "neuro "+target)
		}
		return strings.Join(lines, "\n")
	}

	return buildSetVarDSL(p)
}

func buildRoleFlagDSL(prompt string) string {
	p := stripWrappingQuotes(prompt)
	name := "flag"
	if strings.Contains(strings.ToLower(p), "role") {
		name = "role"
	}
	val := "true"
	if q, ok := firstQuoted(p); ok {
		val = q
	} else if c := reRoleFlagIs.FindStringSubmatch(p); c != nil {
		val = c[1]
	}
	lines := []string{fmt.Sprintf("set %s = %s", name, parseRHS(val))}
	if mentionsPrint(p) {
		lines = append(lines, "neuro "+name)
	}
	return strings.Join(lines, "\n")
}

func buildDocPrintDSL(prompt string) string {
	p := stripWrappingQuotes(prompt)
	plow := strings.ToLower(p)

	if strings.HasPrefix(strings.TrimLeft(plow, " "), "format ") && strings.Contains(plow, "comma") {
		if c := reFormatComma.FindStringSubmatch(p); c != nil {
			a, b := sanitizeText(c[1]), sanitizeText(c[2])
			if a != "" && b != "" {
				return fmt.Sprintf("neuro %q", a+", "+b)
			}
		}
	}

	if c := reSayNumber.FindStringSubmatch(p); c != nil {
		return fmt.Sprintf("neuro %q", c[1])
	}

	if c := reValueOf.FindStringSubmatch(p); c != nil {
		return "neuro " + c[1]
	}
	if c := reVarValue.FindStringSubmatch(p); c != nil {
		return "neuro " + c[1]
	}
	if c := reDisplayVar.FindStringSubmatch(p); c != nil {
		return "neuro " + c[1]
	}

	var commentLine string
	if isCommentInstruction(plow) {
		raw, ok := firstQuoted(p)
		if !ok {
			if c := reCommentSays.FindStringSubmatch(p); c != nil {
				raw, ok = c[1], true
			}
		}
		if !ok {
			if c := reWriteCmnt.FindStringSubmatch(p); c != nil {
				raw, ok = c[1], true
			}
		}
		if ok {
			msg := stripWrappingQuotes(raw)
			msg = strings.TrimSpace(reUsingMarker.ReplaceAllString(msg, ""))
			msg = strings.TrimSpace(strings.TrimPrefix(msg, "//"))
			msg = strings.TrimSpace(strings.TrimPrefix(msg, "#"))
			if msg != "" {
				commentLine = "// " + msg
			}
		}
	}

	var printMsg string
	if c := rePrintTail.FindStringSubmatch(p); c != nil {
		printMsg = sanitizeText(c[1])
	}

	var lines []string
	if commentLine != "" {
		lines = append(lines, commentLine)
	} else if strings.Contains(plow, "main starts here") {
		lines = append(lines, "// main starts here")
	}
	if printMsg != "" {
		if isIdentWord(printMsg) {
			lines = append(lines, "neuro "+printMsg)
		} else {
			lines = append(lines, neuroLine(printMsg))
		}
	}
	if len(lines) > 0 {
		return strings.Join(lines, "\n")
	}

	return neuroLine(p)
}

func buildSetVarDSL(prompt string) string {
	p := stripWrappingQuotes(prompt)
	plow := strings.ToLower(p)

	if isCommentInstruction(plow) && !hasAssignmentWord(plow) {
		if strings.Contains(plow, "main starts here") {
			return "// main starts here"
		}
		return buildDocPrintDSL(p)
	}

	if v, expr, doPrint, ok := parseVarExpr(p); ok {
		rhs := normalizeExpr(expr)
		lines := []string{fmt.Sprintf("set %s = %s", v, rhs)}

		// Second assignment: "set a = 'Hi' and b = 'Team', then print ...".
		if c := reAndAssign.FindStringSubmatch(p); c != nil {
			v2, expr2 := c[1], strings.TrimSpace(c[2])
			if v2 != "" && v2 != v && expr2 != "" {
				lines = append(lines, fmt.Sprintf("set %s = %s", v2, normalizeExpr(expr2)))
			}
		}

		if doPrint {
			pe, ok := findPrintTail(p, v)
			if !ok {
				pe = v
			}
			lines = append(lines, "set tmpPrint = "+pe, "neuro tmpPrint")
		}
		return strings.ReplaceAll(strings.Join(lines, "\n"), "'", `"`)
	}

	return neuroLine(strings.TrimSpace(p))
}

// parseVarExpr extracts (variable, expression, wantsPrint) from assignment
// phrasings: "set x to 5 and print it", "create variable foo = 1",
// "store 'hello' in greeting", and a catch-all set/create/store form.
func parseVarExpr(prompt string) (string, string, bool, bool) {
	p := strings.TrimSpace(prompt)
	lp := strings.ToLower(p)

	cut := func(expr string) (string, bool) {
		lower := strings.ToLower(expr)
		for _, sep := range []string{
			" and print", " then print", " and output", " then output",
			" and echo", " then echo",
		} {
			if idx := strings.Index(lower, sep); idx >= 0 {
				return strings.TrimSpace(expr[:idx]), true
			}
		}
		return expr, false
	}
	wantsPrint := func(explicit bool) bool {
		return explicit ||
			strings.Contains(lp, " print") ||
			strings.Contains(lp, " output") ||
			strings.Contains(lp, " show") ||
			strings.Contains(lp, " echo")
	}

	if c := reSetTo.FindStringSubmatch(p); c != nil {
		expr, doPrint := cut(strings.TrimSpace(c[2]))
		expr = cleanExpr(expr)
		if expr == "" {
			expr = "0"
		}
		return c[1], expr, wantsPrint(doPrint), true
	}

	if c := reCreateVar.FindStringSubmatch(p); c != nil {
		expr, doPrint := cut(strings.TrimSpace(c[2]))
		expr = cleanExpr(expr)
		if expr == "" {
			expr = "0"
		}
		return c[1], expr, wantsPrint(doPrint), true
	}

	if c := reStoreXIn.FindStringSubmatch(p); c != nil {
		expr := cleanExpr(stripWrappingQuotes(strings.TrimSpace(c[1])))
		return c[2], expr, true, true
	}

	if c := reAssignAny.FindStringSubmatch(p); c != nil {
		expr, doPrint := cut(strings.TrimSpace(c[2]))
		if expr == "" {
			expr = "0"
		}
		expr = cleanExpr(expr)

		// "combine ... into label" keeps only the expression head.
		if idx := strings.Index(strings.ToLower(expr), " into "); idx >= 0 {
			if tail := strings.TrimSpace(expr[idx+len(" into "):]); tail != "" {
				expr = strings.TrimSpace(expr[:idx])
			}
		}
		return c[1], expr, wantsPrint(doPrint), true
	}

	return "", "", false, false
}

// findPrintTail builds the expression for a trailing print request, keyed to
// the variable just assigned. "print it" prints "var=" + var.
func findPrintTail(prompt, varName string) (string, bool) {
	low := strings.ToLower(prompt)
	start := -1
	for _, key := range []string{"print ", "echo ", "output "} {
		if i := strings.LastIndex(low, key); i >= 0 {
			start = i + len(key)
			break
		}
	}
	if start < 0 {
		return "", false
	}
	raw := strings.TrimSpace(prompt[start:])

	if strings.Contains(raw, "+") {
		if c := reTailLitVar.FindStringSubmatch(raw); c != nil {
			lit, v := c[1], c[2]
			spacer := " "
			if strings.HasSuffix(lit, " ") {
				spacer = ""
			}
			return fmt.Sprintf(`"%s" + "%s" + %s`, lit, spacer, v), true
		}
		return strings.ReplaceAll(raw, "'", `"`), true
	}

	if strings.ToLower(raw) == "it" {
		return fmt.Sprintf(`"%s=" + %s`, varName, varName), true
	}

	if strings.Contains(raw, varName) {
		pre, post, _ := strings.Cut(raw, varName)
		pre = strings.TrimRight(pre, ",")
		var segs []string
		if strings.TrimSpace(pre) != "" {
			s := stripWrappingQuotes(strings.TrimSpace(pre))
			if !strings.HasSuffix(s, " ") {
				s += " "
			}
			segs = append(segs, `"`+s+`"`)
		}
		segs = append(segs, varName)
		if strings.TrimSpace(post) != "" {
			s := stripWrappingQuotes(strings.TrimSpace(post))
			if !strings.HasPrefix(s, " ") {
				s = " " + s
			}
			segs = append(segs, `"`+s+`"`)
		}
		return strings.Join(segs, " + "), true
	}

	return normalizeExpr(raw), true
}

// cleanExpr trims a right-hand side down to the expression proper, dropping
// chained assignments and ", then ..." tails.
func cleanExpr(expr string) string {
	e := strings.TrimRight(strings.TrimSpace(expr), ",")
	if m := reTrailAnd.FindStringIndex(e); m != nil {
		e = strings.TrimSpace(e[:m[0]])
	}
	if idx := strings.Index(strings.ToLower(e), ", then"); idx >= 0 {
		e = strings.TrimSpace(e[:idx])
	}
	return strings.ReplaceAll(e, "'", `"`)
}

// normalizeExpr prepares a right-hand side for the generated source. Powers
// expand into repeated multiplication since the language has no ** operator.
func normalizeExpr(expr string) string {
	e := cleanExpr(expr)

	if strings.Contains(e, "**") {
		if c := rePower.FindStringSubmatch(e); c != nil {
			base := strings.TrimSpace(c[1])
			exp, err := strconv.Atoi(c[2])
			if err != nil {
				exp = 1
			}
			if exp > 8 {
				exp = 8
			}
			switch {
			case exp <= 0:
				return "1"
			case exp == 1:
				return base
			}
			factor := "(" + base + ")"
			parts := make([]string, exp)
			for i := range parts {
				parts[i] = factor
			}
			return strings.Join(parts, " * ")
		}
	}

	// Unbalanced or nested quoting collapses into one quoted literal.
	if strings.Count(e, `"`) > 1 {
		return `"` + strings.TrimSpace(strings.ReplaceAll(e, `"`, "")) + `"`
	}
	if strings.ContainsAny(e, "+-*/%") {
		return e
	}
	return parseRHS(e)
}

// parseRHS renders a single value: numbers and the words true/false/none
// stay bare, identifiers stay bare unless the source quoted them, anything
// else is quoted.
func parseRHS(raw string) string {
	hadQuote := strings.ContainsAny(raw, `'"`)
	val := stripWrappingQuotes(sanitizeText(raw))
	val = strings.ReplaceAll(val, "'", "")
	if val == "" {
		return `""`
	}
	if _, ok := parseNumber(val); ok {
		return val
	}
	switch strings.ToLower(val) {
	case "true", "false", "none":
		return val
	}
	if isIdentWord(val) {
		if hadQuote {
			return `"` + val + `"`
		}
		return val
	}
	return `"` + val + `"`
}

// normalizeCondition rewrites an English condition into operators and quotes
// bare-word right-hand sides.
func normalizeCondition(raw string) string {
	c := strings.TrimSpace(raw)
	repl := []struct{ word, op string }{
		{"greater than or equal to", ">="},
		{"less than or equal to", "<="},
		{"greater than", ">"},
		{"less than", "<"},
		{"is not", "!="},
		{"not equal to", "!="},
		{"equals", "=="},
		{"equal to", "=="},
		{"is", "=="},
	}
	for _, r := range repl {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(r.word) + `\b`)
		c = re.ReplaceAllString(c, r.op)
	}

	c = reCondRHS.ReplaceAllStringFunc(c, func(m string) string {
		parts := reCondRHS.FindStringSubmatch(m)
		op, rhs := parts[1], parts[2]
		if _, ok := parseNumber(rhs); ok {
			return op + " " + rhs
		}
		switch strings.ToLower(rhs) {
		case "true", "false", "none":
			return op + " " + rhs
		}
		return op + ` "` + rhs + `"`
	})

	return strings.TrimSpace(strings.TrimRight(c, ","))
}

func sanitizeText(s string) string {
	return strings.TrimSpace(strings.Trim(stripWrappingQuotes(s), `"' .,!?…`))
}

func firstQuoted(prompt string) (string, bool) {
	c := reQuoted.FindStringSubmatch(prompt)
	if c == nil {
		return "", false
	}
	if c[1] != "" {
		return c[1], true
	}
	return c[2], true
}

func allQuoted(prompt string) []string {
	var out []string
	for _, c := range reQuoted.FindAllStringSubmatch(prompt, -1) {
		if c[1] != "" {
			out = append(out, c[1])
		} else {
			out = append(out, c[2])
		}
	}
	return out
}

func mentionsPrint(prompt string) bool {
	p := strings.ToLower(prompt)
	return strings.Contains(p, "print") ||
		strings.Contains(p, "show") ||
		strings.Contains(p, "output") ||
		strings.Contains(p, "echo") ||
		strings.Contains(p, "say")
}

func isIdentWord(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if (ch < 'a' || ch > 'z') && (ch < 'A' || ch > 'Z') &&
			(ch < '0' || ch > '9') && ch != '_' {
			return false
		}
	}
	return true
}

// stripWrappingQuotes removes matched outer quote pairs, repeatedly, so
// doubly wrapped instructions unwrap fully.
func stripWrappingQuotes(s string) string {
	t := strings.TrimSpace(s)
	for len(t) > 1 {
		if (strings.HasPrefix(t, `"`) && strings.HasSuffix(t, `"`)) ||
			(strings.HasPrefix(t, "'") && strings.HasSuffix(t, "'")) {
			t = strings.TrimSpace(t[1 : len(t)-1])
			continue
		}
		break
	}
	return t
}

// neuroLine wraps free text in a print statement, dropping quote characters
// the lexer would trip on.
func neuroLine(msg string) string {
	clean := stripWrappingQuotes(msg)
	safe := strings.NewReplacer(`"`, "", "'", "").Replace(clean)
	return fmt.Sprintf("neuro %q", strings.TrimSpace(safe))
}
