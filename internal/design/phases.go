package design

import (
	"sort"
	"strings"
	"unicode"
)

// phaseSeparators are tried in order; the first one present splits the structure.
var phaseSeparators = []string{"→", "->", "-"}

// phaseKeywords is the fallback vocabulary when no separator is present.
var phaseKeywords = func() []string {
	kw := []string{
		"总结与拓展", "新知探究", "巩固练习", "总结拓展", "拓展延伸", "合作探究", "整体感知", "重点研读",
		"情境导入", "课堂小结", "布置作业",
		"导入", "探究", "巩固", "练习", "总结", "拓展", "反思", "展示", "评价", "复习", "小结", "新授",
	}
	sort.SliceStable(kw, func(i, j int) bool { return len([]rune(kw[i])) > len([]rune(kw[j])) })
	return kw
}()

// ParsePhases splits a lesson-structure string into phase names. A plain
// hyphen only separates phases when it is not part of a numeric range such as
// "3-5分钟", and only when it finds at least as many phases as the keyword scan.
func ParsePhases(structure string) []string {
	structure = strings.TrimSpace(structure)
	if structure == "" {
		return nil
	}
	for _, sep := range phaseSeparators {
		if !strings.Contains(structure, sep) {
			continue
		}
		var parts []string
		if sep == "-" {
			parts = splitHyphens(structure)
		} else {
			parts = strings.Split(structure, sep)
		}
		var out []string
		for _, part := range parts {
			if p := trimPhase(part); p != "" {
				out = append(out, p)
			}
		}
		if len(out) <= 1 {
			continue
		}
		if sep == "-" {
			if scanned := scanPhaseKeywords(structure); len(scanned) > len(out) {
				return scanned
			}
		}
		return out
	}
	return scanPhaseKeywords(structure)
}

// splitHyphens splits s at '-' except between two digits.
func splitHyphens(s string) []string {
	runes := []rune(s)
	var (
		parts []string
		start int
	)
	for i, r := range runes {
		if r != '-' {
			continue
		}
		if i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
			continue
		}
		parts = append(parts, string(runes[start:i]))
		start = i + 1
	}
	return append(parts, string(runes[start:]))
}

// scanPhaseKeywords segments s at each keyword occurrence, longest keyword first.
func scanPhaseKeywords(s string) []string {
	runes := []rune(s)
	var starts []int
	for i := 0; i < len(runes); {
		matched := 0
		for _, kw := range phaseKeywords {
			kr := []rune(kw)
			if i+len(kr) <= len(runes) && string(runes[i:i+len(kr)]) == kw {
				matched = len(kr)
				break
			}
		}
		if matched > 0 {
			starts = append(starts, i)
			i += matched
			continue
		}
		i++
	}
	out := make([]string, 0, len(starts))
	for n, st := range starts {
		end := len(runes)
		if n+1 < len(starts) {
			end = starts[n+1]
		}
		if p := trimPhase(string(runes[st:end])); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func trimPhase(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsDigit(r)
	})
}
