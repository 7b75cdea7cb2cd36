package design

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Coverage checks are heuristics. They compare the record with the source
// material and only ever produce warnings.

var genericVerbs = []string{"了解", "知道", "掌握", "理解", "学会", "熟悉", "认识", "体会", "感受"}

var openingMarkers = []string{"导入", "引入", "情境", "激趣", "复习", "预习", "新课"}

var closingMarkers = []string{"总结", "小结", "拓展", "作业", "反思", "评价", "延伸", "升华"}

var teachingMethods = []string{
	"朗读", "默读", "讨论", "合作", "探究", "实验", "演示", "练习", "讲授", "问答",
	"角色扮演", "情境", "比较", "对比", "观察", "小组", "思维导图", "自主学习", "归纳",
	"批注", "讲解", "辩论", "表演", "调查", "游戏",
}

var knowledgeMarkers = []string{
	"定义", "概念", "公式", "定理", "原理", "性质", "规律", "特点", "特征", "方法",
	"步骤", "是指", "称为", "叫做", "重点", "结构", "修辞", "主题",
}

const (
	minActivities         = 3
	methodOverlapMin      = 0.5
	knowledgeCoverageMin  = 0.3
	knowledgePointsMin    = 3
	bigramOverlapRequired = 2
)

func checkCoverage(r *Report, doc map[string]any, activities []any, source string) {
	checkObjectives(r, str(doc["learning_objectives"]), source)
	checkStructureEnds(r)
	if activities != nil && len(activities) < minActivities {
		r.add(SeverityWarning, "few_activities", "学习活动少于%d个(当前%d个)", minActivities, len(activities))
	}
	activityText := joinActivityText(activities)
	checkMethods(r, activityText, source)
	checkKnowledgePoints(r, activityText, source)
}

func checkObjectives(r *Report, objectives, source string) {
	for i, line := range objectiveLines(objectives) {
		if !containsAny(line, genericVerbs) {
			continue
		}
		stripped := line
		for _, v := range genericVerbs {
			stripped = strings.ReplaceAll(stripped, v, " ")
		}
		if bigramOverlap(stripped, source) < bigramOverlapRequired {
			r.add(SeverityWarning, "generic_objective", "学习目标 %d 仅使用笼统动词，未引用材料内容: %s", i+1, line)
		}
	}
}

func objectiveLines(objectives string) []string {
	var out []string
	for _, line := range strings.Split(FormatObjectives(objectives), "\n") {
		line = strings.TrimSpace(numberedLineRe.ReplaceAllString(line, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func checkStructureEnds(r *Report) {
	if len(r.Phases) == 0 {
		return
	}
	if !containsAny(r.Phases[0], openingMarkers) {
		r.add(SeverityWarning, "missing_opening", "课例结构缺少导入环节")
	}
	if !containsAny(r.Phases[len(r.Phases)-1], closingMarkers) {
		r.add(SeverityWarning, "missing_closing", "课例结构缺少总结环节")
	}
}

func checkMethods(r *Report, activityText, source string) {
	var inSource, missing []string
	for _, m := range teachingMethods {
		if !strings.Contains(source, m) {
			continue
		}
		inSource = append(inSource, m)
		if !strings.Contains(activityText, m) {
			missing = append(missing, m)
		}
	}
	if len(inSource) == 0 {
		return
	}
	overlap := float64(len(inSource)-len(missing)) / float64(len(inSource))
	if overlap < methodOverlapMin {
		r.add(SeverityWarning, "method_overlap_low", "学习活动体现的教学方法与材料重合度低(%.0f%%)，未体现: %s",
			overlap*100, strings.Join(missing, "、"))
	}
}

func checkKnowledgePoints(r *Report, activityText, source string) {
	points := knowledgePoints(source)
	if len(points) < knowledgePointsMin {
		return
	}
	covered := 0
	for _, p := range points {
		if bigramOverlap(p, activityText) >= bigramOverlapRequired {
			covered++
		}
	}
	ratio := float64(covered) / float64(len(points))
	if ratio < knowledgeCoverageMin {
		r.add(SeverityWarning, "knowledge_coverage_low", "学习活动对材料知识点覆盖不足(%d/%d)", covered, len(points))
	}
}

// knowledgePoints returns distinct source sentences that carry a knowledge marker.
func knowledgePoints(source string) []string {
	split := func(r rune) bool {
		return strings.ContainsRune("。！？；!?;\n", r)
	}
	seen := map[string]bool{}
	var out []string
	for _, s := range strings.FieldsFunc(source, split) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] || !containsAny(s, knowledgeMarkers) {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func joinActivityText(activities []any) string {
	var b strings.Builder
	for _, it := range activities {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(str(m[k]))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// bigramOverlap counts distinct adjacent Han character pairs of s found in text.
func bigramOverlap(s, text string) int {
	seen := map[string]bool{}
	n := 0
	var prev rune
	for _, r := range s {
		if !unicode.Is(unicode.Han, r) {
			prev = 0
			continue
		}
		if prev != 0 {
			bg := string([]rune{prev, r})
			if !seen[bg] {
				seen[bg] = true
				if strings.Contains(text, bg) {
					n++
				}
			}
		}
		prev = r
	}
	return n
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
