package templates

import "github.com/meannnn/MindM/internal/docx"

const docTitle = "思维发展型课堂教学设计"

var basicInfoRows = [][]string{
	{"课例名称", "{{ lesson_name }}", "学段年级", "{{ grade_level }}"},
	{"学科", "{{ subject }}", "教材版本", "{{ textbook_version }}"},
	{"课时", "{{ lesson_period }}", "学校", "{{ teacher_school }}"},
	{"教师", "{{ teacher_name }}", "", ""},
}

var activityRows = [][]string{
	{"环节", "教师活动", "学生活动", "活动意图"},
	{"{%tr for activity in learning_activities %}"},
	{"{{ activity.name }}", "{{ activity.teacher_activity }}", "{{ activity.student_activity }}", "{{ activity.activity_intent }}"},
	{"{%tr endfor %}"},
}

var pointRows = [][]string{
	{"思维训练点", "说明"},
	{"{%tr for point in reflection_thinking_points %}"},
	{"{{ point.point_type }}", "{{ point.description }}"},
	{"{%tr endfor %}"},
}

// standardLayout follows the section order of the school's form, with activities
// written as paragraphs.
func standardLayout() *docx.Builder {
	b := docx.NewBuilder().Title(docTitle)
	b.Field("课例名称", "{{ lesson_name }}").
		Field("学段年级", "{{ grade_level }}").
		Field("学科", "{{ subject }}").
		Field("教材版本", "{{ textbook_version }}").
		Field("课时说明", "{{ lesson_period }}").
		Field("教师单位", "{{ teacher_school }}").
		Field("教师姓名", "{{ teacher_name }}")
	section(b, "【摘要】", "{{ summary }}")
	section(b, "【教学内容分析】", "{{ content_analysis }}")
	section(b, "【学习者分析】", "{{ learner_analysis }}")
	section(b, "【学习目标及重难点】", "{{ learning_objectives }}")
	section(b, "【课例结构】", "{{ lesson_structure }}")
	b.Heading("【学习活动设计】", 1).
		Paragraph("{%p for activity in learning_activities %}").
		Bold("{{ loop.index }}. {{ activity.name }}").
		Field("教师活动", "{{ activity.teacher_activity }}").
		Field("学生活动", "{{ activity.student_activity }}").
		Field("活动意图", "{{ activity.activity_intent }}").
		Paragraph("{%p endfor %}")
	section(b, "【板书设计】", "{{ blackboard_design }}")
	section(b, "【作业与拓展学习设计】", "{{ homework_extension }}")
	section(b, "【素材设计】", "{{ materials_design }}")
	b.Heading("【反思：思维训练点】", 1).
		Paragraph("{%p for point in reflection_thinking_points %}").
		Field("{{ point.point_type }}", "{{ point.description }}").
		Paragraph("{%p endfor %}")
	return b
}

// tableLayout puts basic information, activities and thinking points in tables.
func tableLayout() *docx.Builder {
	b := docx.NewBuilder().Title(docTitle).Table(basicInfoRows)
	section(b, "一、课例概述", "{{ summary }}")
	section(b, "二、内容分析", "{{ content_analysis }}")
	section(b, "三、学习者分析", "{{ learner_analysis }}")
	section(b, "四、学习目标及重难点", "{{ learning_objectives }}")
	section(b, "五、教学设计思路", "{{ lesson_structure }}")
	b.Heading("六、学习活动设计", 1).Table(activityRows)
	section(b, "七、板书设计", "{{ blackboard_design }}")
	section(b, "八、作业与拓展学习设计", "{{ homework_extension }}")
	section(b, "九、素材设计", "{{ materials_design }}")
	b.Heading("十、反思：思维训练点", 1).Table(pointRows)
	return b
}

// compactLayout is a one-page summary without the analysis sections.
func compactLayout() *docx.Builder {
	b := docx.NewBuilder().Title("{{ lesson_name }}").
		Paragraph("{{ grade_level }} · {{ subject }} · {{ lesson_period }}").
		Paragraph("{{ teacher_school }} {{ teacher_name }}")
	section(b, "学习目标", "{{ learning_objectives }}")
	section(b, "课例结构", "{{ lesson_structure }}")
	b.Heading("学习活动", 2).Table(activityRows)
	section(b, "作业", "{{ homework_extension }}")
	return b
}

func section(b *docx.Builder, heading, body string) {
	b.Heading(heading, 1).Paragraph(body)
}
