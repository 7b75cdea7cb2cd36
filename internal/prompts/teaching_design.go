// Package prompts builds the instructions sent to the generation provider.
package prompts

import (
	"fmt"
	"strings"
)

const SystemRole = "你是一位精通教学法和课程设计的专家。"

const recordShape = `{
    "lesson_name": "课例名称（使用学习材料的标题或核心主题）",
    "grade_level": "学段年级（如：小学一年级、初中二年级、高中一年级）",
    "subject": "学科（如：语文、数学、英语、物理、化学、生物、历史、地理、政治）",
    "textbook_version": "教材版本（如：人教版、苏教版、北师大版等，或填写'根据所给材料'）",
    "lesson_period": "第1课时",
    "teacher_school": "XX学校",
    "teacher_name": "XX教师",
    "summary": "摘要（300-500字，概括课程核心主题、传统教学痛点、本课教学方法特色）",
    "content_analysis": "教学内容分析（核心知识点和技能要求，在课程体系中的位置）",
    "learner_analysis": "学习者分析（学生特征、已有知识水平、认知发展阶段）",
    "learning_objectives": "学习目标及重难点（3-4个具体可测量的目标，每行一个，标注重点和难点）",
    "lesson_structure": "课例结构（用→连接各环节，如：导入→新知探究→巩固练习→总结）",
    "learning_activities": [
        {
            "name": "活动环节名称",
            "teacher_activity": "教师活动描述",
            "student_activity": "学生活动描述",
            "activity_intent": "本环节的活动意图"
        }
    ],
    "activity_intent": "整体活动意图说明",
    "blackboard_design": "板书设计（文本描述板书布局，包括关键术语、图示和总结）",
    "homework_extension": "作业与拓展学习设计（1-2个家庭作业或拓展活动）",
    "materials_design": "素材设计（学习单、练习纸等，如无则写'本课未设计额外学习素材'）",
    "reflection_thinking_points": [
        {"point_type": "认知冲突", "description": "100字以内"},
        {"point_type": "思维图示", "description": "100字以内"},
        {"point_type": "变式运用", "description": "100字以内"}
    ]
}`

const guidance = `**内容生成指南：**
1. 学习目标使用行为动词（如"列举"、"对比"、"设计"、"总结"），避免"了解"、"知道"、"掌握"等模糊词汇，并引用材料中的具体内容。
2. 课例结构中的每个环节对应一个学习活动，活动数量不少于环节数量，最多比环节数量多2个，总数不超过8个。
3. 每个学习活动都要写出自己的 activity_intent，各活动的意图不能重复。
4. 思维训练点只能使用"认知冲突"、"思维图示"、"变式运用"三种类型，说明不超过100字。

**注意：**
- 必须严格按照JSON格式输出，不要包含markdown标记或解释性文字
- 所有字段都必须填写，不能为空`

// TeachingDesign inlines the material and template text into one prompt.
func TeachingDesign(materialText, templateText string) string {
	var b strings.Builder
	b.WriteString("请基于\"思维发展型课堂\"模型，根据用户提供的学习材料，创建一份全面、高质量的教学设计。\n\n")
	b.WriteString("**重要：请严格按照以下JSON格式输出结果，不要包含任何其他文字或解释。**\n\n")
	b.WriteString("**输入材料：**\n1. 用户上传的学习材料内容：\n")
	b.WriteString(strings.TrimSpace(materialText))
	b.WriteString("\n\n2. 教学设计模板内容：\n")
	if t := strings.TrimSpace(templateText); t != "" {
		b.WriteString(t)
	} else {
		b.WriteString("（无）")
	}
	fmt.Fprintf(&b, "\n\n**输出格式：**\n%s\n\n%s\n\n现在请开始分析学习材料并生成教学设计JSON数据：", recordShape, guidance)
	return b.String()
}

// TeachingDesignForFiles refers to material and template attached as provider files.
func TeachingDesignForFiles() string {
	return "请基于\"思维发展型课堂\"模型，阅读已附加的两个文件：第一个是用户上传的学习材料，第二个是教学设计模板。\n\n" +
		"**重要：请严格按照以下JSON格式输出结果，不要包含任何其他文字或解释。**\n\n" +
		"**输出格式：**\n" + recordShape + "\n\n" + guidance + "\n\n现在请开始生成教学设计JSON数据："
}

// Chat wraps a free-form question, optionally grounded in uploaded material.
func Chat(question, materialText string) string {
	question = strings.TrimSpace(question)
	materialText = strings.TrimSpace(materialText)
	if materialText == "" {
		return question
	}
	return fmt.Sprintf("以下是用户上传的学习材料：\n%s\n\n请结合上述材料回答问题：%s", materialText, question)
}
