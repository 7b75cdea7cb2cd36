package design

// Example returns a complete, valid record used for template previews.
func Example() map[string]any {
	return map[string]any{
		"lesson_name":         "《春》教学设计",
		"grade_level":         "初中一年级",
		"subject":             "语文",
		"textbook_version":    "人教版",
		"lesson_period":       "第1课时",
		"teacher_school":      "XX学校",
		"teacher_name":        "XX教师",
		"summary":             "本课通过引导学生感受春天的美好，培养学生的观察能力和语言表达能力。",
		"content_analysis":    "《春》是朱自清的一篇散文，通过描绘春天的景象，表达了作者对春天的喜爱之情。",
		"learner_analysis":    "初一学生已经具备一定的阅读能力，但对散文的欣赏还需要进一步引导。",
		"learning_objectives": "1. 通过朗读课文，感受春天的美好（重点）\n2. 分析文章的比喻和拟人修辞（难点）\n3. 仿写春天的片段",
		"lesson_structure":    "导入→整体感知→重点研读→总结",
		"learning_activities": []any{
			map[string]any{
				"name":             "导入环节",
				"teacher_activity": "播放春天相关的音乐，引导学生回忆春天的景象",
				"student_activity": "听音乐，回忆并分享春天的印象",
				"activity_intent":  "激发学习兴趣，唤起生活体验",
			},
			map[string]any{
				"name":             "整体感知",
				"teacher_activity": "指导学生朗读课文，整体把握文章内容",
				"student_activity": "朗读课文，概括文章主要内容",
				"activity_intent":  "把握文章脉络，为研读做准备",
			},
			map[string]any{
				"name":             "重点研读",
				"teacher_activity": "组织小组讨论春草图、春花图中的修辞",
				"student_activity": "小组合作批注，交流比喻和拟人的表达效果",
				"activity_intent":  "体会语言特色，落实重难点",
			},
			map[string]any{
				"name":             "总结",
				"teacher_activity": "引导学生梳理春景图并布置仿写任务",
				"student_activity": "总结收获，完成仿写片段",
				"activity_intent":  "迁移运用写作手法",
			},
		},
		"activity_intent":    "以朗读和批注贯穿全课，逐步深化对春景的理解",
		"blackboard_design":  "春\n春草→春花→春风→春雨\n生机勃勃 充满希望",
		"homework_extension": "1. 背诵课文第1-3段\n2. 观察身边的春天，写一段描写春天的文字",
		"materials_design":   "多媒体课件、春天相关图片、音乐",
		"reflection_thinking_points": []any{
			map[string]any{"point_type": PointCognitiveConflict, "description": "对比不同季节的特点，引发学生对春天独特之处的思考"},
			map[string]any{"point_type": PointThinkingDiagram, "description": "使用思维导图梳理文章结构，帮助学生理解文章脉络"},
			map[string]any{"point_type": PointVariantUse, "description": "通过仿写练习，将写作技巧应用到实际写作中"},
		},
	}
}
