package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"axiom/internal/domain"
)

// systemPrompt pins the generation register: a planning instrument, not a
// coach. Every generation mode prepends it.
const systemPrompt = `You are AXIOM, a neutral planning and structuring engine.
You are NOT a coach, NOT a motivational assistant, NOT a productivity guru.

Your role:
- Turn a human goal into a precise, structured, visualizable execution system.
- Produce plans that feel serious, calm, and technically credible.
- Adapt plans to reality without judgment.

ABSOLUTE RULES:
- No emojis
- No motivational language
- No praise, no encouragement
- No AI self-references
- No gamification language, no streaks, no rewards
- Neutral, matter-of-fact tone only

You must output STRICT VALID JSON ONLY.
No markdown. No comments. No explanations. No code fences.

If information is missing:
- Make conservative assumptions
- List them in the "assumptions" field

PLANNING PHILOSOPHY:
- Plans must tolerate inconsistency.
- Skipping tasks only shifts structure; it never implies failure.
- Zero days are neutral.

TASK QUALITY:
- Tasks must be concrete and executable in one session.
- Training tasks MUST specify warm-up, main set, cooldown, and a target
  pace, heart rate, or RPE.
- Avoid vague tasks like "go run" or "work out".

TODAY CARD LOGIC:
- Max 3 tasks per day. Prefer 1 primary task; secondary tasks are lighter.

SKILL TREE PHILOSOPHY:
- Skills represent capacities, not achievements.
- Progress is gradual and driven by completed tasks only.

AUTO-REPLAN RULES:
- Preserve existing IDs whenever possible.
- Never violate task dependencies.
- If latestDay passes, shift forward conservatively.
- If repeated skips occur, reduce volume, split tasks, or add recovery.
- Summarize adjustments briefly.`

// sizeGuidance scales generated plan size with the horizon. Very long plans
// get weekly blocks instead of daily tasks so the output stays parseable.
type sizeGuidance struct {
	phases, tasks, skills string
	note                  string
	maxTokens             int
}

func guidanceFor(days int) sizeGuidance {
	switch {
	case days <= 14:
		return sizeGuidance{phases: "2-3", tasks: "10-20", skills: "3-6", maxTokens: 8192}
	case days <= 30:
		return sizeGuidance{phases: "3-4", tasks: "20-40", skills: "4-8", maxTokens: 12000}
	case days <= 90:
		return sizeGuidance{phases: "4-6", tasks: "40-60", skills: "6-10", maxTokens: 16000}
	case days <= 180:
		return sizeGuidance{phases: "5-6", tasks: "50-80", skills: "8-12", maxTokens: 20000}
	default:
		return sizeGuidance{
			phases: "6-8", tasks: "60-100", skills: "8-12", maxTokens: 32000,
			note: "Generate WEEKLY recurring task blocks, not individual daily tasks. Each task represents a week's focus.",
		}
	}
}

const maxUserTextLen = 2500

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "... (truncated)"
}

func orNone(s string) string {
	if s == "" {
		return "None specified"
	}
	return s
}

func createPrompt(req CreateRequest) string {
	g := guidanceFor(req.TimeHorizonDays)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nMODE: create\n\nUSER INPUT:\n%q\n\n", systemPrompt, truncate(req.UserText, maxUserTextLen))
	fmt.Fprintf(&b, "TIME HORIZON: %d days\nSTART DATE: %s\nCONSTRAINTS: %s\n", req.TimeHorizonDays, req.StartDate, orNone(req.Constraints))
	if tp := req.TrainingProfile; tp != nil {
		fmt.Fprintf(&b, "\nTRAINING PROFILE:\n- Current Level: %s\n- Constraints: %s\n- Preferences: %s\n- Available Metrics: %s\n",
			orNone(tp.CurrentLevel), orNone(tp.Constraints), orNone(tp.Preferences), orNone(tp.AvailableMetrics))
	}
	fmt.Fprintf(&b, "\nREQUIRED OUTPUT SCHEMA:\n%s\n", planSchema)
	fmt.Fprintf(&b, "\nSCALING GUIDANCE:\n- Create %s phases with clear progression\n- Generate %s tasks spread across the horizon\n- Create %s skills\n", g.phases, g.tasks, g.skills)
	if g.note != "" {
		fmt.Fprintf(&b, "\nIMPORTANT FOR LONG PLANS:\n%s\n", g.note)
	}
	b.WriteString(`
INSTRUCTIONS:
1. Generate a complete project plan following the schema exactly
2. Training tasks must include sessionType, warmup, mainSet, cooldown and a target
3. Ensure task dependencies are logical, with no cycles
4. Spread recommendedDay across the full horizon
5. Set all task states to "todo" and all skill levels to 0
6. List assumptions in the assumptions array

Return ONLY valid JSON.`)
	return b.String()
}

func updatePrompt(current domain.Project, check domain.DailyHistory, adjustment string) string {
	projectJSON, _ := json.MarshalIndent(current, "", "  ")
	completed, _ := json.Marshal(check.CompletedTaskIDs)
	skipped, _ := json.Marshal(check.SkippedTaskIDs)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nMODE: update\n\nCURRENT PROJECT STATE:\n%s\n\n", systemPrompt, projectJSON)
	fmt.Fprintf(&b, "DAILY CHECK-IN:\nDate: %s\nCompleted Task IDs: %s\nSkipped Task IDs: %s\nZero Day: %v\nNotes: %s\n",
		check.Date, completed, skipped, check.ZeroDay, orNone(check.Notes))
	if adjustment != "" {
		fmt.Fprintf(&b, "Adjustment Request: %s\n", adjustment)
	}
	fmt.Fprintf(&b, "\nREQUIRED OUTPUT SCHEMA:\n%s\n", planSchema)
	b.WriteString(`
INSTRUCTIONS:
1. PRESERVE ALL EXISTING IDs
2. Mark completed tasks "done" and skipped tasks "skipped"
3. Update skill levels from completed tasks' skillImpact
4. Reschedule or split heavily skipped tasks; never violate dependencies
5. Append this check-in to progress.history with a brief autoReplanSummary
6. If zero day, shift schedules forward conservatively

Return ONLY valid JSON.`)
	return b.String()
}

func masterPrompt(req CreateRequest) string {
	weeks := (req.TimeHorizonDays + 6) / 7
	phases := (weeks + 3) / 4
	if phases > 8 {
		phases = 8
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nMODE: create-master\n\n", systemPrompt)
	b.WriteString(`Generate a MASTER PLAN structure for long-term goal achievement.
This is NOT a detailed daily plan. It is a high-level structure that guides
monthly task generation.

`)
	fmt.Fprintf(&b, "USER INPUT:\n%q\n\nTIME HORIZON: %d days (%d weeks)\nSTART DATE: %s\nCONSTRAINTS: %s\n\n",
		truncate(req.UserText, maxUserTextLen), req.TimeHorizonDays, weeks, req.StartDate, orNone(req.Constraints))
	fmt.Fprintf(&b, "Generate a master plan with:\n- %d phases (roughly monthly)\n- 4-8 key skills to develop\n- A weekly template pattern\n- Progression rules for each phase\n", phases)
	fmt.Fprintf(&b, "\nREQUIRED OUTPUT SCHEMA:\n%s\n\nReturn ONLY valid JSON.", masterSchema)
	return b.String()
}

func monthPrompt(p domain.Project, startDay, endDay int) string {
	current := currentMasterPhase(p, startDay)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nMODE: generate-month\n\n", systemPrompt)
	b.WriteString(`Each task must be CONCRETE and EXECUTABLE with exact parameters:
numbers, durations, sets, reps, paces or zones. Never use vague labels.

`)
	fmt.Fprintf(&b, "PROJECT: %s\nGOAL: %s\nSTART DATE: %s\n\n", p.Name, p.OneLineIntent, p.StartDate)
	fmt.Fprintf(&b, "ORIGINAL INPUT (use for pace and zone calculations):\n%q\n\n", truncate(p.CreatedFrom.RawInput, 2000))
	if p.MasterPlan != nil {
		fmt.Fprintf(&b, "MASTER PLAN:\n%s\n\n", p.MasterPlan.Overview)
	}
	if current != nil {
		fmt.Fprintf(&b, "CURRENT PHASE: %s\n- Focus: %s\n- Weekly Pattern: %s\n- Target Volume: %s\n- Key Workouts: %s\n- Progression: %s\n\n",
			current.Name, current.Focus, current.WeeklyPattern, current.TargetVolume, strings.Join(current.KeyWorkouts, ", "), current.ProgressionRules)
	}
	var skills, phases []string
	for _, s := range p.SkillTree.Skills {
		skills = append(skills, s.SkillID+": "+s.Name)
	}
	for _, ph := range p.Roadmap.Phases {
		phases = append(phases, ph.PhaseID+": "+ph.Name)
	}
	fmt.Fprintf(&b, "SKILLS TO DEVELOP: %s\nPHASES: %s\n", strings.Join(skills, ", "), strings.Join(phases, ", "))
	fmt.Fprintf(&b, "RECENT CONTEXT: %s\nRECENT TASKS: %s\n\n", orNone(p.LastGeneratedContext), recentTasks(p))
	days := endDay - startDay + 1
	fmt.Fprintf(&b, "GENERATE FOR DAYS %d to %d (%d days)\n\n", startDay, endDay, days)
	fmt.Fprintf(&b, "REQUIREMENTS:\n1. Generate about %d tasks, leaving rest days free\n2. Spread recommendedDay between %d and %d\n3. Use only the skill and phase ids listed above\n4. Follow the weekly pattern but make each task unique and specific\n",
		(days*7+9)/10, startDay, endDay)
	fmt.Fprintf(&b, "\nOUTPUT SCHEMA:\n%s\n\nReturn ONLY valid JSON.", taskBatchSchema)
	return b.String()
}

func repairPrompt(broken string) string {
	return fmt.Sprintf(`The following JSON is invalid. Fix it to match the schema strictly.
Return ONLY valid JSON:

%s

SCHEMA:
%s`, broken, planSchema)
}

func currentMasterPhase(p domain.Project, startDay int) *domain.MasterPlanPhase {
	if p.MasterPlan == nil || len(p.MasterPlan.Phases) == 0 {
		return nil
	}
	week := (startDay + 6) / 7
	for i := range p.MasterPlan.Phases {
		ph := &p.MasterPlan.Phases[i]
		if week >= ph.StartWeek && week <= ph.EndWeek {
			return ph
		}
	}
	return &p.MasterPlan.Phases[0]
}

func recentTasks(p domain.Project) string {
	start := len(p.Tasks) - 10
	if start < 0 {
		start = 0
	}
	var parts []string
	for _, t := range p.Tasks[start:] {
		parts = append(parts, fmt.Sprintf("%s (%s)", t.Name, t.State))
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, ", ")
}
