package planner

// Schema fragments embedded in prompts. They describe the wire shape the
// reconciliation layer expects; fields the defaulting rules can fill are
// marked optional.
const planSchema = `{
  "assumptions": ["string"],
  "project": {
    "name": "string",
    "oneLineIntent": "string",
    "definitionOfDone": "string",
    "status": "active | paused | completed",
    "startDate": "YYYY-MM-DD",
    "timeHorizonDays": number,
    "roadmap": {
      "phases": [{
        "phaseId": "phase_xxx",
        "name": "string",
        "intent": "string",
        "order": number,
        "startDay": number,
        "endDay": number,
        "milestones": [{"milestoneId": "ms_xxx", "name": "string", "completionRule": "string"}]
      }]
    },
    "tasks": [{
      "taskId": "task_xxx",
      "phaseId": "phase_xxx",
      "name": "string",
      "type": "build | think | train | admin | explore | recover | social",
      "effort": "low | medium | high",
      "durationMinutes": number,
      "details": {
        "steps": ["string"],
        "definitionOfDone": "string",
        "notes": "string (optional)",
        "training": {
          "sessionType": "string",
          "warmup": "string",
          "mainSet": "string",
          "cooldown": "string",
          "targetPace": "string (optional)",
          "targetHeartRate": "string (optional)",
          "rpe": "string (optional)"
        }
      },
      "schedule": {"earliestDay": number (optional), "latestDay": number, "recommendedDay": number},
      "dependsOnTaskIds": ["task_xxx"],
      "skillImpact": [{"skillId": "skill_xxx", "delta": number}],
      "state": "todo"
    }],
    "todayCardRules": {"maxTasks": 3, "selectionLogic": ["string"]},
    "skillTree": {
      "skills": [{
        "skillId": "skill_xxx",
        "name": "string",
        "description": "string",
        "level": 0,
        "maxLevel": 10,
        "parents": ["skill_xxx"],
        "progressRule": "string"
      }]
    },
    "progress": {"history": []}
  }
}`

const masterSchema = `{
  "name": "string",
  "oneLineIntent": "string",
  "definitionOfDone": "string",
  "assumptions": ["string"],
  "masterPlan": {
    "overview": "string (high-level description of the approach)",
    "principles": ["string"],
    "weeklyTemplate": "string (e.g. 'Mon: strength, Tue: run, Wed: rest, ...')",
    "phases": [{
      "phaseNumber": number,
      "name": "string",
      "startWeek": number,
      "endWeek": number,
      "focus": "string",
      "weeklyPattern": "string (e.g. '3 run + 2 strength + 2 rest')",
      "targetVolume": "string (e.g. '30-40km/week')",
      "keyWorkouts": ["string"],
      "progressionRules": "string"
    }],
    "skillProgression": [{
      "skillName": "string",
      "startLevel": 0,
      "endLevel": 10,
      "milestones": ["string"]
    }]
  },
  "roadmap": {
    "phases": [{
      "phaseId": "phase_xxx",
      "name": "string",
      "intent": "string",
      "order": number,
      "startDay": number,
      "endDay": number,
      "milestones": []
    }]
  },
  "skillTree": {
    "skills": [{
      "skillId": "skill_xxx",
      "name": "string",
      "description": "string",
      "level": 0,
      "maxLevel": 10,
      "parents": [],
      "progressRule": "string"
    }]
  }
}`

const taskBatchSchema = `{
  "tasks": [{
    "taskId": "task_xxx",
    "phaseId": "phase_xxx (from the phase list above)",
    "name": "string (MUST include specific numbers, paces or durations)",
    "type": "train | build | think | explore | admin | recover | social",
    "effort": "low | medium | high",
    "durationMinutes": number,
    "details": {
      "steps": ["string (specific and measurable)"],
      "definitionOfDone": "string",
      "training": {
        "sessionType": "easy | tempo | intervals | long | recovery | strength | cross-training",
        "warmup": "string",
        "mainSet": "string",
        "cooldown": "string",
        "targetPace": "string (optional)",
        "targetHeartRate": "string (optional)",
        "rpe": "string (optional)"
      }
    },
    "schedule": {"latestDay": number, "recommendedDay": number},
    "dependsOnTaskIds": [],
    "skillImpact": [{"skillId": "skill_xxx", "delta": 1}],
    "state": "todo"
  }]
}`
