package domain

// TaskType classifies what kind of work a task represents.
type TaskType string

const (
	TaskBuild   TaskType = "build"
	TaskThink   TaskType = "think"
	TaskTrain   TaskType = "train"
	TaskAdmin   TaskType = "admin"
	TaskExplore TaskType = "explore"
	TaskRecover TaskType = "recover"
	TaskSocial  TaskType = "social"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskBuild, TaskThink, TaskTrain, TaskAdmin, TaskExplore, TaskRecover, TaskSocial:
		return true
	}
	return false
}

// Effort is a coarse intensity rating.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

func (e Effort) Valid() bool {
	return e == EffortLow || e == EffortMedium || e == EffortHigh
}

// TaskState is the local lifecycle of a task.
type TaskState string

const (
	StateTodo    TaskState = "todo"
	StateDone    TaskState = "done"
	StateSkipped TaskState = "skipped"
)

func (s TaskState) Valid() bool {
	return s == StateTodo || s == StateDone || s == StateSkipped
}

// ProjectStatus is the project lifecycle.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectPaused    ProjectStatus = "paused"
	ProjectCompleted ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	return s == ProjectActive || s == ProjectPaused || s == ProjectCompleted
}

type Skill struct {
	SkillID      string   `json:"skillId"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Level        int      `json:"level"`
	MaxLevel     int      `json:"maxLevel"`
	Parents      []string `json:"parents"`
	ProgressRule string   `json:"progressRule"`
}

type SkillImpact struct {
	SkillID string `json:"skillId"`
	Delta   int    `json:"delta"`
}

// Schedule holds day offsets from the project start date.
type Schedule struct {
	EarliestDay    *int `json:"earliestDay,omitempty"`
	LatestDay      int  `json:"latestDay"`
	RecommendedDay int  `json:"recommendedDay"`
}

// TrainingDetails carries the structured session plan for train tasks.
type TrainingDetails struct {
	SessionType     string `json:"sessionType,omitempty"`
	Warmup          string `json:"warmup,omitempty"`
	MainSet         string `json:"mainSet,omitempty"`
	Cooldown        string `json:"cooldown,omitempty"`
	TargetPace      string `json:"targetPace,omitempty"`
	TargetHeartRate string `json:"targetHeartRate,omitempty"`
	RPE             string `json:"rpe,omitempty"`
}

type TaskDetails struct {
	Steps            []string         `json:"steps"`
	DefinitionOfDone string           `json:"definitionOfDone"`
	Notes            string           `json:"notes,omitempty"`
	Training         *TrainingDetails `json:"training,omitempty"`
}

type Task struct {
	TaskID           string        `json:"taskId"`
	PhaseID          string        `json:"phaseId"`
	Name             string        `json:"name"`
	Type             TaskType      `json:"type"`
	Effort           Effort        `json:"effort"`
	DurationMinutes  int           `json:"durationMinutes"`
	Details          TaskDetails   `json:"details"`
	Schedule         Schedule      `json:"schedule"`
	DependsOnTaskIDs []string      `json:"dependsOnTaskIds"`
	SkillImpact      []SkillImpact `json:"skillImpact"`
	State            TaskState     `json:"state"`
	LastUpdated      string        `json:"lastUpdated"`
}

type Milestone struct {
	MilestoneID    string `json:"milestoneId"`
	Name           string `json:"name"`
	CompletionRule string `json:"completionRule"`
}

type Phase struct {
	PhaseID    string      `json:"phaseId"`
	Name       string      `json:"name"`
	Intent     string      `json:"intent"`
	Order      int         `json:"order"`
	StartDay   int         `json:"startDay"`
	EndDay     int         `json:"endDay"`
	Milestones []Milestone `json:"milestones"`
}

type Roadmap struct {
	Phases []Phase `json:"phases"`
}

type SkillTree struct {
	Skills []Skill `json:"skills"`
}

// DailyHistory records one check-in; at most one entry per calendar date.
type DailyHistory struct {
	Date              string   `json:"date"`
	CompletedTaskIDs  []string `json:"completedTaskIds"`
	SkippedTaskIDs    []string `json:"skippedTaskIds"`
	ZeroDay           bool     `json:"zeroDay,omitempty"`
	Notes             string   `json:"notes,omitempty"`
	AutoReplanSummary string   `json:"autoReplanSummary"`
}

type Progress struct {
	History []DailyHistory `json:"history"`
}

type Pause struct {
	IsPaused   bool   `json:"isPaused"`
	PauseUntil string `json:"pauseUntil,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type TrainingProfile struct {
	CurrentLevel     string `json:"currentLevel,omitempty"`
	Constraints      string `json:"constraints,omitempty"`
	Preferences      string `json:"preferences,omitempty"`
	AvailableMetrics string `json:"availableMetrics,omitempty"`
}

// CreatedFrom preserves the raw user input a plan was generated from.
type CreatedFrom struct {
	RawInput        string           `json:"rawInput"`
	Constraints     string           `json:"constraints"`
	TrainingProfile *TrainingProfile `json:"trainingProfile,omitempty"`
}

type TodayCardRules struct {
	MaxTasks       int      `json:"maxTasks"`
	SelectionLogic []string `json:"selectionLogic"`
}

// MasterPlanPhase is one block of a long-horizon progression template.
type MasterPlanPhase struct {
	PhaseNumber      int      `json:"phaseNumber"`
	Name             string   `json:"name"`
	StartWeek        int      `json:"startWeek"`
	EndWeek          int      `json:"endWeek"`
	Focus            string   `json:"focus"`
	WeeklyPattern    string   `json:"weeklyPattern"`
	TargetVolume     string   `json:"targetVolume"`
	KeyWorkouts      []string `json:"keyWorkouts"`
	ProgressionRules string   `json:"progressionRules"`
}

type SkillProgression struct {
	SkillName  string   `json:"skillName"`
	StartLevel int      `json:"startLevel"`
	EndLevel   int      `json:"endLevel"`
	Milestones []string `json:"milestones"`
}

// MasterPlan is the high-level template that drives monthly task generation
// for long time horizons. Tasks are filled in incrementally, not up front.
type MasterPlan struct {
	Overview         string             `json:"overview"`
	Principles       []string           `json:"principles"`
	WeeklyTemplate   string             `json:"weeklyTemplate"`
	Phases           []MasterPlanPhase  `json:"phases"`
	SkillProgression []SkillProgression `json:"skillProgression"`
}

// Project is the root aggregate. All mutations go through pure functions in
// the roadmap package or the reconciliation layer; the store treats each
// resulting value as the next immutable snapshot.
type Project struct {
	ProjectID        string          `json:"projectId"`
	Name             string          `json:"name"`
	OneLineIntent    string          `json:"oneLineIntent"`
	DefinitionOfDone string          `json:"definitionOfDone"`
	Status           ProjectStatus   `json:"status"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
	StartDate        string          `json:"startDate"`
	TimeHorizonDays  int             `json:"timeHorizonDays"`
	CreatedFrom      CreatedFrom     `json:"createdFrom"`
	Pause            Pause           `json:"pause"`
	Roadmap          Roadmap         `json:"roadmap"`
	Tasks            []Task          `json:"tasks"`
	TodayCardRules   *TodayCardRules `json:"todayCardRules,omitempty"`
	SkillTree        SkillTree       `json:"skillTree"`
	Progress         Progress        `json:"progress"`
	Assumptions      []string        `json:"assumptions,omitempty"`
	SyncedAt         string          `json:"syncedAt,omitempty"`

	// Progressive generation state for master-plan projects.
	MasterPlan           *MasterPlan `json:"masterPlan,omitempty"`
	GeneratedUntilDay    int         `json:"generatedUntilDay,omitempty"`
	LastGeneratedContext string      `json:"lastGeneratedContext,omitempty"`
}

// Task returns the task with the given id, or nil.
func (p *Project) Task(taskID string) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].TaskID == taskID {
			return &p.Tasks[i]
		}
	}
	return nil
}

// Phase returns the phase with the given id, or nil. A task whose phase is
// missing is an orphan: kept in the flat list, excluded from phase views.
func (p *Project) Phase(phaseID string) *Phase {
	for i := range p.Roadmap.Phases {
		if p.Roadmap.Phases[i].PhaseID == phaseID {
			return &p.Roadmap.Phases[i]
		}
	}
	return nil
}

// Skill returns the skill with the given id, or nil.
func (p *Project) Skill(skillID string) *Skill {
	for i := range p.SkillTree.Skills {
		if p.SkillTree.Skills[i].SkillID == skillID {
			return &p.SkillTree.Skills[i]
		}
	}
	return nil
}

// AppState is the serialized application root held by the store and shipped
// whole to the remote sync endpoint.
type AppState struct {
	AppVersion        string    `json:"appVersion"`
	UpdatedAt         string    `json:"updatedAt"`
	SelectedProjectID string    `json:"selectedProjectId,omitempty"`
	Projects          []Project `json:"projects"`
	UserID            string    `json:"userId,omitempty"`
	LastSyncedAt      string    `json:"lastSyncedAt,omitempty"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	ProjectID  string `json:"project_id,omitempty"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}
