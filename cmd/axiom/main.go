package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"axiom/internal/config"
	"axiom/internal/db"
	"axiom/internal/domain"
	"axiom/internal/export"
	"axiom/internal/plan"
	"axiom/internal/planner"
	"axiom/internal/server"
	"axiom/internal/store"
	appsync "axiom/internal/sync"
)

var rootCmd = &cobra.Command{
	Use:   "axiom",
	Short: "Axiom CLI",
	Long: `Axiom turns a goal into a day-by-day roadmap and tells you what to do today.
Core concepts:
- Project: one goal with a roadmap of phases, scheduled tasks, and a skill tree.
- Today card: a deterministic pick of at most three tasks for the current day.
- Check-in: record what you did; optionally let the planner adjust the rest.
- Pause: shift the whole remaining schedule forward instead of piling up debt.
- Master plan: for long horizons, high-level phases first, tasks month by month.
- Sync: push/pull the full state blob keyed by an opaque user id.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("AXIOM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("project", "", "project id (defaults to the selected project)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("project", rootCmd.PersistentFlags().Lookup("project"))
}

func registerCommands() {
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(todayCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(checkinCmd())
	rootCmd.AddCommand(pauseCmd())
	rootCmd.AddCommand(resumeCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(stateCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Manage configuration"}
	cfg.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default axiom.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	})
	cfg.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSONOrTable(c)
		},
	})
	return cfg
}

func projectCmd() *cobra.Command {
	prj := &cobra.Command{Use: "project", Short: "Manage projects"}
	prj.AddCommand(projectListCmd())
	prj.AddCommand(projectShowCmd())
	prj.AddCommand(projectUseCmd())
	prj.AddCommand(projectDeleteCmd())
	prj.AddCommand(projectDuplicateCmd())
	return prj
}

func projectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				items, err := s.ListProjects(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				state, err := s.AppState(ctx)
				if err != nil {
					return err
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Status", "Horizon", "Tasks", "Start"})
				for _, p := range items {
					name := p.Name
					if p.ProjectID == state.SelectedProjectID {
						name = "* " + name
					}
					tw.AppendRow(table.Row{p.ProjectID, name, p.Status, p.TimeHorizonDays, len(p.Tasks), p.StartDate})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func projectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [project-id]",
		Short: "Show a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				p, err := resolveProject(ctx, s, args)
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
}

func projectUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <project-id>",
		Short: "Select the working project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				if err := s.SelectProject(ctx, args[0]); err != nil {
					return err
				}
				fmt.Println("selected", args[0])
				return nil
			})
		},
	}
}

func projectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				if err := s.DeleteProject(ctx, args[0]); err != nil {
					return err
				}
				fmt.Println("deleted", args[0])
				return nil
			})
		},
	}
}

func projectDuplicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <project-id>",
		Short: "Duplicate a project with fresh ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				p, err := s.Duplicate(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(p)
				}
				fmt.Printf("duplicated as %s (%s)\n", p.ProjectID, p.Name)
				return nil
			})
		},
	}
}

func todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's task card",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				card, err := s.Today(ctx, viper.GetString("project"))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(card)
				}
				fmt.Printf("%s, day %d (%s)\n", card.ProjectName, card.Day, card.Date)
				if card.Paused {
					fmt.Printf("paused until %s\n", card.PauseUntil)
					return nil
				}
				if len(card.Tasks) == 0 {
					fmt.Println("nothing scheduled for today")
					return nil
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Task", "Type", "Effort", "Min"})
				for _, t := range card.Tasks {
					tw.AppendRow(table.Row{t.TaskID, t.Name, t.Type, t.Effort, t.DurationMinutes})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func taskCmd() *cobra.Command {
	task := &cobra.Command{Use: "task", Short: "Record task outcomes"}
	task.AddCommand(taskTransitionCmd("done", "Mark a task done and apply its skill deltas", domain.StateDone))
	task.AddCommand(taskTransitionCmd("skip", "Mark a task skipped", domain.StateSkipped))
	task.AddCommand(taskUndoCmd())
	return task
}

func taskTransitionCmd(use, short string, state domain.TaskState) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				p, err := resolveProject(ctx, s, nil)
				if err != nil {
					return err
				}
				out, err := s.ApplyTask(ctx, p.ProjectID, args[0], state)
				if err != nil {
					return err
				}
				return printTaskResult(out, args[0])
			})
		},
	}
}

func taskUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <task-id>",
		Short: "Return a task to todo and reverse its skill deltas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				p, err := resolveProject(ctx, s, nil)
				if err != nil {
					return err
				}
				out, err := s.UndoTask(ctx, p.ProjectID, args[0])
				if err != nil {
					return err
				}
				return printTaskResult(out, args[0])
			})
		},
	}
}

func printTaskResult(p domain.Project, taskID string) error {
	if viper.GetBool("json") {
		return printJSON(p)
	}
	t := p.Task(taskID)
	if t == nil {
		return fmt.Errorf("task %s not found", taskID)
	}
	fmt.Printf("%s -> %s\n", t.Name, t.State)
	return nil
}

func checkinCmd() *cobra.Command {
	var date, notes, adjust string
	var done, skipped []string
	var zeroDay, replan bool
	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Record today's outcome, optionally replanning the rest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				p, err := resolveProject(ctx, s, nil)
				if err != nil {
					return err
				}
				if date == "" {
					date = time.Now().UTC().Format("2006-01-02")
				}
				for _, taskID := range done {
					if _, err := s.ApplyTask(ctx, p.ProjectID, taskID, domain.StateDone); err != nil {
						return err
					}
				}
				for _, taskID := range skipped {
					if _, err := s.ApplyTask(ctx, p.ProjectID, taskID, domain.StateSkipped); err != nil {
						return err
					}
				}
				entry := domain.DailyHistory{
					Date:             date,
					CompletedTaskIDs: done,
					SkippedTaskIDs:   skipped,
					ZeroDay:          zeroDay,
					Notes:            notes,
				}
				out, err := s.Checkin(ctx, p.ProjectID, entry)
				if err != nil {
					return err
				}
				if replan {
					pl, err := newPlanner()
					if err != nil {
						return err
					}
					updated, err := pl.UpdatePlan(ctx, out, entry, adjust)
					if err != nil {
						return err
					}
					if err := s.SavePlanUpdate(ctx, updated, out.UpdatedAt); err != nil {
						return err
					}
					out = updated
				}
				if viper.GetBool("json") {
					return printJSON(out)
				}
				fmt.Printf("checked in %s: %d done, %d skipped\n", date, len(done), len(skipped))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "check-in date YYYY-MM-DD (default today)")
	cmd.Flags().StringArrayVar(&done, "done", []string{}, "completed task id (repeatable)")
	cmd.Flags().StringArrayVar(&skipped, "skipped", []string{}, "skipped task id (repeatable)")
	cmd.Flags().BoolVar(&zeroDay, "zero-day", false, "mark the day as a zero day")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVar(&replan, "replan", false, "let the planner adjust the remaining plan")
	cmd.Flags().StringVar(&adjust, "adjust", "", "adjustment request for the planner")
	return cmd
}

func pauseCmd() *cobra.Command {
	var days int
	var reason string
	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause the project and shift the remaining schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				p, err := resolveProject(ctx, s, nil)
				if err != nil {
					return err
				}
				out, err := s.Pause(ctx, p.ProjectID, days, reason)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(out)
				}
				fmt.Printf("paused %s until %s\n", out.Name, out.Pause.PauseUntil)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 1, "days to pause")
	cmd.Flags().StringVar(&reason, "reason", "", "why the project is paused")
	return cmd
}

func resumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				p, err := resolveProject(ctx, s, nil)
				if err != nil {
					return err
				}
				out, err := s.Resume(ctx, p.ProjectID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(out)
				}
				fmt.Printf("resumed %s\n", out.Name)
				return nil
			})
		},
	}
}

func planCmd() *cobra.Command {
	plan := &cobra.Command{Use: "plan", Short: "Generate and extend plans"}
	plan.AddCommand(planCreateCmd())
	plan.AddCommand(planGenerateMonthCmd())
	return plan
}

func planCreateCmd() *cobra.Command {
	var goal, constraints, startDate string
	var horizon int
	var master bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a new project plan from a goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if goal == "" {
				return fmt.Errorf("--goal is required")
			}
			if horizon < 1 {
				return fmt.Errorf("--horizon must be at least 1")
			}
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				pl, err := newPlanner()
				if err != nil {
					return err
				}
				if startDate == "" {
					startDate = time.Now().UTC().Format("2006-01-02")
				}
				req := planner.CreateRequest{
					UserText:        goal,
					TimeHorizonDays: horizon,
					Constraints:     constraints,
					StartDate:       startDate,
				}
				var p domain.Project
				if master {
					p, err = pl.CreateMaster(ctx, req)
				} else {
					p, err = pl.CreatePlan(ctx, req)
				}
				if err != nil {
					return err
				}
				if err := s.CreateProject(ctx, p); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(p)
				}
				fmt.Printf("created %s (%s): %d phases, %d tasks over %d days\n",
					p.Name, p.ProjectID, len(p.Roadmap.Phases), len(p.Tasks), p.TimeHorizonDays)
				if master {
					fmt.Println("master plan created; run 'axiom plan generate-month' to get tasks")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&goal, "goal", "", "what you want to achieve")
	cmd.Flags().IntVar(&horizon, "horizon", 30, "time horizon in days")
	cmd.Flags().StringVar(&constraints, "constraints", "", "constraints the plan must respect")
	cmd.Flags().StringVar(&startDate, "start-date", "", "start date YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&master, "master", false, "generate phases only, tasks month by month")
	_ = cmd.MarkFlagRequired("goal")
	return cmd
}

func planGenerateMonthCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "generate-month",
		Short: "Generate the next monthly task batch for a master plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				p, err := resolveProject(ctx, s, nil)
				if err != nil {
					return err
				}
				pl, err := newPlanner()
				if err != nil {
					return err
				}
				out, err := pl.GenerateMonth(ctx, p, days)
				if err != nil {
					return err
				}
				if err := s.SaveGeneratedMonth(ctx, out, p.UpdatedAt); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(out)
				}
				fmt.Printf("generated tasks up to day %d (%d total)\n", out.GeneratedUntilDay, len(out.Tasks))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "days to generate (default 30)")
	return cmd
}

func syncCmd() *cobra.Command {
	sc := &cobra.Command{Use: "sync", Short: "Sync state with a remote"}
	sc.AddCommand(syncInitCmd())
	sc.AddCommand(syncPushCmd())
	sc.AddCommand(syncPullCmd())
	return sc
}

func syncInitCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or adopt a sync identity",
		Long:  "The user id is the only credential. Generate one here, or pass --user-id to adopt the id from another device.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				if userID == "" {
					userID = appsync.NewUserID()
				}
				if err := s.SetUser(ctx, userID); err != nil {
					return err
				}
				fmt.Println("sync user id:", userID)
				fmt.Println("keep it safe; anyone holding it can read and write this state")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "existing sync user id to adopt")
	return cmd
}

func syncPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload the full local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				client, userID, err := newSyncClient(ctx, s)
				if err != nil {
					return err
				}
				state, err := s.AppState(ctx)
				if err != nil {
					return err
				}
				if err := client.Push(ctx, userID, state); err != nil {
					return err
				}
				if err := s.MarkSynced(ctx, time.Now().UTC().Format(time.RFC3339)); err != nil {
					return err
				}
				fmt.Printf("pushed %d projects\n", len(state.Projects))
				return nil
			})
		},
	}
}

func syncPullCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Replace local state with the remote copy if newer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				client, userID, err := newSyncClient(ctx, s)
				if err != nil {
					return err
				}
				remote, updatedAt, err := client.Pull(ctx, userID)
				if err != nil {
					return err
				}
				if remote == nil {
					fmt.Println("nothing to pull: this user id has never pushed")
					return nil
				}
				local, err := s.AppState(ctx)
				if err != nil {
					return err
				}
				if !force && !appsync.RemoteIsNewer(updatedAt, local.UpdatedAt) {
					fmt.Println("local state is up to date; use --force to overwrite")
					return nil
				}
				if err := s.ReplaceAll(ctx, *remote); err != nil {
					return err
				}
				if err := s.MarkSynced(ctx, time.Now().UTC().Format(time.RFC3339)); err != nil {
					return err
				}
				fmt.Printf("pulled %d projects (remote updated %s)\n", len(remote.Projects), updatedAt)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite local state even if it is newer")
	return cmd
}

func newSyncClient(ctx context.Context, s *store.Store) (*appsync.Client, string, error) {
	cfg, err := config.LoadOptional(viper.GetString("workspace"))
	if err != nil {
		return nil, "", err
	}
	userID, err := s.UserID(ctx)
	if err != nil {
		return nil, "", err
	}
	if userID == "" {
		return nil, "", fmt.Errorf("no sync identity; run axiom sync init first")
	}
	return appsync.New(cfg.Sync.BaseURL, cfg.Sync.Token), userID, nil
}

func stateCmd() *cobra.Command {
	st := &cobra.Command{Use: "state", Short: "Backup and restore the full state"}
	st.AddCommand(stateExportCmd())
	st.AddCommand(stateImportCmd())
	return st
}

func stateExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				state, err := s.AppState(ctx)
				if err != nil {
					return err
				}
				b, err := json.MarshalIndent(state, "", "  ")
				if err != nil {
					return err
				}
				return writeExport(out, string(b))
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func stateImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the local state from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var state domain.AppState
			if err := json.Unmarshal(data, &state); err != nil {
				return fmt.Errorf("invalid state file: %w", err)
			}
			if state.AppVersion == "" {
				return fmt.Errorf("invalid state file: appVersion missing")
			}
			for _, p := range state.Projects {
				if err := plan.Validate(p); err != nil {
					return fmt.Errorf("project %s: %w", p.ProjectID, err)
				}
			}
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				if err := s.ReplaceAll(ctx, state); err != nil {
					return err
				}
				fmt.Printf("imported %d projects\n", len(state.Projects))
				return nil
			})
		},
	}
}

func exportCmd() *cobra.Command {
	exp := &cobra.Command{Use: "export", Short: "Export the roadmap"}
	exp.AddCommand(exportICSCmd())
	exp.AddCommand(exportGanttCmd())
	return exp
}

func exportICSCmd() *cobra.Command {
	var types []string
	var out string
	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Export open tasks as an iCalendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				p, err := resolveProject(ctx, s, nil)
				if err != nil {
					return err
				}
				var filter []domain.TaskType
				for _, raw := range types {
					t := domain.TaskType(strings.TrimSpace(raw))
					if !t.Valid() {
						return fmt.Errorf("invalid task type %q", raw)
					}
					filter = append(filter, t)
				}
				return writeExport(out, export.ICS(p, filter, time.Now()))
			})
		},
	}
	cmd.Flags().StringArrayVar(&types, "type", []string{}, "task type filter (repeatable)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func exportGanttCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Export the roadmap as a Mermaid gantt chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				p, err := resolveProject(ctx, s, nil)
				if err != nil {
					return err
				}
				return writeExport(out, export.Gantt(p))
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func writeExport(path, content string) error {
	if path == "" {
		fmt.Println(content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}

func logCmd() *cobra.Command {
	log := &cobra.Command{Use: "log", Short: "Inspect the event log"}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				events, err := s.ListEvents(ctx, viper.GetString("project"), n)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(events)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"TS", "Type", "Project", "Entity"})
				for _, e := range events {
					tw.AppendRow(table.Row{e.TS, e.Type, e.ProjectID, e.EntityID})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := config.LoadOptional(workspace)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if basePath == "" {
				basePath = cfg.Server.BasePath
			}
			s, err := store.Open(workspace)
			if err != nil {
				return err
			}
			defer s.Close()
			var pl *planner.Planner
			if cfg.APIKey() != "" {
				pl = planner.New(newGemini(cfg))
			}
			handler, err := server.New(server.Config{
				Store:    s,
				Planner:  pl,
				BasePath: basePath,
				Auth:     server.AuthConfig{JWTSecret: cfg.JWTSecret()},
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Axiom API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (default from config)")
	return cmd
}

// --- helpers ---

func withStore(ctx context.Context, fn func(context.Context, *store.Store) error) error {
	s, err := store.Open(viper.GetString("workspace"))
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func resolveProject(ctx context.Context, s *store.Store, args []string) (domain.Project, error) {
	if len(args) > 0 && args[0] != "" {
		return s.GetProject(ctx, args[0])
	}
	if target := viper.GetString("project"); target != "" {
		return s.GetProject(ctx, target)
	}
	return s.SelectedProject(ctx)
}

func newPlanner() (*planner.Planner, error) {
	cfg, err := config.LoadOptional(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	if cfg.APIKey() == "" {
		return nil, fmt.Errorf("planner api key missing; set %s", cfg.Planner.APIKeyEnv)
	}
	return planner.New(newGemini(cfg)), nil
}

func newGemini(cfg *config.Config) *planner.Gemini {
	g := planner.NewGemini(cfg.APIKey(), cfg.Planner.Model)
	if cfg.Planner.BaseURL != "" {
		g.BaseURL = cfg.Planner.BaseURL
	}
	return g
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
