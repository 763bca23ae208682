package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Task is a named recipe.
type Task struct {
	Name        string
	Description string
	// Command is the argv of the single external command the task runs.
	// Aggregate tasks leave it empty.
	Command   []string
	DependsOn []string
	Env       map[string]string
	Dir       string
}

// Taskfile holds the tasks of one file in declaration order.
type Taskfile struct {
	// BaseDir is where commands run unless a task sets Dir.
	BaseDir string
	Default string
	Tasks   []*Task

	byName map[string]*Task
}

// ValidationError reports a task file that breaks one of its invariants.
type ValidationError struct {
	Task   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Task == "" {
		return "invalid task file: " + e.Reason
	}
	return fmt.Sprintf("invalid task %q: %s", e.Task, e.Reason)
}

// NewTaskfile indexes tasks, fills in the default task and validates the result.
func NewTaskfile(baseDir, defaultTask string, tasks []*Task) (*Taskfile, error) {
	f := &Taskfile{
		BaseDir: baseDir,
		Default: defaultTask,
		Tasks:   tasks,
		byName:  make(map[string]*Task, len(tasks)),
	}
	for _, t := range tasks {
		if _, dup := f.byName[t.Name]; dup {
			return nil, &ValidationError{Task: t.Name, Reason: "declared more than once"}
		}
		f.byName[t.Name] = t
	}
	if f.Default == "" {
		if _, ok := f.byName["check"]; ok {
			f.Default = "check"
		} else if len(tasks) > 0 {
			f.Default = tasks[0].Name
		}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Task looks a task up by name.
func (f *Taskfile) Task(name string) (*Task, bool) {
	t, ok := f.byName[name]
	return t, ok
}

// Names returns the task names in declaration order.
func (f *Taskfile) Names() []string {
	names := make([]string, len(f.Tasks))
	for i, t := range f.Tasks {
		names[i] = t.Name
	}
	return names
}

// Validate checks that names are well formed, dependencies exist, the
// dependency graph is acyclic, every task does something and the default
// task exists.
func (f *Taskfile) Validate() error {
	if len(f.Tasks) == 0 {
		return &ValidationError{Reason: "no tasks declared"}
	}
	for _, t := range f.Tasks {
		if strings.TrimSpace(t.Name) == "" {
			return &ValidationError{Reason: "task with an empty name"}
		}
		if len(t.Command) == 0 && len(t.DependsOn) == 0 {
			return &ValidationError{Task: t.Name, Reason: "needs a command or dependencies"}
		}
		if len(t.Command) > 0 && t.Command[0] == "" {
			return &ValidationError{Task: t.Name, Reason: "command has an empty program name"}
		}
		for _, dep := range t.DependsOn {
			if _, ok := f.byName[dep]; !ok {
				return &ValidationError{Task: t.Name, Reason: fmt.Sprintf("depends on unknown task %q", dep)}
			}
		}
	}
	if _, ok := f.byName[f.Default]; !ok {
		return &ValidationError{Reason: fmt.Sprintf("default task %q is not declared", f.Default)}
	}
	return f.checkCycles()
}

func (f *Taskfile) checkCycles() error {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(f.Tasks))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			i := indexOf(stack, name)
			cycle := append(append([]string{}, stack[i:]...), name)
			return &ValidationError{Task: name, Reason: "dependency cycle " + strings.Join(cycle, " -> ")}
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range f.byName[name].DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = visited
		return nil
	}

	for _, t := range f.Tasks {
		if err := visit(t.Name); err != nil {
			return err
		}
	}
	return nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// Plan returns the tasks an invocation of name runs, in execution order:
// dependencies depth-first in declared order, each task once, name last.
// An empty name plans the default task.
func (f *Taskfile) Plan(name string) ([]*Task, error) {
	if name == "" {
		name = f.Default
	}
	if _, ok := f.byName[name]; !ok {
		return nil, fmt.Errorf("unknown task %q (available: %s)", name, strings.Join(f.Names(), ", "))
	}

	seen := make(map[string]bool)
	var plan []*Task
	var visit func(n string)
	visit = func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		t := f.byName[n]
		for _, dep := range t.DependsOn {
			visit(dep)
		}
		plan = append(plan, t)
	}
	visit(name)
	return plan, nil
}

// workDir resolves the directory a task's command runs in.
func (f *Taskfile) workDir(t *Task) string {
	switch {
	case t.Dir == "":
		return f.BaseDir
	case filepath.IsAbs(t.Dir) || f.BaseDir == "":
		return t.Dir
	default:
		return filepath.Join(f.BaseDir, t.Dir)
	}
}

// environ renders a task's env as sorted KEY=VALUE pairs.
func (t *Task) environ() []string {
	if len(t.Env) == 0 {
		return nil
	}
	env := make([]string, 0, len(t.Env))
	for k, v := range t.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}
