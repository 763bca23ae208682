package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/mdprune/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Loader reads HCL task files.
type Loader struct {
	// Environ is exposed to expressions as the env object. It defaults to
	// the process environment.
	Environ []string
}

// NewLoader creates a loader that exposes the process environment.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ()}
}

// fileRoot is the top-level schema of a task file.
type fileRoot struct {
	Default *string      `hcl:"default,optional"`
	Tasks   []*taskBlock `hcl:"task,block"`
}

type taskBlock struct {
	Name        string            `hcl:"name,label"`
	Description *string           `hcl:"description,optional"`
	Command     []string          `hcl:"command,optional"`
	DependsOn   []string          `hcl:"depends_on,optional"`
	Env         map[string]string `hcl:"env,optional"`
	Dir         *string           `hcl:"dir,optional"`
}

// Load reads and validates the task file at path. Commands run from the
// directory holding the file.
func (l *Loader) Load(ctx context.Context, path string) (*Taskfile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return l.parse(ctx, abs, filepath.Dir(abs), src)
}

// Parse reads and validates a task file held in memory. Commands run from
// the current directory.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*Taskfile, error) {
	return l.parse(ctx, filename, "", src)
}

func (l *Loader) parse(ctx context.Context, filename, baseDir string, src []byte) (*Taskfile, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Task file loading started.", "file", filename)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, l.evalContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	tasks := make([]*Task, 0, len(root.Tasks))
	for _, b := range root.Tasks {
		tasks = append(tasks, translateTask(b))
	}

	var defaultTask string
	if root.Default != nil {
		defaultTask = *root.Default
	}

	tf, err := NewTaskfile(baseDir, defaultTask, tasks)
	if err != nil {
		return nil, err
	}
	logger.Debug("Task file loaded.", "file", filename, "tasks", len(tf.Tasks), "default", tf.Default)
	return tf, nil
}

func translateTask(b *taskBlock) *Task {
	t := &Task{
		Name:      b.Name,
		Command:   b.Command,
		DependsOn: b.DependsOn,
		Env:       b.Env,
	}
	if b.Description != nil {
		t.Description = *b.Description
	}
	if b.Dir != nil {
		t.Dir = *b.Dir
	}
	return t
}

func (l *Loader) evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value, len(l.Environ))
	for _, kv := range l.Environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
		Functions: map[string]function.Function{
			"concat": stdlib.ConcatFunc,
			"join":   stdlib.JoinFunc,
			"format": stdlib.FormatFunc,
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
		},
	}
}
