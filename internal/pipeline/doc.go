// Package pipeline runs the repository's build recipes.
//
// Recipes are declared in an HCL task file:
//
//	default = "check"
//
//	task "format" {
//	  description = "Format every Go file"
//	  command     = ["gofmt", "-l", "-w", "."]
//	}
//
//	task "check" {
//	  depends_on = ["format", "lint", "clean", "build"]
//	}
//
// A task runs at most one external command. Dependencies run first, one
// after another in the order they are declared, and each task runs at most
// once per invocation. The first failing command stops the sequence and its
// exit status becomes the status of the whole run.
//
// Expressions in the file can read the process environment through the env
// object (env.HOME) and call concat, join, format, upper and lower.
package pipeline
