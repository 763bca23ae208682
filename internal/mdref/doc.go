// Package mdref finds the images a Markdown document points at.
//
// Two syntaxes are recognised: inline Markdown images, with or without a
// title (`![alt](path)`, `![alt](path "title")`), and HTML image tags
// (`<img src="path">`). Remote targets (http, https, protocol-relative and
// data URIs) are ignored. Every local target is resolved to a canonical path
// that must exist and must lie inside the base directory being scanned;
// targets that fail either condition are dropped.
package mdref
