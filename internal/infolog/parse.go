// Package infolog turns driver info logs into structured diagnostics.
//
// GLSL compilers agree on nothing about log formatting; the recognizers here
// cover the three common line shapes:
//
//	Mesa:       0:12(5): error: 'foo' undeclared
//	NVIDIA:     0(12) : error C1008: undefined variable "foo"
//	AMD/Intel:  ERROR: 0:12: 'foo' : undeclared identifier
//
// Lines matching no shape degrade to info diagnostics with no source span,
// so the log content is never lost. The raw log is printed verbatim
// elsewhere; parsing only adds line-resolved spans for the renderers.
package infolog

import (
	"regexp"
	"strconv"
	"strings"

	"glslcheck/internal/diag"
	"glslcheck/internal/source"
)

// Target selects the diagnostic codes the parsed lines map onto.
type Target uint8

const (
	// TargetCompile attributes log lines to a shader compile.
	TargetCompile Target = iota
	// TargetLink attributes log lines to a program link.
	TargetLink
)

// Options configures one Parse call.
type Options struct {
	Target Target
	// File is the source the log refers to. Link logs have no single
	// source; leave HasFile false and spans stay empty.
	File    source.FileID
	HasFile bool
}

var (
	// 0:12(5): error: 'foo' undeclared
	mesaLine = regexp.MustCompile(`^(\d+):(\d+)\((\d+)\):\s*(error|warning|note|info):\s*(.*)$`)
	// 0(12) : error C1008: undefined variable "foo"
	nvidiaLine = regexp.MustCompile(`^(\d+)\((\d+)\)\s*:\s*(error|warning)\s+([A-Z]\d+):\s*(.*)$`)
	// ERROR: 0:12: 'foo' : undeclared identifier
	amdLine = regexp.MustCompile(`^(ERROR|WARNING|INFO):\s*(\d+):(\d+):\s*(.*)$`)
)

// Parse splits the log into lines and reports one diagnostic per non-blank
// line through r.
func Parse(fs *source.FileSet, log string, opts Options, r diag.Reporter) {
	for _, raw := range strings.Split(log, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		sev, lineNum, msg, located := recognize(line)

		span := source.Span{}
		if located && opts.HasFile {
			span = fs.LineSpan(opts.File, lineNum)
		}
		r.Report(codeFor(opts.Target, sev, located), sev, span, msg, nil)
	}
}

// recognize matches one log line against the known shapes. It returns the
// parsed severity, the 1-based source line, the message, and whether the
// line carried a location at all.
func recognize(line string) (sev diag.Severity, lineNum uint32, msg string, located bool) {
	if m := mesaLine.FindStringSubmatch(line); m != nil {
		return severityWord(m[4]), parseLineNum(m[2]), m[5], true
	}
	if m := nvidiaLine.FindStringSubmatch(line); m != nil {
		// Код драйвера (C1008) сохраняем в сообщении
		return severityWord(m[3]), parseLineNum(m[2]), m[4] + ": " + m[5], true
	}
	if m := amdLine.FindStringSubmatch(line); m != nil {
		return severityWord(m[1]), parseLineNum(m[3]), m[4], true
	}
	return diag.SevInfo, 0, line, false
}

func severityWord(word string) diag.Severity {
	switch strings.ToLower(word) {
	case "error":
		return diag.SevError
	case "warning":
		return diag.SevWarning
	}
	return diag.SevInfo
}

func parseLineNum(s string) uint32 {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

func codeFor(target Target, sev diag.Severity, located bool) diag.Code {
	if !located {
		if target == TargetLink {
			return diag.LinkLogLine
		}
		return diag.CompileLogLine
	}
	if target == TargetLink {
		switch sev {
		case diag.SevError:
			return diag.LinkFailed
		case diag.SevWarning:
			return diag.LinkWarning
		}
		return diag.LinkInfo
	}
	switch sev {
	case diag.SevError:
		return diag.CompileFailed
	case diag.SevWarning:
		return diag.CompileWarning
	}
	return diag.CompileInfo
}
