// Package commands parses palette input into typed commands and dispatches
// them to caller-supplied handlers.
package commands

import (
	"fmt"
	"strings"
	"time"

	"agendad/internal/model"
	"agendad/internal/store"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeGoto   Type = "goto"
	TypeFilter Type = "filter"
	TypeDedup  Type = "dedup"
	TypeExport Type = "export"
	TypeImport Type = "import"
	TypeSnooze Type = "snooze"
	TypeAlarms Type = "alarms"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs describe "add <title> [on:YYYY-MM-DD] [at:HH:MM] [type:v] [prio:v]".
// Date defaults to today when no on: token is given.
type AddArgs struct {
	Title    string
	Date     string
	Time     string
	Type     model.Type
	Priority model.Priority
}

// GotoArgs describe "goto <view>" or "goto <YYYY-MM-DD>".
type GotoArgs struct {
	View string
	Date string
}

// FilterArgs describe "filter <type|all> [search terms]".
type FilterArgs struct {
	Type   model.Type
	Search string
}

// DedupArgs describe "dedup" (preview) or "dedup apply".
type DedupArgs struct {
	Apply bool
}

type ExportArgs struct {
	Path string
}

// ImportArgs describe "import <path> [merge|replace|smart]".
type ImportArgs struct {
	Path     string
	Strategy store.MergeStrategy
}

type SnoozeArgs struct {
	ID string
}

// AlarmsArgs describe "alarms on|off" or "alarms <minutes>".
type AlarmsArgs struct {
	Enable         *bool
	DefaultMinutes *int
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Goto   *GotoArgs
	Filter *FilterArgs
	Dedup  *DedupArgs
	Export *ExportArgs
	Import *ImportArgs
	Snooze *SnoozeArgs
	Alarms *AlarmsArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeGoto:
		return parseGoto(input, args)
	case TypeFilter:
		return parseFilter(input, args)
	case TypeDedup:
		return parseDedup(input, args)
	case TypeExport:
		return parseExport(input, args)
	case TypeImport:
		return parseImport(input, args)
	case TypeSnooze:
		return parseSnooze(input, args)
	case TypeAlarms:
		return parseAlarms(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	add := AddArgs{Type: model.TypeActivity, Priority: model.PriorityMedium}
	var titleParts []string
	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "on:"):
			add.Date = arg[len("on:"):]
		case strings.HasPrefix(lower, "at:"):
			add.Time = arg[len("at:"):]
		case strings.HasPrefix(lower, "type:"):
			add.Type = model.Type(lower[len("type:"):])
		case strings.HasPrefix(lower, "prio:"):
			add.Priority = model.Priority(lower[len("prio:"):])
		default:
			titleParts = append(titleParts, arg)
		}
	}
	add.Title = strings.TrimSpace(strings.Join(titleParts, " "))
	if add.Title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	if add.Date != "" {
		if _, err := time.Parse(model.DateLayout, add.Date); err != nil {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("bad date %q, want YYYY-MM-DD", add.Date)}
		}
	}
	if add.Time != "" {
		if _, err := time.Parse(model.TimeLayout, add.Time); err != nil {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("bad time %q, want HH:MM", add.Time)}
		}
	}
	if !add.Type.IsValid() {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown type %q", add.Type)}
	}
	if !add.Priority.IsValid() {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown priority %q", add.Priority)}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &add}, nil
}

func parseGoto(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "goto requires a view or a date"}
	}
	target := strings.ToLower(args[0])
	switch target {
	case "dashboard", "calendar", "list", "gantt":
		return Command{Type: TypeGoto, Raw: raw, Goto: &GotoArgs{View: target}}, nil
	}
	if _, err := time.Parse(model.DateLayout, target); err == nil {
		return Command{Type: TypeGoto, Raw: raw, Goto: &GotoArgs{View: "calendar", Date: target}}, nil
	}
	return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("goto target %q is neither a view nor a date", args[0])}
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "filter requires a type or 'all'"}
	}
	f := FilterArgs{}
	head := strings.ToLower(args[0])
	if head != "all" {
		f.Type = model.Type(head)
		if !f.Type.IsValid() {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown type %q", head)}
		}
	}
	f.Search = strings.TrimSpace(strings.Join(args[1:], " "))
	return Command{Type: TypeFilter, Raw: raw, Filter: &f}, nil
}

func parseDedup(raw string, args []string) (Command, error) {
	d := DedupArgs{}
	if len(args) > 0 {
		if strings.ToLower(args[0]) != "apply" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "dedup takes no argument or 'apply'"}
		}
		d.Apply = true
	}
	return Command{Type: TypeDedup, Raw: raw, Dedup: &d}, nil
}

func parseExport(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "export requires a file path"}
	}
	return Command{Type: TypeExport, Raw: raw, Export: &ExportArgs{Path: args[0]}}, nil
}

func parseImport(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "import requires a file path"}
	}
	imp := ImportArgs{Path: args[0], Strategy: store.StrategySmart}
	if len(args) > 1 {
		imp.Strategy = store.MergeStrategy(strings.ToLower(args[1]))
		if !imp.Strategy.IsValid() {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown strategy %q, want merge, replace or smart", args[1])}
		}
	}
	return Command{Type: TypeImport, Raw: raw, Import: &imp}, nil
}

func parseSnooze(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "snooze requires an activity id"}
	}
	return Command{Type: TypeSnooze, Raw: raw, Snooze: &SnoozeArgs{ID: args[0]}}, nil
}

func parseAlarms(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "alarms requires on, off or a default lead in minutes"}
	}
	a := AlarmsArgs{}
	switch strings.ToLower(args[0]) {
	case "on":
		v := true
		a.Enable = &v
	case "off":
		v := false
		a.Enable = &v
	default:
		var minutes int
		if _, err := fmt.Sscanf(args[0], "%d", &minutes); err != nil || minutes < 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("bad alarms argument %q", args[0])}
		}
		a.DefaultMinutes = &minutes
	}
	return Command{Type: TypeAlarms, Raw: raw, Alarms: &a}, nil
}
