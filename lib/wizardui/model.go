// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package wizardui is the interactive terminal front end for a
// form.Engine: one screen per step, a text input per field, inline
// validation messages, and fuzzy pickers for fields with a fixed set
// of choices (orphanages, categories).
package wizardui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jalai-group/jalai/form"
	"github.com/jalai-group/jalai/lib/tui"
)

// FieldKind selects the input widget for a field.
type FieldKind int

const (
	KindText FieldKind = iota
	KindSecret
	KindBool
	KindChoice
)

// Choice is one selectable value of a KindChoice field.
type Choice struct {
	Value string
	Label string
}

// FieldSpec describes how a field is presented.
type FieldSpec struct {
	Label       string
	Kind        FieldKind
	Placeholder string
	Choices     []Choice
}

// maxSuggestions bounds the picker list under a choice field.
const maxSuggestions = 5

// ErrAborted is returned by Run when the user quits before submitting.
var ErrAborted = errors.New("wizard aborted")

type submitDoneMsg struct{ err error }

// Model is the bubbletea model of a wizard.
type Model struct {
	title  string
	engine *form.Engine
	specs  map[string]FieldSpec
	theme  tui.Theme
	keys   KeyMap
	help   help.Model
	ctx    context.Context

	step   int
	fields []string
	focus  int
	inputs map[string]textinput.Model

	submitting bool
	submitErr  error
	done       bool
	aborted    bool
	width      int

	status         *StatusHandler
	statusText     string
	statusLevel    slog.Level
	statusSequence int
}

// New returns a model driving engine. Fields without a spec are shown
// as plain text inputs labelled with their name.
func New(ctx context.Context, title string, engine *form.Engine, specs map[string]FieldSpec, theme tui.Theme) Model {
	model := Model{
		title:  title,
		engine: engine,
		specs:  specs,
		theme:  theme,
		keys:   DefaultKeyMap,
		help:   help.New(),
		ctx:    ctx,
		inputs: make(map[string]textinput.Model),
		width:  80,
	}
	model.enterStep()
	return model
}

// WithStatus routes records from handler to the status line while the
// wizard runs.
func (model Model) WithStatus(handler *StatusHandler) Model {
	model.status = handler
	return model
}

func (model Model) spec(field string) FieldSpec {
	if spec, ok := model.specs[field]; ok {
		return spec
	}
	return FieldSpec{Label: field}
}

// enterStep rebuilds the inputs for the engine's current step.
func (model *Model) enterStep() {
	step, definition := model.engine.Step()
	model.step = step
	model.fields = definition.Fields
	model.focus = 0
	for _, field := range model.fields {
		spec := model.spec(field)
		if spec.Kind == KindBool {
			continue
		}
		input := textinput.New()
		input.Placeholder = spec.Placeholder
		input.CharLimit = 500
		value := model.engine.Get(field)
		if spec.Kind == KindSecret {
			input.EchoMode = textinput.EchoPassword
		}
		if spec.Kind == KindChoice {
			value = choiceLabel(spec.Choices, value)
		}
		input.SetValue(value)
		model.inputs[field] = input
	}
	model.applyFocus()
}

func (model *Model) applyFocus() {
	for index, field := range model.fields {
		input, ok := model.inputs[field]
		if !ok {
			continue
		}
		if index == model.focus {
			input.Focus()
		} else {
			input.Blur()
		}
		model.inputs[field] = input
	}
}

func (model Model) focusedField() string {
	if len(model.fields) == 0 {
		return ""
	}
	return model.fields[model.focus]
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd { return textinput.Blink }

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.help.Width = message.Width
		return model, nil

	case statusMsg:
		model.statusSequence++
		model.statusText = message.Summary
		model.statusLevel = message.Level
		sequence := model.statusSequence
		return model, tea.Tick(statusFadeDelay, func(time.Time) tea.Msg {
			return statusFadeMsg{sequence: sequence}
		})

	case statusFadeMsg:
		if message.sequence == model.statusSequence {
			model.statusText = ""
		}
		return model, nil

	case submitDoneMsg:
		model.submitting = false
		if message.err != nil {
			model.submitErr = message.err
			return model, nil
		}
		model.done = true
		return model, tea.Quit

	case tea.KeyMsg:
		if key.Matches(message, model.keys.Quit) {
			model.aborted = true
			return model, tea.Quit
		}
		if model.submitting {
			return model, nil
		}
		return model.handleKey(message)
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	field := model.focusedField()
	spec := model.spec(field)

	switch {
	case key.Matches(message, model.keys.Next):
		return model.advance()
	case key.Matches(message, model.keys.Prev):
		model.engine.Prev()
		model.submitErr = nil
		model.enterStep()
		return model, nil
	case key.Matches(message, model.keys.FocusNext):
		if len(model.fields) > 0 {
			model.focus = (model.focus + 1) % len(model.fields)
			model.applyFocus()
		}
		return model, nil
	case key.Matches(message, model.keys.FocusPrev):
		if len(model.fields) > 0 {
			model.focus = (model.focus + len(model.fields) - 1) % len(model.fields)
			model.applyFocus()
		}
		return model, nil
	case spec.Kind == KindBool && key.Matches(message, model.keys.Toggle):
		model.engine.SetBool(field, !model.engine.Values().Bool(field))
		return model, nil
	}

	input, ok := model.inputs[field]
	if !ok {
		return model, nil
	}
	var cmd tea.Cmd
	input, cmd = input.Update(message)
	model.inputs[field] = input
	model.store(field, input.Value())
	return model, cmd
}

// store writes an input's text into the engine. Choice inputs hold a
// query; the engine gets the best-ranked choice's value.
func (model Model) store(field, text string) {
	spec := model.spec(field)
	if spec.Kind != KindChoice {
		model.engine.Set(field, text)
		return
	}
	if strings.TrimSpace(text) == "" {
		model.engine.Set(field, "")
		return
	}
	ranked := tui.Rank(choiceLabels(spec.Choices), text)
	if len(ranked) == 0 {
		model.engine.Set(field, "")
		return
	}
	model.engine.Set(field, spec.Choices[ranked[0].Index].Value)
}

func (model Model) advance() (tea.Model, tea.Cmd) {
	state := model.engine.State()
	if state.CurrentStep == state.Steps {
		if state.Submitted {
			return model, tea.Quit
		}
		if !model.engine.StepValid(state.CurrentStep) {
			// Populate the field errors without leaving the step.
			model.engine.Next()
			return model, nil
		}
		model.submitting = true
		model.submitErr = nil
		engine, ctx := model.engine, model.ctx
		return model, func() tea.Msg {
			return submitDoneMsg{err: engine.Submit(ctx)}
		}
	}
	if _, err := model.engine.Next(); err == nil {
		model.enterStep()
	}
	return model, nil
}

// View implements tea.Model.
func (model Model) View() string {
	state := model.engine.State()
	_, definition := model.engine.Step()
	theme := model.theme
	var lines []string

	progress := make([]string, state.Steps)
	for index := range progress {
		switch {
		case index+1 < state.CurrentStep:
			progress[index] = theme.Badge("●", theme.StatusDone)
		case index+1 == state.CurrentStep:
			progress[index] = theme.Badge("●", theme.Accent)
		default:
			progress[index] = theme.Faint("○")
		}
	}
	lines = append(lines,
		theme.Header(model.title)+"  "+strings.Join(progress, " "),
		theme.Faint(fmt.Sprintf("Step %d of %d: ", state.CurrentStep, state.Steps))+theme.Header(definition.Title),
		"")

	for index, field := range model.fields {
		spec := model.spec(field)
		label := spec.Label
		if index == model.focus {
			label = lipgloss.NewStyle().Foreground(theme.Accent).Render("› " + label)
		} else {
			label = "  " + label
		}

		switch spec.Kind {
		case KindBool:
			box := "[ ]"
			if state.Fields.Bool(field) {
				box = "[x]"
			}
			lines = append(lines, label+"  "+box)
		default:
			lines = append(lines, label)
			lines = append(lines, "    "+model.inputs[field].View())
			if spec.Kind == KindChoice && index == model.focus {
				lines = append(lines, model.suggestions(spec, model.inputs[field].Value(), state.Fields[field])...)
			}
		}
		if message := state.Errors[field]; message != "" {
			lines = append(lines, "    "+theme.Error(message))
		}
	}

	lines = append(lines, "")
	switch {
	case model.submitting:
		lines = append(lines, theme.Faint("Submitting…"))
	case state.Submitted:
		lines = append(lines, theme.Badge("Submitted.", theme.StatusDone))
	case state.Errors[form.SubmitErrorKey] != "":
		lines = append(lines, theme.Error(state.Errors[form.SubmitErrorKey]))
		if model.submitErr != nil {
			lines = append(lines, theme.Faint(tui.Truncate(model.submitErr.Error(), model.width)))
		}
	}
	if model.statusText != "" {
		text := tui.Truncate(model.statusText, model.width)
		if model.statusLevel >= slog.LevelError {
			lines = append(lines, theme.Error(text))
		} else {
			lines = append(lines, theme.Faint(text))
		}
	}
	lines = append(lines, model.help.View(model.keys))
	return strings.Join(lines, "\n")
}

func (model Model) suggestions(spec FieldSpec, query, selected string) []string {
	labels := choiceLabels(spec.Choices)
	var ranked []tui.Ranked
	if strings.TrimSpace(query) == "" {
		for index := range labels {
			ranked = append(ranked, tui.Ranked{Index: index})
		}
	} else {
		ranked = tui.Rank(labels, query)
	}
	if len(ranked) == 0 {
		return []string{"      " + model.theme.Faint("no matches")}
	}
	highlight := lipgloss.NewStyle().Foreground(model.theme.MatchForeground).Bold(true)
	var lines []string
	for _, entry := range ranked[:min(len(ranked), maxSuggestions)] {
		choice := spec.Choices[entry.Index]
		marker := "      "
		if choice.Value == selected {
			marker = "    ▸ "
		}
		lines = append(lines, marker+highlightPositions(choice.Label, entry.Positions, highlight))
	}
	if len(ranked) > len(lines) {
		bar := strings.Split(tui.RenderScrollbar(model.theme, len(lines), len(ranked), len(lines), 0, false), "\n")
		width := 0
		for _, line := range lines {
			width = max(width, lipgloss.Width(line))
		}
		for index := range lines {
			lines[index] += strings.Repeat(" ", width-lipgloss.Width(lines[index])+1) + bar[index]
		}
	}
	return lines
}

func highlightPositions(text string, positions []int, style lipgloss.Style) string {
	if len(positions) == 0 {
		return text
	}
	matched := make(map[int]bool, len(positions))
	for _, position := range positions {
		matched[position] = true
	}
	var builder strings.Builder
	for index, r := range []rune(text) {
		if matched[index] {
			builder.WriteString(style.Render(string(r)))
		} else {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

func choiceLabels(choices []Choice) []string {
	labels := make([]string, len(choices))
	for index, choice := range choices {
		labels[index] = choice.Label
	}
	return labels
}

func choiceLabel(choices []Choice, value string) string {
	if value == "" {
		return ""
	}
	for _, choice := range choices {
		if choice.Value == value {
			return choice.Label
		}
	}
	return value
}

// Done reports whether the wizard submitted successfully.
func (model Model) Done() bool { return model.done }

// Run shows the wizard on the terminal until it is submitted or
// aborted.
func Run(ctx context.Context, model Model, options ...tea.ProgramOption) error {
	options = append([]tea.ProgramOption{tea.WithContext(ctx)}, options...)
	program := tea.NewProgram(model, options...)
	if model.status != nil {
		model.status.attach(program)
		defer model.status.detach()
	}
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("running wizard: %w", err)
	}
	result := final.(Model)
	if !result.done {
		return ErrAborted
	}
	return nil
}
