// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// SubmitErrorKey is the Errors key holding the submission failure.
const SubmitErrorKey = "submit"

// GenericSubmitMessage is shown when the SubmitFunc fails.
const GenericSubmitMessage = "There was an error submitting the form. Please try again."

var (
	// ErrSubmitInFlight is returned by Submit while an earlier call is
	// still running.
	ErrSubmitInFlight = errors.New("form: submission already in progress")

	// ErrNotLastStep is returned by Submit before the last step.
	ErrNotLastStep = errors.New("form: submit is only allowed on the last step")

	// ErrAlreadySubmitted is returned by Submit after a successful
	// submission until Reset.
	ErrAlreadySubmitted = errors.New("form: already submitted")
)

// Values holds field values by name. Booleans are stored as "true"
// or "false".
type Values map[string]string

// Bool reports whether field holds "true".
func (v Values) Bool(field string) bool { return v[field] == "true" }

// Trimmed returns field with surrounding whitespace removed.
func (v Values) Trimmed(field string) string { return strings.TrimSpace(v[field]) }

// Check reports whether value is acceptable. values is the whole form
// so cross-field rules can see their peers.
type Check func(value string, values Values) bool

// Rule validates one field. When, if set, makes the rule conditional
// on the rest of the form.
type Rule struct {
	Field   string
	Check   Check
	Message string
	When    func(Values) bool
}

// Step is one page of a wizard.
type Step struct {
	Title  string
	Fields []string
	Rules  []Rule
}

// SubmitFunc performs the wizard's external effect (account creation,
// donation request).
type SubmitFunc func(ctx context.Context, values Values) error

// State is a snapshot of the engine. CurrentStep is 1-based.
type State struct {
	CurrentStep int
	Steps       int
	Fields      Values
	Errors      map[string]string
	Submitted   bool
	Submitting  bool
}

// ValidationError lists the failing fields of one step.
type ValidationError struct {
	Step   int
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	fields := slices.Sorted(maps.Keys(e.Errors))
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Errors[field]))
	}
	return fmt.Sprintf("step %d is incomplete (%s)", e.Step, strings.Join(parts, "; "))
}

// Engine is the wizard state machine. Safe for concurrent use.
type Engine struct {
	steps    []Step
	defaults Values
	submit   SubmitFunc

	mu           sync.Mutex
	current      int
	fields       Values
	errors       map[string]string
	submitted    bool
	submitting   bool
	onStepChange []func(step int)
}

// New returns an engine on step 1 with fields set to defaults.
func New(steps []Step, defaults Values, submit SubmitFunc) (*Engine, error) {
	if len(steps) == 0 {
		return nil, errors.New("form: at least one step is required")
	}
	if submit == nil {
		return nil, errors.New("form: submit function is required")
	}
	engine := &Engine{
		steps:    steps,
		defaults: maps.Clone(defaults),
		submit:   submit,
	}
	if engine.defaults == nil {
		engine.defaults = Values{}
	}
	engine.resetLocked()
	return engine, nil
}

// OnStepChange registers fn to run with the new step number after
// every successful Next or Prev. Callbacks run without the lock held.
func (e *Engine) OnStepChange(fn func(step int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStepChange = append(e.onStepChange, fn)
}

// State returns a snapshot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		CurrentStep: e.current,
		Steps:       len(e.steps),
		Fields:      maps.Clone(e.fields),
		Errors:      maps.Clone(e.errors),
		Submitted:   e.submitted,
		Submitting:  e.submitting,
	}
}

// Step returns the current 1-based step and its definition.
func (e *Engine) Step() (int, Step) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current, e.steps[e.current-1]
}

// Get returns a field value.
func (e *Engine) Get(field string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fields[field]
}

// Values returns a copy of every field.
func (e *Engine) Values() Values {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.fields)
}

// Set writes a field and clears its error.
func (e *Engine) Set(field, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fields[field] = value
	delete(e.errors, field)
}

// SetBool writes a boolean field.
func (e *Engine) SetBool(field string, value bool) {
	if value {
		e.Set(field, "true")
		return
	}
	e.Set(field, "false")
}

// Load writes every value in values, as repeated Set calls would.
func (e *Engine) Load(values Values) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for field, value := range values {
		e.fields[field] = value
		delete(e.errors, field)
	}
}

// Next validates the current step and advances when it passes. It
// returns the resulting step and the validation failure, if any.
func (e *Engine) Next() (int, error) {
	e.mu.Lock()
	failures := validate(e.steps[e.current-1], e.fields)
	if len(failures) > 0 {
		e.errors = failures
		step := e.current
		e.mu.Unlock()
		return step, &ValidationError{Step: step, Errors: maps.Clone(failures)}
	}
	e.errors = make(map[string]string)
	changed := e.current < len(e.steps)
	if changed {
		e.current++
	}
	step := e.current
	callbacks := slices.Clone(e.onStepChange)
	e.mu.Unlock()

	if changed {
		for _, callback := range callbacks {
			callback(step)
		}
	}
	return step, nil
}

// Prev moves back one step without validating and clears errors.
func (e *Engine) Prev() int {
	e.mu.Lock()
	e.errors = make(map[string]string)
	changed := e.current > 1
	if changed {
		e.current--
	}
	step := e.current
	callbacks := slices.Clone(e.onStepChange)
	e.mu.Unlock()

	if changed {
		for _, callback := range callbacks {
			callback(step)
		}
	}
	return step
}

// StepValid reports whether step i (1-based) passes validation with
// the current values. It does not touch Errors.
func (e *Engine) StepValid(i int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 1 || i > len(e.steps) {
		return false
	}
	return len(validate(e.steps[i-1], e.fields)) == 0
}

// Submit re-validates the last step and runs the SubmitFunc. On a
// SubmitFunc failure the engine stays on the last step with
// Errors["submit"] set and the underlying error is returned.
func (e *Engine) Submit(ctx context.Context) error {
	e.mu.Lock()
	switch {
	case e.submitting:
		e.mu.Unlock()
		return ErrSubmitInFlight
	case e.submitted:
		e.mu.Unlock()
		return ErrAlreadySubmitted
	case e.current != len(e.steps):
		e.mu.Unlock()
		return ErrNotLastStep
	}
	failures := validate(e.steps[e.current-1], e.fields)
	if len(failures) > 0 {
		e.errors = failures
		e.mu.Unlock()
		return &ValidationError{Step: e.current, Errors: maps.Clone(failures)}
	}
	e.errors = make(map[string]string)
	e.submitting = true
	values := maps.Clone(e.fields)
	e.mu.Unlock()

	err := e.submit(ctx, values)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.submitting = false
	if err != nil {
		e.errors[SubmitErrorKey] = GenericSubmitMessage
		return fmt.Errorf("submitting form: %w", err)
	}
	e.submitted = true
	return nil
}

// Reset restores defaults, returns to step 1 and clears errors and the
// submitted flag.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.current = 1
	e.fields = maps.Clone(e.defaults)
	e.errors = make(map[string]string)
	e.submitted = false
}

// validate returns the first failing message per field.
func validate(step Step, values Values) map[string]string {
	failures := make(map[string]string)
	for _, rule := range step.Rules {
		if _, failed := failures[rule.Field]; failed {
			continue
		}
		if rule.When != nil && !rule.When(values) {
			continue
		}
		if !rule.Check(values[rule.Field], values) {
			failures[rule.Field] = rule.Message
		}
	}
	return failures
}
