package service

import (
	"caradvisor/internal/model"
)

type planStep struct {
	state model.InterviewState
	field model.Field
	text  string
}

// interviewPlan is the fixed question order. The planner only moves forward
// through it.
var interviewPlan = []planStep{
	{model.StateAskBudget, model.FieldBudget,
		"What is your budget for the car? A single figure like 100k or a range like 80-120k works."},
	{model.StateAskFamily, model.FieldFamilySize,
		"How many people will usually ride in the car, including you?"},
	{model.StateAskCondition, model.FieldCondition,
		"Are you looking for a new car, a used car, or are you open to either?"},
	{model.StateAskUsage, model.FieldDrivingEnvironment,
		"Where will you mostly drive: around the city, on highways and expressways, or a mix?"},
	{model.StateAskPreference, model.FieldBodyType,
		"Do you have a preferred body type, such as a hatchback, sedan, SUV or MPV?"},
}

const reaskPrefix = "Sorry, I didn't quite catch that. "

// QuestionPlanner is the interview state machine. It starts at ASK_BUDGET,
// never moves backward, and DONE is terminal.
type QuestionPlanner struct {
	step    int // index into interviewPlan, len(interviewPlan) once done
	reasked bool
}

// NewQuestionPlanner creates a planner in the ASK_BUDGET state
func NewQuestionPlanner() *QuestionPlanner {
	return &QuestionPlanner{}
}

// State returns the current state
func (p *QuestionPlanner) State() model.InterviewState {
	if p.Done() {
		return model.StateDone
	}
	return interviewPlan[p.step].state
}

// Done reports whether the planner reached DONE
func (p *QuestionPlanner) Done() bool {
	return p.step >= len(interviewPlan)
}

// TargetField returns the field the current question asks about
func (p *QuestionPlanner) TargetField() model.Field {
	if p.Done() {
		return ""
	}
	return interviewPlan[p.step].field
}

// Question returns the prompt for the current state, or nil once done
func (p *QuestionPlanner) Question(acc *ProfileAccumulator) *model.Question {
	if p.Done() {
		return nil
	}
	step := interviewPlan[p.step]
	text := step.text
	if p.reasked {
		text = reaskPrefix + text
	}
	return &model.Question{
		State: step.state,
		Field: step.field,
		Index: acc.Answered() + 1,
		Total: acc.MaxQuestions(),
		Text:  text,
	}
}

// Advance moves the planner after an answer has been merged. A question
// whose field is still unset is asked once more before the planner moves
// on to the next state with an unset field.
func (p *QuestionPlanner) Advance(acc *ProfileAccumulator) model.InterviewState {
	if p.Done() {
		return model.StateDone
	}
	if acc.IsComplete() {
		p.step = len(interviewPlan)
		return model.StateDone
	}

	profile := acc.Profile()
	if !profile.Has(interviewPlan[p.step].field) && !p.reasked {
		p.reasked = true
		return p.State()
	}

	p.reasked = false
	for next := p.step + 1; next < len(interviewPlan); next++ {
		if !profile.Has(interviewPlan[next].field) {
			p.step = next
			return p.State()
		}
	}

	p.step = len(interviewPlan)
	return model.StateDone
}

// Finish forces the DONE state
func (p *QuestionPlanner) Finish() {
	p.step = len(interviewPlan)
}
