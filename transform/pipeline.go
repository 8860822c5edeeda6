package transform

import (
	"context"
	"fmt"

	"bioimage-transform/bioimage"
)

// Step is one stage of a Pipeline.
type Step struct {
	Name  string
	Apply func(in bioimage.Arrayer) (*bioimage.Image, error)
}

// Bind fixes the options of a filter so it can be used as a Step.
func Bind(name string, filter func(bioimage.Arrayer, ...Option) (*bioimage.Image, error), opts ...Option) Step {
	return Step{
		Name: name,
		Apply: func(in bioimage.Arrayer) (*bioimage.Image, error) {
			return filter(in, opts...)
		},
	}
}

// Pipeline runs steps in order, feeding each result into the next step.
// Replaying a pipeline over the same input reproduces the same image
// identities.
type Pipeline struct {
	steps []Step
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run applies every step to in. It stops at the first failing step and
// checks ctx between steps.
func (p *Pipeline) Run(ctx context.Context, in bioimage.Arrayer) (*bioimage.Image, error) {
	if len(p.steps) == 0 {
		return nil, fmt.Errorf("pipeline has no steps")
	}

	current := in
	var result *bioimage.Image
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out, err := step.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("step %s failed: %w", step.Name, err)
		}
		result = out
		current = out
	}
	return result, nil
}

func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

func (p *Pipeline) InsertStep(index int, step Step) error {
	if index < 0 || index > len(p.steps) {
		return fmt.Errorf("index out of range: %d", index)
	}
	p.steps = append(p.steps[:index], append([]Step{step}, p.steps[index:]...)...)
	return nil
}

func (p *Pipeline) RemoveStep(index int) error {
	if index < 0 || index >= len(p.steps) {
		return fmt.Errorf("index out of range: %d", index)
	}
	p.steps = append(p.steps[:index], p.steps[index+1:]...)
	return nil
}

func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name
	}
	return names
}
