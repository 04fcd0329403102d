package core

import "github.com/huangsam/devpulse/schema"

// BuildPromptContext summarizes the state for one narration step. The focus
// section is only present when the target user matches a developer.
func BuildPromptContext(state *schema.PipelineState, kind schema.PromptKind) schema.PromptContext {
	pc := schema.PromptContext{
		Kind:             kind,
		TimeRange:        state.TimeRange,
		Team:             state.Metrics.Team,
		Dora:             state.Metrics.DoraOrZero(),
		CodeHealth:       state.Metrics.CodeHealthOrZero(),
		ActiveDevelopers: len(state.Metrics.Developers),
		Anomalies:        append([]schema.Anomaly{}, state.Anomalies...),
		TargetUser:       state.TargetUser,
	}
	if kind == schema.NarrativePrompt {
		pc.CodeAnalysis = state.CodeAnalysis
	}
	if dev, ok := state.Metrics.Developers[state.TargetUser]; ok && state.TargetUser != "" {
		pc.Focus = &schema.DeveloperFocus{
			Name:     state.TargetUser,
			Metrics:  dev,
			Velocity: state.Metrics.Velocity[state.TargetUser],
		}
	}
	return pc
}
