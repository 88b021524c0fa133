package prompt

// PromptPreset holds reusable constraints and rules for structured prompts.
type PromptPreset struct {
	Constraints []string
	Rules       []string
}

// ApplyPresets prepends preset constraints/rules to a spec.
func ApplyPresets(spec Spec, presets ...PromptPreset) Spec {
	if len(presets) == 0 {
		return spec
	}
	var merged PromptPreset
	for _, p := range presets {
		merged.Constraints = append(merged.Constraints, p.Constraints...)
		merged.Rules = append(merged.Rules, p.Rules...)
	}
	spec.Constraints = append(merged.Constraints, spec.Constraints...)
	spec.Rules = append(merged.Rules, spec.Rules...)
	return spec
}

// PresetStrictJSON enforces strict JSON-only output.
func PresetStrictJSON() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Return strict JSON only.",
			"No markdown, code fences, comments, or trailing commas.",
			"Emit visualType plus exactly the payload fields that type needs.",
		},
	}
}

// PresetVisualFirst bans prose answers and lazy generic shapes.
func PresetVisualFirst() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Always answer with a renderable visual spec, never prose.",
			"Do not fall back to generic shapes or polylines when a specific route matches.",
		},
	}
}

// PresetEducational tunes output for teaching contexts.
func PresetEducational() PromptPreset {
	return PromptPreset{
		Rules: []string{
			"Be precise and educational.",
			"Prefer realistic, labeled data over placeholder values.",
		},
	}
}
