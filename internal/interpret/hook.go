package interpret

import "context"

// Stage names a step of the interpretation chain as it starts.
type Stage string

const (
	StageRouting   Stage = "routing"
	StageRules     Stage = "rules"
	StageMermaid   Stage = "mermaid"
	StageImage     Stage = "image"
	StageLLM       Stage = "llm"
	StageNormalize Stage = "normalize"
	StageFallback  Stage = "fallback"
)

// StageHook receives progress events. The streaming endpoint forwards them
// to the client while the chain runs.
type StageHook func(stage Stage, detail string)

type ctxKeyStageHook struct{}

// WithStageHook attaches a progress callback to the context.
func WithStageHook(ctx context.Context, hook StageHook) context.Context {
	return context.WithValue(ctx, ctxKeyStageHook{}, hook)
}

func stageHookFrom(ctx context.Context) StageHook {
	if v := ctx.Value(ctxKeyStageHook{}); v != nil {
		if h, ok := v.(StageHook); ok {
			return h
		}
	}
	return nil
}

func notify(ctx context.Context, stage Stage, detail string) {
	if hook := stageHookFrom(ctx); hook != nil {
		hook(stage, detail)
	}
}
