package generator

import (
	"context"

	"github.com/Bahjat/llms-txt-generator/internal/model"
	"github.com/Bahjat/llms-txt-generator/internal/pipeline"
	"github.com/Bahjat/llms-txt-generator/internal/progress"
)

// Runner executes one generation, publishing progress on out and closing it
// when done.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request, out *progress.Channel) model.ProgressSnapshot
}
