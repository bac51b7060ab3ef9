package hooks

import (
	"context"

	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
)

// incrementReviewRound increments task.ReviewRound and saves it. The
// transition table caps further agent-review exits at review_round >= 2
// via its conditions; this hook only ever increments.
func incrementReviewRound(ctx context.Context, env *Env, task *models.Task) error {
	task.ReviewRound++
	return store.SaveTask(env.DataDir, task)
}
