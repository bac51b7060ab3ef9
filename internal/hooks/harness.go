package hooks

import "fmt"

// harnessCommand returns the shell command used to spawn a given harness
// in a given spawn variant. Each harness defines its own invocation
// per the glossary's "Harness" entry; callers pass "" through to the
// multiplexer driver for an interactive session when no dedicated
// resume/review flag is known for that harness.
func harnessCommand(harness string, variant spawnVariant) string {
	switch harness {
	case "claude":
		return claudeCommand(variant)
	case "aider":
		return aiderCommand(variant)
	case "codex":
		return codexCommand(variant)
	default:
		return ""
	}
}

func claudeCommand(variant spawnVariant) string {
	switch variant {
	case variantWorker:
		return "claude"
	case variantWorkerRespawn, variantWorkerFix, variantStuckFix:
		return "claude --continue"
	case variantReviewer:
		return "claude --permission-mode plan"
	default:
		return ""
	}
}

func aiderCommand(variant spawnVariant) string {
	switch variant {
	case variantWorker:
		return "aider"
	case variantWorkerRespawn, variantWorkerFix, variantStuckFix:
		return "aider --restore-chat-history"
	case variantReviewer:
		return "aider --review"
	default:
		return ""
	}
}

func codexCommand(variant spawnVariant) string {
	switch variant {
	case variantWorker:
		return "codex"
	case variantWorkerRespawn, variantWorkerFix, variantStuckFix:
		return "codex resume --last"
	case variantReviewer:
		return "codex --review"
	default:
		return ""
	}
}

// spawnVariant is the spawn_agent hook parameter (spec §4.4).
type spawnVariant string

const (
	variantWorker        spawnVariant = "worker"
	variantWorkerRespawn spawnVariant = "worker_respawn"
	variantWorkerFix     spawnVariant = "worker_fix"
	variantReviewer      spawnVariant = "reviewer"
	variantStuckFix      spawnVariant = "stuck_fix"
)

// windowName returns the multiplexer window name a spawn variant opens.
// The reviewer variant is numbered by review round so successive review
// cycles get distinct windows (review-1, review-2, ...), matching the
// sample trace where the first review cycle opens window "review-1".
func windowName(variant spawnVariant, reviewRound int) string {
	if variant == variantReviewer {
		return fmt.Sprintf("review-%d", reviewRound+1)
	}
	return string(variant)
}
