package hooks

import "testing"

func TestWindowName(t *testing.T) {
	cases := []struct {
		variant     spawnVariant
		reviewRound int
		want        string
	}{
		{variantWorker, 0, "worker"},
		{variantWorkerRespawn, 0, "worker_respawn"},
		{variantStuckFix, 3, "stuck_fix"},
		{variantReviewer, 0, "review-1"},
		{variantReviewer, 2, "review-3"},
	}
	for _, c := range cases {
		got := windowName(c.variant, c.reviewRound)
		if got != c.want {
			t.Errorf("windowName(%s, %d) = %q, want %q", c.variant, c.reviewRound, got, c.want)
		}
	}
}

func TestHarnessCommand(t *testing.T) {
	cases := []struct {
		harness string
		variant spawnVariant
		want    string
	}{
		{"claude", variantWorker, "claude"},
		{"claude", variantReviewer, "claude --permission-mode plan"},
		{"aider", variantWorkerFix, "aider --restore-chat-history"},
		{"codex", variantStuckFix, "codex resume --last"},
		{"unknown-harness", variantWorker, ""},
	}
	for _, c := range cases {
		got := harnessCommand(c.harness, c.variant)
		if got != c.want {
			t.Errorf("harnessCommand(%s, %s) = %q, want %q", c.harness, c.variant, got, c.want)
		}
	}
}
