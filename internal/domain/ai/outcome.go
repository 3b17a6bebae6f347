package ai

// Stage names which step of the fallback chain produced (or failed to
// produce) a valid extraction. The chain is strictly ordered: a later
// stage runs only after the previous one failed.
type Stage string

const (
	// StageDirect: the model response validated against the schema as-is.
	StageDirect Stage = "direct"
	// StageCoerced: response recovered by stripping fences, isolating the
	// outermost JSON object and defaulting missing top-level keys.
	StageCoerced Stage = "coerced"
	// StageRepaired: a follow-up repair prompt produced valid JSON.
	StageRepaired Stage = "repaired"
	// StageFailed: the chain is exhausted; terminal.
	StageFailed Stage = "failed"
)

var stageRank = map[Stage]int{
	StageDirect:   0,
	StageCoerced:  1,
	StageRepaired: 2,
	StageFailed:   3,
}

// WorseOf returns the later of two stages in chain order. Chunked
// extraction reports the worst stage any chunk needed.
func WorseOf(a, b Stage) Stage {
	if stageRank[b] > stageRank[a] {
		return b
	}
	return a
}
