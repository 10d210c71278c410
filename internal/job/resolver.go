package job

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Action is what the worker does next about one conflicting entry.
type Action int

const (
	// ProceedOverwrite clears the destination and re-runs the atomic
	// writer, so the temp-then-rename invariant still holds.
	ProceedOverwrite Action = iota
	// Skip advances to the next entry without touching the destination.
	Skip
	// ProceedWithRenamedDest substitutes a new destination name and
	// re-enters the same entry.
	ProceedWithRenamedDest
	// AbortJob stops scheduling further entries. Already-completed
	// entries are preserved; file managers do not roll back.
	AbortJob
)

// MapDecision maps a user decision for a conflict to the worker's next
// action. Pure function, no I/O. For ProceedWithRenamedDest the returned
// string is the substitute destination name; a rename decision without a
// usable name falls back to a generated one.
func MapDecision(req ConflictRequest, dec ConflictDecision) (Action, string) {
	switch dec.Choice {
	case ChoiceOverwrite:
		return ProceedOverwrite, ""
	case ChoiceSkip:
		return Skip, ""
	case ChoiceRename:
		name := strings.TrimSpace(dec.NewName)
		if name == "" || name == filepath.Base(req.Dest) {
			return ProceedWithRenamedDest, suggestName(filepath.Base(req.Dest), 1)
		}
		return ProceedWithRenamedDest, name
	default:
		return AbortJob, ""
	}
}

// UpgradePolicy returns the policy for the remainder of the job after a
// decision. Decisions without ApplyToAll leave the policy unchanged;
// cancel never upgrades.
func UpgradePolicy(current OverwritePolicy, dec ConflictDecision) OverwritePolicy {
	if !dec.ApplyToAll {
		return current
	}
	switch dec.Choice {
	case ChoiceOverwrite:
		return OverwriteAll
	case ChoiceSkip:
		return SkipAll
	case ChoiceRename:
		return RenameAll
	default:
		return current
	}
}

// suggestName builds a " (copy)"-style variant of name, keeping the
// extension: "a.txt" -> "a (copy).txt", then "a (copy 2).txt" and so on.
func suggestName(name string, attempt int) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if attempt <= 1 {
		return fmt.Sprintf("%s (copy)%s", stem, ext)
	}
	return fmt.Sprintf("%s (copy %d)%s", stem, attempt, ext)
}

// availableName finds a non-existing " (copy)" variant of dst within its
// directory, used by the RenameAll policy.
func availableName(dst string) string {
	dir := filepath.Dir(dst)
	base := filepath.Base(dst)
	for attempt := 1; ; attempt++ {
		candidate := suggestName(base, attempt)
		if _, err := os.Lstat(filepath.Join(dir, candidate)); err != nil {
			return candidate
		}
	}
}
