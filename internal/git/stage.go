package git

import (
	"fmt"
	"strconv"
)

// Mode is the octal file mode of a Git tree or index entry.
type Mode int

// Common file modes.
const (
	ZeroMode    Mode = 0o000000
	RegularMode Mode = 0o100644
	ExecMode    Mode = 0o100755
	SymlinkMode Mode = 0o120000
	DirMode     Mode = 0o040000
)

// ParseMode parses the octal string representation of a file mode.
func ParseMode(s string) (Mode, error) {
	i, err := strconv.ParseInt(s, 8, 32)
	return Mode(i), err
}

func (m Mode) String() string { return fmt.Sprintf("%06o", m) }

// ConflictStage identifies which side of a three-way merge an index
// entry belongs to, per git's own numbering (man git-ls-files,
// "Unmerged status" section).
type ConflictStage int

// Conflict stage values, matching the numbers git itself assigns.
const (
	// ConflictStageOk marks an entry with no conflict (stage 0); such
	// entries never appear in `ls-files --unmerged` output.
	ConflictStageOk ConflictStage = 0

	// ConflictStageBase is the merge-base version of the file.
	ConflictStageBase ConflictStage = 1

	// ConflictStageOurs is the version from the side being cherry-picked
	// onto -- the worker worktree's HEAD before the pick.
	ConflictStageOurs ConflictStage = 2

	// ConflictStageTheirs is the version introduced by the commit being
	// cherry-picked.
	ConflictStageTheirs ConflictStage = 3
)

func parseConflictStage(s string) (ConflictStage, error) {
	switch s {
	case "0":
		return ConflictStageOk, nil
	case "1":
		return ConflictStageBase, nil
	case "2":
		return ConflictStageOurs, nil
	case "3":
		return ConflictStageTheirs, nil
	default:
		return 0, fmt.Errorf("invalid conflict stage: %q", s)
	}
}

func (s ConflictStage) String() string {
	switch s {
	case ConflictStageOk:
		return "ok"
	case ConflictStageBase:
		return "base"
	case ConflictStageOurs:
		return "ours"
	case ConflictStageTheirs:
		return "theirs"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}
