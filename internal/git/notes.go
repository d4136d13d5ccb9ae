package git

import (
	"context"
	"fmt"
)

// FingerprintNotesRef is the notes ref the fingerprint cache persists
// under: one note per rewritten branch tip, body the 40-hex fingerprint
// digest.
const FingerprintNotesRef = "refs/notes/branch-deck/fingerprints"

// Notes accesses the Git notes attached to objects under a single ref.
type Notes struct {
	r    *Repository
	ref  string
	exec execer
}

// Notes returns a Notes instance for the given ref. If ref is empty,
// the default ref "refs/notes/commits" is used.
func (r *Repository) Notes(ref string) *Notes {
	if ref == "" {
		ref = "refs/notes/commits"
	}

	return &Notes{r: r, ref: ref, exec: r.exec}
}

// AddNoteOptions configures the behavior of Notes.Add.
type AddNoteOptions struct {
	// Force overwrites an existing note. Without it, Add fails if a
	// note is already attached to obj.
	Force bool
}

// Add attaches note msg to object obj.
func (n *Notes) Add(ctx context.Context, obj, msg string, opts *AddNoteOptions) error {
	if opts == nil {
		opts = &AddNoteOptions{}
	}

	args := make([]string, 0, 8)
	args = append(args, "notes", "--ref", n.ref, "add")
	if opts.Force {
		args = append(args, "-f")
	}
	args = append(args, "-m", msg, obj)

	if err := n.r.gitCmd(ctx, args...).Run(n.exec); err != nil {
		return fmt.Errorf("notes add: %w", err)
	}
	return nil
}

// Show returns the contents of the note attached to obj, if any. It
// returns [ErrNotExist] if obj has no note.
func (n *Notes) Show(ctx context.Context, obj string) (string, error) {
	out, err := n.r.gitCmd(ctx, "notes", "--ref", n.ref, "show", obj).OutputString(n.exec)
	if err != nil {
		return "", ErrNotExist
	}
	return out, nil
}

// Remove detaches the note from obj, if any. It is not an error for obj
// to have no note.
func (n *Notes) Remove(ctx context.Context, obj string) error {
	err := n.r.gitCmd(ctx, "notes", "--ref", n.ref, "remove", "--ignore-missing", obj).Run(n.exec)
	if err != nil {
		return fmt.Errorf("notes remove: %w", err)
	}
	return nil
}

// MoveFingerprint records fingerprint on newTip and removes any stale
// fingerprint note left on oldTip. Git notes has no multi-object
// transaction, so this runs as two sequential ref-backed writes; if the
// process dies between them the only visible effect is a stale note on
// an object no branch points to any more, which the next fingerprint
// lookup simply ignores.
func (n *Notes) MoveFingerprint(ctx context.Context, oldTip, newTip Hash, fingerprint string) error {
	if err := n.Add(ctx, newTip.String(), fingerprint, &AddNoteOptions{Force: true}); err != nil {
		return err
	}
	if oldTip.IsZero() || oldTip == newTip {
		return nil
	}
	return n.Remove(ctx, oldTip.String())
}
