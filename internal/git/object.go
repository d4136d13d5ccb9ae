package git

import (
	"bytes"
	"context"
	"fmt"

	"github.com/develar/branch-deck/internal/must"
)

// Type specifies the type of a Git object.
type Type string

// Supported object types.
const (
	BlobType   Type = "blob"
	CommitType Type = "commit"
	TreeType   Type = "tree"
)

func (t Type) String() string { return string(t) }

// ReadObject reads the object with the given hash and returns its raw
// contents.
func (r *Repository) ReadObject(ctx context.Context, typ Type, hash Hash) ([]byte, error) {
	must.NotBeBlankf(string(typ), "object type must not be blank")
	must.NotBeBlankf(string(hash), "object hash must not be blank")

	var buf bytes.Buffer
	cmd := r.gitCmd(ctx, "cat-file", typ.String(), hash.String()).Stdout(&buf)
	if err := cmd.Run(r.exec); err != nil {
		return nil, fmt.Errorf("cat-file %s %s: %w", typ, hash.Short(), err)
	}
	return buf.Bytes(), nil
}

// ObjectExists reports whether the object with the given hash exists in
// the object database.
func (r *Repository) ObjectExists(ctx context.Context, hash Hash) bool {
	return r.gitCmd(ctx, "cat-file", "-e", hash.String()).Run(r.exec) == nil
}
