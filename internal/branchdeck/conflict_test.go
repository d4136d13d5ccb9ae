package branchdeck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/develar/branch-deck/internal/git"
)

func TestClassifyFileConflict(t *testing.T) {
	tests := []struct {
		name string
		fc   FileConflict
		want FileConflictStatus
	}{
		{
			name: "both modified",
			fc:   FileConflict{BaseBlob: "b", OursBlob: "o", TheirsBlob: "t"},
			want: FileConflictBothModified,
		},
		{
			name: "deleted by us",
			fc:   FileConflict{BaseBlob: "b", TheirsBlob: "t"},
			want: FileConflictDeletedByUs,
		},
		{
			name: "deleted by them",
			fc:   FileConflict{BaseBlob: "b", OursBlob: "o"},
			want: FileConflictDeletedByThem,
		},
		{
			name: "both added",
			fc:   FileConflict{OursBlob: "o", TheirsBlob: "t"},
			want: FileConflictBothAdded,
		},
		{
			name: "added by us",
			fc:   FileConflict{OursBlob: "o"},
			want: FileConflictAddedByUs,
		},
		{
			name: "added by them",
			fc:   FileConflict{TheirsBlob: "t"},
			want: FileConflictAddedByThem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyFileConflict(tt.fc))
		})
	}
}

func TestIntersect(t *testing.T) {
	conflicting := map[string]struct{}{"a.go": {}, "b.go": {}}

	assert.Equal(t, map[string]struct{}{"b.go": {}}, intersect(map[string]struct{}{"b.go": {}}, conflicting))
	assert.Empty(t, intersect(map[string]struct{}{"c.go": {}}, conflicting))
	assert.Empty(t, intersect(map[string]struct{}{}, conflicting))
}

func TestSummarizeDivergence(t *testing.T) {
	plan := BranchPlan{Baseline: Commit{Hash: git.Hash("abcdef1234567890")}}
	failed := Commit{Hash: git.Hash("1234567890abcdef")}

	got := summarizeDivergence(plan, failed)
	assert.Contains(t, got, failed.Hash.Short())
	assert.Contains(t, got, plan.Baseline.Hash.Short())
}
