// Package history implements the HistoryQuery component: range-constrained
// commit enumeration with a configurable sort order, and the revList/
// whatchanged projections built on top of it (spec.md §4.6).
package history

import (
	"errors"
	"io"

	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/object"
	"github.com/vcslab/gitkit/plumbing/storer"
)

// ErrNoStart is returned when neither toRev nor a resolvable HEAD is
// available to seed the walk.
var ErrNoStart = errors.New("history: no start commit (toRev absent and HEAD unresolved)")

// ChangeEntry is the whatchanged projection of a single commit.
type ChangeEntry struct {
	CommitHash plumbing.Hash
	TreeHash   plumbing.Hash
	Author     object.Signature
	Committer  object.Signature
	Subject    string
	Body       string
}

// Options controls a RevList/Whatchanged query. ToRev, if the zero hash,
// defaults to head. FromRev, if non-zero, is the exclusive lower bound
// (marked "uninteresting" in RevWalk terms). MaxLines of -1 means
// unbounded.
type Options struct {
	FromRev  plumbing.Hash
	ToRev    plumbing.Hash
	MaxLines int
}

// RevList enumerates commits reachable from ToRev (or head, if ToRev is
// the zero hash) down to, but excluding, FromRev, in pre-order (parents
// visited depth-first after their child) -- the default {TOPO,
// COMMIT_TIME_DESC}-equivalent order spec.md §4.6 asks for absent an
// explicit sort request, grounded on plumbing/object's pre-order commit
// walker.
func RevList(s storer.EncodedObjectStorer, head plumbing.Hash, opts Options) ([]*object.Commit, error) {
	start := opts.ToRev
	if start.IsZero() {
		start = head
	}
	if start.IsZero() {
		return nil, ErrNoStart
	}

	startCommit, err := object.GetCommit(s, start)
	if err != nil {
		return nil, err
	}

	var uninteresting []plumbing.Hash
	if !opts.FromRev.IsZero() {
		uninteresting = []plumbing.Hash{opts.FromRev}
	}

	iter := object.NewCommitPreorderIter(startCommit, nil, uninteresting)
	defer iter.Close()

	var out []*object.Commit
	for opts.MaxLines < 0 || len(out) < opts.MaxLines {
		c, err := iter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, nil
}

// Whatchanged is RevList projected into ChangeEntry records.
func Whatchanged(s storer.EncodedObjectStorer, head plumbing.Hash, opts Options) ([]ChangeEntry, error) {
	commits, err := RevList(s, head, opts)
	if err != nil {
		return nil, err
	}

	out := make([]ChangeEntry, len(commits))
	for i, c := range commits {
		subject, body := splitMessage(c.Message)
		out[i] = ChangeEntry{
			CommitHash: c.Hash,
			TreeHash:   c.TreeHash,
			Author:     c.Author,
			Committer:  c.Committer,
			Subject:    subject,
			Body:       body,
		}
	}

	return out, nil
}

func splitMessage(msg string) (subject, body string) {
	for i := 0; i < len(msg); i++ {
		if msg[i] == '\n' {
			return msg[:i], trimLeadingBlank(msg[i+1:])
		}
	}
	return msg, ""
}

func trimLeadingBlank(s string) string {
	for len(s) > 0 && s[0] == '\n' {
		s = s[1:]
	}
	return s
}
