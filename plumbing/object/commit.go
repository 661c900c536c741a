package object

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/storer"
)

// Commit points to a single tree, carrying the log message and the
// identity of who created the snapshot, with meta information about
// the commit.
type Commit struct {
	Hash         plumbing.Hash
	Author       Signature
	Committer    Signature
	Message      string
	TreeHash     plumbing.Hash
	ParentHashes []plumbing.Hash
	PGPSignature string

	s storer.EncodedObjectStorer
}

// ID returns the object hash of the commit.
func (c *Commit) ID() plumbing.Hash {
	return c.Hash
}

// Type returns the type of object.
func (c *Commit) Type() plumbing.ObjectType {
	return plumbing.CommitObject
}

// Tree returns the tree from the commit.
func (c *Commit) Tree() (*Tree, error) {
	return GetTree(c.s, c.TreeHash)
}

// Parents returns an iterator to the parents of the commit.
func (c *Commit) Parents() CommitIter {
	return NewCommitIter(c.s, storer.NewEncodedObjectLookupIter(c.s, plumbing.CommitObject, c.ParentHashes))
}

// NumParents returns the number of parents of the commit.
func (c *Commit) NumParents() int {
	return len(c.ParentHashes)
}

// Parent returns the ith parent of a commit.
func (c *Commit) Parent(i int) (*Commit, error) {
	if i < 0 || i >= len(c.ParentHashes) {
		return nil, ErrParentNotFound
	}

	return GetCommit(c.s, c.ParentHashes[i])
}

// Decode transforms a plumbing.EncodedObject into a Commit struct.
func (c *Commit) Decode(o plumbing.EncodedObject) (err error) {
	if o.Type() != plumbing.CommitObject {
		return plumbing.ErrInvalidType
	}

	c.Hash = o.Hash()

	r, err := o.Reader()
	if err != nil {
		return err
	}
	defer r.Close()

	reader := bufio.NewReader(r)
	for {
		line, readErr := reader.ReadBytes('\n')
		if len(line) == 0 && readErr != nil {
			if readErr == io.EOF {
				break
			}
			return readErr
		}

		line = bytes.TrimRight(line, "\n")
		if len(line) == 0 {
			break
		}

		split := bytes.SplitN(line, []byte{' '}, 2)
		switch string(split[0]) {
		case "tree":
			c.TreeHash = plumbing.NewHash(string(split[1]))
		case "parent":
			c.ParentHashes = append(c.ParentHashes, plumbing.NewHash(string(split[1])))
		case "author":
			c.Author.Decode(split[1])
		case "committer":
			c.Committer.Decode(split[1])
		case "gpgsig":
			sig, err := readPGPSignature(reader, line)
			if err != nil {
				return err
			}
			c.PGPSignature = sig
		}

		if readErr == io.EOF {
			break
		}
	}

	msg, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	c.Message = string(msg)

	return nil
}

func readPGPSignature(r *bufio.Reader, first []byte) (string, error) {
	var b bytes.Buffer
	b.Write(bytes.TrimPrefix(first, []byte("gpgsig ")))
	b.WriteByte('\n')

	for {
		line, err := r.ReadBytes('\n')
		b.Write(line)
		if err != nil {
			return b.String(), err
		}
		if !strings.HasPrefix(string(line), " ") {
			break
		}
	}

	return b.String(), nil
}

// Encode transforms a Commit into a plumbing.EncodedObject.
func (c *Commit) Encode(o plumbing.EncodedObject) error {
	o.SetType(plumbing.CommitObject)

	w, err := o.Writer()
	if err != nil {
		return err
	}
	defer w.Close()

	var b bytes.Buffer
	fmt.Fprintf(&b, "tree %s\n", c.TreeHash.String())
	for _, h := range c.ParentHashes {
		fmt.Fprintf(&b, "parent %s\n", h.String())
	}
	fmt.Fprintf(&b, "author %s\n", c.Author.String())
	fmt.Fprintf(&b, "committer %s\n", c.Committer.String())
	if c.PGPSignature != "" {
		fmt.Fprintf(&b, "gpgsig %s", c.PGPSignature)
		if !strings.HasSuffix(c.PGPSignature, "\n") {
			b.WriteByte('\n')
		}
	}
	b.WriteByte('\n')
	b.WriteString(c.Message)

	_, err = io.Copy(w, &b)
	return err
}

func (c *Commit) String() string {
	return fmt.Sprintf(
		"%s %s\nAuthor: %s\nDate:   %s\n\n%s\n",
		plumbing.CommitObject, c.Hash, c.Author.String(),
		c.Author.When.Format("Mon Jan 2 15:04:05 2006 -0700"), c.Message,
	)
}

// CommitIter is a generic closable interface for iterating over commits.
type CommitIter interface {
	Next() (*Commit, error)
	ForEach(func(*Commit) error) error
	Close()
}

type commitIter struct {
	storer.EncodedObjectIter
	s storer.EncodedObjectStorer
}

// NewCommitIter returns a CommitIter for the given object iterator.
func NewCommitIter(s storer.EncodedObjectStorer, iter storer.EncodedObjectIter) CommitIter {
	return &commitIter{iter, s}
}

func (iter *commitIter) Next() (*Commit, error) {
	obj, err := iter.EncodedObjectIter.Next()
	if err != nil {
		return nil, err
	}

	return DecodeCommit(iter.s, obj)
}

func (iter *commitIter) ForEach(cb func(*Commit) error) error {
	return iter.EncodedObjectIter.ForEach(func(obj plumbing.EncodedObject) error {
		c, err := DecodeCommit(iter.s, obj)
		if err != nil {
			return err
		}

		return cb(c)
	})
}

// DecodeCommit decodes an encoded object into a Commit.
func DecodeCommit(s storer.EncodedObjectStorer, o plumbing.EncodedObject) (*Commit, error) {
	c := &Commit{s: s}
	if err := c.Decode(o); err != nil {
		return nil, err
	}

	return c, nil
}
