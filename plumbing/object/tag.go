package object

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/storer"
)

// Tag represents an annotated tag object. It points to a single object of
// any type and carries a message plus the identity of whoever tagged it.
type Tag struct {
	Hash       plumbing.Hash
	Name       string
	Tagger     Signature
	Message    string
	TargetType plumbing.ObjectType
	Target     plumbing.Hash

	s storer.EncodedObjectStorer
}

// ID returns the object hash of the tag.
func (t *Tag) ID() plumbing.Hash {
	return t.Hash
}

// Type returns the type of object.
func (t *Tag) Type() plumbing.ObjectType {
	return plumbing.TagObject
}

// Commit returns the commit pointed to by the tag, if the target is a commit.
func (t *Tag) Commit() (*Commit, error) {
	if t.TargetType != plumbing.CommitObject {
		return nil, ErrUnsupportedObject
	}

	return GetCommit(t.s, t.Target)
}

// Decode transforms a plumbing.EncodedObject into a Tag struct.
func (t *Tag) Decode(o plumbing.EncodedObject) error {
	if o.Type() != plumbing.TagObject {
		return plumbing.ErrInvalidType
	}

	t.Hash = o.Hash()

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
		case "object":
			t.Target = plumbing.NewHash(string(split[1]))
		case "type":
			t.TargetType, err = plumbing.ParseObjectType(string(split[1]))
			if err != nil {
				return err
			}
		case "tag":
			t.Name = string(split[1])
		case "tagger":
			t.Tagger.Decode(split[1])
		}

		if readErr == io.EOF {
			break
		}
	}

	msg, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	t.Message = string(msg)

	return nil
}

// Encode transforms a Tag into a plumbing.EncodedObject.
func (t *Tag) Encode(o plumbing.EncodedObject) error {
	o.SetType(plumbing.TagObject)

	w, err := o.Writer()
	if err != nil {
		return err
	}
	defer w.Close()

	var b bytes.Buffer
	fmt.Fprintf(&b, "object %s\n", t.Target.String())
	fmt.Fprintf(&b, "type %s\n", t.TargetType.String())
	fmt.Fprintf(&b, "tag %s\n", t.Name)
	fmt.Fprintf(&b, "tagger %s\n", t.Tagger.String())
	b.WriteByte('\n')
	b.WriteString(t.Message)

	_, err = io.Copy(w, &b)
	return err
}
