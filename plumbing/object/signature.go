package object

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"
)

var errInvalidTimezone = errors.New("invalid timezone offset")

// Signature identifies who authored or committed a commit or tag, and when.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Decode parses a signature in the format "Name <email> unix-ts tz-offset".
func (s *Signature) Decode(b []byte) {
	open := bytes.LastIndexByte(b, '<')
	close := bytes.LastIndexByte(b, '>')
	if open < 0 || close < 0 || close < open {
		s.Name = string(b)
		return
	}

	s.Name = strings.TrimSpace(string(b[:open]))
	s.Email = string(b[open+1 : close])

	hasTime := close+2 < len(b)
	if !hasTime {
		return
	}

	fields := strings.Fields(string(b[close+2:]))
	if len(fields) != 2 {
		return
	}

	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return
	}

	loc, err := parseTimezone(fields[1])
	if err != nil {
		loc = time.UTC
	}

	s.When = time.Unix(ts, 0).In(loc)
}

func parseTimezone(offset string) (*time.Location, error) {
	sign := 1
	if strings.HasPrefix(offset, "-") {
		sign = -1
	}
	offset = strings.TrimPrefix(strings.TrimPrefix(offset, "+"), "-")
	if len(offset) != 4 {
		return time.UTC, errInvalidTimezone
	}

	hours, err := strconv.Atoi(offset[:2])
	if err != nil {
		return time.UTC, err
	}
	minutes, err := strconv.Atoi(offset[2:])
	if err != nil {
		return time.UTC, err
	}

	seconds := sign * (hours*3600 + minutes*60)
	return time.FixedZone("", seconds), nil
}

// Encode writes the signature in "Name <email> unix-ts tz-offset" format.
func (s *Signature) Encode(b *bytes.Buffer) {
	b.WriteString(s.Name)
	b.WriteString(" <")
	b.WriteString(s.Email)
	b.WriteString("> ")
	b.WriteString(strconv.FormatInt(s.When.Unix(), 10))
	b.WriteByte(' ')
	b.WriteString(s.When.Format("-0700"))
}

func (s *Signature) String() string {
	var b bytes.Buffer
	s.Encode(&b)
	return b.String()
}
