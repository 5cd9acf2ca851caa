// Package wire is the v1 wire schema of events pushed by the remote
// authority, and the only place that tolerates its naming and format
// variance. Everything past this package sees canonical models.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// SchemaVersion is the wire schema these decoders understand.
const SchemaVersion = 1

var null = []byte("null")

// Stamp accepts unix seconds, unix milliseconds, numeric strings and
// RFC 3339 strings.
type Stamp struct{ time.Time }

// millisCutoff separates second and millisecond epochs (~2001-09 in ms).
const millisCutoff = 1_000_000_000_000

func (s *Stamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		s.Time = time.Time{}
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		return s.parseString(str)
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	return s.parseNumber(n.String())
}

func (s *Stamp) parseString(str string) error {
	str = strings.TrimSpace(str)
	if str == "" {
		s.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
		s.Time = t
		return nil
	}
	return s.parseNumber(str)
}

func (s *Stamp) parseNumber(str string) error {
	n, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(str, 64)
		if ferr != nil {
			return fmt.Errorf("timestamp %q: %w", str, err)
		}
		n = int64(f)
	}
	switch {
	case n == 0:
		s.Time = time.Time{}
	case n >= millisCutoff || n <= -millisCutoff:
		s.Time = time.UnixMilli(n).UTC()
	default:
		s.Time = time.Unix(n, 0).UTC()
	}
	return nil
}

// StringList accepts a single string or a list of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		*l = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
		} else {
			*l = StringList{s}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

func (l StringList) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

// Content accepts a plain string or an object carrying text or code.
type Content struct {
	Text     string
	Code     string
	Language string
	Filename string
	IsCode   bool
}

func (c *Content) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		*c = Content{}
		return nil
	}
	if b[0] == '"' {
		*c = Content{}
		return json.Unmarshal(b, &c.Text)
	}
	var obj struct {
		Text        string  `json:"text"`
		Code        *string `json:"code"`
		Language    string  `json:"language"`
		Filename    string  `json:"filename"`
		Description string  `json:"description"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	*c = Content{Text: obj.Text, Language: obj.Language, Filename: obj.Filename}
	if c.Text == "" {
		c.Text = obj.Description
	}
	if obj.Code != nil {
		c.IsCode = true
		c.Code = *obj.Code
	}
	return nil
}

// Reactions accepts {"👍": ["m1"]} or [{"emoji":"👍","user_ids":["m1"]}].
// Member ids are kept once per emoji, and emojis with no members are dropped.
type Reactions map[string][]string

func (r *Reactions) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		*r = nil
		return nil
	}
	out := Reactions{}
	if b[0] == '{' {
		var m map[string][]string
		if err := json.Unmarshal(b, &m); err != nil {
			return fmt.Errorf("reactions: %w", err)
		}
		for emoji, ids := range m {
			out.add(emoji, ids)
		}
		*r = out
		return nil
	}
	var list []struct {
		Emoji   string   `json:"emoji"`
		UserIDs []string `json:"user_ids"`
		Members []string `json:"member_ids"`
	}
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("reactions: %w", err)
	}
	for _, e := range list {
		out.add(e.Emoji, e.UserIDs)
		out.add(e.Emoji, e.Members)
	}
	*r = out
	return nil
}

func (r Reactions) add(emoji string, ids []string) {
	if emoji == "" {
		return
	}
	for _, id := range ids {
		if id == "" || slices.Contains(r[emoji], id) {
			continue
		}
		r[emoji] = append(r[emoji], id)
	}
}

// Skills accepts ["web"] or [{"category":"web","level":3}].
type Skills []string

func (s *Skills) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		*s = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("skills: %w", err)
	}
	out := make(Skills, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var name string
			if err := json.Unmarshal(item, &name); err != nil {
				return err
			}
			out = append(out, name)
			continue
		}
		var tag struct {
			Category string `json:"category"`
			Name     string `json:"name"`
		}
		if err := json.Unmarshal(item, &tag); err != nil {
			return fmt.Errorf("skills: %w", err)
		}
		if tag.Category == "" {
			tag.Category = tag.Name
		}
		if tag.Category != "" {
			out = append(out, tag.Category)
		}
	}
	*s = out
	return nil
}

// DecodeList reads either a bare JSON array or an object wrapping the
// array under key.
func DecodeList[T any](data json.RawMessage, key string) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		return nil, nil
	}
	if data[0] == '[' {
		var list []T
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	inner, ok := wrapped[key]
	if !ok {
		return nil, fmt.Errorf("expected a list or an object with %q", key)
	}
	var list []T
	if err := json.Unmarshal(inner, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
