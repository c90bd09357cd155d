package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// The timetable backend is loose about shape: `subject` and the elements of
// `places` may arrive either as {id, name} objects or as bare strings, the
// whole `places` field may itself be a bare string, and `teachers` may be
// missing. Everything is normalized here, at the decode boundary; the
// heterogeneous shapes never leak past this file.

// UnmarshalJSON accepts either an {id, name} object or a bare string. A
// string becomes {ID: 0, Name: s}; ID 0 is the sentinel for "no matching
// record".
func (r *NameRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty name ref")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = NameRef{ID: 0, Name: s}
		return nil
	}
	type plain NameRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = NameRef(p)
	return nil
}

// rawLesson is the wire shape of a timetable entry before normalization.
type rawLesson struct {
	ID        int             `json:"id"`
	Subject   json.RawMessage `json:"subject"`
	Weekday   int             `json:"weekday"`
	Number    int             `json:"number"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	OddWeek   bool            `json:"odd_week"`
	EvenWeek  bool            `json:"even_week"`
	Teachers  json.RawMessage `json:"teachers"`
	Places    json.RawMessage `json:"places"`
}

// normalizeLesson maps one raw entry to the canonical Lesson. It builds a
// fresh value every time and is idempotent: a lesson that re-enters through
// the raw path decodes to an identical value.
func normalizeLesson(raw rawLesson) (Lesson, error) {
	l := Lesson{
		ID:        raw.ID,
		Weekday:   raw.Weekday,
		Number:    raw.Number,
		StartTime: raw.StartTime,
		EndTime:   raw.EndTime,
		OddWeek:   raw.OddWeek,
		EvenWeek:  raw.EvenWeek,
		Teachers:  []NameRef{},
		Places:    []NameRef{},
	}

	if len(raw.Subject) > 0 && !isJSONNull(raw.Subject) {
		if err := json.Unmarshal(raw.Subject, &l.Subject); err != nil {
			return Lesson{}, fmt.Errorf("lesson %d: subject: %w", raw.ID, err)
		}
	}

	if refs, ok := decodeRefList(raw.Teachers); ok {
		l.Teachers = refs
	}

	places, err := decodePlaces(raw.Places)
	if err != nil {
		return Lesson{}, fmt.Errorf("lesson %d: places: %w", raw.ID, err)
	}
	l.Places = places

	return l, nil
}

// decodeRefList decodes an array of refs; anything that is not an array
// yields (nil, false) and the caller's default applies.
func decodeRefList(data json.RawMessage) ([]NameRef, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, false
	}
	var refs []NameRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return nil, false
	}
	if refs == nil {
		refs = []NameRef{}
	}
	return refs, true
}

// decodePlaces handles the three tolerated shapes of `places`: absent (empty
// list), an array of refs-or-strings, or one bare string (single-element
// list).
func decodePlaces(data json.RawMessage) ([]NameRef, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || isJSONNull(data) {
		return []NameRef{}, nil
	}
	switch data[0] {
	case '[':
		var refs []NameRef
		if err := json.Unmarshal(data, &refs); err != nil {
			return nil, err
		}
		if refs == nil {
			refs = []NameRef{}
		}
		return refs, nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return []NameRef{{ID: 0, Name: s}}, nil
	default:
		return nil, fmt.Errorf("unsupported places shape")
	}
}

func isJSONNull(data json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// parseLessons decodes and normalizes a schedule response body. Entries that
// fail to normalize are dropped with a log line rather than failing the
// whole schedule.
func parseLessons(raw []byte) ([]Lesson, error) {
	var rawList []rawLesson
	if err := json.Unmarshal(raw, &rawList); err != nil {
		return nil, err
	}
	lessons := make([]Lesson, 0, len(rawList))
	for _, rl := range rawList {
		l, err := normalizeLesson(rl)
		if err != nil {
			log.Warn().Err(err).Int("lesson_id", rl.ID).Msg("dropping malformed lesson")
			continue
		}
		lessons = append(lessons, l)
	}
	return lessons, nil
}
