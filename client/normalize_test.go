package client

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeLessonShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Lesson
	}{
		{
			name: "structured subject and places",
			raw:  `{"id":1,"subject":{"id":3,"name":"Calculus"},"weekday":1,"number":2,"start_time":"10:40","end_time":"12:10","odd_week":true,"even_week":false,"teachers":[{"id":9,"name":"Dr. Ivanov"}],"places":[{"id":5,"name":"Lab"}]}`,
			want: Lesson{
				ID: 1, Subject: NameRef{ID: 3, Name: "Calculus"},
				Weekday: 1, Number: 2, StartTime: "10:40", EndTime: "12:10",
				OddWeek:  true,
				Teachers: []NameRef{{ID: 9, Name: "Dr. Ivanov"}},
				Places:   []NameRef{{ID: 5, Name: "Lab"}},
			},
		},
		{
			name: "string subject",
			raw:  `{"id":2,"subject":"Physics","weekday":2,"number":1,"start_time":"09:00","end_time":"10:30","odd_week":true,"even_week":true,"places":[]}`,
			want: Lesson{
				ID: 2, Subject: NameRef{ID: 0, Name: "Physics"},
				Weekday: 2, Number: 1, StartTime: "09:00", EndTime: "10:30",
				OddWeek: true, EvenWeek: true,
				Teachers: []NameRef{}, Places: []NameRef{},
			},
		},
		{
			name: "places as bare string",
			raw:  `{"id":3,"subject":"History","weekday":3,"number":4,"places":"Room 204"}`,
			want: Lesson{
				ID: 3, Subject: NameRef{ID: 0, Name: "History"},
				Weekday: 3, Number: 4,
				Teachers: []NameRef{},
				Places:   []NameRef{{ID: 0, Name: "Room 204"}},
			},
		},
		{
			name: "mixed places array",
			raw:  `{"id":4,"subject":"Chemistry","places":["Room 101",{"id":5,"name":"Lab"}]}`,
			want: Lesson{
				ID: 4, Subject: NameRef{ID: 0, Name: "Chemistry"},
				Teachers: []NameRef{},
				Places:   []NameRef{{ID: 0, Name: "Room 101"}, {ID: 5, Name: "Lab"}},
			},
		},
		{
			name: "missing places and teachers",
			raw:  `{"id":5,"subject":{"id":7,"name":"English"}}`,
			want: Lesson{
				ID: 5, Subject: NameRef{ID: 7, Name: "English"},
				Teachers: []NameRef{}, Places: []NameRef{},
			},
		},
		{
			name: "null places, non-array teachers",
			raw:  `{"id":6,"subject":"PE","places":null,"teachers":"staff"}`,
			want: Lesson{
				ID: 6, Subject: NameRef{ID: 0, Name: "PE"},
				Teachers: []NameRef{}, Places: []NameRef{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw rawLesson
			if err := json.Unmarshal([]byte(tt.raw), &raw); err != nil {
				t.Fatalf("decode: %v", err)
			}
			got, err := normalizeLesson(raw)
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

// Normalizing an already-normalized lesson must yield an identical lesson:
// re-encode the canonical form, run it through the raw path again, compare.
func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		`{"id":1,"subject":"Physics","weekday":2,"number":1,"places":"Room 204"}`,
		`{"id":2,"subject":{"id":3,"name":"Calculus"},"places":["Room 101",{"id":5,"name":"Lab"}],"teachers":[{"id":9,"name":"Dr. Ivanov"}]}`,
		`{"id":3,"subject":{"id":7,"name":"English"}}`,
	}
	for _, in := range inputs {
		var raw rawLesson
		if err := json.Unmarshal([]byte(in), &raw); err != nil {
			t.Fatalf("decode: %v", err)
		}
		once, err := normalizeLesson(raw)
		if err != nil {
			t.Fatalf("first pass: %v", err)
		}

		encoded, err := json.Marshal(once)
		if err != nil {
			t.Fatalf("re-encode: %v", err)
		}
		var again rawLesson
		if err := json.Unmarshal(encoded, &again); err != nil {
			t.Fatalf("re-decode: %v", err)
		}
		twice, err := normalizeLesson(again)
		if err != nil {
			t.Fatalf("second pass: %v", err)
		}

		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("not idempotent:\nonce  %+v\ntwice %+v", once, twice)
		}
	}
}

func TestParseLessonsDropsMalformedEntries(t *testing.T) {
	raw := []byte(`[
		{"id":1,"subject":"Physics"},
		{"id":2,"subject":"Math","places":42},
		{"id":3,"subject":{"id":7,"name":"English"}}
	]`)
	lessons, err := parseLessons(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(lessons) != 2 {
		t.Fatalf("got %d lessons, want 2 (malformed dropped)", len(lessons))
	}
	if lessons[0].ID != 1 || lessons[1].ID != 3 {
		t.Fatalf("wrong survivors: %+v", lessons)
	}
}

func TestNameRefRejectsGarbage(t *testing.T) {
	var ref NameRef
	if err := json.Unmarshal([]byte(`42`), &ref); err == nil {
		t.Fatal("numeric name ref must fail")
	}
}
