package domain_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"growth-hub-quiz/internal/domain"
)

func TestDecodeQuestionDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want domain.Question
	}{
		{
			name: "true false",
			doc:  `{"question_id": 23, "description": "The swab test is used only for sores", "question_type": "TF", "answer": false}`,
			want: domain.TrueFalse{ID: "23", Prompt: "The swab test is used only for sores", CorrectAnswer: false},
		},
		{
			name: "multiple choice",
			doc: `{"question_id": "233", "description": "Psychological abuse?", "question_type": "MC",
				"a": {"answer": "Slapping", "is_correct": false},
				"b": {"answer": "Threats", "is_correct": true},
				"c": {"answer": "Withholding money", "is_correct": false},
				"d": {"answer": "Touching", "is_correct": false}}`,
			want: domain.SingleChoice{ID: "233", Prompt: "Psychological abuse?", Options: []domain.Option{
				{Label: "a", Text: "Slapping"},
				{Label: "b", Text: "Threats", IsCorrect: true},
				{Label: "c", Text: "Withholding money"},
				{Label: "d", Text: "Touching"},
			}},
		},
		{
			name: "multiple select",
			doc: `{"question_id": 228, "description": "Forms of IPV?", "question_type": "MS",
				"a": {"answer": "Physical", "is_correct": true},
				"b": {"answer": "Emotional", "is_correct": true}}`,
			want: domain.MultiSelect{ID: "228", Prompt: "Forms of IPV?", Options: []domain.Option{
				{Label: "a", Text: "Physical", IsCorrect: true},
				{Label: "b", Text: "Emotional", IsCorrect: true},
			}},
		},
		{
			name: "matching",
			doc:  `{"question_id": 9, "description": "Match", "question_type": "MATCH", "answer_key": [{"field_1": "x", "field_2": "1"}]}`,
			want: domain.Matching{ID: "9", Prompt: "Match", Pairs: []domain.Pair{{Left: "x", Right: "1"}}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := domain.DecodeQuestion([]byte(tc.doc))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}

			encoded, err := domain.EncodeQuestion(got)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			again, err := domain.DecodeQuestion(encoded)
			if err != nil {
				t.Fatalf("decode encoded: %v", err)
			}
			if !reflect.DeepEqual(again, tc.want) {
				t.Fatalf("re-decoded %+v, want %+v", again, tc.want)
			}
		})
	}
}

func TestDecodeQuestionUnknownType(t *testing.T) {
	_, err := domain.DecodeQuestion([]byte(`{"question_id": 1, "question_type": "ESSAY"}`))
	if !errors.Is(err, domain.ErrUnsupportedQuestionType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}
}

func TestQuizJSON(t *testing.T) {
	in := domain.Quiz{
		Ref:          domain.LessonQuiz("basic_anatomy", 2),
		TotalLessons: 4,
		Questions: []domain.Question{
			domain.TrueFalse{ID: "1", Prompt: "p", CorrectAnswer: true},
			domain.Matching{ID: "m-1", Prompt: "m", Pairs: []domain.Pair{{Left: "a", Right: "b"}}},
		},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out domain.Quiz
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestDecodeAnswer(t *testing.T) {
	tf := domain.TrueFalse{ID: "1"}
	mc := domain.SingleChoice{ID: "2"}
	ms := domain.MultiSelect{ID: "3"}
	match := domain.Matching{ID: "4"}

	cases := []struct {
		q    domain.Question
		raw  string
		want domain.Answer
	}{
		{tf, `true`, domain.TrueFalseAnswer(true)},
		{mc, `"b"`, domain.ChoiceAnswer("b")},
		{ms, `["a","c"]`, domain.SelectAnswer{"a", "c"}},
		{match, `[{"field_1":"x","field_2":"1"}]`, domain.MatchAnswer{{Left: "x", Right: "1"}}},
	}
	for _, tc := range cases {
		got, err := domain.DecodeAnswer(tc.q, json.RawMessage(tc.raw))
		if err != nil {
			t.Fatalf("decode %s: %v", tc.raw, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("expected %#v, got %#v", tc.want, got)
		}
	}

	if _, err := domain.DecodeAnswer(tf, json.RawMessage(`"yes"`)); !errors.Is(err, domain.ErrAnswerTypeMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if _, err := domain.DecodeAnswer(mc, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for empty answer, got %v", err)
	}
}

func TestParseQuizRef(t *testing.T) {
	for _, raw := range []string{"lesson:basic_anatomy:3", "course:basic_anatomy"} {
		ref, err := domain.ParseQuizRef(raw)
		if err != nil {
			t.Fatalf("parse %s: %v", raw, err)
		}
		if ref.String() != raw {
			t.Fatalf("expected %s, got %s", raw, ref.String())
		}
	}
	for _, raw := range []string{"", "lesson:x", "lesson:x:0", "course:", "quiz:1"} {
		if _, err := domain.ParseQuizRef(raw); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected invalid argument for %q, got %v", raw, err)
		}
	}
}
