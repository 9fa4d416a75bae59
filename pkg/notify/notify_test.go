package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stubPrompter struct {
	inputs       []string
	selectIdx    []int
	selectErr    error
	infoMessages []string
	selects      []SelectConfig
	inputPos     int
	selectPos    int
}

func (s *stubPrompter) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubPrompter) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selects = append(s.selects, cfg)
	if s.selectErr != nil {
		return -1, s.selectErr
	}
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubPrompter) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestTerminal_Toast(t *testing.T) {
	prompter := &stubPrompter{}
	n := NewTerminal(WithPrompter(prompter), WithTheme(Theme{ToastPrefix: "> "}))

	n.Toast(context.Background(), "<b>Record saved</b>")
	n.Toast(context.Background(), "   ")

	if diff := cmp.Diff([]string{"> Record saved"}, prompter.infoMessages); diff != "" {
		t.Fatalf("toast output mismatch (-want +got):\n%s", diff)
	}
}

func TestTerminal_Confirm(t *testing.T) {
	cases := []struct {
		name string
		idx  int
		want Answer
	}{
		{name: "yes", idx: 0, want: AnswerYes},
		{name: "no", idx: 1, want: AnswerNo},
		{name: "cancel", idx: 2, want: AnswerCancel},
		{name: "out of range", idx: -1, want: AnswerCancel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prompter := &stubPrompter{selectIdx: []int{tc.idx}}
			n := NewTerminal(WithPrompter(prompter))

			got, err := n.Confirm(context.Background(), "Delete record", "Delete the record?")
			if err != nil {
				t.Fatalf("confirm: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
			if len(prompter.selects) != 1 {
				t.Fatalf("expected one select prompt, got %d", len(prompter.selects))
			}
			cfg := prompter.selects[0]
			if cfg.Message != "Delete record: Delete the record?" {
				t.Fatalf("unexpected prompt message %q", cfg.Message)
			}
			if cfg.DefaultIndex != 2 {
				t.Fatalf("expected cancel as default, got %d", cfg.DefaultIndex)
			}
		})
	}
}

func TestTerminal_ConfirmAbortedCancels(t *testing.T) {
	n := NewTerminal(WithPrompter(&stubPrompter{selectErr: ErrAborted}))

	got, err := n.Confirm(context.Background(), "", "Close?")
	if err != nil {
		t.Fatalf("aborted prompt should not fail, got %v", err)
	}
	if got != AnswerCancel {
		t.Fatalf("expected cancel, got %s", got)
	}
}

func TestTerminal_ConfirmPropagatesErrors(t *testing.T) {
	boom := errors.New("tty gone")
	n := NewTerminal(WithPrompter(&stubPrompter{selectErr: boom}))

	got, err := n.Confirm(context.Background(), "", "Close?")
	if !errors.Is(err, boom) {
		t.Fatalf("expected tty error, got %v", err)
	}
	if got != AnswerCancel {
		t.Fatalf("expected cancel alongside error, got %s", got)
	}
}

func TestTerminal_AlertUsesLabels(t *testing.T) {
	prompter := &stubPrompter{selectIdx: []int{0}}
	n := NewTerminal(
		WithPrompter(prompter),
		WithTheme(Theme{AlertPrefix: "!! "}),
		WithLabels(Labels{OK: "Fine"}),
	)

	if err := n.Alert(context.Background(), "Information", "Name is taken &amp; locked"); err != nil {
		t.Fatalf("alert: %v", err)
	}
	want := SelectConfig{Message: "!! Information: Name is taken & locked", Options: []string{"Fine"}}
	if diff := cmp.Diff([]SelectConfig{want}, prompter.selects); diff != "" {
		t.Fatalf("alert prompt mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAnswer(t *testing.T) {
	cases := map[string]Answer{
		"Yes":    AnswerYes,
		" y ":    AnswerYes,
		"NO":     AnswerNo,
		"cancel": AnswerCancel,
		"maybe":  AnswerCancel,
	}
	for in, want := range cases {
		if got := ParseAnswer(in); got != want {
			t.Fatalf("ParseAnswer(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestPlainText(t *testing.T) {
	cases := map[string]string{
		"plain":                          "plain",
		"<script>alert(1)</script>Saved": "Saved",
		"  <i>Tom</i> &amp; Jerry ":      "Tom & Jerry",
	}
	for in, want := range cases {
		if got := PlainText(in); got != want {
			t.Fatalf("PlainText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDiscard(t *testing.T) {
	d := Discard{Answer: AnswerYes}
	got, err := d.Confirm(context.Background(), "t", "m")
	if err != nil || got != AnswerYes {
		t.Fatalf("expected yes, got %s (%v)", got, err)
	}
	if err := d.Alert(context.Background(), "t", "m"); err != nil {
		t.Fatalf("alert: %v", err)
	}
}
