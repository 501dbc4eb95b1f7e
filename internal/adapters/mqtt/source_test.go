package mqtt

import (
	"errors"
	"testing"

	"github.com/dkeye/Slate/internal/core"
	"github.com/dkeye/Slate/internal/domain"
)

func TestParseTopic(t *testing.T) {
	sid, topic, err := ParseTopic("slate", "slate/abc-123/CURSOR_MOVE")
	if err != nil {
		t.Fatal(err)
	}
	if sid != "abc-123" || topic != domain.TopicCursor {
		t.Fatalf("got %s %s", sid, topic)
	}

	for _, bad := range []string{
		"other/abc/CURSOR_MOVE",
		"slate/abc",
		"slate//CURSOR_MOVE",
		"slate/abc/",
		"slate/abc/CURSOR_MOVE/extra",
	} {
		if _, _, err := ParseTopic("slate", bad); !errors.Is(err, ErrBadTopic) {
			t.Errorf("ParseTopic(%q) err = %v, want ErrBadTopic", bad, err)
		}
	}
}

type delivery struct {
	sid   core.SessionID
	topic domain.Topic
	text  string
}

type recorder struct{ got []delivery }

func (r *recorder) Deliver(sid core.SessionID, topic domain.Topic, text string) error {
	r.got = append(r.got, delivery{sid, topic, text})
	return nil
}

type message struct {
	topic   string
	payload []byte
}

func (m message) Duplicate() bool   { return false }
func (m message) Qos() byte         { return 0 }
func (m message) Retained() bool    { return false }
func (m message) Topic() string     { return m.topic }
func (m message) MessageID() uint16 { return 0 }
func (m message) Payload() []byte   { return m.payload }
func (m message) Ack()              {}

func TestSourceHandle(t *testing.T) {
	rec := &recorder{}
	s := &Source{prefix: "slate", sink: rec}

	s.handle(nil, message{topic: "slate/sid-1/THROW_CONFETTI", payload: []byte(`{"duration":"2"}`)})
	s.handle(nil, message{topic: "junk", payload: []byte(`{}`)})

	if len(rec.got) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(rec.got))
	}
	want := delivery{"sid-1", domain.TopicConfetti, `{"duration":"2"}`}
	if rec.got[0] != want {
		t.Fatalf("got %+v, want %+v", rec.got[0], want)
	}
	if s.filter() != "slate/+/+" {
		t.Fatalf("filter = %s", s.filter())
	}
}
