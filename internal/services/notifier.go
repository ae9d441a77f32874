package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	"github.com/yungbote/lecture-feedback-backend/internal/realtime"
)

// LectureNotifier publishes committed lecture and feedback changes. Every
// event goes to the base lecture channel and the owning teacher's channel.
type LectureNotifier interface {
	ReactionCreated(lec *types.Lecture, r *types.Reaction)
	SuggestionsGenerated(lec *types.Lecture, res *GenerationResult)
	SuggestionAccepted(lec *types.Lecture, s *types.Suggestion)
	SuggestionRejected(lec *types.Lecture, s *types.Suggestion)
	LectureVersionCreated(lec *types.Lecture, parentID uuid.UUID)
}

type lectureNotifier struct {
	emit SSEEmitter
}

func NewLectureNotifier(emit SSEEmitter) LectureNotifier {
	return &lectureNotifier{emit: emit}
}

func (n *lectureNotifier) send(lec *types.Lecture, event realtime.SSEEvent, data map[string]any, extra ...string) {
	if n == nil || n.emit == nil || lec == nil {
		return
	}
	channels := append([]string{
		realtime.LectureChannel(lec.BaseLectureID),
		realtime.TeacherChannel(lec.TeacherID),
	}, extra...)
	for _, ch := range channels {
		n.emit.Emit(context.Background(), realtime.SSEMessage{Channel: ch, Event: event, Data: data})
	}
}

func (n *lectureNotifier) ReactionCreated(lec *types.Lecture, r *types.Reaction) {
	if lec == nil || r == nil {
		return
	}
	n.send(lec, realtime.SSEEventReactionCreated, map[string]any{
		"baseLectureId": lec.BaseLectureID,
		"reaction":      r,
	}, realtime.UserChannel(r.UserID))
}

func (n *lectureNotifier) SuggestionsGenerated(lec *types.Lecture, res *GenerationResult) {
	if lec == nil || res == nil || len(res.CreatedSuggestions) == 0 && len(res.Failures) == 0 {
		return
	}
	n.send(lec, realtime.SSEEventSuggestionsGenerated, map[string]any{
		"baseLectureId": lec.BaseLectureID,
		"lectureId":     lec.ID,
		"runId":         res.RunID,
		"suggestions":   res.CreatedSuggestions,
		"failures":      res.Failures,
	})
}

func (n *lectureNotifier) SuggestionAccepted(lec *types.Lecture, s *types.Suggestion) {
	if lec == nil || s == nil {
		return
	}
	n.send(lec, realtime.SSEEventSuggestionAccepted, map[string]any{
		"baseLectureId": lec.BaseLectureID,
		"suggestion":    s,
	})
}

func (n *lectureNotifier) SuggestionRejected(lec *types.Lecture, s *types.Suggestion) {
	if lec == nil || s == nil {
		return
	}
	n.send(lec, realtime.SSEEventSuggestionRejected, map[string]any{
		"baseLectureId": lec.BaseLectureID,
		"suggestion":    s,
	})
}

func (n *lectureNotifier) LectureVersionCreated(lec *types.Lecture, parentID uuid.UUID) {
	if lec == nil {
		return
	}
	n.send(lec, realtime.SSEEventLectureVersionCreated, map[string]any{
		"baseLectureId":   lec.BaseLectureID,
		"parentLectureId": parentID,
		"lecture":         lec,
	})
}
