package audio

import (
	"context"
	"sort"
	"time"
)

// SequenceItem is one step of a timed narration sequence.
type SequenceItem struct {
	Text  string
	Voice VoiceProfile

	// Delay from the moment the sequence is queued.
	Delay time.Duration

	Position *GridPos
}

// sequenceStagger spaces items that share a delay so they keep their list
// order instead of racing.
const sequenceStagger = 100 * time.Millisecond

// queueSequence schedules each item at delay plus an index stagger, all
// measured against a single clock anchored at the call, so timing error
// never accumulates across items. Items that fire while an earlier
// utterance still plays join the FIFO queue; the realized pacing can
// therefore drift from the nominal delays, which is accepted.
//
// The returned handle completes when the last item's utterance does.
func (n *narrator) queueSequence(items []SequenceItem) *Handle {
	h := newHandle()
	if len(items) == 0 {
		h.finish(nil)
		return h
	}

	offsets := make([]time.Duration, len(items))
	for i, item := range items {
		offsets[i] = item.Delay + time.Duration(i)*sequenceStagger
	}
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return offsets[order[a]] < offsets[order[b]]
	})

	ctx, cancel := context.WithCancel(n.baseCtx)
	run := &sequenceRun{cancel: cancel}
	n.trackSequence(run)

	go func() {
		defer n.untrackSequence(run)
		defer h.finish(nil)

		start := time.Now()
		var last *Handle
		for _, i := range order {
			wait := offsets[i] - time.Since(start)
			if wait > 0 {
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return
				}
			}
			item := items[i]
			last = n.speak(Utterance{
				Text:     item.Text,
				Voice:    item.Voice,
				Position: item.Position,
			})
		}
		select {
		case <-last.Done():
		case <-ctx.Done():
		}
	}()
	return h
}

type sequenceRun struct {
	cancel context.CancelFunc
}

func (n *narrator) trackSequence(run *sequenceRun) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sequences == nil {
		n.sequences = make(map[*sequenceRun]struct{})
	}
	n.sequences[run] = struct{}{}
}

func (n *narrator) untrackSequence(run *sequenceRun) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.sequences, run)
}

// cancelSequences aborts every in-flight sequence.
func (n *narrator) cancelSequences() {
	n.mu.Lock()
	runs := make([]*sequenceRun, 0, len(n.sequences))
	for r := range n.sequences {
		runs = append(runs, r)
	}
	n.sequences = nil
	n.mu.Unlock()

	for _, r := range runs {
		r.cancel()
	}
}
