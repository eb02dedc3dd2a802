// Package status schedules the independently timed segments of the status
// bar. The scheduler never blocks: command sources are handed out as jobs and
// their output comes back through Complete.
package status

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Job asks a runner to execute a command for a segment.
type Job struct {
	ID      uuid.UUID
	Segment int
	Argv    []string
}

// Result is the outcome of a Job.
type Result struct {
	ID      uuid.UUID
	Segment int
	Output  string
	Err     error
}

// Block is a rendered segment ready to be drawn.
type Block struct {
	Text      string `json:"text"`
	Color     uint32 `json:"color"`
	Underline bool   `json:"underline"`
}

type segment struct {
	Spec
	text     string
	next     time.Time
	done     bool
	inflight uuid.UUID
}

type Scheduler struct {
	segments  []*segment
	sensors   Sensors
	cancelled bool
}

// New creates a scheduler whose segments are all due at now.
func New(specs []Spec, sensors Sensors, now time.Time) *Scheduler {
	segments := make([]*segment, len(specs))
	for i, spec := range specs {
		segments[i] = &segment{Spec: spec, next: now}
	}
	return &Scheduler{
		segments: segments,
		sensors:  sensors.withDefaults(),
	}
}

// Next returns the earliest instant a segment is due. ok is false when no
// segment will ever be due again.
func (s *Scheduler) Next() (next time.Time, ok bool) {
	if s.cancelled {
		return next, false
	}
	for _, seg := range s.segments {
		if seg.done {
			continue
		}
		if !ok || seg.next.Before(next) {
			next, ok = seg.next, true
		}
	}
	return next, ok
}

// Tick refreshes every segment due at now. Static and sensor segments are
// rendered in place, command segments are returned as jobs unless one is
// already running. changed reports whether any rendered text changed.
func (s *Scheduler) Tick(now time.Time) (jobs []Job, changed bool) {
	if s.cancelled {
		return nil, false
	}

	for i, seg := range s.segments {
		if seg.done || now.Before(seg.next) {
			continue
		}

		switch src := seg.Source.(type) {
		case Command:
			if seg.inflight == uuid.Nil {
				seg.inflight = uuid.New()
				jobs = append(jobs, Job{ID: seg.inflight, Segment: i, Argv: []string(src)})
			}
		default:
			text, ok := s.sample(seg, now)
			if ok && text != seg.text {
				seg.text = text
				changed = true
			}
		}

		s.advance(seg, now)
	}

	return jobs, changed
}

// advance moves next past now in whole intervals from the scheduled time.
func (s *Scheduler) advance(seg *segment, now time.Time) {
	if seg.Interval <= 0 {
		seg.done = true
		return
	}
	if _, ok := seg.Source.(Static); ok {
		seg.done = true
		return
	}
	if skipped := now.Sub(seg.next) / seg.Interval; skipped > 0 {
		seg.next = seg.next.Add(skipped * seg.Interval)
	}
	for !seg.next.After(now) {
		seg.next = seg.next.Add(seg.Interval)
	}
}

func (s *Scheduler) sample(seg *segment, now time.Time) (string, bool) {
	switch src := seg.Source.(type) {
	case Static:
		return Render(seg.Format, string(src), nil), true
	case DateTime:
		return Render(seg.Format, now.Format(string(src)), nil), true
	case RAM:
		m, err := s.sensors.Memory()
		if err != nil {
			slog.Debug("Failed to sample memory", "package", "status", "error", err)
			return "", false
		}
		return renderRAM(seg.Format, m), true
	case Battery:
		info, err := s.sensors.Battery(src.Name)
		if err != nil {
			slog.Debug("Failed to sample battery", "package", "status", "error", err)
			return "", false
		}
		return renderBattery(seg.Format, src, info), true
	default:
		slog.Warn("Unknown status source", "package", "status", "source", describe(src))
		return "", false
	}
}

// Complete applies a job result and reports whether the rendered text
// changed. Results for jobs that are no longer in flight are ignored. A
// failed result keeps the previous text.
func (s *Scheduler) Complete(res Result) bool {
	if s.cancelled || res.Segment < 0 || res.Segment >= len(s.segments) {
		return false
	}
	seg := s.segments[res.Segment]
	if seg.inflight != res.ID {
		return false
	}
	seg.inflight = uuid.Nil

	if res.Err != nil {
		slog.Debug("Status command failed", "package", "status", "segment", res.Segment, "error", res.Err)
		return false
	}

	text := Render(seg.Format, firstLine(res.Output), nil)
	if text == seg.text {
		return false
	}
	seg.text = text
	return true
}

// Compose returns the rendered segments in order, skipping those that have
// nothing to show yet.
func (s *Scheduler) Compose() []Block {
	blocks := make([]Block, 0, len(s.segments))
	for _, seg := range s.segments {
		if seg.text == "" {
			continue
		}
		blocks = append(blocks, Block{
			Text:      seg.text,
			Color:     seg.Color,
			Underline: seg.Underline,
		})
	}
	return blocks
}

// String joins the composed text.
func (s *Scheduler) String() string {
	var b strings.Builder
	for _, block := range s.Compose() {
		b.WriteString(block.Text)
	}
	return b.String()
}

// Cancel stops all timers. Later ticks and results are ignored.
func (s *Scheduler) Cancel() {
	s.cancelled = true
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i != -1 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
