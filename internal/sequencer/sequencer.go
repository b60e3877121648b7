// Package sequencer tracks which chapter of a loaded course is playing and applies the auto-advance rule.
//
// A Sequencer performs no authorization: chapters must only be handed to New after the caller
// confirmed that the session owns the course or is enrolled in it.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/learnsphere/client/internal/models"
)

// PlaybackErrorMessage is recorded when the player reports a failure without a message
const PlaybackErrorMessage = "Failed to load video. Please try again."

// ErrIndexOutOfRange is returned by Select for an index outside the chapter list
var ErrIndexOutOfRange = errors.New("chapter index out of range")

// AutoplayPreference is the persisted autoplay switch shared by every sequencer.
//
// Method Autoplay returns the current value of the preference.
//
// Method SetAutoplay persists a new value. If the value cannot be persisted, the error will be returned
// and the preference keeps its previous value.
type AutoplayPreference interface {
	Autoplay() bool
	SetAutoplay(ctx context.Context, enabled bool) error
}

// Sequencer owns the chapter list and the current index of one player page
type Sequencer struct {
	mu              sync.Mutex
	chapters        []models.Chapter
	current         int
	prefs           AutoplayPreference
	playbackError   string
	descriptionOpen bool
}

// New creates a sequencer over chapters.
// The list is copied; the first chapter is current when the list is non-empty.
func New(chapters []models.Chapter, prefs AutoplayPreference) *Sequencer {
	owned := make([]models.Chapter, len(chapters))
	copy(owned, chapters)

	current := 0
	if len(owned) == 0 {
		current = -1
	}

	return &Sequencer{
		chapters: owned,
		current:  current,
		prefs:    prefs,
	}
}

// Current returns the current chapter index. ok is false when there are no chapters.
func (s *Sequencer) Current() (index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 {
		return 0, false
	}
	return s.current, true
}

// Chapters returns a copy of the chapter list
func (s *Sequencer) Chapters() []models.Chapter {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyChapters()
}

// Snapshot returns the full player state
func (s *Sequencer) Snapshot() models.PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := models.PlayerState{
		Chapters:        s.copyChapters(),
		Autoplay:        s.prefs.Autoplay(),
		Error:           s.playbackError,
		DescriptionOpen: s.descriptionOpen,
	}
	if s.current >= 0 {
		index := s.current
		state.CurrentIndex = &index
	}
	return state
}

// Select makes chapter i current, clears the playback error and closes the description panel.
// Selecting the current chapter again is allowed and changes nothing else.
func (s *Sequencer) Select(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.chapters) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.chapters))
	}

	s.current = i
	s.playbackError = ""
	s.descriptionOpen = false
	return nil
}

// Complete handles the end of media for the current chapter.
// The chapter is marked completed, then playback moves to the next chapter
// if autoplay is enabled and the current chapter is not the last one.
// Moving to the next chapter clears the playback error. It reports whether the index moved.
func (s *Sequencer) Complete() (advanced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 {
		return false
	}

	s.chapters[s.current].Completed = true

	if s.prefs.Autoplay() && s.current < len(s.chapters)-1 {
		s.current++
		s.playbackError = ""
		return true
	}
	return false
}

// ReportError records a playback failure of the current chapter.
// The index is not changed and nothing is retried.
func (s *Sequencer) ReportError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message == "" {
		message = PlaybackErrorMessage
	}
	s.playbackError = message
}

// ToggleAutoplay flips the persisted autoplay preference and returns the new value.
// Only future Complete calls are affected.
func (s *Sequencer) ToggleAutoplay(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enabled := !s.prefs.Autoplay()
	if err := s.prefs.SetAutoplay(ctx, enabled); err != nil {
		return !enabled, fmt.Errorf("failed to toggle autoplay: %w", err)
	}
	return enabled, nil
}

// ToggleDescription opens or closes the description panel and returns whether it is open
func (s *Sequencer) ToggleDescription() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.descriptionOpen = !s.descriptionOpen
	return s.descriptionOpen
}

func (s *Sequencer) copyChapters() []models.Chapter {
	chapters := make([]models.Chapter, len(s.chapters))
	copy(chapters, s.chapters)
	return chapters
}
