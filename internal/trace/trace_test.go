package trace

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewAssignsDistinctIDs(t *testing.T) {
	a := New(zerolog.Nop())
	b := New(zerolog.Nop())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestNilSinkMethodsAreNoOps(t *testing.T) {
	var s *Sink
	assert.NotPanics(t, func() {
		s.Round(1, 0)
		s.Board(1, 10, 0, 0, 0)
		s.Improve(1, 0, 100)
		s.Transfer(1, 0, 1, 30)
		s.Done(1, 100)
	})
	assert.Equal(t, uuid.UUID{}, s.ID())
}

func TestSinkWritesToAttachedLog(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	s := New(log)
	s.Round(1, 2)
	s.Improve(1, 5, 900)

	out := buf.String()
	assert.Contains(t, out, "round start")
	assert.Contains(t, out, "improve")
	assert.Contains(t, out, s.ID().String())
}
