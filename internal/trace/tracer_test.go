package trace

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoggingTracer(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

	tr := LoggingTracer{Logger: logger}
	tr.Trace(Event{Kind: Sample, Clause: 1, Post: []int{0}})
	assert.Empty(t, buf.String())

	tr.Trace(Event{Kind: Frame, Phase: "step", Frame: 2, Detail: "p | q"})
	out := buf.String()
	assert.Contains(t, out, "event=frame")
	assert.Contains(t, out, "frame=2")
	assert.Contains(t, out, "phase=step")
}

func TestRecorder(t *testing.T) {
	var r Recorder
	DefaultTracer{}.Trace(Event{Kind: Sample})
	r.Trace(Event{Kind: Sample})
	r.Trace(Event{Kind: Generator})
	r.Trace(Event{Kind: Sample})
	assert.Equal(t, 2, r.Count(Sample))
	assert.Equal(t, 0, r.Count(Refinement))
	assert.Equal(t, "not-implied", NotImplied.String())
}
