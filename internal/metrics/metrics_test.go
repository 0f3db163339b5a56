package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_ConcurrentIncrements(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.IncrementInferenceCall(i%5 != 0)
			m.IncrementQuestion(i%2 == 0)
		}(i)
	}
	wg.Wait()

	snap := m.GetSnapshot()
	assert.EqualValues(t, 50, snap.InferenceCalls)
	assert.EqualValues(t, 10, snap.InferenceFailures)
	assert.EqualValues(t, 25, snap.QuestionsAnswered)
	assert.EqualValues(t, 25, snap.QuestionsFailed)
}

func TestMetrics_PersonaBatches(t *testing.T) {
	m := NewMetrics()
	m.AddPersonasGenerated(3)
	m.AddPersonasGenerated(0)
	m.IncrementPersonaDecodeErrors()

	snap := m.GetSnapshot()
	assert.EqualValues(t, 2, snap.PersonaBatches)
	assert.EqualValues(t, 3, snap.PersonasGenerated)
	assert.EqualValues(t, 1, snap.PersonaDecodeErrors)
	assert.False(t, snap.LastUpdateTime.Before(snap.StartedAt))
}
