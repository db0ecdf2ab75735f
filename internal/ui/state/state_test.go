package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordSubmit(t *testing.T) {
	s := NewAppState("acme")

	s.RecordSubmit("is:unresolved")
	s.RecordSubmit("error:high")
	s.RecordSubmit("is:unresolved")
	assert.Equal(t, "is:unresolved", s.ActiveQuery)
	assert.Equal(t, []string{"is:unresolved", "error:high"}, s.History)

	s.RecordSubmit("")
	assert.Equal(t, "", s.ActiveQuery)
	assert.Len(t, s.History, 2)
}

func TestHistoryBounded(t *testing.T) {
	s := NewAppState("acme")
	for i := 0; i < 25; i++ {
		s.RecordSubmit(fmt.Sprintf("q%d", i))
	}
	assert.Len(t, s.History, maxHistory)
	assert.Equal(t, "q24", s.History[0])
}

func TestStatus(t *testing.T) {
	s := NewAppState("acme")
	s.SetStatus(StatusError, "boom")
	assert.Equal(t, StatusError, s.StatusKind)
	assert.Equal(t, "boom", s.StatusMessage)

	s.ClearStatus()
	assert.Equal(t, StatusInfo, s.StatusKind)
	assert.Empty(t, s.StatusMessage)
}
