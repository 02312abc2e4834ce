package main

import (
	"strings"
	"testing"

	"gymdesk/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBaseSchedule(t *testing.T) {
	doc := `
schedule:
  - day: 월요일
    period: 1교시
    location: 체육관
    class: 5-1
  - day: 화요일
    period: 점심시간
    location: 운동장
    class: 6-2
`
	entries, err := parseBaseSchedule(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.BaseScheduleEntry{Day: model.Monday, Period: model.Period1, Location: model.Gymnasium, Class: "5-1"}, entries[0])
	assert.Equal(t, model.Lunch, entries[1].Period)
}

func TestParseBaseScheduleRejectsUnknownFields(t *testing.T) {
	_, err := parseBaseSchedule(strings.NewReader("schedule:\n  - day: 월요일\n    room: 체육관\n"))
	assert.Error(t, err)
}

func TestParseBaseScheduleEmpty(t *testing.T) {
	_, err := parseBaseSchedule(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty")
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"serve", "slot", "import-base", "sync"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	slot, _, err := root.Find([]string{"slot"})
	require.NoError(t, err)
	assert.NotNil(t, slot.Flags().Lookup("period"))
	assert.NotNil(t, root.PersistentFlags().Lookup("remote-url"))
}
