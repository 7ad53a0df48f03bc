package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewMenu, "menu"},
		{ViewForms, "forms"},
		{ViewForm, "form"},
		{ViewRecords, "records"},
		{ViewSettings, "settings"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestViewType_Distinct(t *testing.T) {
	seen := make(map[ViewType]bool)
	for _, v := range []ViewType{ViewMenu, ViewForms, ViewForm, ViewRecords, ViewSettings, ViewHelp} {
		assert.False(t, seen[v], "duplicate view %s", v)
		seen[v] = true
	}
}

func TestSubmitCompleted_CarriesResult(t *testing.T) {
	msg := SubmitCompleted{Result: &domain.SubmissionResult{
		Created: true,
		Notices: []domain.Notice{{Level: domain.NoticeInfo, Message: "Created Visit"}},
	}}

	assert.True(t, msg.Result.Created)
	assert.Len(t, msg.Result.Notices, 1)
	assert.NoError(t, msg.Err)
}

func TestRecordDeleted_Error(t *testing.T) {
	err := errors.New("boom")
	msg := RecordDeleted{ID: "r1", Err: err}

	assert.Equal(t, "r1", msg.ID)
	assert.ErrorIs(t, msg.Err, err)
}

func TestSuggestionsChanged_Closed(t *testing.T) {
	msg := SuggestionsChanged{Field: "ward", Closed: true}

	assert.Equal(t, "ward", msg.Field)
	assert.True(t, msg.Closed)
	assert.Empty(t, msg.State.Candidates)
}
